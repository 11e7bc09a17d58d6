package schema

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Patients holds one row per enrolled participant. The id is the code printed
// on the participant card, stored uppercase.
const (
	PatientsTableName = "patients"

	PatientColumnID              = "patient_id"
	PatientColumnPINHash         = "pin_hash"
	PatientColumnCohort          = "cohort"
	PatientColumnArm             = "arm"
	PatientColumnEnrollmentStart = "enrollment_start"
	PatientColumnContactPhone    = "contact_phone_enc"
)

var (
	PatientsColumns = append([]*schema.Column{
		{Name: PatientColumnID, Type: field.TypeString, Size: 32},
		{Name: PatientColumnPINHash, Type: field.TypeString, Size: 255},
		{Name: PatientColumnCohort, Type: field.TypeString, Size: 16},
		{Name: PatientColumnArm, Type: field.TypeString, Size: 16, Default: "EXPERIMENTAL"},
		{Name: PatientColumnEnrollmentStart, Type: field.TypeTime, Nullable: true, SchemaType: dateType},
		// XChaCha20-Poly1305 ciphertext, base64.
		{Name: PatientColumnContactPhone, Type: field.TypeString, Nullable: true, Size: 512},
	}, timeStampedColumns()...)

	PatientsTable = &schema.Table{
		Name:       PatientsTableName,
		Columns:    PatientsColumns,
		PrimaryKey: []*schema.Column{PatientsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "patient_cohort_arm",
				Unique:  false,
				Columns: []*schema.Column{PatientsColumns[2], PatientsColumns[3]},
			},
		},
	}
)
