package schema

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// DailyRecords is the electronic case report form: one row per patient per
// civil day. The morning triage creates the row and the supervised session
// fills in the session columns later that day.
const (
	DailyRecordsTableName = "daily_records"

	RecordColumnID         = "id"
	RecordColumnPatientID  = "patient_id"
	RecordColumnReportDate = "report_date"

	RecordColumnTriageStatus = "triage_status"
	RecordColumnAlert        = "alert"
	RecordColumnEfficiency   = "sleep_efficiency"
	RecordColumnTimeInBed    = "time_in_bed_min"
	RecordColumnTimeAsleep   = "time_asleep_min"
	RecordColumnLatency      = "latency_min"
	RecordColumnAwake        = "awake_min"
	RecordColumnFatigue      = "fatigue"
	RecordColumnStress       = "stress"
	RecordColumnMaxPain      = "max_pain"
	RecordColumnPainZones    = "pain_zones"

	RecordColumnSessionStatus = "session_status"
	RecordColumnExercise1     = "exercise_1"
	RecordColumnExercise2     = "exercise_2"
	RecordColumnExercise3     = "exercise_3"
	RecordColumnExercise4     = "exercise_4"
	RecordColumnLoad1         = "load_1"
	RecordColumnLoad2         = "load_2"
	RecordColumnLoad3         = "load_3"
	RecordColumnLoad4         = "load_4"
	RecordColumnSessionRPE    = "session_rpe"
	RecordColumnVagal         = "vagal_protocol"
)

// TriageColumns are written by the morning report. Resubmitting a report
// overwrites exactly these.
var TriageColumns = []string{
	RecordColumnTriageStatus,
	RecordColumnAlert,
	RecordColumnEfficiency,
	RecordColumnTimeInBed,
	RecordColumnTimeAsleep,
	RecordColumnLatency,
	RecordColumnAwake,
	RecordColumnFatigue,
	RecordColumnStress,
	RecordColumnMaxPain,
	RecordColumnPainZones,
}

// SessionColumns are written by the supervised session.
var SessionColumns = []string{
	RecordColumnSessionStatus,
	RecordColumnExercise1, RecordColumnLoad1,
	RecordColumnExercise2, RecordColumnLoad2,
	RecordColumnExercise3, RecordColumnLoad3,
	RecordColumnExercise4, RecordColumnLoad4,
	RecordColumnSessionRPE,
	RecordColumnVagal,
}

var (
	DailyRecordsColumns = append([]*schema.Column{
		{Name: RecordColumnID, Type: field.TypeInt, Increment: true},
		{Name: RecordColumnPatientID, Type: field.TypeString, Size: 32},
		{Name: RecordColumnReportDate, Type: field.TypeTime, SchemaType: dateType},

		{Name: RecordColumnTriageStatus, Type: field.TypeString, Size: 32, Nullable: true},
		{Name: RecordColumnAlert, Type: field.TypeString, Size: 16, Nullable: true},
		{Name: RecordColumnEfficiency, Type: field.TypeFloat64, Nullable: true},
		{Name: RecordColumnTimeInBed, Type: field.TypeInt, Nullable: true},
		{Name: RecordColumnTimeAsleep, Type: field.TypeInt, Nullable: true},
		{Name: RecordColumnLatency, Type: field.TypeInt, Nullable: true},
		{Name: RecordColumnAwake, Type: field.TypeInt, Nullable: true},
		{Name: RecordColumnFatigue, Type: field.TypeInt, Nullable: true},
		{Name: RecordColumnStress, Type: field.TypeInt, Nullable: true},
		{Name: RecordColumnMaxPain, Type: field.TypeInt, Nullable: true},
		{Name: RecordColumnPainZones, Type: field.TypeString, Size: 255, Nullable: true},

		{Name: RecordColumnSessionStatus, Type: field.TypeString, Size: 32, Nullable: true},
		{Name: RecordColumnExercise1, Type: field.TypeString, Size: 128, Nullable: true},
		{Name: RecordColumnExercise2, Type: field.TypeString, Size: 128, Nullable: true},
		{Name: RecordColumnExercise3, Type: field.TypeString, Size: 128, Nullable: true},
		{Name: RecordColumnExercise4, Type: field.TypeString, Size: 128, Nullable: true},
		{Name: RecordColumnLoad1, Type: field.TypeFloat64, Nullable: true},
		{Name: RecordColumnLoad2, Type: field.TypeFloat64, Nullable: true},
		{Name: RecordColumnLoad3, Type: field.TypeFloat64, Nullable: true},
		{Name: RecordColumnLoad4, Type: field.TypeFloat64, Nullable: true},
		{Name: RecordColumnSessionRPE, Type: field.TypeInt, Nullable: true},
		{Name: RecordColumnVagal, Type: field.TypeBool, Default: false},
	}, timeStampedColumns()...)

	DailyRecordsTable = &schema.Table{
		Name:       DailyRecordsTableName,
		Columns:    DailyRecordsColumns,
		PrimaryKey: []*schema.Column{DailyRecordsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "daily_records_patients_records",
				Columns:    []*schema.Column{DailyRecordsColumns[1]},
				RefColumns: []*schema.Column{PatientsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "daily_record_patient_id_report_date",
				Unique:  true,
				Columns: []*schema.Column{DailyRecordsColumns[1], DailyRecordsColumns[2]},
			},
			{
				Name:    "daily_record_report_date",
				Unique:  false,
				Columns: []*schema.Column{DailyRecordsColumns[2]},
			},
		},
	}
)
