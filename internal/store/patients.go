package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/udelar-dtx/dtx_backend/internal/domain/clock"
	"github.com/udelar-dtx/dtx_backend/internal/domain/prescription"
	"github.com/udelar-dtx/dtx_backend/internal/schema"
)

// Patient is a trial participant.
type Patient struct {
	ID              string
	PINHash         string
	Cohort          prescription.Cohort
	Arm             prescription.TrialArm
	EnrollmentStart *time.Time
	ContactPhoneEnc string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Patients interface {
	GetPatient(ctx context.Context, id string) (*Patient, error)
	ListPatients(ctx context.Context) ([]*Patient, error)
	CreatePatient(ctx context.Context, p *Patient) error
	SetEnrollmentStart(ctx context.Context, id string, date time.Time) (bool, error)
	SetPIN(ctx context.Context, id, pinHash string) error
}

var patientColumns = []string{
	schema.PatientColumnID,
	schema.PatientColumnPINHash,
	schema.PatientColumnCohort,
	schema.PatientColumnArm,
	schema.PatientColumnEnrollmentStart,
	schema.PatientColumnContactPhone,
	schema.ColumnCreatedAt,
	schema.ColumnUpdatedAt,
}

func scanPatient(rows *entsql.Rows) (*Patient, error) {
	var (
		p      Patient
		cohort string
		arm    sql.NullString
		start  sql.NullTime
		phone  sql.NullString
	)
	if err := rows.Scan(&p.ID, &p.PINHash, &cohort, &arm, &start, &phone, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scan patient: %w", err)
	}
	p.Cohort = prescription.Cohort(cohort)
	p.Arm = prescription.ArmExperimental
	if arm.Valid && arm.String == string(prescription.ArmControl) {
		p.Arm = prescription.ArmControl
	}
	p.EnrollmentStart = nullTime(start)
	p.ContactPhoneEnc = phone.String
	return &p, nil
}

func (s *Store) GetPatient(ctx context.Context, id string) (*Patient, error) {
	b := s.builder()
	t := b.Table(schema.PatientsTableName)
	q, args := b.Select(patientColumns...).
		From(t).
		Where(entsql.EQ(schema.PatientColumnID, id)).
		Query()

	rows, err := s.query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get patient: %w", err)
		}
		return nil, fmt.Errorf("patient %s: %w", id, ErrNotFound)
	}
	return scanPatient(rows)
}

func (s *Store) ListPatients(ctx context.Context) ([]*Patient, error) {
	b := s.builder()
	q, args := b.Select(patientColumns...).
		From(b.Table(schema.PatientsTableName)).
		OrderBy(schema.PatientColumnID).
		Query()

	rows, err := s.query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	var out []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) CreatePatient(ctx context.Context, p *Patient) error {
	now := s.now().UTC()

	var start any
	if p.EnrollmentStart != nil {
		start = p.EnrollmentStart.Format(clock.DateLayout)
	}
	var phone any
	if p.ContactPhoneEnc != "" {
		phone = p.ContactPhoneEnc
	}

	q, args := s.builder().Insert(schema.PatientsTableName).
		Columns(patientColumns...).
		Values(p.ID, p.PINHash, string(p.Cohort), string(p.Arm), start, phone, now, now).
		Query()

	if _, err := s.exec(ctx, q, args); err != nil {
		return fmt.Errorf("create patient %s: %w", p.ID, err)
	}
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

// SetEnrollmentStart records the first day of week 1. An existing start date
// is never overwritten; the returned bool reports whether a row changed.
func (s *Store) SetEnrollmentStart(ctx context.Context, id string, date time.Time) (bool, error) {
	q, args := s.builder().Update(schema.PatientsTableName).
		Set(schema.PatientColumnEnrollmentStart, date.Format(clock.DateLayout)).
		Set(schema.ColumnUpdatedAt, s.now().UTC()).
		Where(entsql.And(
			entsql.EQ(schema.PatientColumnID, id),
			entsql.IsNull(schema.PatientColumnEnrollmentStart),
		)).
		Query()

	n, err := s.exec(ctx, q, args)
	if err != nil {
		return false, fmt.Errorf("set enrollment start: %w", err)
	}
	return n > 0, nil
}

func (s *Store) SetPIN(ctx context.Context, id, pinHash string) error {
	q, args := s.builder().Update(schema.PatientsTableName).
		Set(schema.PatientColumnPINHash, pinHash).
		Set(schema.ColumnUpdatedAt, s.now().UTC()).
		Where(entsql.EQ(schema.PatientColumnID, id)).
		Query()

	n, err := s.exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("patient %s: %w", id, ErrNotFound)
	}
	return nil
}
