package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/udelar-dtx/dtx_backend/internal/domain/clock"
	"github.com/udelar-dtx/dtx_backend/internal/domain/prescription"
	"github.com/udelar-dtx/dtx_backend/internal/domain/triage"
	"github.com/udelar-dtx/dtx_backend/internal/schema"
)

// Triage is the morning-report part of a daily record.
type Triage struct {
	Status    string
	Alert     triage.AlertLevel
	Sleep     triage.SleepMetrics
	Latency   int
	Awake     int
	Fatigue   int
	Stress    int
	MaxPain   int
	PainZones string
}

// Session is the supervised-session part of a daily record.
type Session struct {
	Status string
	Visit  prescription.Visit
}

type DailyRecord struct {
	ID        int
	PatientID string
	Date      time.Time
	Triage    Triage
	// Session is nil until a session outcome was saved for the day.
	Session   *Session
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RosterRow is a patient with the record of the requested day, if any.
type RosterRow struct {
	Patient Patient
	Record  *DailyRecord
}

// HistoryPoint is one day of a patient's longitudinal series.
type HistoryPoint struct {
	Date       time.Time
	Fatigue    int
	MaxPain    int
	Efficiency float64
	Load1      float64
	SessionRPE int
}

type Records interface {
	UpsertTriage(ctx context.Context, patientID string, date time.Time, t Triage) (int, error)
	GetRecord(ctx context.Context, patientID string, date time.Time) (*DailyRecord, error)
	ListRecordsByDate(ctx context.Context, date time.Time) ([]*DailyRecord, error)
	Roster(ctx context.Context, date time.Time) ([]RosterRow, error)
	History(ctx context.Context, patientID string) ([]HistoryPoint, error)
	UpdateSession(ctx context.Context, patientID string, date time.Time, sess Session) error
	ListAllRecords(ctx context.Context) ([]*DailyRecord, error)
}

func recordColumns() []string {
	cols := []string{schema.RecordColumnID, schema.RecordColumnPatientID, schema.RecordColumnReportDate}
	cols = append(cols, schema.TriageColumns...)
	cols = append(cols, schema.SessionColumns...)
	return append(cols, schema.ColumnCreatedAt, schema.ColumnUpdatedAt)
}

// nullable scan targets for one record row, in recordColumns order.
type recordScan struct {
	id         sql.NullInt64
	patientID  sql.NullString
	date       sql.NullTime
	status     sql.NullString
	alert      sql.NullString
	efficiency sql.NullFloat64
	inBed      sql.NullInt64
	asleep     sql.NullInt64
	latency    sql.NullInt64
	awake      sql.NullInt64
	fatigue    sql.NullInt64
	stress     sql.NullInt64
	maxPain    sql.NullInt64
	zones      sql.NullString

	sessStatus sql.NullString
	exercises  [prescription.ExercisesPerSession]sql.NullString
	loads      [prescription.ExercisesPerSession]sql.NullFloat64
	rpe        sql.NullInt64
	vagal      sql.NullBool

	createdAt sql.NullTime
	updatedAt sql.NullTime
}

func (r *recordScan) dest() []any {
	d := []any{
		&r.id, &r.patientID, &r.date,
		&r.status, &r.alert, &r.efficiency, &r.inBed, &r.asleep,
		&r.latency, &r.awake, &r.fatigue, &r.stress, &r.maxPain, &r.zones,
		&r.sessStatus,
	}
	for i := range r.exercises {
		d = append(d, &r.exercises[i], &r.loads[i])
	}
	return append(d, &r.rpe, &r.vagal, &r.createdAt, &r.updatedAt)
}

func (r *recordScan) record() (*DailyRecord, error) {
	alert, err := triage.ParseAlert(r.alert.String)
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", r.id.Int64, err)
	}

	rec := &DailyRecord{
		ID:        int(r.id.Int64),
		PatientID: r.patientID.String,
		Date:      r.date.Time,
		Triage: Triage{
			Status: r.status.String,
			Alert:  alert,
			Sleep: triage.SleepMetrics{
				TimeInBedMinutes:  int(r.inBed.Int64),
				TimeAsleepMinutes: int(r.asleep.Int64),
				EfficiencyPct:     r.efficiency.Float64,
			},
			Latency:   int(r.latency.Int64),
			Awake:     int(r.awake.Int64),
			Fatigue:   int(r.fatigue.Int64),
			Stress:    int(r.stress.Int64),
			MaxPain:   int(r.maxPain.Int64),
			PainZones: r.zones.String,
		},
		CreatedAt: r.createdAt.Time,
		UpdatedAt: r.updatedAt.Time,
	}

	if r.sessStatus.Valid {
		sess := &Session{Status: r.sessStatus.String}
		for i := range r.exercises {
			sess.Visit.Exercises[i] = r.exercises[i].String
			sess.Visit.Loads[i] = r.loads[i].Float64
		}
		sess.Visit.RPE = int(r.rpe.Int64)
		sess.Visit.Vagal = r.vagal.Bool
		rec.Session = sess
	}
	return rec, nil
}

func scanRecords(rows *entsql.Rows) ([]*DailyRecord, error) {
	var out []*DailyRecord
	for rows.Next() {
		var rs recordScan
		if err := rows.Scan(rs.dest()...); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec, err := rs.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func triageValues(t Triage) []any {
	var alert any
	if t.Alert.Valid() {
		alert = t.Alert.String()
	}
	return []any{
		t.Status,
		alert,
		t.Sleep.EfficiencyPct,
		t.Sleep.TimeInBedMinutes,
		t.Sleep.TimeAsleepMinutes,
		t.Latency,
		t.Awake,
		t.Fatigue,
		t.Stress,
		t.MaxPain,
		t.PainZones,
	}
}

// UpsertTriage writes the morning report for (patient, date). A second report
// on the same day replaces the triage columns and leaves any saved session
// untouched.
func (s *Store) UpsertTriage(ctx context.Context, patientID string, date time.Time, t Triage) (int, error) {
	now := s.now().UTC()

	cols := append([]string{schema.RecordColumnPatientID, schema.RecordColumnReportDate}, schema.TriageColumns...)
	cols = append(cols, schema.ColumnCreatedAt, schema.ColumnUpdatedAt)

	vals := append([]any{patientID, date.Format(clock.DateLayout)}, triageValues(t)...)
	vals = append(vals, now, now)

	q, args := s.builder().Insert(schema.DailyRecordsTableName).
		Columns(cols...).
		Values(vals...).
		OnConflict(
			entsql.ConflictColumns(schema.RecordColumnPatientID, schema.RecordColumnReportDate),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				for _, c := range schema.TriageColumns {
					u.SetExcluded(c)
				}
				u.SetExcluded(schema.ColumnUpdatedAt)
			}),
		).
		Returning(schema.RecordColumnID).
		Query()

	rows, err := s.query(ctx, q, args)
	if err != nil {
		return 0, fmt.Errorf("upsert triage: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("upsert triage: %w", err)
		}
		return 0, fmt.Errorf("upsert triage: no id returned")
	}
	var id int
	if err := rows.Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert triage: %w", err)
	}
	return id, nil
}

func (s *Store) GetRecord(ctx context.Context, patientID string, date time.Time) (*DailyRecord, error) {
	b := s.builder()
	q, args := b.Select(recordColumns()...).
		From(b.Table(schema.DailyRecordsTableName)).
		Where(entsql.And(
			entsql.EQ(schema.RecordColumnPatientID, patientID),
			entsql.EQ(schema.RecordColumnReportDate, date.Format(clock.DateLayout)),
		)).
		Query()

	rows, err := s.query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	defer rows.Close()

	recs, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("record %s/%s: %w", patientID, date.Format(clock.DateLayout), ErrNotFound)
	}
	return recs[0], nil
}

func (s *Store) ListRecordsByDate(ctx context.Context, date time.Time) ([]*DailyRecord, error) {
	b := s.builder()
	q, args := b.Select(recordColumns()...).
		From(b.Table(schema.DailyRecordsTableName)).
		Where(entsql.EQ(schema.RecordColumnReportDate, date.Format(clock.DateLayout))).
		OrderBy(schema.RecordColumnPatientID).
		Query()

	rows, err := s.query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Store) ListAllRecords(ctx context.Context) ([]*DailyRecord, error) {
	b := s.builder()
	q, args := b.Select(recordColumns()...).
		From(b.Table(schema.DailyRecordsTableName)).
		OrderBy(schema.RecordColumnReportDate, schema.RecordColumnPatientID).
		Query()

	rows, err := s.query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("list all records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Roster returns every patient left-joined to the record of date. Patients
// without a report get a nil Record.
func (s *Store) Roster(ctx context.Context, date time.Time) ([]RosterRow, error) {
	b := s.builder()
	p := b.Table(schema.PatientsTableName).As("p")
	r := b.Table(schema.DailyRecordsTableName).As("r")

	var cols []string
	for _, c := range patientColumns {
		cols = append(cols, p.C(c))
	}
	for _, c := range recordColumns() {
		cols = append(cols, r.C(c))
	}

	q, args := b.Select(cols...).
		From(p).
		LeftJoin(r).
		OnP(entsql.And(
			entsql.ColumnsEQ(p.C(schema.PatientColumnID), r.C(schema.RecordColumnPatientID)),
			entsql.EQ(r.C(schema.RecordColumnReportDate), date.Format(clock.DateLayout)),
		)).
		OrderBy(p.C(schema.PatientColumnID)).
		Query()

	rows, err := s.query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("roster: %w", err)
	}
	defer rows.Close()

	var out []RosterRow
	for rows.Next() {
		var (
			pt     Patient
			cohort string
			arm    sql.NullString
			start  sql.NullTime
			phone  sql.NullString
			rs     recordScan
		)
		dest := append([]any{&pt.ID, &pt.PINHash, &cohort, &arm, &start, &phone, &pt.CreatedAt, &pt.UpdatedAt}, rs.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan roster: %w", err)
		}
		pt.Cohort = prescription.Cohort(cohort)
		pt.Arm = prescription.ArmExperimental
		if arm.String == string(prescription.ArmControl) {
			pt.Arm = prescription.ArmControl
		}
		pt.EnrollmentStart = nullTime(start)
		pt.ContactPhoneEnc = phone.String

		row := RosterRow{Patient: pt}
		if rs.id.Valid {
			rec, err := rs.record()
			if err != nil {
				return nil, err
			}
			row.Record = rec
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// History returns the patient's series ordered by date. Missing values read
// as zero.
func (s *Store) History(ctx context.Context, patientID string) ([]HistoryPoint, error) {
	b := s.builder()
	q, args := b.Select(
		schema.RecordColumnReportDate,
		schema.RecordColumnFatigue,
		schema.RecordColumnMaxPain,
		schema.RecordColumnEfficiency,
		schema.RecordColumnLoad1,
		schema.RecordColumnSessionRPE,
	).
		From(b.Table(schema.DailyRecordsTableName)).
		Where(entsql.EQ(schema.RecordColumnPatientID, patientID)).
		OrderBy(schema.RecordColumnReportDate).
		Query()

	rows, err := s.query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	var out []HistoryPoint
	for rows.Next() {
		var (
			date             time.Time
			fatigue, pain    sql.NullInt64
			efficiency, load sql.NullFloat64
			rpe              sql.NullInt64
		)
		if err := rows.Scan(&date, &fatigue, &pain, &efficiency, &load, &rpe); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, HistoryPoint{
			Date:       date,
			Fatigue:    int(fatigue.Int64),
			MaxPain:    int(pain.Int64),
			Efficiency: efficiency.Float64,
			Load1:      load.Float64,
			SessionRPE: int(rpe.Int64),
		})
	}
	return out, rows.Err()
}

// UpdateSession saves the session outcome onto an existing daily record.
func (s *Store) UpdateSession(ctx context.Context, patientID string, date time.Time, sess Session) error {
	u := s.builder().Update(schema.DailyRecordsTableName).
		Set(schema.RecordColumnSessionStatus, sess.Status)

	exCols := []string{schema.RecordColumnExercise1, schema.RecordColumnExercise2, schema.RecordColumnExercise3, schema.RecordColumnExercise4}
	loadCols := []string{schema.RecordColumnLoad1, schema.RecordColumnLoad2, schema.RecordColumnLoad3, schema.RecordColumnLoad4}
	for i := range exCols {
		u.Set(exCols[i], sess.Visit.Exercises[i])
		u.Set(loadCols[i], sess.Visit.Loads[i])
	}

	q, args := u.
		Set(schema.RecordColumnSessionRPE, sess.Visit.RPE).
		Set(schema.RecordColumnVagal, sess.Visit.Vagal).
		Set(schema.ColumnUpdatedAt, s.now().UTC()).
		Where(entsql.And(
			entsql.EQ(schema.RecordColumnPatientID, patientID),
			entsql.EQ(schema.RecordColumnReportDate, date.Format(clock.DateLayout)),
		)).
		Query()

	n, err := s.exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("record %s/%s: %w", patientID, date.Format(clock.DateLayout), ErrNotFound)
	}
	return nil
}

var (
	_ Patients = (*Store)(nil)
	_ Records  = (*Store)(nil)
)
