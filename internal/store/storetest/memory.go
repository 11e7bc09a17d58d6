// Package storetest provides an in-memory store for service tests.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/udelar-dtx/dtx_backend/internal/domain/clock"
	"github.com/udelar-dtx/dtx_backend/internal/store"
)

type recordKey struct {
	patientID string
	date      string
}

// Memory implements store.Patients and store.Records. It keeps the same
// conflict and not-found semantics as the SQL store.
type Memory struct {
	mu       sync.Mutex
	patients map[string]*store.Patient
	records  map[recordKey]*store.DailyRecord
	nextID   int

	// Err, when set, is returned by every call.
	Err error
}

func NewMemory() *Memory {
	return &Memory{
		patients: make(map[string]*store.Patient),
		records:  make(map[recordKey]*store.DailyRecord),
	}
}

func key(patientID string, date time.Time) recordKey {
	return recordKey{patientID: patientID, date: date.Format(clock.DateLayout)}
}

func (m *Memory) GetPatient(_ context.Context, id string) (*store.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("patient %s: %w", id, store.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (m *Memory) ListPatients(_ context.Context) ([]*store.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]*store.Patient, 0, len(m.patients))
	for _, p := range m.patients {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) CreatePatient(_ context.Context, p *store.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.patients[p.ID]; ok {
		return fmt.Errorf("create patient %s: %w", p.ID, store.ErrDuplicate)
	}
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *Memory) SetEnrollmentStart(_ context.Context, id string, date time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	p, ok := m.patients[id]
	if !ok || p.EnrollmentStart != nil {
		return false, nil
	}
	d := clock.DateOf(date)
	p.EnrollmentStart = &d
	return true, nil
}

func (m *Memory) SetPIN(_ context.Context, id, pinHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	p, ok := m.patients[id]
	if !ok {
		return fmt.Errorf("patient %s: %w", id, store.ErrNotFound)
	}
	p.PINHash = pinHash
	return nil
}

func (m *Memory) UpsertTriage(_ context.Context, patientID string, date time.Time, t store.Triage) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	k := key(patientID, date)
	if rec, ok := m.records[k]; ok {
		rec.Triage = t
		return rec.ID, nil
	}
	m.nextID++
	m.records[k] = &store.DailyRecord{
		ID:        m.nextID,
		PatientID: patientID,
		Date:      clock.DateOf(date),
		Triage:    t,
	}
	return m.nextID, nil
}

func (m *Memory) GetRecord(_ context.Context, patientID string, date time.Time) (*store.DailyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	rec, ok := m.records[key(patientID, date)]
	if !ok {
		return nil, fmt.Errorf("record %s/%s: %w", patientID, date.Format(clock.DateLayout), store.ErrNotFound)
	}
	return copyRecord(rec), nil
}

func (m *Memory) ListRecordsByDate(_ context.Context, date time.Time) ([]*store.DailyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	want := date.Format(clock.DateLayout)
	var out []*store.DailyRecord
	for k, rec := range m.records {
		if k.date == want {
			out = append(out, copyRecord(rec))
		}
	}
	sortRecords(out)
	return out, nil
}

func (m *Memory) Roster(ctx context.Context, date time.Time) ([]store.RosterRow, error) {
	patients, err := m.ListPatients(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.RosterRow, 0, len(patients))
	for _, p := range patients {
		row := store.RosterRow{Patient: *p}
		if rec, ok := m.records[key(p.ID, date)]; ok {
			row.Record = copyRecord(rec)
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *Memory) History(_ context.Context, patientID string) ([]store.HistoryPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var recs []*store.DailyRecord
	for _, rec := range m.records {
		if rec.PatientID == patientID {
			recs = append(recs, rec)
		}
	}
	sortRecords(recs)

	out := make([]store.HistoryPoint, 0, len(recs))
	for _, rec := range recs {
		pt := store.HistoryPoint{
			Date:       rec.Date,
			Fatigue:    rec.Triage.Fatigue,
			MaxPain:    rec.Triage.MaxPain,
			Efficiency: rec.Triage.Sleep.EfficiencyPct,
		}
		if rec.Session != nil {
			pt.Load1 = rec.Session.Visit.Loads[0]
			pt.SessionRPE = rec.Session.Visit.RPE
		}
		out = append(out, pt)
	}
	return out, nil
}

func (m *Memory) UpdateSession(_ context.Context, patientID string, date time.Time, sess store.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	rec, ok := m.records[key(patientID, date)]
	if !ok {
		return fmt.Errorf("record %s/%s: %w", patientID, date.Format(clock.DateLayout), store.ErrNotFound)
	}
	s := sess
	rec.Session = &s
	return nil
}

func (m *Memory) ListAllRecords(_ context.Context) ([]*store.DailyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]*store.DailyRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, copyRecord(rec))
	}
	sortRecords(out)
	return out, nil
}

func copyRecord(rec *store.DailyRecord) *store.DailyRecord {
	cp := *rec
	if rec.Session != nil {
		s := *rec.Session
		cp.Session = &s
	}
	return &cp
}

func sortRecords(recs []*store.DailyRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].Date.Equal(recs[j].Date) {
			return recs[i].Date.Before(recs[j].Date)
		}
		return recs[i].PatientID < recs[j].PatientID
	})
}

var (
	_ store.Patients = (*Memory)(nil)
	_ store.Records  = (*Memory)(nil)
)
