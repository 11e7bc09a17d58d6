package patient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"

	"github.com/udelar-dtx/dtx_backend/internal/domain/clock"
	"github.com/udelar-dtx/dtx_backend/internal/domain/prescription"
	"github.com/udelar-dtx/dtx_backend/internal/store"
	"github.com/udelar-dtx/dtx_backend/pkg/crypto"
	"github.com/udelar-dtx/dtx_backend/pkg/util/codes"
	"github.com/udelar-dtx/dtx_backend/pkg/util/password"
)

const DefaultPhoneRegion = "UY"

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreatePatientRequest struct {
	ID     string
	Cohort string
	Arm    string // empty means EXPERIMENTAL
	PIN    string // empty generates one
	Phone  string // optional
}

// CreatedPatient carries the PIN in clear exactly once, so it can be handed
// to the participant.
type CreatedPatient struct {
	Patient *View
	PIN     string
}

// View is a patient as shown to staff.
type View struct {
	ID              string                `json:"id"`
	Cohort          prescription.Cohort   `json:"cohort"`
	Arm             prescription.TrialArm `json:"arm"`
	EnrollmentStart *time.Time            `json:"enrollment_start,omitempty"`
	ContactPhone    string                `json:"contact_phone,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

// Phase is the enrollment state of a patient on a given day.
type Phase string

const (
	PhaseNotEnrolled    Phase = "NOT_ENROLLED"
	PhaseStartsInFuture Phase = "STARTS_IN_FUTURE"
	PhaseActive         Phase = "ACTIVE"
)

type Enrollment struct {
	Start     *time.Time `json:"start,omitempty"`
	DaysSince int        `json:"days_since"`
	Week      int        `json:"week,omitempty"`
	Phase     Phase      `json:"phase"`
}

// Label is the display form used by the clinical team.
func (e Enrollment) Label() string {
	switch e.Phase {
	case PhaseActive:
		return fmt.Sprintf("Semana %d", e.Week)
	case PhaseStartsInFuture:
		return "Inicia en el futuro"
	}
	return "Paciente NO ENROLADO"
}

// EnrollmentOn computes the enrollment state on today. A missing start date
// counts as -1 days, which the selector treats as not enrolled.
func EnrollmentOn(start *time.Time, today time.Time) Enrollment {
	if start == nil {
		return Enrollment{DaysSince: -1, Phase: PhaseNotEnrolled}
	}
	days := clock.DaysBetween(*start, today)
	e := Enrollment{Start: start, DaysSince: days, Phase: PhaseStartsInFuture}
	if days >= 0 {
		e.Phase = PhaseActive
		e.Week = days/7 + 1
	}
	return e
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreatePatientRequest) (*CreatedPatient, error)
	Get(ctx context.Context, id string) (*View, error)
	List(ctx context.Context) ([]*View, error)
	// Enroll sets today as the first day of week 1. An existing start date is
	// kept.
	Enroll(ctx context.Context, id string) (*Enrollment, error)
	Enrollment(ctx context.Context, id string) (*Enrollment, error)
	History(ctx context.Context, id string) ([]store.HistoryPoint, error)
	// ResetPIN replaces the PIN. An empty pin generates one, which is returned.
	ResetPIN(ctx context.Context, id, pin string) (string, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type patientService struct {
	patients store.Patients
	records  store.Records
	clock    clock.Clock
	hasher   *password.Hasher
	cipher   *crypto.FieldCipher
	pinLen   int
	region   string
}

// New builds the service. cipher may be nil; contact phones are then
// rejected.
func New(
	patients store.Patients,
	records store.Records,
	clk clock.Clock,
	hasher *password.Hasher,
	cipher *crypto.FieldCipher,
	codeCfg codes.Config,
	phoneRegion string,
) Service {
	if phoneRegion == "" {
		phoneRegion = DefaultPhoneRegion
	}
	pinLen := codeCfg.PINLength
	if pinLen == 0 {
		pinLen = codes.DefaultConfig().PINLength
	}
	return &patientService{
		patients: patients,
		records:  records,
		clock:    clk,
		hasher:   hasher,
		cipher:   cipher,
		pinLen:   pinLen,
		region:   strings.ToUpper(phoneRegion),
	}
}

// ---------------------------------------------------------------------------
// Patient CRUD
// ---------------------------------------------------------------------------

func (s *patientService) Create(ctx context.Context, req CreatePatientRequest) (*CreatedPatient, error) {
	id, err := codes.NormalizePatientID(req.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatient, err)
	}
	cohort, err := prescription.ParseCohort(req.Cohort)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatient, err)
	}
	arm, err := prescription.ParseArm(req.Arm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatient, err)
	}

	pin, err := s.pinOrGenerate(req.PIN)
	if err != nil {
		return nil, err
	}

	var phone, phoneEnc string
	if strings.TrimSpace(req.Phone) != "" {
		if phone, err = s.normalizePhone(req.Phone); err != nil {
			return nil, err
		}
		if s.cipher == nil {
			return nil, ErrPhoneStorageUnavailable
		}
		if phoneEnc, err = s.cipher.Encrypt(phone); err != nil {
			return nil, fmt.Errorf("encrypt contact phone: %w", err)
		}
	}

	pinHash, err := s.hasher.Hash(pin)
	if err != nil {
		return nil, fmt.Errorf("hash pin: %w", err)
	}

	p := &store.Patient{
		ID:              id,
		PINHash:         pinHash,
		Cohort:          cohort,
		Arm:             arm,
		ContactPhoneEnc: phoneEnc,
	}
	if err := s.patients.CreatePatient(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrPatientAlreadyExists
		}
		return nil, fmt.Errorf("create patient: %w", err)
	}

	slog.Info("patient registered", "patient_id", id, "cohort", cohort, "arm", arm)

	v := s.view(p)
	v.ContactPhone = phone
	return &CreatedPatient{Patient: v, PIN: pin}, nil
}

func (s *patientService) Get(ctx context.Context, id string) (*View, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(p), nil
}

func (s *patientService) List(ctx context.Context) ([]*View, error) {
	ps, err := s.patients.ListPatients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	out := make([]*View, 0, len(ps))
	for _, p := range ps {
		out = append(out, s.view(p))
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Enrollment
// ---------------------------------------------------------------------------

func (s *patientService) Enroll(ctx context.Context, id string) (*Enrollment, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	today := clock.Today(s.clock)
	if p.EnrollmentStart == nil {
		changed, err := s.patients.SetEnrollmentStart(ctx, p.ID, today)
		if err != nil {
			return nil, fmt.Errorf("enroll: %w", err)
		}
		if changed {
			slog.Info("patient enrolled", "patient_id", p.ID, "start", today.Format(clock.DateLayout))
		}
		// Re-read: a concurrent enroll may have won.
		if p, err = s.load(ctx, p.ID); err != nil {
			return nil, err
		}
	}

	e := EnrollmentOn(p.EnrollmentStart, today)
	return &e, nil
}

func (s *patientService) Enrollment(ctx context.Context, id string) (*Enrollment, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	e := EnrollmentOn(p.EnrollmentStart, clock.Today(s.clock))
	return &e, nil
}

func (s *patientService) History(ctx context.Context, id string) ([]store.HistoryPoint, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	pts, err := s.records.History(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	if len(pts) <= 1 {
		return nil, ErrInsufficientHistory
	}
	return pts, nil
}

func (s *patientService) ResetPIN(ctx context.Context, id, pin string) (string, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	pin, err = s.pinOrGenerate(pin)
	if err != nil {
		return "", err
	}
	hash, err := s.hasher.Hash(pin)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}
	if err := s.patients.SetPIN(ctx, p.ID, hash); err != nil {
		return "", fmt.Errorf("reset pin: %w", err)
	}
	return pin, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *patientService) load(ctx context.Context, id string) (*store.Patient, error) {
	norm, err := codes.NormalizePatientID(id)
	if err != nil {
		return nil, ErrPatientNotFound
	}
	p, err := s.patients.GetPatient(ctx, norm)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

func (s *patientService) pinOrGenerate(pin string) (string, error) {
	pin = strings.TrimSpace(pin)
	if pin == "" {
		generated, err := codes.GeneratePIN(s.pinLen)
		if err != nil {
			return "", fmt.Errorf("generate pin: %w", err)
		}
		return generated, nil
	}
	if err := codes.ValidatePIN(pin); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPatient, err)
	}
	return pin, nil
}

func (s *patientService) normalizePhone(raw string) (string, error) {
	num, err := phonenumbers.Parse(strings.TrimSpace(raw), s.region)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPhone, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func (s *patientService) view(p *store.Patient) *View {
	v := &View{
		ID:              p.ID,
		Cohort:          p.Cohort,
		Arm:             p.Arm,
		EnrollmentStart: p.EnrollmentStart,
		CreatedAt:       p.CreatedAt,
	}
	if p.ContactPhoneEnc != "" {
		phone, err := s.cipher.Decrypt(p.ContactPhoneEnc)
		if err != nil {
			slog.Warn("patient: cannot decrypt contact phone", "patient_id", p.ID, "error", err)
		} else {
			v.ContactPhone = phone
		}
	}
	return v
}
