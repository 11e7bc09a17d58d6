// Package principal holds the identity of an authenticated caller.
//
// An AuthenticatedContext is built once at login, carried in the session and
// the access token, and passed explicitly to every service call. It has no
// setters.
package principal

import (
	"errors"
	"fmt"

	"github.com/udelar-dtx/dtx_backend/internal/domain/prescription"
)

var ErrInvalidPrincipal = errors.New("invalid principal")

type Role string

const (
	RolePatient Role = "patient"
	RoleStaff   Role = "staff"
)

type AuthenticatedContext struct {
	role      Role
	subject   string
	patientID string
	cohort    prescription.Cohort
	arm       prescription.TrialArm
}

// ForPatient builds the context of a logged-in patient.
func ForPatient(patientID string, cohort prescription.Cohort, arm prescription.TrialArm) AuthenticatedContext {
	return AuthenticatedContext{
		role:      RolePatient,
		subject:   patientID,
		patientID: patientID,
		cohort:    cohort,
		arm:       arm,
	}
}

// ForStaff builds the context of a clinical team member.
func ForStaff(staffID string) AuthenticatedContext {
	return AuthenticatedContext{role: RoleStaff, subject: staffID}
}

func (a AuthenticatedContext) Role() Role { return a.role }
func (a AuthenticatedContext) Subject() string { return a.subject }
func (a AuthenticatedContext) PatientID() string { return a.patientID }
func (a AuthenticatedContext) Cohort() prescription.Cohort { return a.cohort }
func (a AuthenticatedContext) Arm() prescription.TrialArm { return a.arm }
func (a AuthenticatedContext) IsStaff() bool { return a.role == RoleStaff }
func (a AuthenticatedContext) IsPatient() bool { return a.role == RolePatient }
func (a AuthenticatedContext) IsZero() bool { return a.role == "" }

// Claims is the serialised form stored in sessions and token claims.
type Claims struct {
	Role      string `json:"role"`
	Subject   string `json:"sub"`
	PatientID string `json:"pid,omitempty"`
	Cohort    string `json:"cohort,omitempty"`
	Arm       string `json:"arm,omitempty"`
}

func (a AuthenticatedContext) Claims() Claims {
	return Claims{
		Role:      string(a.role),
		Subject:   a.subject,
		PatientID: a.patientID,
		Cohort:    string(a.cohort),
		Arm:       string(a.arm),
	}
}

// FromClaims restores a context. Unknown roles and incomplete patient claims
// are rejected.
func FromClaims(c Claims) (AuthenticatedContext, error) {
	switch Role(c.Role) {
	case RoleStaff:
		if c.Subject == "" {
			return AuthenticatedContext{}, fmt.Errorf("%w: staff without subject", ErrInvalidPrincipal)
		}
		return ForStaff(c.Subject), nil

	case RolePatient:
		if c.PatientID == "" {
			return AuthenticatedContext{}, fmt.Errorf("%w: patient without id", ErrInvalidPrincipal)
		}
		cohort, err := prescription.ParseCohort(c.Cohort)
		if err != nil {
			return AuthenticatedContext{}, fmt.Errorf("%w: %v", ErrInvalidPrincipal, err)
		}
		arm, err := prescription.ParseArm(c.Arm)
		if err != nil {
			return AuthenticatedContext{}, fmt.Errorf("%w: %v", ErrInvalidPrincipal, err)
		}
		return ForPatient(c.PatientID, cohort, arm), nil
	}
	return AuthenticatedContext{}, fmt.Errorf("%w: role %q", ErrInvalidPrincipal, c.Role)
}
