package authorize

import (
	"context"
	"errors"

	"github.com/udelar-dtx/dtx_backend/internal/domain/principal"
	"github.com/udelar-dtx/dtx_backend/pkg/reqctx"
)

var (
	ErrNoSubjectInContext = errors.New("no subject found in context")
)

// SubjectOf is the Casbin subject of an authenticated caller.
func SubjectOf(p principal.AuthenticatedContext) GroupSubject {
	return GroupSubject(string(p.Role()) + ":" + p.Subject())
}

// RoleOf maps a principal role onto its Casbin role.
func RoleOf(p principal.AuthenticatedContext) (Role, bool) {
	switch p.Role() {
	case principal.RolePatient:
		return RoleTrialPatient, true
	case principal.RoleStaff:
		return RoleTrialStaff, true
	}
	return "", false
}

// SubjectFromContext extracts the GroupSubject from the request claims.
func SubjectFromContext(ctx context.Context) (GroupSubject, error) {
	claims := reqctx.ClaimsFromContext(ctx)
	if claims == nil {
		return "", ErrNoSubjectInContext
	}
	if claims.GetRole() == "" || claims.GetSubject() == "" {
		return "", ErrNoSubjectInContext
	}
	return GroupSubject(claims.GetRole() + ":" + claims.GetSubject()), nil
}

// MustSubjectFromContext extracts the GroupSubject from context or panics.
// Use only behind the auth middleware.
func MustSubjectFromContext(ctx context.Context) GroupSubject {
	subject, err := SubjectFromContext(ctx)
	if err != nil {
		panic(err)
	}
	return subject
}
