package reqctx

import (
	"context"

	"github.com/google/uuid"
)

// AuthClaims is the view of a verified token that request-scoped code needs.
type AuthClaims interface {
	// GetSubject returns the patient id or staff id.
	GetSubject() string

	// GetRole returns "patient" or "staff".
	GetRole() string

	// GetSessionID returns the server-side session the token belongs to.
	GetSessionID() uuid.UUID

	// GetTokenType returns "access" or "refresh".
	GetTokenType() string

	IsExpired() bool
}

// WithClaims is called by the auth middleware once the token verified.
func WithClaims(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, keyClaims, claims)
}

// ClaimsFromContext returns nil for unauthenticated requests.
func ClaimsFromContext(ctx context.Context) AuthClaims {
	claims, _ := ctx.Value(keyClaims).(AuthClaims)
	return claims
}
