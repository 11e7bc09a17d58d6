package pasetotoken

import (
	"time"

	"github.com/google/uuid"

	"github.com/udelar-dtx/dtx_backend/internal/domain/principal"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the app-facing token payload.
type Claims struct {
	Type TokenType

	Principal principal.Claims
	SessionID uuid.UUID

	Issuer   string
	Audience string

	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time
	TokenID   string // jti
}

// AuthenticatedContext restores the caller identity carried by the token.
func (c *Claims) AuthenticatedContext() (principal.AuthenticatedContext, error) {
	return principal.FromClaims(c.Principal)
}

// GetSubject implements reqctx.AuthClaims.
func (c *Claims) GetSubject() string {
	return c.Principal.Subject
}

// GetRole implements reqctx.AuthClaims.
func (c *Claims) GetRole() string {
	return c.Principal.Role
}

// GetSessionID implements reqctx.AuthClaims.
func (c *Claims) GetSessionID() uuid.UUID {
	return c.SessionID
}

// GetTokenType implements reqctx.AuthClaims.
func (c *Claims) GetTokenType() string {
	return string(c.Type)
}

// IsExpired implements reqctx.AuthClaims.
func (c *Claims) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}
