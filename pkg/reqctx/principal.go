package reqctx

import (
	"context"

	"github.com/udelar-dtx/dtx_backend/internal/domain/principal"
)

// WithPrincipal stores the caller identity restored from the token.
func WithPrincipal(ctx context.Context, p principal.AuthenticatedContext) context.Context {
	return context.WithValue(ctx, keyPrincipal, p)
}

// PrincipalFromContext returns the caller identity. Handlers pass it on to
// services explicitly.
func PrincipalFromContext(ctx context.Context) (principal.AuthenticatedContext, bool) {
	p, ok := ctx.Value(keyPrincipal).(principal.AuthenticatedContext)
	if !ok || p.IsZero() {
		return principal.AuthenticatedContext{}, false
	}
	return p, true
}
