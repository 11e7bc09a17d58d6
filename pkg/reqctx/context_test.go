package reqctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/udelar-dtx/dtx_backend/internal/domain/principal"
)

func TestRequestID(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))

	ctx := WithRequestMeta(context.Background(), &RequestMeta{RequestID: "req-1"})
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))

	ctx = WithRequestMeta(context.Background(), nil)
	_, ok := RequestMetaFromContext(ctx)
	assert.False(t, ok)
}

func TestPrincipal(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	staff := principal.ForStaff("clinical-team")
	got, ok := PrincipalFromContext(WithPrincipal(context.Background(), staff))
	assert.True(t, ok)
	assert.Equal(t, staff, got)

	assert.Nil(t, ClaimsFromContext(context.Background()))
}
