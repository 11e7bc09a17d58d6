package middleware

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udelar-dtx/dtx_backend/internal/domain/principal"
)

func TestSessionCacheExpires(t *testing.T) {
	c, err := NewSessionCache(4, time.Minute)
	require.NoError(t, err)

	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	id := uuid.New()
	staff := principal.ForStaff("clinical-team")
	c.add(id, staff)

	got, ok := c.get(id)
	require.True(t, ok)
	assert.Equal(t, staff, got)

	now = now.Add(61 * time.Second)
	_, ok = c.get(id)
	assert.False(t, ok)
}

func TestSessionCacheForget(t *testing.T) {
	c, err := NewSessionCache(4, time.Minute)
	require.NoError(t, err)

	id := uuid.New()
	c.add(id, principal.ForStaff("clinical-team"))
	c.Forget(id)

	_, ok := c.get(id)
	assert.False(t, ok)
}

func TestSessionCacheDisabled(t *testing.T) {
	c, err := NewSessionCache(0, time.Minute)
	require.NoError(t, err)
	require.Nil(t, c)

	id := uuid.New()
	c.add(id, principal.ForStaff("clinical-team"))
	c.Forget(id)
	_, ok := c.get(id)
	assert.False(t, ok)
}
