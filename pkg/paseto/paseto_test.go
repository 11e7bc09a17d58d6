package pasetotoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udelar-dtx/dtx_backend/internal/domain/prescription"
	"github.com/udelar-dtx/dtx_backend/internal/domain/principal"
)

func newTestManager(t *testing.T, keys Keys) *Manager {
	t.Helper()
	m, err := New(Config{Mode: keys.Mode, Issuer: "dtx", Audience: "dtx"}, keys)
	require.NoError(t, err)
	return m
}

func TestIssueAndVerifyPatient(t *testing.T) {
	for _, keys := range []Keys{NewLocalKeys(), NewPublicKeys()} {
		t.Run(string(keys.Mode), func(t *testing.T) {
			m := newTestManager(t, keys)
			sid := uuid.New()
			p := principal.ForPatient("P-014", prescription.CohortBreast, prescription.ArmExperimental)

			tok, err := m.IssueAccess(p, sid)
			require.NoError(t, err)

			claims, err := m.Verify(tok)
			require.NoError(t, err)
			assert.Equal(t, TokenTypeAccess, claims.Type)
			assert.Equal(t, sid, claims.SessionID)
			assert.Equal(t, "P-014", claims.GetSubject())
			assert.Equal(t, "patient", claims.GetRole())

			restored, err := claims.AuthenticatedContext()
			require.NoError(t, err)
			assert.Equal(t, p, restored)
		})
	}
}

func TestIssueRefreshStaff(t *testing.T) {
	m := newTestManager(t, NewLocalKeys())

	tok, err := m.IssueRefresh(principal.ForStaff("coordinator"), uuid.New())
	require.NoError(t, err)

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.Type)

	restored, err := claims.AuthenticatedContext()
	require.NoError(t, err)
	assert.True(t, restored.IsStaff())
	assert.Empty(t, restored.PatientID())
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := newTestManager(t, NewLocalKeys())
	issuedAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issuedAt }

	tok, err := m.IssueAccess(principal.ForStaff("coordinator"), uuid.New())
	require.NoError(t, err)

	m.now = func() time.Time { return issuedAt.Add(m.AccessTTL() + time.Second) }
	_, err = m.Verify(tok)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsOtherKey(t *testing.T) {
	issuer := newTestManager(t, NewLocalKeys())
	verifier := newTestManager(t, NewLocalKeys())

	tok, err := issuer.IssueAccess(principal.ForStaff("coordinator"), uuid.New())
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueRequiresPrincipal(t *testing.T) {
	m := newTestManager(t, NewLocalKeys())
	_, err := m.IssueAccess(principal.AuthenticatedContext{}, uuid.New())

	assert.ErrorIs(t, err, ErrConfig)
}

func TestNewValidatesConfig(t *testing.T) {
	keys := NewLocalKeys()
	tests := []struct {
		name string
		cfg  Config
	}{
		{"mode mismatch", Config{Mode: ModePublic, Issuer: "dtx", Audience: "dtx"}},
		{"missing issuer", Config{Mode: ModeLocal, Audience: "dtx"}},
		{"missing audience", Config{Mode: ModeLocal, Issuer: "dtx"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, keys)
			assert.Error(t, err)
		})
	}
}

func TestKeysHexRoundTrip(t *testing.T) {
	for _, keys := range []Keys{NewLocalKeys(), NewPublicKeys()} {
		loaded, err := LoadKeys(keys.Hex())
		require.NoError(t, err)
		assert.Equal(t, keys.Hex(), loaded.Hex())
	}
}

func TestLoadKeysRejects(t *testing.T) {
	tests := []struct {
		name string
		in   KeyStrings
	}{
		{"unknown mode", KeyStrings{Mode: "jwt"}},
		{"local without key", KeyStrings{Mode: ModeLocal}},
		{"local bad hex", KeyStrings{Mode: ModeLocal, SymmetricHex: "zz"}},
		{"public without keys", KeyStrings{Mode: ModePublic}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadKeys(tt.in)
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestVerifyOnlyKeysCannotIssue(t *testing.T) {
	full := NewPublicKeys()
	verifyOnly, err := LoadKeys(KeyStrings{Mode: ModePublic, PublicHex: full.Hex().PublicHex})
	require.NoError(t, err)

	issuer := newTestManager(t, full)
	verifier := newTestManager(t, verifyOnly)

	tok, err := issuer.IssueAccess(principal.ForStaff("coordinator"), uuid.New())
	require.NoError(t, err)
	_, err = verifier.Verify(tok)
	require.NoError(t, err)

	_, err = verifier.IssueAccess(principal.ForStaff("coordinator"), uuid.New())
	assert.ErrorIs(t, err, ErrConfig)
}
