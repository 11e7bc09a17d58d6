package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/udelar-dtx/dtx_backend/config"
	"github.com/udelar-dtx/dtx_backend/internal/domain/principal"
	"github.com/udelar-dtx/dtx_backend/internal/store"
	"github.com/udelar-dtx/dtx_backend/pkg/authorize"
	pasetotoken "github.com/udelar-dtx/dtx_backend/pkg/paseto"
	"github.com/udelar-dtx/dtx_backend/pkg/util/codes"
	"github.com/udelar-dtx/dtx_backend/pkg/util/password"
)

const (
	defaultMaxAttempts = 5
	defaultLockWindow  = 15 * time.Minute

	// StaffSubject identifies the clinical team, which shares one password.
	StaffSubject = "clinical-team"
)

// redisKeySession returns the Redis key for a session.
func redisKeySession(sessionID string) string { return "session:" + sessionID }

// redisKeyLockout returns the Redis key counting failed logins of an account.
func redisKeyLockout(account string) string { return "lockout:" + account }

// KV is the subset of the Redis client the service uses.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type AuthTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // seconds until access token expires
	SessionID    uuid.UUID
	Principal    principal.AuthenticatedContext
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	LoginPatient(ctx context.Context, patientID, pin string) (*AuthTokens, error)
	LoginStaff(ctx context.Context, secret string) (*AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*AuthTokens, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
	// Session returns the principal stored for a live session.
	Session(ctx context.Context, sessionID uuid.UUID) (principal.AuthenticatedContext, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type authService struct {
	patients  store.Patients
	kv        KV
	paseto    *pasetotoken.Manager
	hasher    *password.Hasher
	authz     authorize.IAuthorization
	staffHash string

	maxAttempts int64
	lockWindow  time.Duration
}

func New(
	patients store.Patients,
	kv KV,
	paseto *pasetotoken.Manager,
	hasher *password.Hasher,
	authz authorize.IAuthorization,
	cfg *config.Config,
) (Service, error) {
	if patients == nil || kv == nil || paseto == nil || hasher == nil || authz == nil {
		return nil, errors.New("auth service: missing dependency")
	}

	s := &authService{
		patients:    patients,
		kv:          kv,
		paseto:      paseto,
		hasher:      hasher,
		authz:       authz,
		staffHash:   cfg.Authentication.StaffPasswordHash,
		maxAttempts: defaultMaxAttempts,
		lockWindow:  defaultLockWindow,
	}
	if n := cfg.Authentication.Lockout.MaxAttempts; n > 0 {
		s.maxAttempts = int64(n)
	}
	if m := cfg.Authentication.Lockout.WindowMinutes; m > 0 {
		s.lockWindow = time.Duration(m) * time.Minute
	}
	if s.staffHash == "" {
		slog.Warn("auth: staff password hash is not configured, staff login disabled")
	}
	return s, nil
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func (s *authService) LoginPatient(ctx context.Context, patientID, pin string) (*AuthTokens, error) {
	id, err := codes.NormalizePatientID(patientID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	account := "patient:" + id
	if err := s.checkLockout(ctx, account); err != nil {
		return nil, err
	}

	p, err := s.patients.GetPatient(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		// Same cost as a real comparison.
		_ = s.hasher.VerifyMissing(pin)
		s.recordFailure(ctx, account)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find patient: %w", err)
	}

	if err := password.Verify(p.PINHash, codes.NormalizeCode(pin)); err != nil {
		s.recordFailure(ctx, account)
		return nil, ErrInvalidCredentials
	}
	s.kv.Del(ctx, redisKeyLockout(account))

	return s.createSession(ctx, principal.ForPatient(p.ID, p.Cohort, p.Arm))
}

func (s *authService) LoginStaff(ctx context.Context, secret string) (*AuthTokens, error) {
	if s.staffHash == "" {
		return nil, ErrStaffLoginDisabled
	}

	account := "staff:" + StaffSubject
	if err := s.checkLockout(ctx, account); err != nil {
		return nil, err
	}

	if err := password.Verify(s.staffHash, secret); err != nil {
		if !errors.Is(err, password.ErrMismatch) {
			slog.Error("auth: staff password hash is unreadable", "error", err)
		}
		s.recordFailure(ctx, account)
		return nil, ErrInvalidCredentials
	}
	s.kv.Del(ctx, redisKeyLockout(account))

	return s.createSession(ctx, principal.ForStaff(StaffSubject))
}

// ---------------------------------------------------------------------------
// RefreshTokens
// ---------------------------------------------------------------------------

func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	claims, err := s.paseto.Verify(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Type != pasetotoken.TokenTypeRefresh || claims.SessionID == uuid.Nil {
		return nil, ErrInvalidToken
	}

	p, err := s.Session(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}

	s.kv.Expire(ctx, redisKeySession(claims.SessionID.String()), s.paseto.RefreshTTL())

	// The refresh token stays the same until logout.
	access, err := s.paseto.IssueAccess(p, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.paseto.AccessTTL().Seconds()),
		SessionID:    claims.SessionID,
		Principal:    p,
	}, nil
}

// ---------------------------------------------------------------------------
// Logout
// ---------------------------------------------------------------------------

func (s *authService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	deleted, err := s.kv.Del(ctx, redisKeySession(sessionID.String())).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if deleted == 0 {
		slog.Debug("logout: session already expired", "session_id", sessionID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

func (s *authService) Session(ctx context.Context, sessionID uuid.UUID) (principal.AuthenticatedContext, error) {
	raw, err := s.kv.Get(ctx, redisKeySession(sessionID.String())).Result()
	if errors.Is(err, redis.Nil) {
		return principal.AuthenticatedContext{}, ErrSessionNotFound
	}
	if err != nil {
		return principal.AuthenticatedContext{}, fmt.Errorf("redis get session: %w", err)
	}

	var c principal.Claims
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return principal.AuthenticatedContext{}, fmt.Errorf("decode session: %w", err)
	}
	p, err := principal.FromClaims(c)
	if err != nil {
		return principal.AuthenticatedContext{}, fmt.Errorf("decode session: %w", err)
	}
	return p, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *authService) checkLockout(ctx context.Context, account string) error {
	n, err := s.kv.Get(ctx, redisKeyLockout(account)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis get lockout: %w", err)
	}
	if n >= s.maxAttempts {
		return ErrAccountLocked
	}
	return nil
}

// recordFailure counts a failed attempt. The window starts at the first
// failure and is not extended by later ones.
func (s *authService) recordFailure(ctx context.Context, account string) {
	key := redisKeyLockout(account)
	n, err := s.kv.Incr(ctx, key).Result()
	if err != nil {
		slog.Warn("auth: failed to count login failure", "account", account, "error", err)
		return
	}
	if n == 1 {
		s.kv.Expire(ctx, key, s.lockWindow)
	}
	if n == s.maxAttempts {
		slog.Warn("auth: account locked after repeated failures", "account", account, "window", s.lockWindow)
	}
}

func (s *authService) createSession(ctx context.Context, p principal.AuthenticatedContext) (*AuthTokens, error) {
	sessionID := uuid.Must(uuid.NewV7())

	raw, err := json.Marshal(p.Claims())
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if err := s.kv.Set(ctx, redisKeySession(sessionID.String()), raw, s.paseto.RefreshTTL()).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	if err := authorize.AssignPrincipalRole(ctx, s.authz, p); err != nil {
		return nil, fmt.Errorf("assign role: %w", err)
	}

	access, err := s.paseto.IssueAccess(p, sessionID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.paseto.IssueRefresh(p, sessionID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.paseto.AccessTTL().Seconds()),
		SessionID:    sessionID,
		Principal:    p,
	}, nil
}
