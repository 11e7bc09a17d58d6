package pasetotoken

import (
	"errors"
	"fmt"
	"time"

	paseto "aidanwoods.dev/go-paseto"
	"github.com/google/uuid"

	"github.com/udelar-dtx/dtx_backend/internal/domain/principal"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// Custom claim names. Patient tokens also carry pid, cohort and arm so the
// session lookup is not needed to scope a request.
const (
	claimType    = "typ"
	claimSession = "sid"
	claimRole    = "role"
	claimPatient = "pid"
	claimCohort  = "cohort"
	claimArm     = "arm"
)

type Config struct {
	Mode       Mode
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Implicit   []byte
}

type Manager struct {
	cfg  Config
	keys Keys
	now  func() time.Time
}

func New(cfg Config, keys Keys) (*Manager, error) {
	switch {
	case cfg.Mode != keys.Mode:
		return nil, fmt.Errorf("%w: mode %q does not match keys %q", ErrConfig, cfg.Mode, keys.Mode)
	case cfg.Issuer == "" || cfg.Audience == "":
		return nil, fmt.Errorf("%w: issuer and audience are required", ErrConfig)
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}
	return &Manager{cfg: cfg, keys: keys, now: time.Now}, nil
}

func (m *Manager) AccessTTL() time.Duration  { return m.cfg.AccessTTL }
func (m *Manager) RefreshTTL() time.Duration { return m.cfg.RefreshTTL }

func (m *Manager) IssueAccess(p principal.AuthenticatedContext, sessionID uuid.UUID) (string, error) {
	return m.issue(TokenTypeAccess, p, sessionID, m.cfg.AccessTTL)
}

func (m *Manager) IssueRefresh(p principal.AuthenticatedContext, sessionID uuid.UUID) (string, error) {
	return m.issue(TokenTypeRefresh, p, sessionID, m.cfg.RefreshTTL)
}

func (m *Manager) issue(typ TokenType, p principal.AuthenticatedContext, sessionID uuid.UUID, ttl time.Duration) (string, error) {
	if p.IsZero() {
		return "", fmt.Errorf("%w: cannot issue a token without a principal", ErrConfig)
	}
	now := m.now()

	tok := paseto.NewToken()
	tok.SetIssuer(m.cfg.Issuer)
	tok.SetAudience(m.cfg.Audience)
	tok.SetJti(uuid.NewString())
	tok.SetIssuedAt(now)
	tok.SetNotBefore(now)
	tok.SetExpiration(now.Add(ttl))
	tok.SetSubject(p.Subject())

	pc := p.Claims()
	tok.SetString(claimType, string(typ))
	tok.SetString(claimSession, sessionID.String())
	tok.SetString(claimRole, pc.Role)
	if pc.PatientID != "" {
		tok.SetString(claimPatient, pc.PatientID)
		tok.SetString(claimCohort, pc.Cohort)
		tok.SetString(claimArm, pc.Arm)
	}

	return m.keys.seal(tok, m.cfg.Implicit)
}

// Verify checks signature or encryption, issuer, audience and the validity
// window against the manager's clock.
func (m *Manager) Verify(raw string) (*Claims, error) {
	p := paseto.NewParserWithoutExpiryCheck()
	p.AddRule(paseto.IssuedBy(m.cfg.Issuer))
	p.AddRule(paseto.ForAudience(m.cfg.Audience))
	p.AddRule(paseto.ValidAt(m.now()))

	tok, err := m.keys.open(p, raw, m.cfg.Implicit)
	if err != nil {
		if errors.Is(err, ErrConfig) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, err := m.readClaims(tok)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

func (m *Manager) readClaims(tok *paseto.Token) (*Claims, error) {
	c := &Claims{Issuer: m.cfg.Issuer, Audience: m.cfg.Audience}

	var (
		sub, typ, sid, role string
		err                 error
	)
	get := func(f func() error) {
		if err == nil {
			err = f()
		}
	}
	get(func() (e error) { c.TokenID, e = tok.GetJti(); return })
	get(func() (e error) { sub, e = tok.GetSubject(); return })
	get(func() (e error) { c.IssuedAt, e = tok.GetIssuedAt(); return })
	get(func() (e error) { c.NotBefore, e = tok.GetNotBefore(); return })
	get(func() (e error) { c.ExpiresAt, e = tok.GetExpiration(); return })
	get(func() (e error) { typ, e = tok.GetString(claimType); return })
	get(func() (e error) { sid, e = tok.GetString(claimSession); return })
	get(func() (e error) { role, e = tok.GetString(claimRole); return })
	get(func() (e error) { c.SessionID, e = uuid.Parse(sid); return })
	if err != nil {
		return nil, err
	}

	c.Type = TokenType(typ)
	c.Principal = principal.Claims{Role: role, Subject: sub}
	if pid, err := tok.GetString(claimPatient); err == nil {
		c.Principal.PatientID = pid
		c.Principal.Cohort, _ = tok.GetString(claimCohort)
		c.Principal.Arm, _ = tok.GetString(claimArm)
	}
	return c, nil
}
