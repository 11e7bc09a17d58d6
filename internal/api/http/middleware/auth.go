package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/simplelru"

	"github.com/udelar-dtx/dtx_backend/internal/domain/principal"
	pasetotoken "github.com/udelar-dtx/dtx_backend/pkg/paseto"
	"github.com/udelar-dtx/dtx_backend/pkg/reqctx"
)

const LocalsPrincipal = "auth.principal"

// SessionLookup resolves a live server-side session. auth.Service satisfies it.
type SessionLookup interface {
	Session(ctx context.Context, sessionID uuid.UUID) (principal.AuthenticatedContext, error)
}

// AuthRequired validates a Bearer PASETO access token and checks the session in Redis.
// On success, stores *pasetotoken.Claims in c.Locals(pasetotoken.CtxKeyClaims) and the
// caller under LocalsPrincipal.
func AuthRequired(mgr *pasetotoken.Manager, sessions SessionLookup, cache *SessionCache) fiber.Handler {
	return func(c fiber.Ctx) error {
		tok, ok := pasetotoken.BearerToken(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		claims, err := mgr.Verify(tok)
		if err != nil {
			return fiber.ErrUnauthorized
		}

		// Only access tokens are accepted on protected routes
		if claims.Type != pasetotoken.TokenTypeAccess {
			return fiber.ErrUnauthorized
		}

		p, ok := cache.get(claims.SessionID)
		if !ok {
			p, err = sessions.Session(c.Context(), claims.SessionID)
			if err != nil {
				return fiber.ErrUnauthorized
			}
			cache.add(claims.SessionID, p)
		}
		if p.Subject() != claims.Principal.Subject {
			return fiber.ErrUnauthorized
		}

		c.Locals(pasetotoken.CtxKeyClaims, claims)
		c.Locals(LocalsPrincipal, p)

		ctx := reqctx.WithClaims(c.Context(), claims)
		c.SetContext(reqctx.WithPrincipal(ctx, p))
		return c.Next()
	}
}

// PrincipalFromFiber returns the caller set by AuthRequired.
func PrincipalFromFiber(c fiber.Ctx) (principal.AuthenticatedContext, bool) {
	p, ok := c.Locals(LocalsPrincipal).(principal.AuthenticatedContext)
	if !ok || p.IsZero() {
		return principal.AuthenticatedContext{}, false
	}
	return p, true
}

// ---------------------------------------------------------------------------
// Session cache
// ---------------------------------------------------------------------------

type sessionEntry struct {
	p      principal.AuthenticatedContext
	expiry time.Time
}

// SessionCache keeps recently verified sessions in process so that not every
// request reaches Redis. A logged-out session stays valid here for at most
// the entry TTL. A nil *SessionCache disables caching.
type SessionCache struct {
	mu  sync.Mutex
	lru *simplelru.LRU
	ttl time.Duration
	now func() time.Time
}

func NewSessionCache(size int, ttl time.Duration) (*SessionCache, error) {
	if size <= 0 || ttl <= 0 {
		return nil, nil
	}
	lru, err := simplelru.NewLRU(size, nil)
	if err != nil {
		return nil, err
	}
	return &SessionCache{lru: lru, ttl: ttl, now: time.Now}, nil
}

func (s *SessionCache) get(id uuid.UUID) (principal.AuthenticatedContext, bool) {
	if s == nil {
		return principal.AuthenticatedContext{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.lru.Get(id)
	if !ok {
		return principal.AuthenticatedContext{}, false
	}
	e := v.(sessionEntry)
	if s.now().After(e.expiry) {
		s.lru.Remove(id)
		return principal.AuthenticatedContext{}, false
	}
	return e.p, true
}

func (s *SessionCache) add(id uuid.UUID, p principal.AuthenticatedContext) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lru.Add(id, sessionEntry{p: p, expiry: s.now().Add(s.ttl)})
}

// Forget drops a session, e.g. on logout.
func (s *SessionCache) Forget(id uuid.UUID) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lru.Remove(id)
}
