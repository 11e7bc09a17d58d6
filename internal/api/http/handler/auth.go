package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/udelar-dtx/dtx_backend/internal/api/http/middleware"
	"github.com/udelar-dtx/dtx_backend/internal/service/auth"
	pasetotoken "github.com/udelar-dtx/dtx_backend/pkg/paseto"
)

type AuthHandler struct {
	svc   auth.Service
	cache *middleware.SessionCache
}

func NewAuthHandler(svc auth.Service, cache *middleware.SessionCache) *AuthHandler {
	return &AuthHandler{svc: svc, cache: cache}
}

func tokensResponse(t *auth.AuthTokens) fiber.Map {
	return fiber.Map{
		"access_token":  t.AccessToken,
		"refresh_token": t.RefreshToken,
		"expires_in":    t.ExpiresIn,
		"principal":     t.Principal.Claims(),
	}
}

// POST /api/v1/auth/patient/login
func (h *AuthHandler) PatientLogin(c fiber.Ctx) error {
	var body struct {
		PatientID string `json:"patient_id"`
		PIN       string `json:"pin"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.PatientID == "" || body.PIN == "" {
		return badRequest(c, "patient_id and pin are required")
	}

	tokens, err := h.svc.LoginPatient(c.Context(), body.PatientID, body.PIN)
	if err != nil {
		return mapAuthError(c, err)
	}
	return ok(c, tokensResponse(tokens))
}

// POST /api/v1/auth/staff/login
func (h *AuthHandler) StaffLogin(c fiber.Ctx) error {
	var body struct {
		Password string `json:"password"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Password == "" {
		return badRequest(c, "password is required")
	}

	tokens, err := h.svc.LoginStaff(c.Context(), body.Password)
	if err != nil {
		return mapAuthError(c, err)
	}
	return ok(c, tokensResponse(tokens))
}

// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.RefreshToken == "" {
		return badRequest(c, "refresh_token is required")
	}

	tokens, err := h.svc.RefreshTokens(c.Context(), body.RefreshToken)
	if err != nil {
		return mapAuthError(c, err)
	}
	return ok(c, tokensResponse(tokens))
}

// POST /api/v1/auth/logout  (requires AuthRequired middleware)
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	claims, found := pasetotoken.ClaimsFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	if err := h.svc.Logout(c.Context(), claims.SessionID); err != nil {
		return internalError(c, err)
	}
	h.cache.Forget(claims.SessionID)

	return noContent(c)
}

// GET /api/v1/me
func (h *AuthHandler) Me(c fiber.Ctx) error {
	p, valid := middleware.PrincipalFromFiber(c)
	if !valid {
		return unauthorized(c)
	}
	return ok(c, p.Claims())
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func mapAuthError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrSessionNotFound),
		errors.Is(err, auth.ErrInvalidToken):
		return fail(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrStaffLoginDisabled):
		return forbidden(c)
	case errors.Is(err, auth.ErrAccountLocked):
		return fail(c, fiber.StatusTooManyRequests, err.Error())
	default:
		return internalError(c, err)
	}
}
