package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/udelar-dtx/dtx_backend/internal/api/http/handler"
	"github.com/udelar-dtx/dtx_backend/pkg/authorize"
)

func (r *Router) registerAuthRoutes(
	api fiber.Router,
	h *handler.AuthHandler,
	authRequired fiber.Handler,
	loginLimit fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	group := api.Group("/auth")
	group.Post("/patient/login", loginLimit, h.PatientLogin)
	group.Post("/staff/login", loginLimit, h.StaffLogin)
	group.Post("/refresh", h.Refresh)
	group.Post("/logout", authRequired, requirePerm(authorize.ResourceAuthSession, authorize.ActionManage), h.Logout)

	api.Get("/me", authRequired, requirePerm(authorize.ResourceProfile, authorize.ActionRead), h.Me)
}
