package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/udelar-dtx/dtx_backend/internal/api/http/handler"
	"github.com/udelar-dtx/dtx_backend/pkg/authorize"
)

func (r *Router) registerTriageRoutes(
	api fiber.Router,
	h *handler.TriageHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	group := api.Group("/triage", authRequired)
	group.Post("/", requirePerm(authorize.ResourceTriage, authorize.ActionExecute), h.Submit)
	group.Get("/today", requirePerm(authorize.ResourceTriage, authorize.ActionRead), h.Today)
}
