package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/udelar-dtx/dtx_backend/pkg/reqctx"
)

// Success bodies are {"data": ...}; failures are {"error": "..."}.

func ok(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"data": data})
}

func created(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": data})
}

func noContent(c fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func fail(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func badRequest(c fiber.Ctx, msg string) error { return fail(c, fiber.StatusBadRequest, msg) }
func notFound(c fiber.Ctx, msg string) error   { return fail(c, fiber.StatusNotFound, msg) }
func conflict(c fiber.Ctx, msg string) error   { return fail(c, fiber.StatusConflict, msg) }
func unauthorized(c fiber.Ctx) error           { return fail(c, fiber.StatusUnauthorized, "unauthorized") }
func forbidden(c fiber.Ctx) error              { return fail(c, fiber.StatusForbidden, "forbidden") }

// internalError hides err from the caller and logs it with the request id.
func internalError(c fiber.Ctx, err error) error {
	slog.ErrorContext(c.Context(), "request failed",
		"request_id", reqctx.RequestIDFromContext(c.Context()),
		"route", c.Route().Path,
		"error", err,
	)
	return fail(c, fiber.StatusInternalServerError, "internal server error")
}
