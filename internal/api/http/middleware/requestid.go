package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/udelar-dtx/dtx_backend/pkg/reqctx"
)

const HeaderRequestID = "X-Request-ID"

// maxRequestIDLen bounds ids taken from the client before they reach logs.
const maxRequestIDLen = 128

// RequestID echoes a client supplied X-Request-ID or mints one, and puts the
// request metadata on the context for handlers and services.
func RequestID() fiber.Handler {
	return func(c fiber.Ctx) error {
		rid := c.Get(HeaderRequestID)
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)

		c.SetContext(reqctx.WithRequestMeta(c.Context(), &reqctx.RequestMeta{
			RequestID:   rid,
			ClientIP:    c.IP(),
			UserAgent:   c.Get(fiber.HeaderUserAgent),
			RequestedAt: time.Now(),
		}))
		return c.Next()
	}
}
