package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/drivingschool_backend/pkg/reqctx"
)

const HeaderRequestID = "X-Request-Id"

const maxRequestIDLen = 128

// RequestID tags each request with an id, reusing a sane incoming
// X-Request-Id so proxies and the SPA can correlate logs. The id, client
// metadata and a logger carrying the id are placed on the request context.
func RequestID(logger *slog.Logger) fiber.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c fiber.Ctx) error {
		rid := c.Get(HeaderRequestID)
		if !validRequestID(rid) {
			rid = newRequestID()
			c.Request().Header.Set(HeaderRequestID, rid)
		}
		c.Set(HeaderRequestID, rid)

		ctx := reqctx.WithRequestMeta(c.Context(), &reqctx.RequestMeta{
			RequestID:   rid,
			ClientIP:    c.IP(),
			UserAgent:   c.Get(fiber.HeaderUserAgent),
			RequestedAt: time.Now(),
		})
		c.SetContext(reqctx.WithLogger(ctx, logger.With(
			slog.String("request_id", rid),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
		)))
		return c.Next()
	}
}

// validRequestID rejects ids that would bloat or corrupt log lines.
func validRequestID(s string) bool {
	if s == "" || len(s) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

func newRequestID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
