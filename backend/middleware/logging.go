package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/wagus-labs/agent-portal/backend/utils"
	"github.com/wagus-labs/agent-portal/portal/metrics"
)

// LoggingMiddleware logs HTTP requests and records request metrics when m is set
func LoggingMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()
		if err != nil {
			// Let the error handler write the response so the status is final
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		duration := time.Since(start)
		statusCode := c.Response().StatusCode()

		logLevel := slog.LevelDebug
		if statusCode >= 400 && statusCode < 500 {
			logLevel = slog.LevelWarn
		} else if statusCode >= 500 {
			logLevel = slog.LevelError
		}

		attrs := []any{
			slog.String("type", "api"),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", statusCode),
			slog.Duration("took", duration),
			slog.String("ip", utils.GetIPAddress(c)),
			slog.String("user_agent", utils.GetUserAgent(c)),
		}
		if wallet, ok := utils.ExtractWallet(c); ok {
			attrs = append(attrs, slog.String("wallet", wallet))
		}
		if err != nil {
			attrs = append(attrs, slog.Any("error", err))
		}

		message := "HTTP request processed"
		if err != nil {
			message = "HTTP request failed"
		}
		slog.Log(c.Context(), logLevel, message, attrs...)

		if m != nil {
			m.ObserveRequest(c.Method(), c.Route().Path, statusCode, duration)
		}

		return nil
	}
}
