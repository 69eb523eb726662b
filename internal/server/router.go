package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kliva/kliva/internal/logging"
)

// AppOptions controls how the Fiber application is assembled.
type AppOptions struct {
	Logger *logrus.Logger
}

const contextKeyRequestID = "_kliva_request_id"

// NewApp builds a Fiber application with request IDs, access logging and a
// JSON 404 for unknown paths. Callers register routes before Listen.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
	})

	app.Use(recover.New())
	app.Use(requestContextMiddleware(opts.Logger))

	return app, nil
}

// RegisterFallback 为未匹配的路径返回 JSON 404，需在所有路由注册之后调用。
func RegisterFallback(app *fiber.App) {
	app.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "route_not_found",
		})
	})
}

// requestContextMiddleware 生成请求 ID，并在请求结束后输出访问日志。
func requestContextMiddleware(logger *logrus.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		started := time.Now()
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)

		err := c.Next()

		fields := logging.RequestFields(reqID, c.Method(), c.Path(), c.Response().StatusCode())
		fields["action"] = "http_request"
		fields["elapsed_ms"] = time.Since(started).Milliseconds()
		entry := logger.WithFields(fields)
		if err != nil {
			entry.WithError(err).Warn("request_failed")
		} else {
			entry.Info("request_done")
		}
		return err
	}
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}
