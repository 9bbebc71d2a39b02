package http

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/leo4coinb-dot/cryptobackend/internal/config"
	"github.com/leo4coinb-dot/cryptobackend/internal/http/handlers"
	"github.com/leo4coinb-dot/cryptobackend/internal/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Payment *handlers.PaymentHandler
	Status  *handlers.StatusHandler
	Metrics http.Handler
}

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	h Handlers,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if h.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(h.Metrics))
	}

	// Auth (public, rate-limited)
	authGroup := app.Group("/auth", middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute, log))
	authGroup.Get("/nonce", h.Auth.GetNonce)
	authGroup.Post("/verify", h.Auth.Verify)

	// Protected
	app.Get("/check-payment/:address", middleware.AuthMiddleware(cfg, log), h.Payment.CheckPayment)

	// Public
	app.Get("/status/:address", h.Status.GetStatus)
}

// ErrorHandler answers errors that escaped the handlers (unknown routes,
// panics caught by recover) in the same JSON shape as handled errors.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "internal server error"
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			msg = e.Message
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("unhandled error", zap.String("request_id", middleware.GetRequestID(c)), zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{
			"error":      msg,
			"request_id": middleware.GetRequestID(c),
		})
	}
}
