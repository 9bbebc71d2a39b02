package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/leo4coinb-dot/cryptobackend/internal/config"
	"github.com/leo4coinb-dot/cryptobackend/internal/db"
	"github.com/leo4coinb-dot/cryptobackend/internal/eth"
	"github.com/leo4coinb-dot/cryptobackend/internal/events"
	apphttp "github.com/leo4coinb-dot/cryptobackend/internal/http"
	"github.com/leo4coinb-dot/cryptobackend/internal/http/handlers"
	"github.com/leo4coinb-dot/cryptobackend/internal/metrics"
	"github.com/leo4coinb-dot/cryptobackend/internal/repositories"
	"github.com/leo4coinb-dot/cryptobackend/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	if err := cfg.Validate(log); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Chain. Without an RPC endpoint the API still serves login and status;
	// payment checks answer as misconfigured.
	var chain services.TransferSource
	if cfg.RPCURL != "" {
		client, err := eth.Dial(ctx, cfg.RPCURL)
		if err != nil {
			log.Fatal("failed to dial rpc", zap.Error(err))
		}
		defer client.Close()

		scanner, err := eth.NewTransferScanner(client, cfg.TokenContract)
		if err != nil {
			log.Fatal("invalid token contract", zap.Error(err))
		}
		chain = scanner
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewCollector(reg)

	// Repositories
	nonceRepo := repositories.NewNonceRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)

	// Services
	authService := services.NewAuthService(nonceRepo, userRepo, auditRepo, recorder, cfg, log)
	entitlementService := services.NewEntitlementService(userRepo, cfg, log)
	paymentService := services.NewPaymentService(chain, entitlementService, auditRepo, publisher, recorder, cfg, log)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: apphttp.ErrorHandler(log),
	})

	apphttp.SetupRouter(app, cfg, log, rdb, apphttp.Handlers{
		Auth:    handlers.NewAuthHandler(authService, log),
		Payment: handlers.NewPaymentHandler(paymentService, log),
		Status:  handlers.NewStatusHandler(entitlementService, log),
		Metrics: metrics.Handler(reg),
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
