package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leo4coinb-dot/cryptobackend/internal/config"
	"github.com/leo4coinb-dot/cryptobackend/internal/db"
	"github.com/leo4coinb-dot/cryptobackend/internal/repositories"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	nonceRepo := repositories.NewNonceRepo(pool)

	log.Info("worker started",
		zap.Duration("nonce_cleanup_interval", cfg.NonceCleanupInterval),
		zap.Duration("nonce_retention", cfg.NonceRetention),
	)

	interval := cfg.NonceCleanupInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	cleanupTicker := time.NewTicker(interval)
	defer cleanupTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	runNonceCleanup(ctx, nonceRepo, cfg.NonceRetention, log)

	for {
		select {
		case <-cleanupTicker.C:
			runNonceCleanup(ctx, nonceRepo, cfg.NonceRetention, log)
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

// runNonceCleanup drops challenges that expired or were consumed more than
// retention ago. Recent ones are kept for audit.
func runNonceCleanup(ctx context.Context, nonceRepo *repositories.NonceRepo, retention time.Duration, log *zap.Logger) {
	cutoff := time.Now().Add(-retention)
	deleted, err := nonceRepo.DeleteStale(ctx, cutoff)
	if err != nil {
		log.Error("failed to purge nonces", zap.Error(err))
		return
	}
	if deleted > 0 {
		log.Info("purged stale nonces", zap.Int64("count", deleted), zap.Time("cutoff", cutoff))
	}
}
