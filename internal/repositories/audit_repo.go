package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leo4coinb-dot/cryptobackend/internal/models"
)

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Log(ctx context.Context, entry models.AuditLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_log (address, action, meta)
		VALUES ($1, $2, $3)
	`, entry.Address, entry.Action, entry.Meta)
	return err
}
