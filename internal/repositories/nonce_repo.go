package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leo4coinb-dot/cryptobackend/internal/models"
)

type NonceRepo struct {
	pool *pgxpool.Pool
}

func NewNonceRepo(pool *pgxpool.Pool) *NonceRepo {
	return &NonceRepo{pool: pool}
}

func (r *NonceRepo) Create(ctx context.Context, n *models.Nonce) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO nonces (address, nonce, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, n.Address, n.Value, n.ExpiresAt).Scan(&n.ID, &n.CreatedAt)
}

// GetLatest returns the most recently issued nonce for address, consumed or not.
func (r *NonceRepo) GetLatest(ctx context.Context, address string) (*models.Nonce, error) {
	var n models.Nonce
	err := r.pool.QueryRow(ctx, `
		SELECT id, address, nonce, created_at, expires_at, used_at
		FROM nonces
		WHERE address = $1
		ORDER BY created_at DESC LIMIT 1
	`, address).Scan(&n.ID, &n.Address, &n.Value, &n.CreatedAt, &n.ExpiresAt, &n.UsedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Consume marks the nonce used. It returns false when another caller
// consumed it first.
func (r *NonceRepo) Consume(ctx context.Context, n *models.Nonce) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE nonces SET used_at = now()
		WHERE id = $1 AND used_at IS NULL
	`, n.ID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteStale removes nonces that expired or were consumed before cutoff.
func (r *NonceRepo) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM nonces
		WHERE expires_at < $1 OR used_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
