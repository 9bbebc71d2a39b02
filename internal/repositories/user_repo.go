package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leo4coinb-dot/cryptobackend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// EnsureExists inserts a fresh row for address and leaves an existing one untouched.
func (r *UserRepo) EnsureExists(ctx context.Context, address string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (address) VALUES ($1)
		ON CONFLICT (address) DO NOTHING
	`, address)
	return err
}

func (r *UserRepo) GetByAddress(ctx context.Context, address string) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		SELECT address, is_premium, premium_until, created_at
		FROM users WHERE address = $1
	`, address).Scan(&u.Address, &u.IsPremium, &u.PremiumUntil, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetPremium overwrites the premium window. The row is created if the
// address never logged in through this instance.
func (r *UserRepo) SetPremium(ctx context.Context, address string, until time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (address, is_premium, premium_until)
		VALUES ($1, true, $2)
		ON CONFLICT (address) DO UPDATE SET
			is_premium = true,
			premium_until = EXCLUDED.premium_until
	`, address, until)
	return err
}
