package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leo4coinb-dot/cryptobackend/internal/config"
	"github.com/leo4coinb-dot/cryptobackend/internal/eth"
	"github.com/leo4coinb-dot/cryptobackend/internal/repositories"
	"go.uber.org/zap"
)

// Status is the read model of an address's entitlement. IsPremium is the
// effective value, already checked against PremiumUntil.
type Status struct {
	Address      string
	IsPremium    bool
	PremiumUntil *time.Time
	CreatedAt    *time.Time
}

type EntitlementService struct {
	users UserStore
	cfg   *config.Config
	log   *zap.Logger
	now   func() time.Time
}

func NewEntitlementService(users UserStore, cfg *config.Config, log *zap.Logger) *EntitlementService {
	return &EntitlementService{users: users, cfg: cfg, log: log, now: time.Now}
}

// Status never creates a row; unknown addresses report no entitlement.
func (s *EntitlementService) Status(ctx context.Context, address string) (*Status, error) {
	addr := eth.NormalizeAddress(address)
	if addr == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidInput)
	}

	u, err := s.users.GetByAddress(ctx, addr)
	if errors.Is(err, repositories.ErrNotFound) {
		return &Status{Address: addr}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load user: %w", ErrUpstreamUnavailable, err)
	}

	createdAt := u.CreatedAt
	return &Status{
		Address:      addr,
		IsPremium:    u.PremiumActive(s.now()),
		PremiumUntil: u.PremiumUntil,
		CreatedAt:    &createdAt,
	}, nil
}

// Grant sets the premium window to [now, now+PremiumDuration], replacing any
// previous window rather than extending it.
func (s *EntitlementService) Grant(ctx context.Context, address string) (time.Time, error) {
	until := s.now().Add(s.cfg.PremiumDuration)
	if err := s.users.SetPremium(ctx, address, until); err != nil {
		return time.Time{}, fmt.Errorf("%w: update premium: %w", ErrUpstreamUnavailable, err)
	}
	return until, nil
}
