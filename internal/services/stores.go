package services

import (
	"context"
	"time"

	"github.com/leo4coinb-dot/cryptobackend/internal/models"
)

// NonceStore persists login challenges. Implemented by repositories.NonceRepo.
type NonceStore interface {
	Create(ctx context.Context, n *models.Nonce) error
	GetLatest(ctx context.Context, address string) (*models.Nonce, error)
	Consume(ctx context.Context, n *models.Nonce) (bool, error)
}

// UserStore is the entitlement ledger. Implemented by repositories.UserRepo.
type UserStore interface {
	EnsureExists(ctx context.Context, address string) error
	GetByAddress(ctx context.Context, address string) (*models.User, error)
	SetPremium(ctx context.Context, address string, until time.Time) error
}

type AuditLogger interface {
	Log(ctx context.Context, entry models.AuditLog) error
}

// TransferSource reads token transfers from the chain. Implemented by eth.TransferScanner.
type TransferSource interface {
	CurrentBlock(ctx context.Context) (uint64, error)
	Transfers(ctx context.Context, from, to string, fromBlock uint64) ([]models.TransferEvent, error)
}
