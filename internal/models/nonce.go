package models

import (
	"time"

	"github.com/google/uuid"
)

// Nonce is a login challenge issued to an address.
type Nonce struct {
	ID        uuid.UUID  `json:"id"`
	Address   string     `json:"address"`
	Value     string     `json:"nonce"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"-"`
}

func (n *Nonce) Expired(now time.Time) bool {
	return now.After(n.ExpiresAt)
}

func (n *Nonce) Used() bool {
	return n.UsedAt != nil
}
