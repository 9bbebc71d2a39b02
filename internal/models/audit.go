package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AuditActionLogin          = "login"
	AuditActionPremiumGranted = "premium_granted"
)

type AuditLog struct {
	ID        uuid.UUID `json:"id"`
	Address   string    `json:"address"`
	Action    string    `json:"action"`
	Meta      any       `json:"meta,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
