package events

import "context"

// Streams
const (
	StreamEntitlements = "entitlements"
)

// Event types
const (
	EventPremiumActivated = "premium_activated"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}
