package dto

import "time"

type NonceResponse struct {
	Nonce string `json:"nonce"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type PaymentResponse struct {
	Success      bool       `json:"success"`
	Message      string     `json:"message"`
	PremiumUntil *time.Time `json:"premium_until,omitempty"`
	TxHash       string     `json:"tx_hash,omitempty"`
}

// StatusResponse keeps is_premium numeric (0/1) for existing clients.
type StatusResponse struct {
	Address      string     `json:"address"`
	IsPremium    int        `json:"is_premium"`
	PremiumUntil *time.Time `json:"premium_until"`
	CreatedAt    *time.Time `json:"created_at"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
