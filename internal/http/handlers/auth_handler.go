package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/leo4coinb-dot/cryptobackend/internal/http/dto"
	"github.com/leo4coinb-dot/cryptobackend/internal/models"
	"github.com/leo4coinb-dot/cryptobackend/internal/services"
	"go.uber.org/zap"
)

// Authenticator is implemented by services.AuthService.
type Authenticator interface {
	IssueChallenge(ctx context.Context, address string) (*models.Nonce, error)
	Verify(ctx context.Context, address, signature string) (string, error)
}

type AuthHandler struct {
	auth Authenticator
	log  *zap.Logger
}

func NewAuthHandler(auth Authenticator, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// GetNonce issues a login challenge.
// GET /auth/nonce?address=0x...
func (h *AuthHandler) GetNonce(c *fiber.Ctx) error {
	address := c.Query("address")
	if address == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Missing address"})
	}

	n, err := h.auth.IssueChallenge(c.UserContext(), address)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NonceResponse{Nonce: n.Value})
}

// Verify exchanges a signed challenge for a session token.
// POST /auth/verify
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var req dto.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	token, err := h.auth.Verify(c.UserContext(), req.Address, req.Signature)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.TokenResponse{Token: token})
}

var _ Authenticator = (*services.AuthService)(nil)
