package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/leo4coinb-dot/cryptobackend/internal/http/dto"
	"github.com/leo4coinb-dot/cryptobackend/internal/services"
	"go.uber.org/zap"
)

type StatusReader interface {
	Status(ctx context.Context, address string) (*services.Status, error)
}

type StatusHandler struct {
	entitlements StatusReader
	log          *zap.Logger
}

func NewStatusHandler(entitlements StatusReader, log *zap.Logger) *StatusHandler {
	return &StatusHandler{entitlements: entitlements, log: log}
}

// GetStatus reports the effective premium status of an address.
// GET /status/:address
func (h *StatusHandler) GetStatus(c *fiber.Ctx) error {
	st, err := h.entitlements.Status(c.UserContext(), c.Params("address"))
	if err != nil {
		return writeError(c, h.log, err)
	}

	resp := dto.StatusResponse{
		Address:      st.Address,
		PremiumUntil: st.PremiumUntil,
		CreatedAt:    st.CreatedAt,
	}
	if st.IsPremium {
		resp.IsPremium = 1
	}
	return c.JSON(resp)
}

var _ StatusReader = (*services.EntitlementService)(nil)
