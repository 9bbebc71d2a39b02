package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/leo4coinb-dot/cryptobackend/internal/http/dto"
	"github.com/leo4coinb-dot/cryptobackend/internal/middleware"
	"github.com/leo4coinb-dot/cryptobackend/internal/services"
	"go.uber.org/zap"
)

type PaymentChecker interface {
	CheckPayment(ctx context.Context, sessionAddress, address string) (*services.PaymentResult, error)
}

type PaymentHandler struct {
	payments PaymentChecker
	log      *zap.Logger
}

func NewPaymentHandler(payments PaymentChecker, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, log: log}
}

// CheckPayment scans recent token transfers and grants premium on a match.
// GET /check-payment/:address (bearer)
func (h *PaymentHandler) CheckPayment(c *fiber.Ctx) error {
	res, err := h.payments.CheckPayment(c.UserContext(), middleware.GetAddress(c), c.Params("address"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.PaymentResponse{
		Success:      res.Success,
		Message:      res.Message,
		PremiumUntil: res.PremiumUntil,
		TxHash:       res.TxHash,
	})
}

var _ PaymentChecker = (*services.PaymentService)(nil)
