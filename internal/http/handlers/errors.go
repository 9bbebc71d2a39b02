package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/leo4coinb-dot/cryptobackend/internal/http/dto"
	"github.com/leo4coinb-dot/cryptobackend/internal/middleware"
	"github.com/leo4coinb-dot/cryptobackend/internal/services"
	"go.uber.org/zap"
)

// writeError maps service errors to a status code and a short client
// message. Details stay in the server log.
func writeError(c *fiber.Ctx, log *zap.Logger, err error) error {
	status, msg := classify(err)

	fields := []zap.Field{
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("path", c.Path()),
		zap.Error(err),
	}
	if status >= fiber.StatusInternalServerError {
		log.Error("request failed", fields...)
	} else {
		log.Debug("request rejected", fields...)
	}

	return c.Status(status).JSON(dto.ErrorResponse{
		Error:     msg,
		RequestID: middleware.GetRequestID(c),
	})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return fiber.StatusBadRequest, "Missing params"
	case errors.Is(err, services.ErrChallengeNotFound):
		return fiber.StatusBadRequest, "Nonce not found"
	case errors.Is(err, services.ErrChallengeExpired):
		return fiber.StatusBadRequest, "Nonce expired"
	case errors.Is(err, services.ErrInvalidSignature):
		return fiber.StatusUnauthorized, "Invalid signature"
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusUnauthorized, "Invalid token"
	case errors.Is(err, services.ErrUpstreamTimeout):
		return fiber.StatusGatewayTimeout, "Chain query timed out"
	case errors.Is(err, services.ErrUpstreamUnavailable):
		return fiber.StatusBadGateway, "Upstream unavailable"
	case errors.Is(err, services.ErrServerMisconfigured):
		return fiber.StatusInternalServerError, "Server misconfigured"
	default:
		return fiber.StatusInternalServerError, "internal server error"
	}
}
