package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leo4coinb-dot/cryptobackend/internal/config"
	"github.com/leo4coinb-dot/cryptobackend/internal/eth"
	"github.com/leo4coinb-dot/cryptobackend/internal/events"
	"github.com/leo4coinb-dot/cryptobackend/internal/metrics"
	"github.com/leo4coinb-dot/cryptobackend/internal/models"
	"go.uber.org/zap"
)

type PaymentResult struct {
	Success      bool
	Message      string
	PremiumUntil *time.Time
	TxHash       string
}

// PaymentService looks for a qualifying token transfer from a user to the
// receiving wallet and grants premium when one is found.
//
// Only the last PaymentScanBlocks blocks are scanned, so older payments are
// not detected. A transfer is not marked as claimed: re-checking with the
// same transfer resets the premium window again.
type PaymentService struct {
	chain        TransferSource
	entitlements *EntitlementService
	audit        AuditLogger
	publisher    events.Publisher
	metrics      metrics.Recorder
	cfg          *config.Config
	log          *zap.Logger
	now          func() time.Time
}

func NewPaymentService(
	chain TransferSource,
	entitlements *EntitlementService,
	audit AuditLogger,
	publisher events.Publisher,
	rec metrics.Recorder,
	cfg *config.Config,
	log *zap.Logger,
) *PaymentService {
	return &PaymentService{
		chain:        chain,
		entitlements: entitlements,
		audit:        audit,
		publisher:    publisher,
		metrics:      rec,
		cfg:          cfg,
		log:          log,
		now:          time.Now,
	}
}

// CheckPayment runs the check for address on behalf of the authenticated
// sessionAddress. Only the owner of an address may trigger its check.
func (s *PaymentService) CheckPayment(ctx context.Context, sessionAddress, address string) (*PaymentResult, error) {
	res, err := s.checkPayment(ctx, sessionAddress, address)
	switch {
	case err != nil:
		s.metrics.RecordPaymentCheck(metrics.ResultError)
	case res.Success:
		s.metrics.RecordPaymentCheck(metrics.ResultSuccess)
	default:
		s.metrics.RecordPaymentCheck(metrics.ResultRejected)
	}
	return res, err
}

func (s *PaymentService) checkPayment(ctx context.Context, sessionAddress, address string) (*PaymentResult, error) {
	if eth.NormalizeAddress(address) == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidInput)
	}
	addr, ok := eth.CanonicalAddress(address)
	if !ok {
		return nil, fmt.Errorf("%w: malformed address", ErrInvalidInput)
	}
	if owner, _ := eth.CanonicalAddress(sessionAddress); owner != addr {
		return nil, fmt.Errorf("%w: session does not own %s", ErrUnauthorized, addr)
	}
	if s.cfg.ReceiveWallet == "" {
		return nil, fmt.Errorf("%w: receiving wallet not set", ErrServerMisconfigured)
	}
	receiver, ok := eth.CanonicalAddress(s.cfg.ReceiveWallet)
	if !ok {
		return nil, fmt.Errorf("%w: receiving wallet %q is not a hex address", ErrServerMisconfigured, s.cfg.ReceiveWallet)
	}
	if s.chain == nil {
		return nil, fmt.Errorf("%w: chain rpc not configured", ErrServerMisconfigured)
	}

	match, err := s.findPayment(ctx, addr, receiver)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return &PaymentResult{
			Success: false,
			Message: fmt.Sprintf("No valid payment found in the last %d blocks", s.cfg.PaymentScanBlocks),
		}, nil
	}

	until, err := s.entitlements.Grant(ctx, addr)
	if err != nil {
		return nil, err
	}

	amount := eth.ScaleAmount(match.Value, s.cfg.TokenDecimals)
	if err := s.audit.Log(ctx, models.AuditLog{
		Address: addr,
		Action:  models.AuditActionPremiumGranted,
		Meta: map[string]any{
			"tx_hash":       match.TxHash,
			"block":         match.BlockNumber,
			"amount":        amount.String(),
			"premium_until": until,
		},
	}); err != nil {
		s.log.Warn("failed to write audit log", zap.String("address", addr), zap.Error(err))
	}

	if s.publisher != nil {
		err := s.publisher.Publish(ctx, events.StreamEntitlements, events.Event{
			Type: events.EventPremiumActivated,
			Payload: map[string]any{
				"address":       addr,
				"premium_until": until.UTC().Format(time.RFC3339),
				"tx_hash":       match.TxHash,
			},
		})
		if err != nil {
			s.log.Warn("failed to publish premium event", zap.String("address", addr), zap.Error(err))
		}
	}

	s.log.Info("premium activated",
		zap.String("address", addr),
		zap.String("tx_hash", match.TxHash),
		zap.String("amount", amount.String()),
		zap.Time("premium_until", until),
	)

	return &PaymentResult{
		Success:      true,
		Message:      "Payment found, premium activated",
		PremiumUntil: &until,
		TxHash:       match.TxHash,
	}, nil
}

// findPayment returns the first transfer whose amount alone reaches MinAmount.
// Amounts of separate transfers are never summed.
func (s *PaymentService) findPayment(ctx context.Context, addr, receiver string) (*models.TransferEvent, error) {
	if s.cfg.ChainQueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ChainQueryTimeout)
		defer cancel()
	}

	start := time.Now()
	defer func() { s.metrics.ObserveChainQuery(time.Since(start)) }()

	head, err := s.chain.CurrentBlock(ctx)
	if err != nil {
		return nil, s.upstreamError(ctx, "read block height", err)
	}

	evs, err := s.chain.Transfers(ctx, addr, receiver, eth.WindowStart(head, s.cfg.PaymentScanBlocks))
	if err != nil {
		return nil, s.upstreamError(ctx, "query transfers", err)
	}

	for i := range evs {
		ev := &evs[i]
		if ev.From != addr || ev.To != receiver {
			continue
		}
		if eth.ScaleAmount(ev.Value, s.cfg.TokenDecimals).GreaterThanOrEqual(s.cfg.MinAmount) {
			return ev, nil
		}
	}
	return nil, nil
}

func (s *PaymentService) upstreamError(ctx context.Context, op string, err error) error {
	s.log.Error("chain query failed", zap.String("op", op), zap.Error(err))
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", ErrUpstreamTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrUpstreamUnavailable, op, err)
}
