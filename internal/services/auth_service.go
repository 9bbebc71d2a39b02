package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/leo4coinb-dot/cryptobackend/internal/auth"
	"github.com/leo4coinb-dot/cryptobackend/internal/config"
	"github.com/leo4coinb-dot/cryptobackend/internal/eth"
	"github.com/leo4coinb-dot/cryptobackend/internal/metrics"
	"github.com/leo4coinb-dot/cryptobackend/internal/models"
	"github.com/leo4coinb-dot/cryptobackend/internal/repositories"
	"go.uber.org/zap"
)

const noncePrefix = "Login nonce: "

var nonceRandMax = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

type AuthService struct {
	nonces  NonceStore
	users   UserStore
	audit   AuditLogger
	metrics metrics.Recorder
	cfg     *config.Config
	log     *zap.Logger
	now     func() time.Time
}

func NewAuthService(
	nonces NonceStore,
	users UserStore,
	audit AuditLogger,
	rec metrics.Recorder,
	cfg *config.Config,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		nonces:  nonces,
		users:   users,
		audit:   audit,
		metrics: rec,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
}

// IssueChallenge stores a fresh nonce for address. Earlier nonces stay in the
// table but only the latest one is honoured by Verify.
func (s *AuthService) IssueChallenge(ctx context.Context, address string) (*models.Nonce, error) {
	addr := eth.NormalizeAddress(address)
	if addr == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidInput)
	}

	now := s.now()
	value, err := newNonceValue(now)
	if err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	n := &models.Nonce{
		Address:   addr,
		Value:     value,
		ExpiresAt: now.Add(s.cfg.NonceTTL),
	}
	if err := s.nonces.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("%w: store nonce: %w", ErrUpstreamUnavailable, err)
	}

	s.metrics.RecordChallengeIssued()
	return n, nil
}

// Verify checks signature against the latest nonce of address and returns a
// session token. Nothing is written unless the signature is valid.
func (s *AuthService) Verify(ctx context.Context, address, signature string) (string, error) {
	token, err := s.verify(ctx, address, signature)
	switch {
	case err == nil:
		s.metrics.RecordLogin(metrics.ResultSuccess)
	case errors.Is(err, ErrUpstreamUnavailable), errors.Is(err, ErrServerMisconfigured):
		s.metrics.RecordLogin(metrics.ResultError)
	default:
		s.metrics.RecordLogin(metrics.ResultRejected)
	}
	return token, err
}

func (s *AuthService) verify(ctx context.Context, address, signature string) (string, error) {
	addr := eth.NormalizeAddress(address)
	if addr == "" || strings.TrimSpace(signature) == "" {
		return "", fmt.Errorf("%w: address and signature are required", ErrInvalidInput)
	}
	if s.cfg.JWTSecret == "" {
		return "", fmt.Errorf("%w: jwt secret is empty", ErrServerMisconfigured)
	}

	n, err := s.nonces.GetLatest(ctx, addr)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", ErrChallengeNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: load nonce: %w", ErrUpstreamUnavailable, err)
	}
	if n.Used() {
		return "", ErrChallengeNotFound
	}
	if n.Expired(s.now()) {
		return "", ErrChallengeExpired
	}

	if err := eth.VerifyPersonalSignature(n.Value, signature, addr); err != nil {
		s.log.Debug("signature rejected", zap.String("address", addr), zap.Error(err))
		return "", ErrInvalidSignature
	}

	// sign before the first write
	token, err := auth.GenerateJWT(s.cfg.JWTSecret, addr, s.cfg.JWTExpiration)
	if err != nil {
		return "", fmt.Errorf("generate jwt: %w", err)
	}

	if s.cfg.NonceSingleUse {
		consumed, err := s.nonces.Consume(ctx, n)
		if err != nil {
			return "", fmt.Errorf("%w: consume nonce: %w", ErrUpstreamUnavailable, err)
		}
		if !consumed {
			// lost the race against a concurrent verify of the same nonce
			return "", ErrChallengeNotFound
		}
	}

	if err := s.users.EnsureExists(ctx, addr); err != nil {
		return "", fmt.Errorf("%w: create user: %w", ErrUpstreamUnavailable, err)
	}

	if err := s.audit.Log(ctx, models.AuditLog{
		Address: addr,
		Action:  models.AuditActionLogin,
		Meta:    map[string]any{"nonce_id": n.ID.String()},
	}); err != nil {
		s.log.Warn("failed to write audit log", zap.String("address", addr), zap.Error(err))
	}

	s.log.Info("wallet authenticated", zap.String("address", addr))
	return token, nil
}

func newNonceValue(now time.Time) (string, error) {
	r, err := rand.Int(rand.Reader, nonceRandMax)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s-%d", noncePrefix, r.String(), now.UnixMilli()), nil
}
