package services

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrChallengeNotFound   = errors.New("nonce not found")
	ErrChallengeExpired    = errors.New("nonce expired")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamTimeout     = errors.New("upstream timeout")
	ErrServerMisconfigured = errors.New("server misconfigured")
)
