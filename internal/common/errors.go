// Package common defines shared constants and sentinel errors used across
// client and server layers of the authentication service. Callers should
// use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Protocol errors. Each one maps to a distinct gRPC status code at the
	// transport boundary.
	ErrUnknownUser            = errors.New("unknown user")
	ErrAlreadyRegistered      = errors.New("user already registered")
	ErrMalformedRequest       = errors.New("malformed request")
	ErrInvalidProof           = errors.New("invalid proof")
	ErrChallengeAlreadyIssued = errors.New("challenge already issued")
	ErrSessionExpired         = errors.New("session expired")
	ErrSessionClosed          = errors.New("session closed")

	// ErrInvalidParameters reports a group setup inconsistency. It is fatal
	// at startup; a server must not serve requests over bad parameters.
	ErrInvalidParameters = errors.New("invalid group parameters")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
