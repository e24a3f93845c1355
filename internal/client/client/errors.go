package client

import "errors"

var (
	ErrUnavailable       = errors.New("server unavailable")
	ErrUnknownUser       = errors.New("user is not registered")
	ErrAlreadyRegistered = errors.New("user is already registered")
	ErrProofRejected     = errors.New("authentication rejected")
	ErrBadRequest        = errors.New("request rejected by server")
	ErrSessionClosed     = errors.New("authentication session is closed")
)
