package client

import (
	"context"
)

type Client interface {
	Close() error
	Register(ctx context.Context, username string, y1, y2 []byte, paramSet string) error
	CreateChallenge(ctx context.Context, username string, r1, r2 []byte, paramSet string) (string, []byte, error)
	VerifyAuthentication(ctx context.Context, authID string, s []byte) (string, error)
	Ping(ctx context.Context) error
	SessionToken() string
}
