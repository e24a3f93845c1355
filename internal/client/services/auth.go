// Package services contains application services for the zkpauth client.
// This file defines the prover side of the authentication protocol:
// registration, login, and a liveness probe.
package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/dmitrijs2005/zkpauth/internal/client/client"
	"github.com/dmitrijs2005/zkpauth/internal/cryptox"
	"github.com/dmitrijs2005/zkpauth/internal/zkp"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: derive the secret from the password and publish the
//     commitment pair to the server.
//   - Login: run one full proof round and return the issued session token.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
//
// All methods must honor context cancellation/timeouts. The password is
// never sent to the server in any form.
type AuthService interface {
	Register(ctx context.Context, username string, password []byte) error
	Login(ctx context.Context, username string, password []byte) (string, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// authService is the concrete AuthService backed by a remote Client and
// a local protocol engine.
type authService struct {
	client client.Client
	engine *zkp.ZKP
}

// NewAuthService constructs an AuthService bound to the given API client
// and protocol engine.
func NewAuthService(client client.Client, engine *zkp.ZKP) AuthService {
	return &authService{client: client, engine: engine}
}

// deriveSecret turns the password into the protocol secret x. The salt is
// deterministic per (parameter set, username) so the same password yields
// the same secret on every device.
func (a *authService) deriveSecret(username string, password []byte) *big.Int {
	p := a.engine.Params()
	salt := cryptox.SaltForUser(p.Name, username)
	return cryptox.DeriveSecret(password, salt, p.Q)
}

// Register derives the secret x from the password, computes the commitment
// pair (y1, y2) = (g^x, h^x) and registers it under the username. The
// secret never leaves this function.
func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	p := a.engine.Params()

	x := a.deriveSecret(username, password)
	y1, y2 := a.engine.Commit(x)
	x.SetInt64(0)

	if err := a.client.Register(ctx, username, p.ElementBytes(y1), p.ElementBytes(y2), p.Name); err != nil {
		return err
	}
	return nil
}

// Login runs one round of the proof: open a commitment, request a
// challenge, respond, and submit the answer. Returns the session token
// issued by the server.
func (a *authService) Login(ctx context.Context, username string, password []byte) (string, error) {
	p := a.engine.Params()

	x := a.deriveSecret(username, password)

	k, r1, r2, err := a.engine.OpenCommitment()
	if err != nil {
		x.SetInt64(0)
		return "", fmt.Errorf("opening commitment: %w", err)
	}

	authID, challengeBytes, err := a.client.CreateChallenge(ctx, username, p.ElementBytes(r1), p.ElementBytes(r2), p.Name)
	if err != nil {
		x.SetInt64(0)
		k.SetInt64(0)
		return "", err
	}

	c, err := p.ParseScalar(challengeBytes)
	if err != nil {
		x.SetInt64(0)
		k.SetInt64(0)
		return "", fmt.Errorf("server sent malformed challenge: %w", err)
	}

	s := a.engine.Respond(k, x, c)
	x.SetInt64(0)
	k.SetInt64(0)

	token, err := a.client.VerifyAuthentication(ctx, authID, p.ScalarBytes(s))
	if err != nil {
		return "", err
	}
	return token, nil
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
