// Package authn orchestrates one authentication attempt end to end:
// registration of commitment pairs, challenge issuance against a submitted
// first-round pair, and verification of the response. It owns no transport
// concerns; the gRPC layer calls into it and maps sentinel errors to
// status codes.
package authn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/zkpauth/internal/common"
	"github.com/dmitrijs2005/zkpauth/internal/server/auth"
	"github.com/dmitrijs2005/zkpauth/internal/server/sessions"
	"github.com/dmitrijs2005/zkpauth/internal/server/users"
	"github.com/dmitrijs2005/zkpauth/internal/zkp"
)

// Service verifies Chaum-Pedersen proofs against the user registry.
type Service struct {
	engine        *zkp.ZKP
	repo          users.Repository
	store         *sessions.Store
	jwtSecret     []byte
	tokenValidity time.Duration
}

func NewService(engine *zkp.ZKP, repo users.Repository, store *sessions.Store, jwtSecret []byte, tokenValidity time.Duration) *Service {
	return &Service{
		engine:        engine,
		repo:          repo,
		store:         store,
		jwtSecret:     jwtSecret,
		tokenValidity: tokenValidity,
	}
}

// checkParamSet rejects requests computed over a different parameter set
// before any arithmetic happens. A mismatch must never silently produce a
// wrong verification result.
func (s *Service) checkParamSet(name string) error {
	if name != s.engine.Params().Name {
		return fmt.Errorf("%w: parameter set %q, server uses %q",
			common.ErrMalformedRequest, name, s.engine.Params().Name)
	}
	return nil
}

// Register validates and stores the commitment pair (y1, y2) for a new
// username. Re-registration is not allowed; an existing username fails
// with AlreadyRegistered.
func (s *Service) Register(ctx context.Context, username string, y1, y2 []byte, paramSet string) error {
	if username == "" {
		return fmt.Errorf("%w: empty username", common.ErrMalformedRequest)
	}
	if err := s.checkParamSet(paramSet); err != nil {
		return err
	}

	params := s.engine.Params()
	ey1, err := params.ParseElement(y1)
	if err != nil {
		return fmt.Errorf("y1: %w", err)
	}
	ey2, err := params.ParseElement(y2)
	if err != nil {
		return fmt.Errorf("y2: %w", err)
	}

	user := &users.User{
		UserName: username,
		// Stored in canonical fixed-width form so registration and
		// authentication agree byte for byte.
		Y1:       params.ElementBytes(ey1),
		Y2:       params.ElementBytes(ey2),
		ParamSet: params.Name,
	}

	if _, err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return fmt.Errorf("%w: %s", common.ErrAlreadyRegistered, username)
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// CreateChallenge accepts the prover's first-round pair (r1, r2), opens a
// proof session for it, and issues the session's single challenge. The
// challenge is drawn uniformly from the full scalar range [0, q).
func (s *Service) CreateChallenge(ctx context.Context, username string, r1, r2 []byte, paramSet string) (authID string, challenge []byte, err error) {
	if err := s.checkParamSet(paramSet); err != nil {
		return "", nil, err
	}

	params := s.engine.Params()
	er1, err := params.ParseElement(r1)
	if err != nil {
		return "", nil, fmt.Errorf("r1: %w", err)
	}
	er2, err := params.ParseElement(r2)
	if err != nil {
		return "", nil, fmt.Errorf("r2: %w", err)
	}

	if _, err := s.repo.GetByUsername(ctx, username); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, fmt.Errorf("%w: %s", common.ErrUnknownUser, username)
		}
		return "", nil, fmt.Errorf("registry lookup: %w", err)
	}

	session, err := s.store.Create(username, er1, er2)
	if err != nil {
		return "", nil, err
	}

	c, err := s.engine.RandomScalar()
	if err != nil {
		return "", nil, err
	}

	if _, err := s.store.IssueChallenge(session.ID, c); err != nil {
		return "", nil, err
	}

	return session.ID, params.ScalarBytes(c), nil
}

// VerifyAnswer checks the response s against the session's stored
// commitment and challenge and the user's registered pair. On success it
// resolves the session as verified and returns a signed session token; on
// failure the session is closed and the prover must restart from
// commitment submission.
func (s *Service) VerifyAnswer(ctx context.Context, authID string, response []byte) (string, error) {
	params := s.engine.Params()

	es, err := params.ParseScalar(response)
	if err != nil {
		// Malformed input fails the attempt; no retry with the same
		// challenge.
		_, _ = s.store.Resolve(authID, false)
		return "", fmt.Errorf("s: %w", err)
	}

	session, err := s.store.Get(authID)
	if err != nil {
		return "", err
	}
	if session.State != sessions.StateChallengeIssued {
		return "", common.ErrSessionClosed
	}

	user, err := s.repo.GetByUsername(ctx, session.Username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = s.store.Resolve(authID, false)
			return "", fmt.Errorf("%w: %s", common.ErrUnknownUser, session.Username)
		}
		return "", fmt.Errorf("registry lookup: %w", err)
	}
	if user.ParamSet != params.Name {
		_, _ = s.store.Resolve(authID, false)
		return "", fmt.Errorf("%w: user registered under parameter set %q",
			common.ErrMalformedRequest, user.ParamSet)
	}

	y1, err := params.ParseElement(user.Y1)
	if err != nil {
		return "", fmt.Errorf("stored y1: %w", err)
	}
	y2, err := params.ParseElement(user.Y2)
	if err != nil {
		return "", fmt.Errorf("stored y2: %w", err)
	}

	// The verification equations run on a snapshot outside the store lock;
	// Resolve is the compare-and-swap that commits the outcome exactly once.
	ok := s.engine.Verify(y1, y2, session.R1, session.R2, session.Challenge, es)

	if _, err := s.store.Resolve(authID, ok); err != nil {
		return "", err
	}
	if !ok {
		return "", common.ErrInvalidProof
	}

	token, err := auth.GenerateSessionToken(user.ID, authID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return token, nil
}
