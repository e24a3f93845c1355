package grpc

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/zkpauth/internal/common"
	"github.com/dmitrijs2005/zkpauth/internal/logging"
	pb "github.com/dmitrijs2005/zkpauth/internal/proto"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ---- test logger ----

type nopLogger struct{}

func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

// ---- fakes ----

type fakeAuthn struct {
	registerErr error

	authID       string
	challenge    []byte
	challengeErr error

	token     string
	verifyErr error
}

func (f *fakeAuthn) Register(ctx context.Context, username string, y1, y2 []byte, paramSet string) error {
	return f.registerErr
}
func (f *fakeAuthn) CreateChallenge(ctx context.Context, username string, r1, r2 []byte, paramSet string) (string, []byte, error) {
	return f.authID, f.challenge, f.challengeErr
}
func (f *fakeAuthn) VerifyAnswer(ctx context.Context, authID string, s []byte) (string, error) {
	return f.token, f.verifyErr
}

// ---- helpers ----

func newServer(a authnService) *GRPCServer {
	return &GRPCServer{
		address: "127.0.0.1:0",
		authn:   a,
		logger:  nopLogger{},
	}
}

// ---- tests ----

func TestPing_OK(t *testing.T) {
	s := newServer(&fakeAuthn{})
	resp, err := s.Ping(context.Background(), &pb.PingRequest{})
	if err != nil {
		t.Fatalf("Ping error: %v", err)
	}
	if resp.GetStatus() != "OK" {
		t.Fatalf("unexpected status: %q", resp.GetStatus())
	}
}

func TestRegister_OK(t *testing.T) {
	s := newServer(&fakeAuthn{})
	_, err := s.Register(context.Background(), &pb.RegisterRequest{User: "alice", Y1: []byte{2}, Y2: []byte{3}})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
}

func TestCreateAuthenticationChallenge_OK(t *testing.T) {
	f := &fakeAuthn{authID: "id-1", challenge: []byte{4}}
	s := newServer(f)

	resp, err := s.CreateAuthenticationChallenge(context.Background(), &pb.AuthenticationChallengeRequest{User: "alice"})
	if err != nil {
		t.Fatalf("CreateAuthenticationChallenge error: %v", err)
	}
	if resp.GetAuthId() != "id-1" {
		t.Fatalf("unexpected auth id: %q", resp.GetAuthId())
	}
	if len(resp.GetC()) != 1 || resp.GetC()[0] != 4 {
		t.Fatalf("unexpected challenge: %v", resp.GetC())
	}
}

func TestVerifyAuthentication_OK(t *testing.T) {
	s := newServer(&fakeAuthn{token: "jwt"})

	resp, err := s.VerifyAuthentication(context.Background(), &pb.AuthenticationAnswerRequest{AuthId: "id-1", S: []byte{5}})
	if err != nil {
		t.Fatalf("VerifyAuthentication error: %v", err)
	}
	if resp.GetSessionToken() != "jwt" {
		t.Fatalf("unexpected token: %q", resp.GetSessionToken())
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"unknown user", common.ErrUnknownUser, codes.NotFound},
		{"session not found", common.ErrorNotFound, codes.NotFound},
		{"already registered", common.ErrAlreadyRegistered, codes.AlreadyExists},
		{"malformed", common.ErrMalformedRequest, codes.InvalidArgument},
		{"invalid proof", common.ErrInvalidProof, codes.Unauthenticated},
		{"expired", common.ErrSessionExpired, codes.FailedPrecondition},
		{"closed", common.ErrSessionClosed, codes.FailedPrecondition},
		{"challenge already issued", common.ErrChallengeAlreadyIssued, codes.FailedPrecondition},
		{"anything else", common.ErrorInternal, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(&fakeAuthn{registerErr: tt.err})
			_, err := s.Register(context.Background(), &pb.RegisterRequest{User: "alice"})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := status.Code(err); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestVerifyAuthentication_InvalidProofCode(t *testing.T) {
	s := newServer(&fakeAuthn{verifyErr: common.ErrInvalidProof})

	_, err := s.VerifyAuthentication(context.Background(), &pb.AuthenticationAnswerRequest{AuthId: "id-1", S: []byte{5}})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
}
