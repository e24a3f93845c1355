package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/zkpauth/internal/common"
	pb "github.com/dmitrijs2005/zkpauth/internal/proto"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// statusFromError maps sentinel errors to gRPC status codes at the
// transport boundary. Internal details never leak to the client.
func statusFromError(err error) error {
	switch {
	case errors.Is(err, common.ErrUnknownUser), errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrAlreadyRegistered):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrMalformedRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrInvalidProof):
		return status.Error(codes.Unauthenticated, common.ErrInvalidProof.Error())
	case errors.Is(err, common.ErrSessionExpired),
		errors.Is(err, common.ErrSessionClosed),
		errors.Is(err, common.ErrChallengeAlreadyIssued):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func (s *GRPCServer) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error) {

	s.logger.Info(ctx, "Registration request", "username", req.User)

	if err := s.authn.Register(ctx, req.User, req.Y1, req.Y2, req.ParamSet); err != nil {
		s.logger.Error(ctx, "Registration failed", "username", req.User, "error", err.Error())
		return nil, statusFromError(err)
	}

	s.logger.Info(ctx, "Registered", "username", req.User)
	return &pb.RegisterResponse{}, nil
}

func (s *GRPCServer) CreateAuthenticationChallenge(ctx context.Context, req *pb.AuthenticationChallengeRequest) (*pb.AuthenticationChallengeResponse, error) {

	authID, challenge, err := s.authn.CreateChallenge(ctx, req.User, req.R1, req.R2, req.ParamSet)
	if err != nil {
		s.logger.Error(ctx, "Challenge creation failed", "username", req.User, "error", err.Error())
		return nil, statusFromError(err)
	}

	return &pb.AuthenticationChallengeResponse{AuthId: authID, C: challenge}, nil
}

func (s *GRPCServer) VerifyAuthentication(ctx context.Context, req *pb.AuthenticationAnswerRequest) (*pb.AuthenticationAnswerResponse, error) {

	token, err := s.authn.VerifyAnswer(ctx, req.AuthId, req.S)
	if err != nil {
		s.logger.Error(ctx, "Verification failed", "auth_id", req.AuthId, "error", err.Error())
		return nil, statusFromError(err)
	}

	s.logger.Info(ctx, "Authentication verified", "auth_id", req.AuthId)
	return &pb.AuthenticationAnswerResponse{SessionToken: token}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {

	return &pb.PingResponse{Status: "OK"}, nil
}
