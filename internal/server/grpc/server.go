// Package grpc exposes the authentication protocol as a gRPC service. It
// contains no protocol logic: handlers validate nothing themselves, they
// pass requests to the authn service and translate its sentinel errors
// into status codes.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/zkpauth/internal/logging"
	pb "github.com/dmitrijs2005/zkpauth/internal/proto"
	"google.golang.org/grpc"
)

// authnService is the part of authn.Service the transport needs.
type authnService interface {
	Register(ctx context.Context, username string, y1, y2 []byte, paramSet string) error
	CreateChallenge(ctx context.Context, username string, r1, r2 []byte, paramSet string) (string, []byte, error)
	VerifyAnswer(ctx context.Context, authID string, s []byte) (string, error)
}

type GRPCServer struct {
	pb.UnimplementedAuthServer
	address string
	authn   authnService
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, svc authnService) (*GRPCServer, error) {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		authn:   svc,
	}, nil
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	// creates gRPC-server
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))

	// registers service
	pb.RegisterAuthServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
