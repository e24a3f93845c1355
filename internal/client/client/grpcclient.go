package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/zkpauth/internal/common"
	pb "github.com/dmitrijs2005/zkpauth/internal/proto"
)

type GRPCClient struct {
	endpointURL  string
	conn         *grpc.ClientConn
	client       pb.AuthClient
	sessionToken string
}

func withSessionToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.SessionTokenHeaderName)
	md.Set(common.SessionTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

// sessionTokenInterceptor attaches the current session token, if any, to
// every outgoing call.
func (s *GRPCClient) sessionTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if s.sessionToken != "" {
		ctx = withSessionToken(ctx, s.sessionToken)
	}

	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewAuthClientService(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {

	conn, err := grpc.NewClient(s.endpointURL, grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithUnaryInterceptor(s.sessionTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewAuthClient(conn)
	return nil
}

func (s *GRPCClient) Register(ctx context.Context, username string, y1, y2 []byte, paramSet string) error {

	req := &pb.RegisterRequest{User: username, Y1: y1, Y2: y2, ParamSet: paramSet}

	_, err := s.client.Register(ctx, req)

	if err != nil {
		return s.mapError(err)
	}

	return nil

}

func (s *GRPCClient) CreateChallenge(ctx context.Context, username string, r1, r2 []byte, paramSet string) (string, []byte, error) {

	ctx, cancel := context.WithTimeout(ctx, 12*time.Second)
	defer cancel()

	req := &pb.AuthenticationChallengeRequest{User: username, R1: r1, R2: r2, ParamSet: paramSet}

	resp, err := s.client.CreateAuthenticationChallenge(ctx, req)

	if err != nil {
		return "", nil, s.mapError(err)
	}
	return resp.AuthId, resp.C, nil
}

func (s *GRPCClient) VerifyAuthentication(ctx context.Context, authID string, answer []byte) (string, error) {

	req := &pb.AuthenticationAnswerRequest{AuthId: authID, S: answer}

	resp, err := s.client.VerifyAuthentication(ctx, req)

	if err != nil {
		return "", s.mapError(err)
	}

	s.sessionToken = resp.SessionToken

	return resp.SessionToken, nil

}

func (s *GRPCClient) Ping(ctx context.Context) error {

	req := &pb.PingRequest{}

	resp, err := s.client.Ping(ctx, req)
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil

}

func (s *GRPCClient) SessionToken() string {
	return s.sessionToken
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.NotFound:
		return ErrUnknownUser
	case codes.AlreadyExists:
		return ErrAlreadyRegistered
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrProofRejected
	case codes.InvalidArgument:
		return ErrBadRequest
	case codes.FailedPrecondition:
		return ErrSessionClosed
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
