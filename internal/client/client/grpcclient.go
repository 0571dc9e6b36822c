package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/shonkhipto/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const defaultPingTimeout = 5 * time.Second

// GRPCClient is a connection to the backend's gRPC endpoint. Every unary
// call carries the current session token, when there is one.
type GRPCClient struct {
	endpointURL string
	service     string
	tokens      TokenSource
	conn        *grpc.ClientConn
	health      healthpb.HealthClient
}

var _ Client = (*GRPCClient)(nil)

func withBearer(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerValue(token))
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) bearerInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if c.tokens != nil {
		if tok := c.tokens.BearerToken(); tok != "" {
			ctx = withBearer(ctx, tok)
		}
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient prepares a lazy connection to endpointURL. service is the
// name checked by Ping; "" asks for the server as a whole.
func NewGRPCClient(endpointURL, service string, tokens TokenSource, extra ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, service: service, tokens: tokens}

	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.bearerInterceptor),
	}, extra...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc client %s: %w", endpointURL, err)
	}
	c.conn = conn
	c.health = healthpb.NewHealthClient(conn)
	return c, nil
}

// Ping runs grpc.health.v1.Health/Check. Anything other than SERVING is
// ErrUnavailable.
func (c *GRPCClient) Ping(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultPingTimeout)
		defer cancel()
	}

	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: c.service})
	if err != nil {
		return mapError(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}
	return nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded, codes.NotFound, codes.Unimplemented:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
