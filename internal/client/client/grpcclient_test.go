package client

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/dmitrijs2005/shonkhipto/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type recordingServer struct {
	health *health.Server
	srv    *grpc.Server
	lis    *bufconn.Listener
	auth   chan []string
}

func startHealthServer(t *testing.T) *recordingServer {
	t.Helper()
	rs := &recordingServer{
		health: health.NewServer(),
		lis:    bufconn.Listen(1 << 20),
		auth:   make(chan []string, 8),
	}
	rs.srv = grpc.NewServer(grpc.UnaryInterceptor(func(ctx context.Context, req any, info *grpc.UnaryServerInfo, h grpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		rs.auth <- md.Get("authorization")
		return h(ctx, req)
	}))
	healthpb.RegisterHealthServer(rs.srv, rs.health)
	go func() { _ = rs.srv.Serve(rs.lis) }()
	t.Cleanup(rs.srv.Stop)
	return rs
}

func (rs *recordingServer) dial(t *testing.T, service string, tokens TokenSource) *GRPCClient {
	t.Helper()
	c, err := NewGRPCClient("passthrough:///bufnet", service, tokens,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return rs.lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestGRPCClient_Ping_Serving_AttachesBearer(t *testing.T) {
	rs := startHealthServer(t)
	c := rs.dial(t, "", staticTokens("tok-9"))

	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, []string{"Bearer tok-9"}, <-rs.auth)
}

func TestGRPCClient_Ping_NoTokenNoHeader(t *testing.T) {
	rs := startHealthServer(t)
	c := rs.dial(t, "", staticTokens(""))

	require.NoError(t, c.Ping(context.Background()))
	assert.Empty(t, <-rs.auth)
}

func TestGRPCClient_Ping_NotServing(t *testing.T) {
	rs := startHealthServer(t)
	rs.health.SetServingStatus("shonkhipto", healthpb.HealthCheckResponse_NOT_SERVING)
	c := rs.dial(t, "shonkhipto", nil)

	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestGRPCClient_Ping_UnknownService(t *testing.T) {
	rs := startHealthServer(t)
	c := rs.dial(t, "missing", nil)

	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestWithBearer_ReplacesExisting(t *testing.T) {
	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer old", "x-other", "1")
	ctx = withBearer(ctx, "new")

	md, _ := metadata.FromOutgoingContext(ctx)
	assert.Equal(t, []string{common.BearerValue("new")}, md.Get("authorization"))
	assert.Equal(t, []string{"1"}, md.Get("x-other"))
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil))
	assert.ErrorIs(t, mapError(status.Error(codes.Unauthenticated, "x")), ErrUnauthorized)
	assert.ErrorIs(t, mapError(status.Error(codes.PermissionDenied, "x")), ErrUnauthorized)
	assert.ErrorIs(t, mapError(status.Error(codes.Unavailable, "x")), ErrUnavailable)
	assert.ErrorIs(t, mapError(status.Error(codes.DeadlineExceeded, "x")), ErrUnavailable)

	plain := errors.New("plain")
	err := mapError(plain)
	assert.ErrorIs(t, err, plain)
	assert.Contains(t, err.Error(), "rpc error")
}
