package handlers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func insecureDial() []grpc.DialOption {
	return []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
}

func newEmptyHandler(t *testing.T) *Handler {
	return NewHandler(&mockCompanyController{}, &mockSupplierController{}, &mockLinkController{}, nil, nil, zaptest.NewLogger(t))
}

func TestServer_RegisterHTTPGateway(t *testing.T) {
	logger := zaptest.NewLogger(t)
	s := NewServer(50561, 18081, logger)

	err := s.RegisterHTTPGateway(insecureDial(), newEmptyHandler(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.healthConn.Close() })

	assert.NotNil(t, s.httpServer.Handler)
	assert.Equal(t, s.httpEndpoint, s.httpServer.Addr)
	assert.Equal(t, "localhost:50561", s.grpcTarget)
}

func TestServer_StartStop(t *testing.T) {
	logger := zaptest.NewLogger(t)
	s := NewServer(50562, 18082, logger)
	s.RegisterHealth(pingerFunc(func(context.Context) error { return nil }))
	require.NoError(t, s.RegisterHTTPGateway(insecureDial(), newEmptyHandler(t)))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	// Give the servers a moment to start.
	time.Sleep(200 * time.Millisecond)

	conn, err := grpc.NewClient(s.grpcTarget, insecureDial()...)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())
	_ = conn.Close()

	httpResp, err := http.Get(fmt.Sprintf("http://localhost%s/healthz", s.httpEndpoint))
	require.NoError(t, err)
	_ = httpResp.Body.Close()
	assert.Equal(t, http.StatusOK, httpResp.StatusCode)

	s.Stop()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for server to stop")
	}

	// The gRPC port is free again after shutdown.
	lis, err := net.Listen("tcp", s.grpcEndpoint)
	require.NoError(t, err)
	_ = lis.Close()
}
