package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestUnaryMetricsInterceptorExportsCounters(t *testing.T) {
	provider, handler, err := InitMetrics(MetricsConfig{ServiceName: "mfi-test", Registry: prometheus.NewRegistry()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	interceptor, err := UnaryMetricsInterceptor(provider.Meter("test"))
	require.NoError(t, err)

	info := &grpc.UnaryServerInfo{FullMethod: "/letsema.mfi.v1.CreditService/GetCreditHistory"}

	_, err = interceptor(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)

	_, err = interceptor(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
		return nil, status.Error(codes.NotFound, "profile not found")
	})
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "rpc_server_requests"), "requests counter missing from /metrics")
	assert.Contains(t, body, `rpc_code="NotFound"`)
}

func TestUnaryMetricsInterceptorPassesErrorsThrough(t *testing.T) {
	provider, _, err := InitMetrics(MetricsConfig{ServiceName: "mfi-test", Registry: prometheus.NewRegistry()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	interceptor, err := UnaryMetricsInterceptor(provider.Meter("test"))
	require.NoError(t, err)

	sentinel := errors.New("boom")
	_, err = interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/x/Y"},
		func(context.Context, interface{}) (interface{}, error) { return nil, sentinel })
	assert.ErrorIs(t, err, sentinel)
}
