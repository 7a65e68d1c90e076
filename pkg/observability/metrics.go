package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Registry scopes the exporter to a private registry; nil uses the
	// process-wide default registerer.
	Registry    *prometheus.Registry
	ServiceName string
}

// InitMetrics installs a Prometheus-backed MeterProvider as the global
// provider and returns it together with the /metrics handler.
func InitMetrics(cfg MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	var opts []promexporter.Option
	handler := promhttp.Handler()
	if cfg.Registry != nil {
		opts = append(opts, promexporter.WithRegisterer(cfg.Registry))
		handler = promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})
	}

	exporter, err := promexporter.New(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("observability: prometheus exporter: %w", err)
	}

	res := resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(cfg.ServiceName))

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return provider, handler, nil
}

// UnaryMetricsInterceptor records a request counter and a latency histogram
// per gRPC method and status code.
func UnaryMetricsInterceptor(meter metric.Meter) (grpc.UnaryServerInterceptor, error) {
	requests, err := meter.Int64Counter("rpc.server.requests",
		metric.WithDescription("Number of unary RPCs handled"))
	if err != nil {
		return nil, fmt.Errorf("observability: requests counter: %w", err)
	}
	latency, err := meter.Float64Histogram("rpc.server.duration",
		metric.WithDescription("Unary RPC latency"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("observability: latency histogram: %w", err)
	}

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		attrs := metric.WithAttributes(
			attribute.String("rpc.method", info.FullMethod),
			attribute.String("rpc.code", status.Code(err).String()),
		)
		requests.Add(ctx, 1, attrs)
		latency.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)

		return resp, err
	}, nil
}
