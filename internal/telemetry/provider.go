package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config controls which backend metrics are sent to.
type Config struct {
	Namespace      string
	ServiceName    string
	ServiceVersion string
	InstanceID     string
	Environment    string
	Backend        string // "log", "cloudwatch", "prom" or "otlp"
	Prometheus     PromConfig
	OTLP           OTLPConfig
	CloudWatch     CloudWatchConfig
	Breaker        *BreakerConfig
	RateLimit      RateLimitConfig
}

// PromConfig defines the Prometheus exporter options.
type PromConfig struct {
	Addr string
	Path string
}

// OTLPConfig defines the OTLP/HTTP exporter options.
type OTLPConfig struct {
	Endpoint string
	Insecure bool
	Headers  map[string]string
}

// CloudWatchConfig defines the CloudWatch client options. Credentials come
// from the default AWS chain.
type CloudWatchConfig struct {
	Region   string
	Endpoint string
}

// RateLimitConfig caps submissions per second. A zero PerSecond disables it.
type RateLimitConfig struct {
	PerSecond float64
	Burst     int
}

// New builds the configured backend and returns the helper groups together
// with a shutdown function that flushes exporters.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Metrics, func(context.Context) error, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	sub, shutdown, err := buildSubmitter(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Breaker != nil {
		sub = WithCircuitBreaker(sub, *cfg.Breaker, logger)
	}
	if cfg.RateLimit.PerSecond > 0 {
		burst := cfg.RateLimit.Burst
		if burst <= 0 {
			burst = 1
		}
		sub = WithRateLimit(sub, rate.NewLimiter(rate.Limit(cfg.RateLimit.PerSecond), burst))
	}

	e := NewEmitter(cfg.Namespace, sub, logger)
	return NewMetrics(e, logger), shutdown, nil
}

func buildSubmitter(ctx context.Context, cfg Config, logger *zap.Logger) (Submitter, func(context.Context) error, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	noop := func(context.Context) error { return nil }

	switch backend {
	case "", "log":
		return discard, noop, nil
	case "cloudwatch":
		client, err := newCloudWatchClient(ctx, cfg.CloudWatch)
		if err != nil {
			return nil, nil, err
		}
		return NewCloudWatchSubmitter(client), noop, nil
	case "otlp", "prom", "prometheus":
		return initProvider(ctx, backend, cfg, logger)
	default:
		return nil, nil, fmt.Errorf("telemetry: unsupported backend %q", backend)
	}
}

func initProvider(ctx context.Context, backend string, cfg Config, logger *zap.Logger) (Submitter, func(context.Context) error, error) {
	res, err := buildResource(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: build resource: %w", err)
	}
	reader, srv, err := buildReader(ctx, backend, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	// The provider stays local to this Submitter; the process-wide otel
	// provider is left to the caller.
	mp := metric.NewMeterProvider(
		metric.WithReader(reader),
		metric.WithResource(res),
	)

	shutdown := func(ctx context.Context) error {
		var errs []error
		if err := mp.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		if srv != nil {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	return NewOTelSubmitter(mp.Meter("skillscout")), shutdown, nil
}

func buildResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	instanceID := cfg.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}
	attrs := []attribute.KeyValue{semconv.ServiceInstanceIDKey.String(instanceID)}
	if cfg.ServiceName != "" {
		attrs = append(attrs, semconv.ServiceNameKey.String(cfg.ServiceName))
	}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersionKey.String(cfg.ServiceVersion))
	}
	if cfg.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironmentKey.String(cfg.Environment))
	}
	res, err := resource.New(ctx,
		resource.WithOS(),
		resource.WithProcess(),
		resource.WithHost(),
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(attrs...),
	)
	// Detectors that cannot read the host still leave a usable resource.
	if errors.Is(err, resource.ErrPartialResource) {
		return res, nil
	}
	return res, err
}

// buildReader returns the metric reader for backend. The Prometheus case also
// returns the scrape server, which the caller must shut down. The OTLP
// exporter is owned by its periodic reader and closes with the provider.
func buildReader(ctx context.Context, backend string, cfg Config, logger *zap.Logger) (metric.Reader, *http.Server, error) {
	switch backend {
	case "otlp":
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(withDefault(cfg.OTLP.Endpoint, "otel-collector:4318")),
		}
		if cfg.OTLP.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		if len(cfg.OTLP.Headers) > 0 {
			opts = append(opts, otlpmetrichttp.WithHeaders(cfg.OTLP.Headers))
		}
		exp, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("telemetry: create otlp exporter: %w", err)
		}
		return metric.NewPeriodicReader(exp), nil, nil

	default:
		// A private registry keeps the scrape output to SkillScout metrics.
		registry := promclient.NewRegistry()
		exp, err := prometheus.New(
			prometheus.WithoutTargetInfo(),
			prometheus.WithoutUnits(),
			prometheus.WithRegisterer(registry),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("telemetry: create prometheus exporter: %w", err)
		}
		mux := http.NewServeMux()
		mux.Handle(withDefault(cfg.Prometheus.Path, "/metrics"), promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		srv := &http.Server{
			Addr:              withDefault(cfg.Prometheus.Addr, ":9464"),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("prometheus scrape server stopped", zap.String("addr", srv.Addr), zap.Error(err))
			}
		}()
		return exp, srv, nil
	}
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
