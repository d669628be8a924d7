// Package config loads telemetry and logging settings from a YAML file and
// SKILLSCOUT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/skillscout/skillscout/internal/logging"
	"github.com/skillscout/skillscout/internal/telemetry"
)

// Config is the process configuration.
type Config struct {
	Service    ServiceConfig    `mapstructure:"service"`
	Log        LogConfig        `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	OTLP       OTLPConfig       `mapstructure:"otlp"`
	CloudWatch CloudWatchConfig `mapstructure:"cloudwatch"`
	Breaker    BreakerConfig    `mapstructure:"breaker"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
}

type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	InstanceID  string `mapstructure:"instance_id"`
	Environment string `mapstructure:"environment"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
	Backend   string `mapstructure:"backend"`
}

type PrometheusConfig struct {
	Addr string `mapstructure:"addr"`
	Path string `mapstructure:"path"`
}

type OTLPConfig struct {
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

type CloudWatchConfig struct {
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

type BreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold float64       `mapstructure:"failure_threshold"`
	MinRequests      uint32        `mapstructure:"min_requests"`
}

type RateLimitConfig struct {
	PerSecond float64 `mapstructure:"per_second"`
	Burst     int     `mapstructure:"burst"`
}

var validBackends = map[string]bool{
	"log":        true,
	"cloudwatch": true,
	"prom":       true,
	"prometheus": true,
	"otlp":       true,
}

// Load reads path (optional) and the environment. A missing file is not an
// error; environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	breaker := telemetry.DefaultBreakerConfig()
	v.SetDefault("service.name", "skillscout")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("metrics.namespace", telemetry.DefaultNamespace)
	v.SetDefault("metrics.backend", "log")
	v.SetDefault("prometheus.addr", ":9464")
	v.SetDefault("prometheus.path", "/metrics")
	v.SetDefault("otlp.endpoint", "otel-collector:4318")
	v.SetDefault("otlp.insecure", false)
	v.SetDefault("cloudwatch.region", "")
	v.SetDefault("cloudwatch.endpoint", "")
	v.SetDefault("breaker.enabled", false)
	v.SetDefault("breaker.max_requests", breaker.MaxRequests)
	v.SetDefault("breaker.interval", breaker.Interval)
	v.SetDefault("breaker.timeout", breaker.Timeout)
	v.SetDefault("breaker.failure_threshold", breaker.FailureThreshold)
	v.SetDefault("breaker.min_requests", breaker.MinRequests)
	v.SetDefault("rate_limit.per_second", 0)
	v.SetDefault("rate_limit.burst", 0)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		}
	}

	v.SetEnvPrefix("SKILLSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values New would otherwise reject at startup.
func (c *Config) Validate() error {
	backend := strings.ToLower(strings.TrimSpace(c.Metrics.Backend))
	if !validBackends[backend] {
		return fmt.Errorf("config: unsupported metrics backend %q", c.Metrics.Backend)
	}
	if c.Metrics.Namespace == "" {
		return errors.New("config: metrics namespace must not be empty")
	}
	if c.RateLimit.PerSecond < 0 {
		return fmt.Errorf("config: rate_limit.per_second must not be negative: %v", c.RateLimit.PerSecond)
	}
	if c.Breaker.Enabled && (c.Breaker.FailureThreshold <= 0 || c.Breaker.FailureThreshold > 1) {
		return fmt.Errorf("config: breaker.failure_threshold must be in (0, 1]: %v", c.Breaker.FailureThreshold)
	}
	return nil
}

// Telemetry converts the loaded values into a telemetry.Config.
func (c *Config) Telemetry() telemetry.Config {
	tc := telemetry.Config{
		Namespace:      c.Metrics.Namespace,
		ServiceName:    c.Service.Name,
		ServiceVersion: c.Service.Version,
		InstanceID:     c.Service.InstanceID,
		Environment:    c.Service.Environment,
		Backend:        c.Metrics.Backend,
		Prometheus:     telemetry.PromConfig{Addr: c.Prometheus.Addr, Path: c.Prometheus.Path},
		OTLP: telemetry.OTLPConfig{
			Endpoint: c.OTLP.Endpoint,
			Insecure: c.OTLP.Insecure,
			Headers:  c.OTLP.Headers,
		},
		CloudWatch: telemetry.CloudWatchConfig{Region: c.CloudWatch.Region, Endpoint: c.CloudWatch.Endpoint},
		RateLimit:  telemetry.RateLimitConfig{PerSecond: c.RateLimit.PerSecond, Burst: c.RateLimit.Burst},
	}
	if c.Breaker.Enabled {
		tc.Breaker = &telemetry.BreakerConfig{
			Name:             "metrics-" + strings.ToLower(c.Metrics.Backend),
			MaxRequests:      c.Breaker.MaxRequests,
			Interval:         c.Breaker.Interval,
			Timeout:          c.Breaker.Timeout,
			FailureThreshold: c.Breaker.FailureThreshold,
			MinRequests:      c.Breaker.MinRequests,
		}
	}
	return tc
}

// Logging converts the loaded values into a logging.Config.
func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}
