package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when a submission exceeds the local rate limit.
var ErrRateLimited = errors.New("telemetry: submission rate limited")

// BreakerConfig controls the circuit breaker placed in front of a backend.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig trips after 60% of at least 5 submissions fail and
// probes again after 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "metrics-backend",
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

type breakerSubmitter struct {
	next    Submitter
	breaker *gobreaker.CircuitBreaker
}

// WithCircuitBreaker wraps next so that a failing backend is skipped instead
// of adding its latency to every request. While open, Submit returns
// gobreaker.ErrOpenState. Errors caused by the submission itself, such as a
// negative counter or a rejected parameter, do not count as backend failures.
func WithCircuitBreaker(next Submitter, cfg BreakerConfig, logger *zap.Logger) Submitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isInvalidSubmission(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("metrics circuit breaker state changed",
				zap.String("circuit", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &breakerSubmitter{next: next, breaker: gobreaker.NewCircuitBreaker(settings)}
}

func (b *breakerSubmitter) Submit(ctx context.Context, namespace string, s Submission) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, b.next.Submit(ctx, namespace, s)
	})
	return err
}

func isInvalidSubmission(err error) bool {
	return errors.Is(err, ErrNegativeCounter) || isCloudWatchInputError(err)
}

type rateLimitSubmitter struct {
	next    Submitter
	limiter *rate.Limiter
}

// WithRateLimit drops submissions above limiter's rate. It never waits, so the
// request path is not slowed down by a backlog.
func WithRateLimit(next Submitter, limiter *rate.Limiter) Submitter {
	return &rateLimitSubmitter{next: next, limiter: limiter}
}

func (r *rateLimitSubmitter) Submit(ctx context.Context, namespace string, s Submission) error {
	if !r.limiter.Allow() {
		return ErrRateLimited
	}
	return r.next.Submit(ctx, namespace, s)
}
