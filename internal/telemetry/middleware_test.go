package telemetry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"
)

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	backend := &recordingSubmitter{err: errors.New("connection refused")}
	core, logs := observer.New(zapcore.WarnLevel)
	cfg := BreakerConfig{
		Name:             "test",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      2,
	}
	sub := WithCircuitBreaker(backend, cfg, zap.New(core))
	ctx := context.Background()
	s := Submission{Name: "ColdStart", Value: 1, Unit: UnitCount}

	require.Error(t, sub.Submit(ctx, DefaultNamespace, s))
	require.Error(t, sub.Submit(ctx, DefaultNamespace, s))

	err := sub.Submit(ctx, DefaultNamespace, s)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Len(t, backend.calls, 2)
	assert.Equal(t, 1, logs.FilterMessage("metrics circuit breaker state changed").Len())
}

func TestCircuitBreakerIgnoresInvalidSubmissions(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "negative counter", err: fmt.Errorf("%w: QuestionsRetrieved=-1", ErrNegativeCounter)},
		{name: "cloudwatch invalid parameter", err: fmt.Errorf("telemetry: put metric data: %w", &types.InvalidParameterValueException{})},
		{name: "cloudwatch missing parameter", err: fmt.Errorf("telemetry: put metric data: %w", &types.MissingRequiredParameterException{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &recordingSubmitter{err: tt.err}
			sub := WithCircuitBreaker(backend, DefaultBreakerConfig(), nil)
			ctx := context.Background()

			for i := 0; i < 10; i++ {
				require.Error(t, sub.Submit(ctx, DefaultNamespace, Submission{Name: "QuestionsRetrieved", Value: -1, Unit: UnitCount}))
			}

			backend.err = nil
			assert.NoError(t, sub.Submit(ctx, DefaultNamespace, Submission{Name: "ColdStart", Value: 1, Unit: UnitCount}))
			assert.Len(t, backend.calls, 11)
		})
	}
}

func TestCircuitBreakerStaysClosedForBadCallSite(t *testing.T) {
	otelSub, reader := newManualSubmitter(t)
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	m := NewMetrics(NewEmitter("", WithCircuitBreaker(otelSub, DefaultBreakerConfig(), logger), logger), logger)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		m.Questions.Retrieved(ctx, -1)
	}
	m.System.ColdStart(ctx)
	m.Admin.Operation(ctx, "CREATE", true)

	assert.Equal(t, 5, logs.FilterMessage("failed to emit metric").Len())
	assert.Equal(t, 0, logs.FilterMessage("metrics circuit breaker state changed").Len())
	got := collect(t, reader)
	assert.Contains(t, got, "skillscout_cold_start")
	assert.Contains(t, got, "skillscout_admin_operation")
}

func TestCircuitBreakerPassesThrough(t *testing.T) {
	backend := &recordingSubmitter{}
	sub := WithCircuitBreaker(backend, DefaultBreakerConfig(), nil)

	for i := 0; i < 10; i++ {
		require.NoError(t, sub.Submit(context.Background(), DefaultNamespace, Submission{Name: "ColdStart", Value: 1, Unit: UnitCount}))
	}
	assert.Len(t, backend.calls, 10)
}

func TestRateLimitDropsOverBurst(t *testing.T) {
	backend := &recordingSubmitter{}
	sub := WithRateLimit(backend, rate.NewLimiter(rate.Every(time.Hour), 2))
	ctx := context.Background()
	s := Submission{Name: "QuestionViewed", Value: 1, Unit: UnitCount}

	require.NoError(t, sub.Submit(ctx, DefaultNamespace, s))
	require.NoError(t, sub.Submit(ctx, DefaultNamespace, s))
	assert.ErrorIs(t, sub.Submit(ctx, DefaultNamespace, s), ErrRateLimited)
	assert.Len(t, backend.calls, 2)
}
