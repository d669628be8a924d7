package telemetry

import (
	"context"
	"sync"
	"time"
)

// System records runtime health: cold starts, memory, concurrency, errors and
// database calls.
type System struct {
	e         *Emitter
	coldStart *sync.Once
}

func (s System) ColdStart(ctx context.Context) {
	s.e.Emit(ctx, "ColdStart", 1, UnitCount)
}

// ColdStartOnce records a cold start the first time it is called on the
// Metrics value that owns s. Later calls are no-ops.
func (s System) ColdStartOnce(ctx context.Context) {
	if s.coldStart == nil {
		s.ColdStart(ctx)
		return
	}
	s.coldStart.Do(func() { s.ColdStart(ctx) })
}

func (s System) MemoryUsage(ctx context.Context, megabytes float64) {
	s.e.Emit(ctx, "MemoryUsage", megabytes, UnitMegabytes)
}

func (s System) ConcurrentExecutions(ctx context.Context, count int) {
	s.e.Emit(ctx, "ConcurrentExecutions", float64(count), UnitCount)
}

// ErrorOccurred records an application error. Use ErrorType to derive the
// label from an error value.
func (s System) ErrorOccurred(ctx context.Context, errorType, operation string) {
	s.e.Emit(ctx, "ApplicationError", 1, UnitCount,
		Dim(dimErrorType, normalizeLabel(errorType, "unknown")),
		Dim(dimOperation, normalizeLabel(operation, "unknown")),
	)
}

// DatabaseOperation records a count and a latency for one database call.
// Both submissions share the same dimensions.
func (s System) DatabaseOperation(ctx context.Context, operation string, d time.Duration, success bool) {
	dims := []Dimension{
		Dim(dimOperation, normalizeLabel(operation, "unknown")),
		boolDim(dimSuccess, success),
	}
	s.e.Emit(ctx, "DatabaseOperation", 1, UnitCount, dims...)
	s.e.Emit(ctx, "DatabaseLatency", milliseconds(d), UnitMilliseconds, dims...)
}
