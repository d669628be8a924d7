package telemetry

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// Emitter sends single metric submissions to a backend. Emit never returns an
// error and never panics: every failure ends up in a warning log.
type Emitter struct {
	namespace string
	submitter Submitter
	logger    *zap.Logger
	now       func() time.Time
}

// EmitterOption customises an Emitter.
type EmitterOption func(*Emitter)

// WithClock overrides the clock used to stamp submissions.
func WithClock(now func() time.Time) EmitterOption {
	return func(e *Emitter) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEmitter returns an Emitter that submits under namespace. An empty
// namespace falls back to DefaultNamespace, a nil submitter discards and a
// nil logger is replaced by a no-op logger.
func NewEmitter(namespace string, submitter Submitter, logger *zap.Logger, opts ...EmitterOption) *Emitter {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if submitter == nil {
		submitter = discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Emitter{
		namespace: namespace,
		submitter: submitter,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Namespace returns the namespace every submission is sent under.
func (e *Emitter) Namespace() string {
	if e == nil {
		return ""
	}
	return e.namespace
}

// Emit submits one metric. An empty unit means UnitCount. Emit is safe to
// call on a nil Emitter.
func (e *Emitter) Emit(ctx context.Context, name string, value float64, unit Unit, dims ...Dimension) {
	if e == nil {
		return
	}
	if unit == "" {
		unit = UnitCount
	}
	fields := []zap.Field{
		zap.String("metric_name", name),
		zap.Float64("value", value),
		zap.String("unit", string(unit)),
		zap.Array("dimensions", Dimensions(dims)),
	}
	if err := e.submit(ctx, name, value, unit, dims); err != nil {
		e.logger.Warn("failed to emit metric", append(fields, zap.Error(err))...)
		return
	}
	e.logger.Info("emitted metric", fields...)
}

func (e *Emitter) submit(ctx context.Context, name string, value float64, unit Unit, dims []Dimension) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("telemetry: submitter panic: %v", r)
		}
	}()

	switch {
	case name == "":
		return ErrEmptyName
	case math.IsNaN(value) || math.IsInf(value, 0):
		return ErrNonFiniteValue
	case !unit.Valid():
		return fmt.Errorf("%w %q", ErrUnknownUnit, unit)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s := Submission{
		Name:      name,
		Value:     value,
		Unit:      unit,
		Timestamp: e.now().UTC(),
	}
	if len(dims) > 0 {
		s.Dimensions = append(Dimensions(nil), dims...)
	}
	return e.submitter.Submit(ctx, e.namespace, s)
}
