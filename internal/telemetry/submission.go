package telemetry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap/zapcore"
)

// DefaultNamespace groups every SkillScout metric in the backend.
const DefaultNamespace = "SkillScout"

// Unit is the unit attached to a submitted metric. Values match the
// CloudWatch standard unit names.
type Unit string

const (
	UnitCount        Unit = "Count"
	UnitMilliseconds Unit = "Milliseconds"
	UnitSeconds      Unit = "Seconds"
	UnitMegabytes    Unit = "Megabytes"
	UnitBytes        Unit = "Bytes"
	UnitPercent      Unit = "Percent"
	UnitNone         Unit = "None"
)

// Valid reports whether u is one of the supported units.
func (u Unit) Valid() bool {
	switch u {
	case UnitCount, UnitMilliseconds, UnitSeconds, UnitMegabytes, UnitBytes, UnitPercent, UnitNone:
		return true
	default:
		return false
	}
}

var (
	// ErrEmptyName is logged when a metric is emitted without a name.
	ErrEmptyName = errors.New("telemetry: metric name is empty")

	// ErrNonFiniteValue is logged when a metric value is NaN or infinite.
	ErrNonFiniteValue = errors.New("telemetry: metric value is not finite")

	// ErrUnknownUnit is logged when a metric carries an unsupported unit.
	ErrUnknownUnit = errors.New("telemetry: unknown metric unit")
)

// Dimension is a name/value pair attached to a submission.
type Dimension struct {
	Name  string
	Value string
}

// Dim is shorthand for building a Dimension.
func Dim(name, value string) Dimension {
	return Dimension{Name: name, Value: value}
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (d Dimension) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("name", d.Name)
	enc.AddString("value", d.Value)
	return nil
}

// Dimensions keeps insertion order so submissions are deterministic.
type Dimensions []Dimension

// MarshalLogArray implements zapcore.ArrayMarshaler.
func (ds Dimensions) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, d := range ds {
		if err := enc.AppendObject(d); err != nil {
			return err
		}
	}
	return nil
}

// Submission is a single metric handed to a Submitter. It is built per call
// and never retained.
type Submission struct {
	Name       string
	Value      float64
	Unit       Unit
	Dimensions Dimensions
	Timestamp  time.Time
}

// Submitter delivers a submission to a monitoring backend.
type Submitter interface {
	Submit(ctx context.Context, namespace string, s Submission) error
}

// SubmitterFunc adapts a function to the Submitter interface.
type SubmitterFunc func(ctx context.Context, namespace string, s Submission) error

// Submit calls f.
func (f SubmitterFunc) Submit(ctx context.Context, namespace string, s Submission) error {
	return f(ctx, namespace, s)
}

// discard accepts every submission. The emitter's own info log is the only
// output, which makes it the dry-run backend.
var discard = SubmitterFunc(func(context.Context, string, Submission) error { return nil })
