package telemetry

import (
	"sync"

	"go.uber.org/zap"
)

// Metrics bundles the helper groups handlers use. The zero value is usable:
// every helper becomes a no-op.
type Metrics struct {
	Questions  Questions
	Admin      Admin
	Evaluation Evaluation
	System     System

	emitter *Emitter
}

// NewMetrics builds the helper groups on top of e. The logger receives the
// security records that accompany some admin events.
func NewMetrics(e *Emitter, logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Metrics{
		Questions:  Questions{e: e},
		Admin:      Admin{e: e, logger: logger},
		Evaluation: Evaluation{e: e},
		System:     System{e: e, coldStart: new(sync.Once)},
		emitter:    e,
	}
}

// Emitter returns the primitive the helper groups submit through.
func (m *Metrics) Emitter() *Emitter {
	if m == nil {
		return nil
	}
	return m.emitter
}
