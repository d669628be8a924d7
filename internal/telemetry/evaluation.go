package telemetry

import (
	"context"
	"time"
)

// EngagementLevel buckets an evaluation score.
type EngagementLevel string

const (
	EngagementLow    EngagementLevel = "Low"
	EngagementMedium EngagementLevel = "Medium"
	EngagementHigh   EngagementLevel = "High"
)

// ClassifyEngagement maps a 0-100 score to an engagement level: 80 and above
// is High, 50 to 79 is Medium, anything lower is Low. Scores are not clamped.
func ClassifyEngagement(score int) EngagementLevel {
	switch {
	case score >= 80:
		return EngagementHigh
	case score >= 50:
		return EngagementMedium
	default:
		return EngagementLow
	}
}

// Evaluation records AI answer evaluations.
type Evaluation struct {
	e *Emitter
}

// AnswerEvaluated records one evaluation, its raw score and its correctness.
func (v Evaluation) AnswerEvaluated(ctx context.Context, score int, isCorrect bool) {
	v.e.Emit(ctx, "AnswerEvaluated", 1, UnitCount)
	v.e.Emit(ctx, "EvaluationScore", float64(score), UnitNone)
	v.e.Emit(ctx, "AnswerCorrectness", 1, UnitCount, boolDim(dimIsCorrect, isCorrect))
}

func (v Evaluation) Success(ctx context.Context) {
	v.e.Emit(ctx, "EvaluationSuccess", 1, UnitCount)
}

func (v Evaluation) Failure(ctx context.Context, errorType string) {
	v.e.Emit(ctx, "EvaluationFailure", 1, UnitCount, Dim(dimErrorType, normalizeLabel(errorType, "unknown")))
}

// ResponseTime records the latency of the Marcus AI evaluator.
func (v Evaluation) ResponseTime(ctx context.Context, d time.Duration) {
	v.e.Emit(ctx, "MarcusResponseTime", milliseconds(d), UnitMilliseconds)
}

func (v Evaluation) UserEngagement(ctx context.Context, score int) {
	v.e.Emit(ctx, "UserEngagement", 1, UnitCount, Dim(dimEngagementLevel, string(ClassifyEngagement(score))))
}
