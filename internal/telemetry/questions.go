package telemetry

import (
	"context"
	"time"
)

// Questions records question retrieval and search activity.
type Questions struct {
	e *Emitter
}

func (q Questions) Retrieved(ctx context.Context, count int) {
	q.e.Emit(ctx, "QuestionsRetrieved", float64(count), UnitCount)
}

// Viewed records a single question view. Category and difficulty become
// dimensions only when non-empty; the question ID is never a dimension.
func (q Questions) Viewed(ctx context.Context, questionID, category, difficulty string) {
	var dims []Dimension
	dims = appendIfSet(dims, dimCategory, category)
	dims = appendIfSet(dims, dimDifficulty, difficulty)
	q.e.Emit(ctx, "QuestionViewed", 1, UnitCount, dims...)
}

func (q Questions) NotFound(ctx context.Context) {
	q.e.Emit(ctx, "QuestionNotFound", 1, UnitCount)
}

func (q Questions) APILatency(ctx context.Context, latency time.Duration, operation string) {
	q.e.Emit(ctx, "APILatency", milliseconds(latency), UnitMilliseconds, appendIfSet(nil, dimOperation, operation)...)
}

// TimeOperation starts a latency measurement for operation. Call the returned
// function when the operation finishes.
func (q Questions) TimeOperation(ctx context.Context, operation string) func() {
	if q.e == nil {
		return func() {}
	}
	start := q.e.now()
	return func() {
		q.APILatency(ctx, q.e.now().Sub(start), operation)
	}
}

func (q Questions) SearchPerformed(ctx context.Context, resultCount int, hasFilters bool) {
	q.e.Emit(ctx, "SearchPerformed", 1, UnitCount)
	q.e.Emit(ctx, "SearchResultCount", float64(resultCount), UnitCount)
	if hasFilters {
		q.e.Emit(ctx, "FilteredSearch", 1, UnitCount)
	}
}
