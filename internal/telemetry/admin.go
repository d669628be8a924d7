package telemetry

import (
	"context"

	"go.uber.org/zap"
)

// Admin records admin CRUD outcomes and authorization decisions.
type Admin struct {
	e      *Emitter
	logger *zap.Logger
}

// Operation records an admin CRUD outcome such as CREATE, UPDATE or DELETE.
func (a Admin) Operation(ctx context.Context, operation string, success bool) {
	a.e.Emit(ctx, "AdminOperation", 1, UnitCount,
		Dim(dimOperation, normalizeLabel(operation, "unknown")),
		boolDim(dimSuccess, success),
	)
}

func (a Admin) QuestionCreated(ctx context.Context, category string) {
	a.e.Emit(ctx, "QuestionCreated", 1, UnitCount, Dim(dimCategory, normalizeLabel(category, "unknown")))
}

func (a Admin) QuestionUpdated(ctx context.Context, questionID string) {
	a.e.Emit(ctx, "QuestionUpdated", 1, UnitCount)
}

func (a Admin) QuestionDeleted(ctx context.Context, questionID string) {
	a.e.Emit(ctx, "QuestionDeleted", 1, UnitCount)
}

// UnauthorizedAccess records a non-admin hitting an admin route. The acting
// identity goes to the security log only, never to a dimension.
func (a Admin) UnauthorizedAccess(ctx context.Context, userSub, operation string) {
	a.e.Emit(ctx, "UnauthorizedAdminAccess", 1, UnitCount, Dim(dimOperation, normalizeLabel(operation, "unknown")))
	if a.logger != nil {
		a.logger.Warn("unauthorized admin access attempt",
			zap.String("user_sub", userSub),
			zap.String("operation", operation),
		)
	}
}

func (a Admin) AuthorizationCheck(ctx context.Context, isAdmin bool) {
	a.e.Emit(ctx, "AdminAuthCheck", 1, UnitCount, boolDim(dimIsAdmin, isAdmin))
}
