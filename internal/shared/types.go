package shared

import (
	"context"

	"monetization-backend/internal/shared/apperror"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Task types cho asynq worker
const (
	TypeLedgerReconcile  = "ledger:reconcile"
	TypePromoCodeRecount = "promocode:recount"

	QueueLedger  = "ledger"
	QueueDefault = "default"
)

// Actor is the caller identity supplied by the identity provider.
// Services re-check Role themselves instead of trusting the route.
type Actor struct {
	UserID string
	Email  string
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// RequireAdmin returns ErrAdminRequired for non-admin actors
func (a Actor) RequireAdmin() error {
	if !a.IsAdmin() {
		return apperror.ErrAdminRequired
	}
	return nil
}

// RequireUser rejects anonymous actors
func (a Actor) RequireUser() error {
	if a.UserID == "" {
		return apperror.Forbidden("AUTH_REQUIRED", "Yêu cầu đăng nhập")
	}
	return nil
}

// SystemActor is used by the worker for out-of-band jobs
var SystemActor = Actor{UserID: "system", Role: RoleAdmin}

type actorKey struct{}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
