package task

import "context"

// Store is the durable home of board tasks. The realtime subsystem never
// writes through it; events are emitted only after a Store call succeeds.
type Store interface {
	Setup(ctx context.Context) error
	Create(ctx context.Context, request CreateRequest, createdBy int64) (Task, error)
	Update(ctx context.Context, taskID int64, request UpdateRequest) (Task, error)
	Get(ctx context.Context, taskID int64) (Task, error)
	List(ctx context.Context, projectID int64, status Status) ([]Task, error)
}
