package notify

import (
	"github.com/teamboard/teamboard/internal/event"
	"github.com/teamboard/teamboard/internal/task"
	"go.uber.org/zap"
)

type Broadcaster interface {
	Broadcast(projectID int64, envelope event.Envelope)
}

// TaskNotifier is the bridge between the CRUD layer and the realtime fan
// out. The REST handlers call it once per committed mutation, never before
// the store write succeeds. Nothing it does can fail the caller's request:
// the broadcast is an optimization, polling the REST API remains the source
// of truth.
type TaskNotifier struct {
	logger      *zap.Logger
	broadcaster Broadcaster
}

func NewTaskNotifier(logger *zap.Logger, broadcaster Broadcaster) *TaskNotifier {
	return &TaskNotifier{
		logger:      logger,
		broadcaster: broadcaster,
	}
}

func (n *TaskNotifier) TaskCreated(t task.Task, updatedBy int64) {
	n.notify(event.TypeTaskCreated, t, updatedBy)
}

func (n *TaskNotifier) TaskUpdated(t task.Task, updatedBy int64) {
	n.notify(event.TypeTaskUpdated, t, updatedBy)
}

// TaskMoved announces a pure column change, the drag and drop path.
func (n *TaskNotifier) TaskMoved(t task.Task, updatedBy int64) {
	n.notify(event.TypeTaskMoved, t, updatedBy)
}

func (n *TaskNotifier) notify(eventType event.Type, t task.Task, updatedBy int64) {
	envelope, err := event.NewTaskEvent(eventType, t.ID, t.ProjectID, t, updatedBy)
	if err != nil {
		n.logger.Error("dropping malformed task event",
			zap.String("eventType", string(eventType)),
			zap.Int64("taskId", t.ID),
			zap.Int64("projectId", t.ProjectID),
			zap.Error(err))

		return
	}

	n.broadcaster.Broadcast(t.ProjectID, envelope)
}
