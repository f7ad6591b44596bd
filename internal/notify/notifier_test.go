package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamboard/teamboard/internal/event"
	"github.com/teamboard/teamboard/internal/task"
	"go.uber.org/zap"
)

type capturingBroadcaster struct {
	projectIDs []int64
	envelopes  []event.Envelope
}

func (b *capturingBroadcaster) Broadcast(projectID int64, envelope event.Envelope) {
	b.projectIDs = append(b.projectIDs, projectID)
	b.envelopes = append(b.envelopes, envelope)
}

func sampleTask() task.Task {
	return task.Task{
		ID:        42,
		ProjectID: 7,
		Title:     "ship it",
		Status:    task.StatusInProgress,
		Priority:  task.PriorityHigh,
		CreatedBy: 5,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestTaskNotifier(t *testing.T) {
	t.Run("task created", func(t *testing.T) {
		broadcaster := &capturingBroadcaster{}
		notifier := NewTaskNotifier(zap.NewNop(), broadcaster)

		notifier.TaskCreated(sampleTask(), 5)

		require.Len(t, broadcaster.envelopes, 1)
		envelope := broadcaster.envelopes[0]
		assert.Equal(t, int64(7), broadcaster.projectIDs[0])
		assert.Equal(t, event.TypeTaskCreated, envelope.EventType)
		assert.Equal(t, int64(42), envelope.TaskID)
		assert.Equal(t, int64(5), envelope.UpdatedBy)
		assert.Equal(t, sampleTask(), envelope.Data, "data must carry the full task representation")
	})

	t.Run("task moved", func(t *testing.T) {
		broadcaster := &capturingBroadcaster{}
		notifier := NewTaskNotifier(zap.NewNop(), broadcaster)

		notifier.TaskMoved(sampleTask(), 9)

		require.Len(t, broadcaster.envelopes, 1)
		assert.Equal(t, event.TypeTaskMoved, broadcaster.envelopes[0].EventType)
	})

	t.Run("malformed task is dropped, never propagated", func(t *testing.T) {
		broadcaster := &capturingBroadcaster{}
		notifier := NewTaskNotifier(zap.NewNop(), broadcaster)

		notifier.TaskUpdated(task.Task{}, 5)

		assert.Empty(t, broadcaster.envelopes)
	})
}
