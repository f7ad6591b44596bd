package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/teamboard/teamboard/internal/ierr"
)

func TestNewTaskEvent(t *testing.T) {
	taskData := map[string]any{"id": 42, "title": "ship it"}

	t.Run("valid task event", func(t *testing.T) {
		envelope, err := NewTaskEvent(TypeTaskCreated, 42, 7, taskData, 5)

		assert.NoError(t, err)
		assert.Equal(t, TypeTaskCreated, envelope.EventType)
		assert.Equal(t, int64(42), envelope.TaskID)
		assert.Equal(t, int64(7), envelope.ProjectID)
		assert.Equal(t, int64(5), envelope.UpdatedBy)
		assert.Equal(t, taskData, envelope.Data)
	})

	t.Run("rejects non-task type", func(t *testing.T) {
		_, err := NewTaskEvent(TypeConnected, 42, 7, taskData, 5)

		assert.Error(t, err)
		assert.Equal(t, ierr.ErrorCodeInvalidArgument, err.(ierr.Error).Code)
	})

	t.Run("rejects non-positive ids", func(t *testing.T) {
		_, err := NewTaskEvent(TypeTaskUpdated, 0, 7, taskData, 5)
		assert.Error(t, err)

		_, err = NewTaskEvent(TypeTaskUpdated, 42, -1, taskData, 5)
		assert.Error(t, err)
	})

	t.Run("rejects missing data", func(t *testing.T) {
		_, err := NewTaskEvent(TypeTaskMoved, 42, 7, nil, 5)

		assert.Error(t, err)
		assert.Equal(t, ierr.ErrorCodeInvalidArgument, err.(ierr.Error).Code)
	})
}

func TestEnvelopeWireFormat(t *testing.T) {
	t.Run("connected", func(t *testing.T) {
		raw, err := json.Marshal(NewConnected(7, "connected to project 7", 2))

		assert.NoError(t, err)
		assert.JSONEq(t,
			`{"event_type":"connected","project_id":7,"message":"connected to project 7","active_users":2}`,
			string(raw))
	})

	t.Run("ack echoes the received payload", func(t *testing.T) {
		raw, err := json.Marshal(NewAck(map[string]any{"hello": "board"}))

		assert.NoError(t, err)
		assert.JSONEq(t, `{"event_type":"ack","received":{"hello":"board"}}`, string(raw))
	})

	t.Run("task event omits empty optional fields", func(t *testing.T) {
		envelope, err := NewTaskEvent(TypeTaskUpdated, 42, 7, map[string]any{"id": 42}, 0)
		assert.NoError(t, err)

		raw, err := json.Marshal(envelope)
		assert.NoError(t, err)
		assert.NotContains(t, string(raw), "updated_by")
		assert.NotContains(t, string(raw), "active_users")
	})
}
