package event

import (
	"errors"

	"github.com/teamboard/teamboard/internal/ierr"
)

type Type string

const (
	TypeTaskCreated Type = "task_created"
	TypeTaskUpdated Type = "task_updated"
	TypeTaskMoved   Type = "task_moved"
	TypeConnected   Type = "connected"
	TypeAck         Type = "ack"
	TypeError       Type = "error"
)

// Envelope is the wire format for everything the server pushes to board
// viewers. Which fields are populated depends on EventType; the constructors
// below are the only way the rest of the codebase builds one.
type Envelope struct {
	EventType   Type   `json:"event_type"`
	TaskID      int64  `json:"task_id,omitempty"`
	ProjectID   int64  `json:"project_id,omitempty"`
	Data        any    `json:"data,omitempty"`
	UpdatedBy   int64  `json:"updated_by,omitempty"`
	Message     string `json:"message,omitempty"`
	ActiveUsers int    `json:"active_users,omitempty"`
	Received    any    `json:"received,omitempty"`
}

// NewTaskEvent builds a task mutation envelope. The data payload must be the
// full current task representation, never a partial diff.
func NewTaskEvent(eventType Type, taskID int64, projectID int64, data any, updatedBy int64) (Envelope, error) {
	switch eventType {
	case TypeTaskCreated, TypeTaskUpdated, TypeTaskMoved:
	default:
		return Envelope{}, ierr.New(ierr.ErrorCodeInvalidArgument,
			errors.New("not a task event type: "+string(eventType)))
	}

	if taskID <= 0 {
		return Envelope{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("taskId must be positive"))
	}

	if projectID <= 0 {
		return Envelope{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("projectId must be positive"))
	}

	if data == nil {
		return Envelope{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("task data is required"))
	}

	return Envelope{
		EventType: eventType,
		TaskID:    taskID,
		ProjectID: projectID,
		Data:      data,
		UpdatedBy: updatedBy,
	}, nil
}

// NewConnected is the greeting sent right after a viewer is registered.
// activeUsers includes the viewer itself and is informational only.
func NewConnected(projectID int64, message string, activeUsers int) Envelope {
	return Envelope{
		EventType:   TypeConnected,
		ProjectID:   projectID,
		Message:     message,
		ActiveUsers: activeUsers,
	}
}

// NewAck echoes a parseable inbound frame back to its sender.
func NewAck(received any) Envelope {
	return Envelope{
		EventType: TypeAck,
		Received:  received,
	}
}

// NewProtocolError answers an unparseable inbound frame.
func NewProtocolError(message string) Envelope {
	return Envelope{
		EventType: TypeError,
		Message:   message,
	}
}
