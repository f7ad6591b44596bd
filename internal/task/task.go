package task

import (
	"errors"
	"slices"
	"time"

	"github.com/teamboard/teamboard/internal/ierr"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

var statuses = []Status{StatusTodo, StatusInProgress, StatusReview, StatusDone}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Task is the durable board item. The realtime layer broadcasts this full
// representation as the data payload of every task event.
type Task struct {
	ID          int64      `json:"id"`
	ProjectID   int64      `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	AssignedTo  int64      `json:"assigned_to,omitempty"`
	CreatedBy   int64      `json:"created_by"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type CreateRequest struct {
	ProjectID   int64      `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	AssignedTo  int64      `json:"assigned_to,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

func (r *CreateRequest) Validate() error {
	if r.ProjectID <= 0 {
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("projectId must be a positive integer"))
	}

	if r.Title == "" || len(r.Title) > 200 {
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("title must be between 1 and 200 characters"))
	}

	if r.Status == "" {
		r.Status = StatusTodo
	} else if !slices.Contains(statuses, r.Status) {
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("unknown status: "+string(r.Status)))
	}

	if r.Priority == "" {
		r.Priority = PriorityMedium
	} else if !slices.Contains(priorities, r.Priority) {
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("unknown priority: "+string(r.Priority)))
	}

	return nil
}

// UpdateRequest is a partial update; nil fields are left untouched.
type UpdateRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	AssignedTo  *int64     `json:"assigned_to,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

func (r *UpdateRequest) Validate() error {
	if r.Title == nil && r.Description == nil && r.Status == nil &&
		r.Priority == nil && r.AssignedTo == nil && r.DueDate == nil {
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("update must set at least one field"))
	}

	if r.Title != nil && (*r.Title == "" || len(*r.Title) > 200) {
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("title must be between 1 and 200 characters"))
	}

	if r.Status != nil && !slices.Contains(statuses, *r.Status) {
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("unknown status: "+string(*r.Status)))
	}

	if r.Priority != nil && !slices.Contains(priorities, *r.Priority) {
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("unknown priority: "+string(*r.Priority)))
	}

	return nil
}

// StatusOnly reports whether the update is purely a move between columns,
// which is what the board's drag and drop produces.
func (r *UpdateRequest) StatusOnly() bool {
	return r.Status != nil &&
		r.Title == nil && r.Description == nil &&
		r.Priority == nil && r.AssignedTo == nil && r.DueDate == nil
}
