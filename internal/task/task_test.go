package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/teamboard/teamboard/internal/ierr"
)

func TestCreateRequest_Validate(t *testing.T) {
	t.Run("defaults status and priority", func(t *testing.T) {
		request := CreateRequest{ProjectID: 7, Title: "ship it"}

		assert.NoError(t, request.Validate())
		assert.Equal(t, StatusTodo, request.Status)
		assert.Equal(t, PriorityMedium, request.Priority)
	})

	t.Run("rejects missing project", func(t *testing.T) {
		request := CreateRequest{Title: "ship it"}

		err := request.Validate()
		assert.Error(t, err)
		assert.Equal(t, ierr.ErrorCodeInvalidArgument, err.(ierr.Error).Code)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		request := CreateRequest{ProjectID: 7}

		assert.Error(t, request.Validate())
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		request := CreateRequest{ProjectID: 7, Title: "ship it", Status: "parked"}

		assert.Error(t, request.Validate())
	})
}

func TestUpdateRequest_Validate(t *testing.T) {
	t.Run("rejects empty update", func(t *testing.T) {
		request := UpdateRequest{}

		err := request.Validate()
		assert.Error(t, err)
		assert.Equal(t, ierr.ErrorCodeInvalidArgument, err.(ierr.Error).Code)
	})

	t.Run("accepts partial update", func(t *testing.T) {
		title := "refine it"
		request := UpdateRequest{Title: &title}

		assert.NoError(t, request.Validate())
	})

	t.Run("rejects unknown priority", func(t *testing.T) {
		priority := Priority("whenever")
		request := UpdateRequest{Priority: &priority}

		assert.Error(t, request.Validate())
	})
}

func TestUpdateRequest_StatusOnly(t *testing.T) {
	status := StatusInProgress
	title := "ship it"

	move := UpdateRequest{Status: &status}
	assert.True(t, move.StatusOnly())

	edit := UpdateRequest{Status: &status, Title: &title}
	assert.False(t, edit.StatusOnly())

	rename := UpdateRequest{Title: &title}
	assert.False(t, rename.StatusOnly())
}
