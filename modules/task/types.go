package task

import (
	"errors"
	"fmt"

	domain "github.com/example/todo-app/domain/task"
)

// ListTasksRequest represents a list-tasks request.
type ListTasksRequest struct {
	OwnerID string `json:"owner_id"`
}

// ListTasksResponse represents a list-tasks response.
type ListTasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

// AddTaskRequest represents an add-task request.
type AddTaskRequest struct {
	OwnerID     string `json:"owner_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
}

// AddTaskResponse carries the new id, or a code when the task was refused.
type AddTaskResponse struct {
	ID   string `json:"id,omitempty"`
	Code string `json:"code,omitempty"`
}

// SetCompletedRequest represents a set-completed request.
// ExpectedVersion 0 means an unconditional write.
type SetCompletedRequest struct {
	OwnerID         string `json:"owner_id"`
	TaskID          string `json:"task_id"`
	Completed       bool   `json:"completed"`
	ExpectedVersion int64  `json:"expected_version,omitempty"`
}

// SetCompletedResponse represents a set-completed response.
type SetCompletedResponse struct {
	Code string `json:"code,omitempty"`
}

// DeleteTaskRequest represents a delete-task request.
type DeleteTaskRequest struct {
	OwnerID string `json:"owner_id"`
	TaskID  string `json:"task_id"`
}

// DeleteTaskResponse represents a delete-task response.
type DeleteTaskResponse struct{}

// ClearCompletedRequest represents a clear-completed request.
type ClearCompletedRequest struct {
	OwnerID string `json:"owner_id"`
}

// ClearCompletedResponse reports how many tasks were removed.
type ClearCompletedResponse struct {
	Cleared int64 `json:"cleared"`
}

var errorCodes = map[string]error{
	"duplicate_title":  ErrDuplicateTitle,
	"empty_title":      ErrEmptyTitle,
	"invalid_due_date": domain.ErrInvalidDueDate,
	"unknown_owner":    ErrUnknownOwner,
	"stale_task":       ErrStaleTask,
}

func codeOf(err error) (string, bool) {
	for code, target := range errorCodes {
		if errors.Is(err, target) {
			return code, true
		}
	}
	return "", false
}

func errorFromCode(code string) error {
	if code == "" {
		return nil
	}
	if err, ok := errorCodes[code]; ok {
		return err
	}
	return fmt.Errorf("unknown task error code %q", code)
}
