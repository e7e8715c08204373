package web

import (
	"time"

	domain "github.com/example/todo-app/domain/task"
)

// CredentialsRequest is the body of the register and login endpoints.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse represents an authentication token response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// UserResponse represents a user response.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTaskRequest is the body of POST /api/v1/tasks. DueDate defaults to today.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
}

// CreateTaskResponse carries the id of the new task.
type CreateTaskResponse struct {
	ID string `json:"id"`
}

// UpdateTaskRequest is the body of PATCH /api/v1/tasks/:id.
// Version 0 or absent skips the concurrency check.
type UpdateTaskRequest struct {
	Completed *bool `json:"completed"`
	Version   int64 `json:"version"`
}

// TaskListResponse lists the caller's tasks with completion counts.
type TaskListResponse struct {
	Tasks     []domain.Task `json:"tasks"`
	Completed int           `json:"completed"`
	Total     int           `json:"total"`
}

// ClearCompletedResponse reports how many tasks were removed.
type ClearCompletedResponse struct {
	Cleared int64 `json:"cleared"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
