package task

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/todo-app/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskPort defines the task operations available to other modules.
type TaskPort interface {
	ListTasks(ctx context.Context, ownerID string) ([]domain.Task, error)
	AddTask(ctx context.Context, ownerID, title, description, dueDate string) (string, error)
	SetCompleted(ctx context.Context, ownerID, taskID string, completed bool, expectedVersion int64) error
	DeleteTask(ctx context.Context, ownerID, taskID string) error
	ClearCompleted(ctx context.Context, ownerID string) (int64, error)
}

var _ TaskPort = (*TaskService)(nil)

// taskAdapter wraps ServiceContainer for type-safe cross-module communication.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

func (a *taskAdapter) call(ctx context.Context, service string, req, resp any) error {
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

// ListTasks lists the owner's tasks via the list-tasks service.
func (a *taskAdapter) ListTasks(ctx context.Context, ownerID string) ([]domain.Task, error) {
	req := ListTasksRequest{OwnerID: ownerID}
	var resp ListTasksResponse
	if err := a.call(ctx, "list-tasks", &req, &resp); err != nil {
		return nil, err
	}
	if resp.Tasks == nil {
		return []domain.Task{}, nil
	}
	return resp.Tasks, nil
}

// AddTask creates a task via the add-task service.
func (a *taskAdapter) AddTask(ctx context.Context, ownerID, title, description, dueDate string) (string, error) {
	req := AddTaskRequest{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		DueDate:     dueDate,
	}
	var resp AddTaskResponse
	if err := a.call(ctx, "add-task", &req, &resp); err != nil {
		return "", err
	}
	if err := errorFromCode(resp.Code); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// SetCompleted updates a task's completed flag via the set-completed service.
func (a *taskAdapter) SetCompleted(ctx context.Context, ownerID, taskID string, completed bool, expectedVersion int64) error {
	req := SetCompletedRequest{
		OwnerID:         ownerID,
		TaskID:          taskID,
		Completed:       completed,
		ExpectedVersion: expectedVersion,
	}
	var resp SetCompletedResponse
	if err := a.call(ctx, "set-completed", &req, &resp); err != nil {
		return err
	}
	return errorFromCode(resp.Code)
}

// DeleteTask deletes a task via the delete-task service.
func (a *taskAdapter) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	req := DeleteTaskRequest{OwnerID: ownerID, TaskID: taskID}
	var resp DeleteTaskResponse
	return a.call(ctx, "delete-task", &req, &resp)
}

// ClearCompleted removes the owner's completed tasks via the clear-completed service.
func (a *taskAdapter) ClearCompleted(ctx context.Context, ownerID string) (int64, error) {
	req := ClearCompletedRequest{OwnerID: ownerID}
	var resp ClearCompletedResponse
	if err := a.call(ctx, "clear-completed", &req, &resp); err != nil {
		return 0, err
	}
	return resp.Cleared, nil
}
