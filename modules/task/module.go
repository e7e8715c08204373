package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/example/todo-app/database"
	"github.com/example/todo-app/modules/auth"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/middleware/requestid"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskModule provides per-user task services.
type TaskModule struct {
	db      *database.DB
	owners  OwnerValidator
	service *TaskService
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.DependentModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

func NewModule(db *database.DB) *TaskModule {
	return &TaskModule{db: db}
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) Dependencies() []string {
	return []string{"auth"}
}

func (m *TaskModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "auth" {
		m.owners = auth.NewAuthAdapter(container)
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "add-task", json.Unmarshal, json.Marshal, m.addTask,
	); err != nil {
		return fmt.Errorf("failed to register add-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "set-completed", json.Unmarshal, json.Marshal, m.setCompleted,
	); err != nil {
		return fmt.Errorf("failed to register set-completed service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "clear-completed", json.Unmarshal, json.Marshal, m.clearCompleted,
	); err != nil {
		return fmt.Errorf("failed to register clear-completed service: %w", err)
	}

	log.Printf("[task] Registered services: list-tasks, add-task, set-completed, delete-task, clear-completed")
	return nil
}

func (m *TaskModule) Start(ctx context.Context) error {
	if m.owners == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.db == nil {
		return errors.New("database not initialized")
	}

	repo, err := NewTaskRepository(ctx, m.db)
	if err != nil {
		return fmt.Errorf("failed to initialize task repository: %w", err)
	}
	m.service = NewTaskService(repo, m.owners)

	log.Println("[task] Module started (depends on: auth)")
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	log.Println("[task] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{Healthy: false, Message: "not started"}
	}
	if err := m.db.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

// listTasks handles the list-tasks service request.
func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.service.ListTasks(ctx, req.OwnerID)
	if err != nil {
		return ListTasksResponse{}, err
	}
	return ListTasksResponse{Tasks: tasks}, nil
}

// addTask handles the add-task service request.
func (m *TaskModule) addTask(ctx context.Context, req AddTaskRequest, _ *mono.Msg) (AddTaskResponse, error) {
	id, err := m.service.AddTask(ctx, req.OwnerID, req.Title, req.Description, req.DueDate)
	if err != nil {
		if code, ok := codeOf(err); ok {
			return AddTaskResponse{Code: code}, nil
		}
		return AddTaskResponse{}, err
	}
	return AddTaskResponse{ID: id}, nil
}

// setCompleted handles the set-completed service request.
func (m *TaskModule) setCompleted(ctx context.Context, req SetCompletedRequest, _ *mono.Msg) (SetCompletedResponse, error) {
	err := m.service.SetCompleted(ctx, req.OwnerID, req.TaskID, req.Completed, req.ExpectedVersion)
	if err != nil {
		if code, ok := codeOf(err); ok {
			return SetCompletedResponse{Code: code}, nil
		}
		return SetCompletedResponse{}, err
	}
	return SetCompletedResponse{}, nil
}

// deleteTask handles the delete-task service request.
func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.service.DeleteTask(ctx, req.OwnerID, req.TaskID); err != nil {
		return DeleteTaskResponse{}, err
	}
	return DeleteTaskResponse{}, nil
}

// clearCompleted handles the clear-completed service request.
func (m *TaskModule) clearCompleted(ctx context.Context, req ClearCompletedRequest, _ *mono.Msg) (ClearCompletedResponse, error) {
	n, err := m.service.ClearCompleted(ctx, req.OwnerID)
	if err != nil {
		return ClearCompletedResponse{}, err
	}
	if n > 0 {
		log.Printf("[task] Cleared %d completed task(s) for %s (request_id=%s)", n, req.OwnerID, requestid.GetRequestID(ctx))
	}
	return ClearCompletedResponse{Cleared: n}, nil
}
