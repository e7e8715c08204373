package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/example/todo-app/domain/task"
)

var (
	// ErrUnknownOwner is returned when a task is added for a user that does not exist.
	ErrUnknownOwner = errors.New("task owner does not exist")
	// ErrEmptyTitle is returned when the title is blank.
	ErrEmptyTitle = errors.New("task title is required")
)

// OwnerValidator confirms that a user id names an existing account.
type OwnerValidator interface {
	ValidateUser(ctx context.Context, userID string) (bool, error)
}

// TaskService holds the task rules on top of a TaskRepository.
type TaskService struct {
	repo   TaskRepository
	owners OwnerValidator
	now    func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(repo TaskRepository, owners OwnerValidator) *TaskService {
	return &TaskService{
		repo:   repo,
		owners: owners,
		now:    time.Now,
	}
}

// ListTasks returns all tasks of the owner.
func (s *TaskService) ListTasks(ctx context.Context, ownerID string) ([]domain.Task, error) {
	tasks, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// AddTask stores a new, not yet completed task and returns its id.
// The title is stored exactly as given; callers trim user input.
func (s *TaskService) AddTask(ctx context.Context, ownerID, title, description, dueDate string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", ErrEmptyTitle
	}

	due, err := domain.NormalizeDueDate(dueDate)
	if err != nil {
		return "", err
	}

	valid, err := s.owners.ValidateUser(ctx, ownerID)
	if err != nil {
		return "", fmt.Errorf("failed to validate owner: %w", err)
	}
	if !valid {
		return "", ErrUnknownOwner
	}

	exists, err := s.repo.TitleExists(ctx, ownerID, title)
	if err != nil {
		return "", fmt.Errorf("failed to check title: %w", err)
	}
	if exists {
		return "", ErrDuplicateTitle
	}

	t := &domain.Task{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		DueDate:     due,
		Completed:   false,
		Version:     1,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		if errors.Is(err, ErrDuplicateTitle) {
			return "", ErrDuplicateTitle
		}
		return "", fmt.Errorf("failed to create task: %w", err)
	}
	return t.ID, nil
}

// SetCompleted sets the completed flag of one of the owner's tasks. A task
// that does not exist or belongs to another owner is left alone without error.
// A positive expectedVersion makes the write conditional; ErrStaleTask means
// the task changed since that version was read.
func (s *TaskService) SetCompleted(ctx context.Context, ownerID, taskID string, completed bool, expectedVersion int64) error {
	err := s.repo.SetCompleted(ctx, ownerID, taskID, completed, expectedVersion)
	switch {
	case err == nil, errors.Is(err, ErrTaskNotFound):
		return nil
	case errors.Is(err, ErrStaleTask):
		return ErrStaleTask
	}
	return fmt.Errorf("failed to update task: %w", err)
}

// DeleteTask removes one of the owner's tasks. Missing tasks are a no-op.
func (s *TaskService) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	if err := s.repo.Delete(ctx, ownerID, taskID); err != nil && !errors.Is(err, ErrTaskNotFound) {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// ClearCompleted deletes the owner's completed tasks and returns how many went.
func (s *TaskService) ClearCompleted(ctx context.Context, ownerID string) (int64, error) {
	n, err := s.repo.DeleteCompleted(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear completed tasks: %w", err)
	}
	return n, nil
}
