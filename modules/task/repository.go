package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/todo-app/database"
	domain "github.com/example/todo-app/domain/task"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrTaskNotFound is returned when no task with the id belongs to the owner.
	ErrTaskNotFound = errors.New("task not found")
	// ErrDuplicateTitle is returned when the owner already has a task with the title.
	ErrDuplicateTitle = errors.New("task with this title already exists")
	// ErrStaleTask is returned when a conditional update finds a newer version.
	ErrStaleTask = errors.New("task was modified by another request")
)

// TaskRepository is the per-owner task store. Every query is scoped to an
// owner; a task belonging to someone else behaves as missing.
type TaskRepository interface {
	// List returns the owner's tasks in the store's natural order.
	List(ctx context.Context, ownerID string) ([]domain.Task, error)
	TitleExists(ctx context.Context, ownerID, title string) (bool, error)
	// Create assigns the task an ID and stores it.
	Create(ctx context.Context, task *domain.Task) error
	// SetCompleted sets the flag and bumps the version. When expectedVersion
	// is positive the write only applies to that version.
	SetCompleted(ctx context.Context, ownerID, taskID string, completed bool, expectedVersion int64) error
	Delete(ctx context.Context, ownerID, taskID string) error
	DeleteCompleted(ctx context.Context, ownerID string) (int64, error)
}

// NewTaskRepository returns the repository for the connected backend.
func NewTaskRepository(ctx context.Context, db *database.DB) (TaskRepository, error) {
	switch db.Driver {
	case database.DriverMongo:
		return NewMongoTaskRepository(ctx, db.Mongo)
	case database.DriverSQLite:
		return NewGormTaskRepository(db.Gorm)
	}
	return nil, fmt.Errorf("unsupported database driver %q", db.Driver)
}

// GormTaskRepository handles task persistence using GORM.
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository migrates the tasks table and returns the repository.
func NewGormTaskRepository(db *gorm.DB) (*GormTaskRepository, error) {
	if err := db.AutoMigrate(&domain.Task{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tasks table: %w", err)
	}
	return &GormTaskRepository{db: db}, nil
}

func (r *GormTaskRepository) List(ctx context.Context, ownerID string) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormTaskRepository) TitleExists(ctx context.Context, ownerID, title string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("owner_id = ? AND title = ?", ownerID, title).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateTitle
		}
		return err
	}
	return nil
}

func (r *GormTaskRepository) SetCompleted(ctx context.Context, ownerID, taskID string, completed bool, expectedVersion int64) error {
	query := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("id = ? AND owner_id = ?", taskID, ownerID)
	if expectedVersion > 0 {
		query = query.Where("version = ?", expectedVersion)
	}

	result := query.Updates(map[string]any{
		"completed": completed,
		"version":   gorm.Expr("version + 1"),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	if expectedVersion > 0 {
		var count int64
		err := r.db.WithContext(ctx).Model(&domain.Task{}).
			Where("id = ? AND owner_id = ?", taskID, ownerID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrStaleTask
		}
	}
	return ErrTaskNotFound
}

func (r *GormTaskRepository) Delete(ctx context.Context, ownerID, taskID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", taskID, ownerID).
		Delete(&domain.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *GormTaskRepository) DeleteCompleted(ctx context.Context, ownerID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND completed = ?", ownerID, true).
		Delete(&domain.Task{})
	return result.RowsAffected, result.Error
}
