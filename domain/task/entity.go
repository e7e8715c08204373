package task

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidDueDate is returned when a due date is not a calendar date.
var ErrInvalidDueDate = errors.New("due date must be a date in YYYY-MM-DD format")

// Task is a to-do item owned by one user.
// Title is unique per owner. Version increases on every mutation.
type Task struct {
	ID          string    `gorm:"primaryKey;type:text" json:"id"`
	OwnerID     string    `gorm:"not null;type:text;uniqueIndex:idx_tasks_owner_title" json:"owner_id"`
	Title       string    `gorm:"not null;type:text;uniqueIndex:idx_tasks_owner_title" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	DueDate     string    `gorm:"type:text" json:"due_date"`
	Completed   bool      `gorm:"not null;default:false" json:"completed"`
	Version     int64     `gorm:"not null;default:1" json:"version"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// NormalizeDueDate converts a date or RFC 3339 timestamp to the stored
// "YYYY-MM-DD" text form.
func NormalizeDueDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidDueDate
	}
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d.Format(time.DateOnly), nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.Format(time.DateOnly), nil
	}
	return "", ErrInvalidDueDate
}

// Progress counts completed tasks against the total.
func Progress(tasks []Task) (done, total int) {
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}
	return done, len(tasks)
}
