package workflow

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// TaskStatus is the progress of a task
type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
)

// IsValid reports whether s is a known task status
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

// TaskPriority is the urgency of a task
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

// IsValid reports whether p is a known task priority
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task is a unit of work assigned to a user
type Task struct {
	shared.BaseAggregateRoot
	TaskCode     string       `gorm:"type:varchar(20);uniqueIndex"`
	Title        string       `gorm:"type:varchar(255);not null"`
	Description  string       `gorm:"type:text"`
	Status       TaskStatus   `gorm:"type:varchar(20);not null;default:'TODO';index"`
	Priority     TaskPriority `gorm:"type:varchar(10);not null;default:'MEDIUM'"`
	StartDate    time.Time    `gorm:"not null"`
	EndDate      time.Time    `gorm:"not null"`
	AssignedToID uuid.UUID    `gorm:"type:uuid;not null;index"`
	DiagnosticID *uuid.UUID   `gorm:"type:uuid;index"`
	CompletedAt  *time.Time
}

// TableName returns the table name for GORM
func (Task) TableName() string {
	return "tasks"
}

// NewTask creates a TODO task
func NewTask(code, title, description string, priority TaskPriority, start, end time.Time, assignee uuid.UUID) (*Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Task title is required")
	}
	if assignee == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ASSIGNEE", "Task must be assigned to a user")
	}
	if priority == "" {
		priority = TaskPriorityMedium
	}
	if !priority.IsValid() {
		return nil, shared.NewDomainError("INVALID_PRIORITY", "Invalid task priority")
	}
	if err := validateTaskDates(start, end); err != nil {
		return nil, err
	}
	return &Task{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TaskCode:          code,
		Title:             strings.TrimSpace(title),
		Description:       description,
		Status:            TaskTodo,
		Priority:          priority,
		StartDate:         start,
		EndDate:           end,
		AssignedToID:      assignee,
	}, nil
}

// Reschedule changes the task window
func (t *Task) Reschedule(start, end time.Time) error {
	if err := validateTaskDates(start, end); err != nil {
		return err
	}
	t.StartDate = start
	t.EndDate = end
	t.MarkModified()
	return nil
}

// SetStatus moves the task; completing it stamps CompletedAt and raises
// TaskCompleted
func (t *Task) SetStatus(status TaskStatus, by uuid.UUID) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_TASK_STATUS", "Invalid task status")
	}
	if status == t.Status {
		return nil
	}
	t.Status = status
	if status == TaskCompleted {
		now := time.Now()
		t.CompletedAt = &now
		t.AddDomainEvent(NewTaskCompletedEvent(t, by))
	} else {
		t.CompletedAt = nil
	}
	t.MarkModified()
	return nil
}

func validateTaskDates(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Start and end dates are required")
	}
	if start.After(end) {
		return shared.NewDomainError("INVALID_DATE", "Start date must not be after end date")
	}
	return nil
}
