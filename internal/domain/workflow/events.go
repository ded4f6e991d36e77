package workflow

import (
	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// AggregateTypeTask is the aggregate type for tasks
const AggregateTypeTask = "Task"

// EventTypeTaskCompleted is published when a task is completed
const EventTypeTaskCompleted = "TaskCompleted"

// TaskCompletedEvent announces a completed task
type TaskCompletedEvent struct {
	shared.BaseDomainEvent
	TaskCode     string    `json:"task_code"`
	Title        string    `json:"title"`
	AssignedToID uuid.UUID `json:"assigned_to_id"`
}

// NewTaskCompletedEvent creates a TaskCompletedEvent
func NewTaskCompletedEvent(t *Task, by uuid.UUID) *TaskCompletedEvent {
	return &TaskCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTaskCompleted, AggregateTypeTask, t.ID, by),
		TaskCode:        t.TaskCode,
		Title:           t.Title,
		AssignedToID:    t.AssignedToID,
	}
}
