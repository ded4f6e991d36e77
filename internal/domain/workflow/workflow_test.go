package workflow

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityForDueDate(t *testing.T) {
	now := time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)
	in := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}

	assert.Equal(t, PriorityNormal, PriorityForDueDate(nil, now))
	assert.Equal(t, PriorityUrgent, PriorityForDueDate(in(-time.Hour), now))
	assert.Equal(t, PriorityHigh, PriorityForDueDate(in(72*time.Hour), now))
	assert.Equal(t, PriorityNormal, PriorityForDueDate(in(5*24*time.Hour), now))
	assert.Equal(t, PriorityNormal, PriorityForDueDate(in(7*24*time.Hour), now))
	assert.Equal(t, PriorityLow, PriorityForDueDate(in(8*24*time.Hour), now))
}

func TestNewNotification(t *testing.T) {
	user := uuid.New()
	n, err := NewNotification(user, "", "Rappel", "msg", nil)
	require.NoError(t, err)
	assert.Equal(t, NotificationOther, n.Type)
	assert.Equal(t, NotificationPending, n.Status)
	assert.Equal(t, PriorityNormal, n.Priority)

	item := uuid.New()
	n.About(item, "Rental")
	assert.Equal(t, item, *n.RelatedItemID)

	n.MarkRead()
	assert.True(t, n.IsRead)
	assert.Equal(t, NotificationRead, n.Status)
	assert.NotNil(t, n.ReadAt)

	_, err = NewNotification(uuid.Nil, NotificationOther, "x", "", nil)
	assert.Error(t, err)
	_, err = NewNotification(user, NotificationOther, " ", "", nil)
	assert.Error(t, err)
}

func TestTask_SetStatus(t *testing.T) {
	start := time.Now()
	task, err := NewTask("TASK-0001", "Suivi patient", "", "", start, start.Add(time.Hour), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, TaskPriorityMedium, task.Priority)
	assert.Equal(t, TaskTodo, task.Status)

	require.NoError(t, task.SetStatus(TaskInProgress, uuid.New()))
	assert.Nil(t, task.CompletedAt)
	assert.Empty(t, task.GetDomainEvents())

	require.NoError(t, task.SetStatus(TaskCompleted, uuid.New()))
	assert.NotNil(t, task.CompletedAt)
	require.Len(t, task.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeTaskCompleted, task.GetDomainEvents()[0].EventType())

	require.NoError(t, task.SetStatus(TaskCompleted, uuid.New()))
	assert.Len(t, task.GetDomainEvents(), 1)

	assert.Error(t, task.SetStatus(TaskStatus("DONE"), uuid.New()))
}

func TestNewTask_Validation(t *testing.T) {
	start := time.Now()
	_, err := NewTask("TASK-0001", "", "", "", start, start, uuid.New())
	assert.Error(t, err)
	_, err = NewTask("TASK-0001", "x", "", "", start, start.Add(-time.Hour), uuid.New())
	assert.Error(t, err)
	_, err = NewTask("TASK-0001", "x", "", "", start, start, uuid.Nil)
	assert.Error(t, err)
	_, err = NewTask("TASK-0001", "x", "", TaskPriority("ASAP"), start, start, uuid.New())
	assert.Error(t, err)

	task, err := NewTask("TASK-0001", "x", "", TaskPriorityHigh, start, start, uuid.New())
	require.NoError(t, err)
	assert.Error(t, task.Reschedule(start, start.Add(-time.Minute)))
}
