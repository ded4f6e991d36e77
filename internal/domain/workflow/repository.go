package workflow

import (
	"context"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// TaskRepository defines the interface for tasks
type TaskRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	// FindAll supports "status", "priority", "assigned_to_id" and
	// "diagnostic_id" filters plus Search over title and code
	FindAll(ctx context.Context, filter shared.Filter) ([]Task, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByDiagnostic(ctx context.Context, diagnosticID uuid.UUID) error
}

// NotificationRepository defines the interface for notifications
type NotificationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	// FindByUser lists a user's notifications; supports "status", "type"
	// and "is_read" filters
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Notification, error)
	CountByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error)
	// ExistsFor reports whether a notification of the type already
	// references the record. A non-empty reminder only matches
	// notifications recorded for that reminder stage.
	ExistsFor(ctx context.Context, ntype NotificationType, relatedItemID uuid.UUID, reminder string) (bool, error)
	Save(ctx context.Context, notification *Notification) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
