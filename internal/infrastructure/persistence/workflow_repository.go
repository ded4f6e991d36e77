package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/domain/workflow"
	"gorm.io/gorm"
)

// GormTaskRepository implements TaskRepository using GORM
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GormTaskRepository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*workflow.Task, error) {
	var t workflow.Task
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// FindAll lists tasks matching the filter
func (r *GormTaskRepository) FindAll(ctx context.Context, filter shared.Filter) ([]workflow.Task, error) {
	var tasks []workflow.Task
	query := applyPaging(r.applyFilter(r.db.WithContext(ctx).Model(&workflow.Task{}), filter),
		filter, TaskSortFields, "start_date ASC")
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Count counts tasks matching the filter
func (r *GormTaskRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return count(r.applyFilter(r.db.WithContext(ctx).Model(&workflow.Task{}), filter))
}

// Save creates or updates a task
func (r *GormTaskRepository) Save(ctx context.Context, task *workflow.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// Delete deletes a task by ID
func (r *GormTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &workflow.Task{}, id)
}

// DeleteByDiagnostic removes the follow-up tasks of a diagnostic
func (r *GormTaskRepository) DeleteByDiagnostic(ctx context.Context, diagnosticID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("diagnostic_id = ?", diagnosticID).Delete(&workflow.Task{}).Error
}

func (r *GormTaskRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "title", "task_code")
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "priority":
			query = query.Where("priority = ?", value)
		case "assigned_to_id":
			query = query.Where("assigned_to_id = ?", value)
		case "diagnostic_id":
			query = query.Where("diagnostic_id = ?", value)
		}
	}
	return query
}

// GormNotificationRepository implements NotificationRepository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// FindByID finds a notification by ID
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*workflow.Notification, error) {
	var n workflow.Notification
	if err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

// FindByUser lists a user's notifications, unread and most recent first
func (r *GormNotificationRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]workflow.Notification, error) {
	var notifications []workflow.Notification
	query := applyPaging(r.applyFilter(r.db.WithContext(ctx).Model(&workflow.Notification{}), userID, filter),
		filter, NotificationSortFields, "is_read ASC, created_at DESC")
	if err := query.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// CountByUser counts a user's notifications matching the filter
func (r *GormNotificationRepository) CountByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error) {
	return count(r.applyFilter(r.db.WithContext(ctx).Model(&workflow.Notification{}), userID, filter))
}

// ExistsFor reports whether a notification of the type already references
// the record. The reminder stage is read from metadata after loading.
func (r *GormNotificationRepository) ExistsFor(ctx context.Context, ntype workflow.NotificationType, relatedItemID uuid.UUID, reminder string) (bool, error) {
	query := r.db.WithContext(ctx).Model(&workflow.Notification{}).
		Where("type = ? AND related_item_id = ?", ntype, relatedItemID)
	if reminder == "" {
		n, err := count(query)
		return n > 0, err
	}
	var rows []workflow.Notification
	if err := query.Select("id", "metadata").Find(&rows).Error; err != nil {
		return false, err
	}
	for i := range rows {
		if rows[i].Reminder() == reminder {
			return true, nil
		}
	}
	return false, nil
}

// Save creates or updates a notification
func (r *GormNotificationRepository) Save(ctx context.Context, notification *workflow.Notification) error {
	return r.db.WithContext(ctx).Save(notification).Error
}

// MarkAllRead flags every unread notification of the user as read
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&workflow.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{
			"is_read":    true,
			"status":     workflow.NotificationRead,
			"read_at":    now,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

// Delete deletes a notification by ID
func (r *GormNotificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &workflow.Notification{}, id)
}

func (r *GormNotificationRepository) applyFilter(query *gorm.DB, userID uuid.UUID, filter shared.Filter) *gorm.DB {
	query = query.Where("user_id = ?", userID)
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "is_read":
			query = query.Where("is_read = ?", value)
		}
	}
	return query
}

var (
	_ workflow.TaskRepository         = (*GormTaskRepository)(nil)
	_ workflow.NotificationRepository = (*GormNotificationRepository)(nil)
)
