package workflow

import (
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/domain/workflow"
)

// =============================================================================
// Tasks
// =============================================================================

// CreateTaskRequest creates a task; AssignedToID defaults to the caller
type CreateTaskRequest struct {
	Title        string     `json:"title" binding:"required,max=255"`
	Description  string     `json:"description"`
	Priority     string     `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	StartDate    time.Time  `json:"start_date" binding:"required"`
	EndDate      time.Time  `json:"end_date" binding:"required"`
	AssignedToID *uuid.UUID `json:"assigned_to_id"`
	DiagnosticID *uuid.UUID `json:"diagnostic_id"`
}

// UpdateTaskRequest applies a partial update to a task
type UpdateTaskRequest struct {
	Title        *string    `json:"title" binding:"omitempty,max=255"`
	Description  *string    `json:"description"`
	Priority     *string    `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	Status       *string    `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS COMPLETED"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	AssignedToID *uuid.UUID `json:"assigned_to_id"`
}

// TaskListFilter represents filter options for the task list
type TaskListFilter struct {
	Search       string `form:"search"`
	Status       string `form:"status" binding:"omitempty,oneof=TODO IN_PROGRESS COMPLETED"`
	Priority     string `form:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	AssignedToID string `form:"assigned_to_id" binding:"omitempty,uuid"`
	Page         int    `form:"page" binding:"min=0"`
	PageSize     int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy      string `form:"order_by"`
	OrderDir     string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TaskResponse represents a task in API responses
type TaskResponse struct {
	ID           uuid.UUID  `json:"id"`
	TaskCode     string     `json:"task_code"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      time.Time  `json:"end_date"`
	AssignedToID uuid.UUID  `json:"assigned_to_id"`
	DiagnosticID *uuid.UUID `json:"diagnostic_id,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ToTaskResponse converts a domain task
func ToTaskResponse(t *workflow.Task) TaskResponse {
	return TaskResponse{
		ID:           t.ID,
		TaskCode:     t.TaskCode,
		Title:        t.Title,
		Description:  t.Description,
		Status:       string(t.Status),
		Priority:     string(t.Priority),
		StartDate:    t.StartDate,
		EndDate:      t.EndDate,
		AssignedToID: t.AssignedToID,
		DiagnosticID: t.DiagnosticID,
		CompletedAt:  t.CompletedAt,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// =============================================================================
// Notifications
// =============================================================================

// NotificationListFilter represents filter options for the caller's notifications
type NotificationListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=PENDING READ COMPLETED DISMISSED"`
	Type     string `form:"type"`
	IsRead   *bool  `form:"is_read"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
}

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID              uuid.UUID      `json:"id"`
	Title           string         `json:"title"`
	Message         string         `json:"message"`
	Type            string         `json:"type"`
	Status          string         `json:"status"`
	Priority        string         `json:"priority"`
	PatientID       *uuid.UUID     `json:"patient_id,omitempty"`
	CompanyID       *uuid.UUID     `json:"company_id,omitempty"`
	DueDate         *time.Time     `json:"due_date,omitempty"`
	RelatedItemID   *uuid.UUID     `json:"related_item_id,omitempty"`
	RelatedItemType string         `json:"related_item_type,omitempty"`
	Metadata        shared.JSONMap `json:"metadata,omitempty"`
	IsRead          bool           `json:"is_read"`
	ReadAt          *time.Time     `json:"read_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// ToNotificationResponse converts a domain notification
func ToNotificationResponse(n *workflow.Notification) NotificationResponse {
	return NotificationResponse{
		ID:              n.ID,
		Title:           n.Title,
		Message:         n.Message,
		Type:            string(n.Type),
		Status:          string(n.Status),
		Priority:        string(n.Priority),
		PatientID:       n.PatientID,
		CompanyID:       n.CompanyID,
		DueDate:         n.DueDate,
		RelatedItemID:   n.RelatedItemID,
		RelatedItemType: n.RelatedItemType,
		Metadata:        n.Metadata,
		IsRead:          n.IsRead,
		ReadAt:          n.ReadAt,
		CreatedAt:       n.CreatedAt,
	}
}

// SweepResult counts the notifications one sweep created, by type
type SweepResult struct {
	Created map[string]int `json:"created"`
	Skipped int            `json:"skipped"`
	Total   int            `json:"total"`
}

func (r *SweepResult) add(ntype workflow.NotificationType) {
	r.Created[string(ntype)]++
	r.Total++
}
