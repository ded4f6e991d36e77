package workflow

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// NotificationType classifies a notification
type NotificationType string

const (
	NotificationFollowUp          NotificationType = "FOLLOW_UP"
	NotificationMaintenance       NotificationType = "MAINTENANCE"
	NotificationAppointment       NotificationType = "APPOINTMENT"
	NotificationPaymentDue        NotificationType = "PAYMENT_DUE"
	NotificationRentalExpiring    NotificationType = "RENTAL_EXPIRING"
	NotificationRentalReturn      NotificationType = "RENTAL_RETURN"
	NotificationSaleCompleted     NotificationType = "SALE_COMPLETED"
	NotificationTaskAssigned      NotificationType = "TASK_ASSIGNED"
	NotificationTaskCompleted     NotificationType = "TASK_COMPLETED"
	NotificationStockLow          NotificationType = "STOCK_LOW"
	NotificationTransfer          NotificationType = "TRANSFER"
	NotificationTransferApproved  NotificationType = "TRANSFER_APPROVED"
	NotificationTransferRejected  NotificationType = "TRANSFER_REJECTED"
	NotificationCNAMRenewal       NotificationType = "CNAM_RENEWAL"
	NotificationDiagnosticPending NotificationType = "DIAGNOSTIC_PENDING"
	NotificationOther             NotificationType = "OTHER"
)

// NotificationStatus is the read state of a notification
type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "PENDING"
	NotificationRead      NotificationStatus = "READ"
	NotificationCompleted NotificationStatus = "COMPLETED"
	NotificationDismissed NotificationStatus = "DISMISSED"
)

// Priority ranks notifications by urgency
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// PriorityForDueDate maps a due date onto a priority: overdue is URGENT,
// within 3 days HIGH, within 7 days NORMAL, later LOW, none NORMAL
func PriorityForDueDate(due *time.Time, now time.Time) Priority {
	if due == nil {
		return PriorityNormal
	}
	if due.Before(now) {
		return PriorityUrgent
	}
	days := due.Sub(now).Hours() / 24
	switch {
	case days <= 3:
		return PriorityHigh
	case days <= 7:
		return PriorityNormal
	default:
		return PriorityLow
	}
}

// Notification is a message for one user, optionally due at a date
type Notification struct {
	shared.BaseEntity
	Title           string             `gorm:"type:varchar(255);not null"`
	Message         string             `gorm:"type:text;not null"`
	Type            NotificationType   `gorm:"type:varchar(30);not null;index"`
	Status          NotificationStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Priority        Priority           `gorm:"type:varchar(10);not null;default:'NORMAL'"`
	UserID          uuid.UUID          `gorm:"type:uuid;not null;index"`
	PatientID       *uuid.UUID         `gorm:"type:uuid;index"`
	CompanyID       *uuid.UUID         `gorm:"type:uuid"`
	DueDate         *time.Time         `gorm:"index"`
	RelatedItemID   *uuid.UUID         `gorm:"type:uuid;index"`
	RelatedItemType string             `gorm:"type:varchar(50)"`
	Metadata        shared.JSONMap     `gorm:"type:jsonb"`
	IsRead          bool               `gorm:"not null;default:false"`
	ReadAt          *time.Time
}

// TableName returns the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

// NewNotification creates a PENDING notification whose priority follows the due date
func NewNotification(userID uuid.UUID, ntype NotificationType, title, message string, due *time.Time) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Notification requires a recipient")
	}
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Notification title is required")
	}
	if ntype == "" {
		ntype = NotificationOther
	}
	return &Notification{
		BaseEntity: shared.NewBaseEntity(),
		Title:      strings.TrimSpace(title),
		Message:    message,
		Type:       ntype,
		Status:     NotificationPending,
		Priority:   PriorityForDueDate(due, time.Now()),
		UserID:     userID,
		DueDate:    due,
		Metadata:   shared.JSONMap{},
	}, nil
}

// MetaReminder is the metadata key naming which reminder of a record a
// notification is. Sweep deduplication only counts notifications of the
// same reminder.
const MetaReminder = "reminder"

// Reminder stages for payment notifications
const (
	ReminderUpcoming = "upcoming"
	ReminderOverdue  = "overdue"
)

// Reminder returns the reminder stage recorded in metadata, or ""
func (n *Notification) Reminder() string {
	stage, _ := n.Metadata[MetaReminder].(string)
	return stage
}

// About links the notification to a record
func (n *Notification) About(itemID uuid.UUID, itemType string) *Notification {
	id := itemID
	n.RelatedItemID = &id
	n.RelatedItemType = itemType
	return n
}

// ForPatient links the notification to a patient
func (n *Notification) ForPatient(patientID *uuid.UUID) *Notification {
	n.PatientID = patientID
	return n
}

// MarkRead flags the notification as read
func (n *Notification) MarkRead() {
	if n.IsRead {
		return
	}
	now := time.Now()
	n.IsRead = true
	n.ReadAt = &now
	n.Status = NotificationRead
	n.Touch()
}
