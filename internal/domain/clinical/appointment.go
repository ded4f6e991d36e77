package clinical

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// AppointmentStatus is the lifecycle status of an appointment
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "SCHEDULED"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
)

// IsValid reports whether s is a known appointment status
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentScheduled, AppointmentConfirmed, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

// Priority is shared by appointments and notifications
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// IsValid reports whether p is a known priority
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Appointment is a scheduled visit with a patient or a company
type Appointment struct {
	shared.BaseAggregateRoot
	AppointmentCode string            `gorm:"type:varchar(20);uniqueIndex"`
	AppointmentType string            `gorm:"type:varchar(100);not null"`
	ScheduledDate   time.Time         `gorm:"not null;index"`
	Location        string            `gorm:"type:varchar(255);not null"`
	Notes           string            `gorm:"type:text"`
	Priority        Priority          `gorm:"type:varchar(10);not null;default:'NORMAL'"`
	Status          AppointmentStatus `gorm:"type:varchar(20);not null;default:'SCHEDULED';index"`
	PatientID       *uuid.UUID        `gorm:"type:uuid;index"`
	CompanyID       *uuid.UUID        `gorm:"type:uuid;index"`
	AssignedToID    *uuid.UUID        `gorm:"type:uuid;index"`
	CreatedByID     uuid.UUID         `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (Appointment) TableName() string {
	return "appointments"
}

// NewAppointment creates a SCHEDULED appointment
func NewAppointment(code, appointmentType string, scheduled time.Time, location string, patientID, companyID *uuid.UUID, createdBy uuid.UUID) (*Appointment, error) {
	if strings.TrimSpace(appointmentType) == "" {
		return nil, shared.NewDomainError("INVALID_APPOINTMENT_TYPE", "Appointment type is required")
	}
	if scheduled.IsZero() {
		return nil, shared.NewDomainError("INVALID_SCHEDULED_DATE", "Scheduled date is required")
	}
	if strings.TrimSpace(location) == "" {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Location is required")
	}
	if patientID == nil && companyID == nil {
		return nil, shared.NewDomainError("CLIENT_REQUIRED", "A patient or a company is required")
	}
	return &Appointment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AppointmentCode:   code,
		AppointmentType:   strings.TrimSpace(appointmentType),
		ScheduledDate:     scheduled,
		Location:          strings.TrimSpace(location),
		Priority:          PriorityNormal,
		Status:            AppointmentScheduled,
		PatientID:         patientID,
		CompanyID:         companyID,
		CreatedByID:       createdBy,
	}, nil
}

// SetPriority changes the priority; empty keeps NORMAL
func (a *Appointment) SetPriority(p Priority) error {
	if p == "" {
		p = PriorityNormal
	}
	if !p.IsValid() {
		return shared.NewDomainError("INVALID_PRIORITY", "Invalid priority")
	}
	a.Priority = p
	a.MarkModified()
	return nil
}

// SetStatus changes the status
func (a *Appointment) SetStatus(s AppointmentStatus) error {
	if !s.IsValid() {
		return shared.NewDomainError("INVALID_APPOINTMENT_STATUS", "Invalid appointment status")
	}
	a.Status = s
	a.MarkModified()
	return nil
}

// Reschedule moves the appointment
func (a *Appointment) Reschedule(when time.Time, location string) error {
	if when.IsZero() {
		return shared.NewDomainError("INVALID_SCHEDULED_DATE", "Scheduled date is required")
	}
	a.ScheduledDate = when
	if strings.TrimSpace(location) != "" {
		a.Location = strings.TrimSpace(location)
	}
	a.MarkModified()
	return nil
}

// ReminderAt is one day before the appointment
func (a *Appointment) ReminderAt() time.Time {
	return a.ScheduledDate.AddDate(0, 0, -1)
}
