package clinical

import (
	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// AggregateTypeDiagnostic is the aggregate type for diagnostics
const AggregateTypeDiagnostic = "Diagnostic"

// EventTypeDiagnosticCreated is published once a diagnostic has been committed
const EventTypeDiagnosticCreated = "DiagnosticCreated"

// DiagnosticCreatedEvent announces a new diagnostic awaiting its result
type DiagnosticCreatedEvent struct {
	shared.BaseDomainEvent
	DiagnosticCode string    `json:"diagnostic_code"`
	PatientID      uuid.UUID `json:"patient_id"`
	DeviceID       uuid.UUID `json:"device_id"`
	PerformedByID  uuid.UUID `json:"performed_by_id"`
}

// NewDiagnosticCreatedEvent creates a DiagnosticCreatedEvent
func NewDiagnosticCreatedEvent(d *Diagnostic) *DiagnosticCreatedEvent {
	return &DiagnosticCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDiagnosticCreated, AggregateTypeDiagnostic, d.ID, d.PerformedByID),
		DiagnosticCode:  d.DiagnosticCode,
		PatientID:       d.PatientID,
		DeviceID:        d.MedicalDeviceID,
		PerformedByID:   d.PerformedByID,
	}
}
