package clinical

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// DiagnosticRepository defines the interface for diagnostics and results
type DiagnosticRepository interface {
	// FindByID loads a diagnostic with its result
	FindByID(ctx context.Context, id uuid.UUID) (*Diagnostic, error)
	// FindAll supports "patient_id" and "medical_device_id" filters
	FindAll(ctx context.Context, filter shared.Filter) ([]Diagnostic, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, diagnostic *Diagnostic) error
	SaveResult(ctx context.Context, result *DiagnosticResult) error
	// FirstEquipmentDate is the earliest rental start or sale date of the
	// patient, nil when the patient was never equipped
	FirstEquipmentDate(ctx context.Context, patientID uuid.UUID) (*time.Time, error)
	// Delete removes the diagnostic and its result
	Delete(ctx context.Context, id uuid.UUID) error
}

// AppointmentRepository defines the interface for appointments
type AppointmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// FindAll supports "status", "patient_id", "company_id", "assigned_to_id",
	// "from_date" and "to_date" filters; ordered by scheduled date ascending
	FindAll(ctx context.Context, filter shared.Filter) ([]Appointment, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// FindScheduledBetween returns non-cancelled appointments in [from, to)
	FindScheduledBetween(ctx context.Context, from, to time.Time) ([]Appointment, error)
	Save(ctx context.Context, appointment *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// FileRepository defines the interface for file records
type FileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*File, error)
	FindByPatient(ctx context.Context, patientID uuid.UUID) ([]File, error)
	Save(ctx context.Context, file *File) error
	Delete(ctx context.Context, id uuid.UUID) error
}
