package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// PatientRepository defines the interface for patient persistence
type PatientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	// FindAll supports Search over names, telephone, CIN and code,
	// plus "assigned_to_id" and "doctor_id" filters
	FindAll(ctx context.Context, filter shared.Filter) ([]Patient, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// ExistsByCIN reports whether a patient with that CIN exists
	ExistsByCIN(ctx context.Context, cin string) (bool, error)
	Save(ctx context.Context, patient *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CompanyRepository defines the interface for company persistence
type CompanyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Company, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, company *Company) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PatientHistoryRepository stores patient history entries
type PatientHistoryRepository interface {
	Save(ctx context.Context, entry *PatientHistory) error
	// FindByPatient returns the patient's history, newest first
	FindByPatient(ctx context.Context, patientID uuid.UUID) ([]PatientHistory, error)
	DeleteByRelatedItem(ctx context.Context, itemID uuid.UUID) error
}
