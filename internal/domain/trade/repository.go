package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// RentalRepository defines the interface for rentals and their child rows
type RentalRepository interface {
	// FindByID loads a rental with configuration, gaps, accessories and periods
	FindByID(ctx context.Context, id uuid.UUID) (*Rental, error)
	// FindAll supports "status", "patient_id" and "medical_device_id"
	// filters plus Search over code and patient name
	FindAll(ctx context.Context, filter shared.Filter) ([]Rental, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// HasActiveRentalForDevice reports whether the device is in an ACTIVE rental
	HasActiveRentalForDevice(ctx context.Context, deviceID uuid.UUID) (bool, error)
	CountByPatient(ctx context.Context, patientID uuid.UUID) (int64, error)
	// FindEndingBetween returns ACTIVE rentals whose end date is in [from, to]
	FindEndingBetween(ctx context.Context, from, to time.Time) ([]Rental, error)
	CountByStatus(ctx context.Context, status RentalStatus) (int64, error)
	Save(ctx context.Context, rental *Rental) error
	SaveConfiguration(ctx context.Context, cfg *RentalConfiguration) error
	SaveGap(ctx context.Context, gap *RentalGap) error
	SaveAccessory(ctx context.Context, accessory *RentalAccessory) error
	// Delete removes the rental with its configuration, gaps, accessories and periods
	Delete(ctx context.Context, id uuid.UUID) error
}

// RentalPeriodRepository defines the interface for rental periods
type RentalPeriodRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*RentalPeriod, error)
	FindByRental(ctx context.Context, rentalID uuid.UUID) ([]RentalPeriod, error)
	Save(ctx context.Context, period *RentalPeriod) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SaleRepository defines the interface for sales and their items
type SaleRepository interface {
	// FindByID loads a sale with items and their configurations
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	// FindAll supports "status", "patient_id", "company_id", "from_date"
	// and "to_date" filters plus Search over code and invoice number
	FindAll(ctx context.Context, filter shared.Filter) ([]Sale, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByPatient(ctx context.Context, patientID uuid.UUID) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	Save(ctx context.Context, sale *Sale) error
	SaveItem(ctx context.Context, item *SaleItem) error
	SaveConfiguration(ctx context.Context, cfg *SaleConfiguration) error
	// DeleteConfigurations removes the configurations of the sale's items
	DeleteConfigurations(ctx context.Context, saleID uuid.UUID) error
	DeleteItems(ctx context.Context, saleID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}
