package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// MedicalDeviceRepository defines the interface for device persistence
type MedicalDeviceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*MedicalDevice, error)
	// FindAll supports "status", "type", "destination", "stock_location_id"
	// and "patient_id" filters plus Search over name, code and serial number
	FindAll(ctx context.Context, filter shared.Filter) ([]MedicalDevice, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// CountByStatus returns device counts keyed by status
	CountByStatus(ctx context.Context) (map[DeviceStatus]int64, error)
	// CountAtLocation counts devices stored at a location
	CountAtLocation(ctx context.Context, locationID uuid.UUID) (int64, error)
	// FindDueForMaintenance returns ACTIVE devices that require maintenance
	// and have no repair on or after the given date
	FindDueForMaintenance(ctx context.Context, lastRepairBefore time.Time) ([]MedicalDevice, error)
	Save(ctx context.Context, device *MedicalDevice) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}
