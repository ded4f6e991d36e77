package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// StockLocationRepository defines the interface for location persistence
type StockLocationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockLocation, error)
	FindByName(ctx context.Context, name string) (*StockLocation, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]StockLocation, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, location *StockLocation) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// StockRepository defines the interface for stock rows
type StockRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Stock, error)
	// FindRow finds the row for (location, product, status)
	FindRow(ctx context.Context, locationID, productID uuid.UUID, status StockStatus) (*Stock, error)
	// FindByLocationAndProduct returns every status row of a product at a location
	FindByLocationAndProduct(ctx context.Context, locationID, productID uuid.UUID) ([]Stock, error)
	// FindAvailableByProduct returns rows with quantity > 0, oldest first
	FindAvailableByProduct(ctx context.Context, productID uuid.UUID) ([]Stock, error)
	// FindByProductAndStatus returns the rows of a product in a status, oldest first
	FindByProductAndStatus(ctx context.Context, productID uuid.UUID, status StockStatus) ([]Stock, error)
	// FindInventory supports "location_id", "status" and "product_type"
	// filters plus Search over product name, brand and model
	FindInventory(ctx context.Context, filter shared.Filter) ([]Stock, error)
	CountInventory(ctx context.Context, filter shared.Filter) (int64, error)
	// SumAtLocation sums quantity held at a location
	SumAtLocation(ctx context.Context, locationID uuid.UUID) (int64, error)
	Save(ctx context.Context, stock *Stock) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// StockTransferRepository defines the interface for transfer records
type StockTransferRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockTransfer, error)
	// FindAll supports "location_id" (either side), "from_date" and "to_date" filters
	FindAll(ctx context.Context, filter shared.Filter) ([]StockTransfer, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, transfer *StockTransfer) error
}

// StockTransferRequestRepository defines the interface for transfer requests
type StockTransferRequestRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockTransferRequest, error)
	// FindAll supports "status", "urgency", "visible_to_user" and
	// "visible_to_location" filters plus Search over code and reason
	FindAll(ctx context.Context, filter shared.Filter) ([]StockTransferRequest, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// CountByStatus groups the requests matched by filter per status
	CountByStatus(ctx context.Context, filter shared.Filter) (map[TransferRequestStatus]int64, error)
	Save(ctx context.Context, request *StockTransferRequest) error
}

// UserActionHistoryRepository stores audit entries
type UserActionHistoryRepository interface {
	Save(ctx context.Context, entry *UserActionHistory) error
	FindByUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]UserActionHistory, error)
}
