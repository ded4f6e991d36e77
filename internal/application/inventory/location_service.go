package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/inventory"
	"github.com/medrent/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DeviceCounter counts devices stored at a location
type DeviceCounter interface {
	CountAtLocation(ctx context.Context, locationID uuid.UUID) (int64, error)
}

// LocationService handles stock location operations
type LocationService struct {
	locationRepo inventory.StockLocationRepository
	stockRepo    inventory.StockRepository
	devices      DeviceCounter
	logger       *zap.Logger
}

// NewLocationService creates a new LocationService
func NewLocationService(
	locationRepo inventory.StockLocationRepository,
	stockRepo inventory.StockRepository,
	devices DeviceCounter,
	logger *zap.Logger,
) *LocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocationService{
		locationRepo: locationRepo,
		stockRepo:    stockRepo,
		devices:      devices,
		logger:       logger,
	}
}

// Create creates a location with a unique name
func (s *LocationService) Create(ctx context.Context, req CreateLocationRequest) (*LocationResponse, error) {
	location, err := inventory.NewStockLocation(req.Name, req.Description, req.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, location.Name, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.locationRepo.Save(ctx, location); err != nil {
		return nil, err
	}
	s.logger.Info("stock location created", zap.String("name", location.Name))

	response := ToLocationResponse(location)
	return &response, nil
}

// GetByID retrieves a location by ID
func (s *LocationService) GetByID(ctx context.Context, id uuid.UUID) (*LocationResponse, error) {
	location, err := s.locationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToLocationResponse(location)
	return &response, nil
}

// List retrieves locations, ordered by name unless asked otherwise
func (s *LocationService) List(ctx context.Context, filter LocationListFilter) ([]LocationResponse, int64, error) {
	domainFilter := shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)
	if filter.OrderBy == "" {
		domainFilter.OrderBy = ""
	}
	if filter.IsActive != nil {
		domainFilter = domainFilter.With("is_active", *filter.IsActive)
	}

	locations, err := s.locationRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.locationRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]LocationResponse, len(locations))
	for i := range locations {
		out[i] = ToLocationResponse(&locations[i])
	}
	return out, total, nil
}

// Update applies a partial update to a location
func (s *LocationService) Update(ctx context.Context, id uuid.UUID, req UpdateLocationRequest) (*LocationResponse, error) {
	location, err := s.locationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil || req.Description != nil {
		name, description := location.Name, location.Description
		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
		if err := location.Update(name, description); err != nil {
			return nil, err
		}
		if err := s.ensureNameFree(ctx, location.Name, location.ID); err != nil {
			return nil, err
		}
	}
	if req.UserID != nil {
		location.UserID = req.UserID
	}
	if req.IsActive != nil {
		location.SetActive(*req.IsActive)
	}

	if err := s.locationRepo.Save(ctx, location); err != nil {
		return nil, err
	}
	response := ToLocationResponse(location)
	return &response, nil
}

// Delete removes a location that holds no stock and no devices
func (s *LocationService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.locationRepo.FindByID(ctx, id); err != nil {
		return err
	}
	units, err := s.stockRepo.SumAtLocation(ctx, id)
	if err != nil {
		return err
	}
	devices, err := s.devices.CountAtLocation(ctx, id)
	if err != nil {
		return err
	}
	if units > 0 || devices > 0 {
		return shared.NewDomainError("HAS_DEPENDENCIES", "Location still holds stock or devices and cannot be deleted")
	}
	if err := s.locationRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("stock location deleted", zap.String("location_id", id.String()))
	return nil
}

func (s *LocationService) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.locationRepo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != self {
		return shared.NewDomainError("ALREADY_EXISTS", "A location with this name already exists")
	}
	return nil
}
