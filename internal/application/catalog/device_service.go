package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/catalog"
	"github.com/medrent/backend/internal/domain/inventory"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ActiveRentalChecker reports whether a device is out on an active rental
type ActiveRentalChecker interface {
	HasActiveRentalForDevice(ctx context.Context, deviceID uuid.UUID) (bool, error)
}

// DeviceService handles medical device operations
type DeviceService struct {
	deviceRepo   catalog.MedicalDeviceRepository
	locationRepo inventory.StockLocationRepository
	rentals      ActiveRentalChecker
	codes        shared.CodeGenerator
	logger       *zap.Logger
}

// NewDeviceService creates a new DeviceService
func NewDeviceService(
	deviceRepo catalog.MedicalDeviceRepository,
	locationRepo inventory.StockLocationRepository,
	rentals ActiveRentalChecker,
	codes shared.CodeGenerator,
	logger *zap.Logger,
) *DeviceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceService{
		deviceRepo:   deviceRepo,
		locationRepo: locationRepo,
		rentals:      rentals,
		codes:        codes,
		logger:       logger,
	}
}

// Create registers a device under the next DEV code
func (s *DeviceService) Create(ctx context.Context, req CreateDeviceRequest) (*DeviceResponse, error) {
	if req.StockLocationID != nil {
		if err := s.ensureLocation(ctx, *req.StockLocationID); err != nil {
			return nil, err
		}
	}

	code, err := s.codes.Next(ctx, shared.CodeDevice)
	if err != nil {
		return nil, err
	}
	device, err := catalog.NewMedicalDevice(code, req.Name, catalog.DeviceType(req.Type))
	if err != nil {
		return nil, err
	}
	device.Brand = strings.TrimSpace(req.Brand)
	device.Model = strings.TrimSpace(req.Model)
	device.SerialNumber = strings.TrimSpace(req.SerialNumber)
	device.TechnicalSpecs = req.TechnicalSpecs
	device.Configuration = req.Configuration
	device.RequiresMaintenance = req.RequiresMaintenance
	if err := setDevicePrices(device, req.PurchasePrice, req.SellingPrice, req.RentalPrice); err != nil {
		return nil, err
	}
	if req.Destination != "" {
		device.Destination = catalog.Destination(req.Destination)
	}
	if req.Status != "" {
		if err := device.SetStatus(catalog.DeviceStatus(req.Status)); err != nil {
			return nil, err
		}
	}
	if req.StockLocationID != nil {
		device.MoveTo(*req.StockLocationID)
	}
	if req.StockQuantity != nil {
		device.StockQuantity = *req.StockQuantity
	}

	if err := s.deviceRepo.Save(ctx, device); err != nil {
		return nil, err
	}
	s.logger.Info("medical device created",
		zap.String("device_code", device.DeviceCode),
		zap.String("device_id", device.ID.String()))

	response := ToDeviceResponse(device)
	return &response, nil
}

// GetByID retrieves a device by ID
func (s *DeviceService) GetByID(ctx context.Context, id uuid.UUID) (*DeviceResponse, error) {
	device, err := s.deviceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToDeviceResponse(device)
	return &response, nil
}

// List retrieves devices with filtering and pagination
func (s *DeviceService) List(ctx context.Context, filter DeviceListFilter) ([]DeviceResponse, int64, error) {
	domainFilter := shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search).
		With("status", filter.Status).
		With("type", filter.Type).
		With("destination", filter.Destination).
		With("stock_location_id", filter.StockLocationID).
		With("patient_id", filter.PatientID)

	devices, err := s.deviceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.deviceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToDeviceResponses(devices), total, nil
}

// Update applies a partial update. A sold device keeps its SOLD status.
func (s *DeviceService) Update(ctx context.Context, id uuid.UUID, req UpdateDeviceRequest) (*DeviceResponse, error) {
	device, err := s.deviceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, shared.NewDomainError("INVALID_DEVICE_NAME", "Device name is required")
		}
		device.Name = name
	}
	device.Brand = stringOr(req.Brand, device.Brand)
	device.Model = stringOr(req.Model, device.Model)
	device.SerialNumber = stringOr(req.SerialNumber, device.SerialNumber)
	device.TechnicalSpecs = stringOr(req.TechnicalSpecs, device.TechnicalSpecs)
	device.Configuration = stringOr(req.Configuration, device.Configuration)
	if req.RequiresMaintenance != nil {
		device.RequiresMaintenance = *req.RequiresMaintenance
	}
	if req.Destination != nil {
		device.Destination = catalog.Destination(*req.Destination)
	}
	if err := setDevicePrices(device, req.PurchasePrice, req.SellingPrice, req.RentalPrice); err != nil {
		return nil, err
	}
	if req.Status != nil && catalog.DeviceStatus(*req.Status) != device.Status {
		if device.Status == catalog.DeviceStatusSold {
			return nil, shared.NewDomainError("INVALID_STATE", "A sold device cannot change status")
		}
		if err := device.SetStatus(catalog.DeviceStatus(*req.Status)); err != nil {
			return nil, err
		}
	}
	if req.StockLocationID != nil {
		if err := s.ensureLocation(ctx, *req.StockLocationID); err != nil {
			return nil, err
		}
		device.MoveTo(*req.StockLocationID)
	}
	device.MarkModified()

	if err := s.deviceRepo.Save(ctx, device); err != nil {
		return nil, err
	}
	response := ToDeviceResponse(device)
	return &response, nil
}

// Delete removes a device that is not on an active rental
func (s *DeviceService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.deviceRepo.FindByID(ctx, id); err != nil {
		return err
	}
	rented, err := s.rentals.HasActiveRentalForDevice(ctx, id)
	if err != nil {
		return err
	}
	if rented {
		return shared.NewDomainError("HAS_DEPENDENCIES", "Device is on an active rental and cannot be deleted")
	}
	if err := s.deviceRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("medical device deleted", zap.String("device_id", id.String()))
	return nil
}

func (s *DeviceService) ensureLocation(ctx context.Context, id uuid.UUID) error {
	if _, err := s.locationRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_LOCATION", "Stock location not found")
		}
		return err
	}
	return nil
}

func setDevicePrices(d *catalog.MedicalDevice, purchase, selling, rental *decimal.Decimal) error {
	for _, p := range []*decimal.Decimal{purchase, selling, rental} {
		if p != nil && p.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
		}
	}
	d.PurchasePrice = decimalOr(purchase, d.PurchasePrice)
	d.SellingPrice = decimalOr(selling, d.SellingPrice)
	d.RentalPrice = decimalOr(rental, d.RentalPrice)
	return nil
}

func stringOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return strings.TrimSpace(*v)
}
