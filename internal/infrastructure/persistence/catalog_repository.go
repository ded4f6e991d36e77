package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/catalog"
	"github.com/medrent/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormMedicalDeviceRepository implements MedicalDeviceRepository using GORM
type GormMedicalDeviceRepository struct {
	db *gorm.DB
}

// NewGormMedicalDeviceRepository creates a new GormMedicalDeviceRepository
func NewGormMedicalDeviceRepository(db *gorm.DB) *GormMedicalDeviceRepository {
	return &GormMedicalDeviceRepository{db: db}
}

// FindByID finds a device by ID
func (r *GormMedicalDeviceRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.MedicalDevice, error) {
	var d catalog.MedicalDevice
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

// FindAll lists devices matching the filter
func (r *GormMedicalDeviceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.MedicalDevice, error) {
	var devices []catalog.MedicalDevice
	query := applyPaging(r.applyFilter(r.db.WithContext(ctx).Model(&catalog.MedicalDevice{}), filter),
		filter, DeviceSortFields, "created_at DESC")
	if err := query.Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

// Count counts devices matching the filter
func (r *GormMedicalDeviceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return count(r.applyFilter(r.db.WithContext(ctx).Model(&catalog.MedicalDevice{}), filter))
}

// CountByStatus returns device counts keyed by status
func (r *GormMedicalDeviceRepository) CountByStatus(ctx context.Context) (map[catalog.DeviceStatus]int64, error) {
	var rows []struct {
		Status catalog.DeviceStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&catalog.MedicalDevice{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[catalog.DeviceStatus]int64, len(rows))
	for _, row := range rows {
		result[row.Status] = row.Total
	}
	return result, nil
}

// CountAtLocation counts devices stored at a location
func (r *GormMedicalDeviceRepository) CountAtLocation(ctx context.Context, locationID uuid.UUID) (int64, error) {
	return count(r.db.WithContext(ctx).Model(&catalog.MedicalDevice{}).Where("stock_location_id = ?", locationID))
}

// FindDueForMaintenance returns ACTIVE devices requiring maintenance with
// no repair logged on or after lastRepairBefore
func (r *GormMedicalDeviceRepository) FindDueForMaintenance(ctx context.Context, lastRepairBefore time.Time) ([]catalog.MedicalDevice, error) {
	var devices []catalog.MedicalDevice
	err := r.db.WithContext(ctx).
		Where("status = ? AND requires_maintenance = ?", catalog.DeviceStatusActive, true).
		Where("NOT EXISTS (SELECT 1 FROM repair_logs rl WHERE rl.medical_device_id = medical_devices.id AND rl.repair_date >= ?)", lastRepairBefore).
		Order("device_code ASC").
		Find(&devices).Error
	if err != nil {
		return nil, err
	}
	return devices, nil
}

// Save creates or updates a device
func (r *GormMedicalDeviceRepository) Save(ctx context.Context, device *catalog.MedicalDevice) error {
	return r.db.WithContext(ctx).Save(device).Error
}

// Delete deletes a device by ID
func (r *GormMedicalDeviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &catalog.MedicalDevice{}, id)
}

func (r *GormMedicalDeviceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "name", "device_code", "serial_number", "brand", "model")
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "destination":
			query = query.Where("destination = ?", value)
		case "stock_location_id":
			query = query.Where("stock_location_id = ?", value)
		case "patient_id":
			query = query.Where("patient_id = ?", value)
		}
	}
	return query
}

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var p catalog.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// FindAll lists products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var products []catalog.Product
	query := applyPaging(r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Product{}), filter),
		filter, ProductSortFields, "name ASC")
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return count(r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Product{}), filter))
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete deletes a product by ID
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &catalog.Product{}, id)
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "name", "brand", "model", "serial_number")
	if v, ok := filter.Filters["type"]; ok {
		query = query.Where("type = ?", v)
	}
	return query
}

var (
	_ catalog.MedicalDeviceRepository = (*GormMedicalDeviceRepository)(nil)
	_ catalog.ProductRepository       = (*GormProductRepository)(nil)
)
