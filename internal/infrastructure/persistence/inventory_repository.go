package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/inventory"
	"github.com/medrent/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormStockLocationRepository implements StockLocationRepository using GORM
type GormStockLocationRepository struct {
	db *gorm.DB
}

// NewGormStockLocationRepository creates a new GormStockLocationRepository
func NewGormStockLocationRepository(db *gorm.DB) *GormStockLocationRepository {
	return &GormStockLocationRepository{db: db}
}

// FindByID finds a location by ID
func (r *GormStockLocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockLocation, error) {
	var loc inventory.StockLocation
	if err := r.db.WithContext(ctx).First(&loc, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &loc, nil
}

// FindByName finds a location by its unique name
func (r *GormStockLocationRepository) FindByName(ctx context.Context, name string) (*inventory.StockLocation, error) {
	var loc inventory.StockLocation
	if err := r.db.WithContext(ctx).First(&loc, "name = ?", name).Error; err != nil {
		return nil, notFound(err)
	}
	return &loc, nil
}

// FindAll lists locations matching the filter
func (r *GormStockLocationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockLocation, error) {
	var locations []inventory.StockLocation
	query := applyPaging(r.applyFilter(r.db.WithContext(ctx).Model(&inventory.StockLocation{}), filter),
		filter, StockLocationSortFields, "name ASC")
	if err := query.Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// Count counts locations matching the filter
func (r *GormStockLocationRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return count(r.applyFilter(r.db.WithContext(ctx).Model(&inventory.StockLocation{}), filter))
}

// Save creates or updates a location
func (r *GormStockLocationRepository) Save(ctx context.Context, location *inventory.StockLocation) error {
	return r.db.WithContext(ctx).Save(location).Error
}

// Delete deletes a location by ID
func (r *GormStockLocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &inventory.StockLocation{}, id)
}

func (r *GormStockLocationRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "name", "description")
	for key, value := range filter.Filters {
		switch key {
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "user_id":
			query = query.Where("user_id = ?", value)
		}
	}
	return query
}

// GormStockRepository implements StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// FindByID finds a stock row by ID
func (r *GormStockRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Stock, error) {
	var s inventory.Stock
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// FindRow finds the row for (location, product, status)
func (r *GormStockRepository) FindRow(ctx context.Context, locationID, productID uuid.UUID, status inventory.StockStatus) (*inventory.Stock, error) {
	var s inventory.Stock
	err := r.db.WithContext(ctx).
		Where("location_id = ? AND product_id = ? AND status = ?", locationID, productID, status).
		First(&s).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// FindByLocationAndProduct returns every status row of a product at a location
func (r *GormStockRepository) FindByLocationAndProduct(ctx context.Context, locationID, productID uuid.UUID) ([]inventory.Stock, error) {
	var rows []inventory.Stock
	err := r.db.WithContext(ctx).
		Where("location_id = ? AND product_id = ?", locationID, productID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindAvailableByProduct returns rows with quantity > 0, oldest first
func (r *GormStockRepository) FindAvailableByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.Stock, error) {
	var rows []inventory.Stock
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND quantity > 0", productID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByProductAndStatus returns the rows of a product in a status, oldest first
func (r *GormStockRepository) FindByProductAndStatus(ctx context.Context, productID uuid.UUID, status inventory.StockStatus) ([]inventory.Stock, error) {
	var rows []inventory.Stock
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND status = ?", productID, status).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindInventory lists stock rows joined with their product
func (r *GormStockRepository) FindInventory(ctx context.Context, filter shared.Filter) ([]inventory.Stock, error) {
	var rows []inventory.Stock
	if filter.OrderBy != "" {
		filter.OrderBy = "stocks." + filter.OrderBy
	}
	query := applyPaging(r.inventoryQuery(ctx, filter), filter, StockSortFields, "stocks.created_at DESC")
	if err := query.Select("stocks.*").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountInventory counts stock rows matching the inventory filter
func (r *GormStockRepository) CountInventory(ctx context.Context, filter shared.Filter) (int64, error) {
	return count(r.inventoryQuery(ctx, filter))
}

func (r *GormStockRepository) inventoryQuery(ctx context.Context, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&inventory.Stock{}).
		Joins("JOIN products ON products.id = stocks.product_id")
	query = applySearch(query, filter.Search, "products.name", "products.brand", "products.model")
	for key, value := range filter.Filters {
		switch key {
		case "location_id":
			query = query.Where("stocks.location_id = ?", value)
		case "status":
			query = query.Where("stocks.status = ?", value)
		case "product_type":
			query = query.Where("products.type = ?", value)
		case "product_id":
			query = query.Where("stocks.product_id = ?", value)
		}
	}
	return query
}

// SumAtLocation sums quantity held at a location
func (r *GormStockRepository) SumAtLocation(ctx context.Context, locationID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&inventory.Stock{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("location_id = ?", locationID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Save creates or updates a stock row
func (r *GormStockRepository) Save(ctx context.Context, stock *inventory.Stock) error {
	return r.db.WithContext(ctx).Save(stock).Error
}

// Delete deletes a stock row by ID
func (r *GormStockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &inventory.Stock{}, id)
}

// GormStockTransferRepository implements StockTransferRepository using GORM
type GormStockTransferRepository struct {
	db *gorm.DB
}

// NewGormStockTransferRepository creates a new GormStockTransferRepository
func NewGormStockTransferRepository(db *gorm.DB) *GormStockTransferRepository {
	return &GormStockTransferRepository{db: db}
}

// FindByID finds a transfer by ID
func (r *GormStockTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockTransfer, error) {
	var t inventory.StockTransfer
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// FindAll lists transfers, newest first by default
func (r *GormStockTransferRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockTransfer, error) {
	var transfers []inventory.StockTransfer
	query := applyPaging(r.applyFilter(r.db.WithContext(ctx).Model(&inventory.StockTransfer{}), filter),
		filter, TransferSortFields, "transfer_date DESC")
	if err := query.Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// Count counts transfers matching the filter
func (r *GormStockTransferRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return count(r.applyFilter(r.db.WithContext(ctx).Model(&inventory.StockTransfer{}), filter))
}

// Save creates or updates a transfer
func (r *GormStockTransferRepository) Save(ctx context.Context, transfer *inventory.StockTransfer) error {
	return r.db.WithContext(ctx).Save(transfer).Error
}

func (r *GormStockTransferRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "location_id":
			query = query.Where("(from_location_id = ? OR to_location_id = ?)", value, value)
		case "from_location_id":
			query = query.Where("from_location_id = ?", value)
		case "to_location_id":
			query = query.Where("to_location_id = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "medical_device_id":
			query = query.Where("medical_device_id = ?", value)
		case "is_verified":
			query = query.Where("is_verified = ?", value)
		case "from_date":
			query = query.Where("transfer_date >= ?", value)
		case "to_date":
			query = query.Where("transfer_date <= ?", value)
		}
	}
	return query
}

// GormStockTransferRequestRepository implements StockTransferRequestRepository using GORM
type GormStockTransferRequestRepository struct {
	db *gorm.DB
}

// NewGormStockTransferRequestRepository creates a new GormStockTransferRequestRepository
func NewGormStockTransferRequestRepository(db *gorm.DB) *GormStockTransferRequestRepository {
	return &GormStockTransferRequestRepository{db: db}
}

// FindByID finds a request by ID
func (r *GormStockTransferRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockTransferRequest, error) {
	var req inventory.StockTransferRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &req, nil
}

// FindAll lists requests; pending ones first, newest first within a status
func (r *GormStockTransferRequestRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockTransferRequest, error) {
	var requests []inventory.StockTransferRequest
	query := applyPaging(r.applyFilter(r.db.WithContext(ctx).Model(&inventory.StockTransferRequest{}), filter),
		filter, TransferRequestSortFields, "status ASC, created_at DESC")
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// Count counts requests matching the filter
func (r *GormStockTransferRequestRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return count(r.applyFilter(r.db.WithContext(ctx).Model(&inventory.StockTransferRequest{}), filter))
}

// CountByStatus groups the requests matched by filter per status
func (r *GormStockTransferRequestRepository) CountByStatus(ctx context.Context, filter shared.Filter) (map[inventory.TransferRequestStatus]int64, error) {
	var rows []struct {
		Status inventory.TransferRequestStatus
		Total  int64
	}
	scoped := shared.Filter{Search: filter.Search, Filters: make(map[string]interface{}, len(filter.Filters))}
	for k, v := range filter.Filters {
		if k != "status" {
			scoped.Filters[k] = v
		}
	}
	err := r.applyFilter(r.db.WithContext(ctx).Model(&inventory.StockTransferRequest{}), scoped).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[inventory.TransferRequestStatus]int64, len(rows))
	for _, row := range rows {
		result[row.Status] = row.Total
	}
	return result, nil
}

// Save creates or updates a request
func (r *GormStockTransferRequestRepository) Save(ctx context.Context, request *inventory.StockTransferRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// applyFilter handles visibility: a caller sees requests they made or that
// touch their own location.
func (r *GormStockTransferRequestRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "request_code", "reason")
	userID, hasUser := filter.Filters["visible_to_user"]
	locationID, hasLocation := filter.Filters["visible_to_location"]
	switch {
	case hasUser && hasLocation:
		query = query.Where("(requested_by_id = ? OR from_location_id = ? OR to_location_id = ?)", userID, locationID, locationID)
	case hasUser:
		query = query.Where("requested_by_id = ?", userID)
	case hasLocation:
		query = query.Where("(from_location_id = ? OR to_location_id = ?)", locationID, locationID)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "urgency":
			query = query.Where("urgency = ?", value)
		case "requested_by_id":
			query = query.Where("requested_by_id = ?", value)
		}
	}
	return query
}

// GormUserActionHistoryRepository implements UserActionHistoryRepository using GORM
type GormUserActionHistoryRepository struct {
	db *gorm.DB
}

// NewGormUserActionHistoryRepository creates a new GormUserActionHistoryRepository
func NewGormUserActionHistoryRepository(db *gorm.DB) *GormUserActionHistoryRepository {
	return &GormUserActionHistoryRepository{db: db}
}

// Save stores an audit entry
func (r *GormUserActionHistoryRepository) Save(ctx context.Context, entry *inventory.UserActionHistory) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

// FindByUser returns a user's actions since the given time, newest first
func (r *GormUserActionHistoryRepository) FindByUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]inventory.UserActionHistory, error) {
	var entries []inventory.UserActionHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

var (
	_ inventory.StockLocationRepository        = (*GormStockLocationRepository)(nil)
	_ inventory.StockRepository                = (*GormStockRepository)(nil)
	_ inventory.StockTransferRepository        = (*GormStockTransferRepository)(nil)
	_ inventory.StockTransferRequestRepository = (*GormStockTransferRequestRepository)(nil)
	_ inventory.UserActionHistoryRepository    = (*GormUserActionHistoryRepository)(nil)
)
