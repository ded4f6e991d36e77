package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/domain/trade"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRentalRepository implements RentalRepository using GORM
type GormRentalRepository struct {
	db *gorm.DB
}

// NewGormRentalRepository creates a new GormRentalRepository
func NewGormRentalRepository(db *gorm.DB) *GormRentalRepository {
	return &GormRentalRepository{db: db}
}

func (r *GormRentalRepository) withChildren(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Configuration").
		Preload("Gaps", func(db *gorm.DB) *gorm.DB { return db.Order("start_date ASC") }).
		Preload("Accessories").
		Preload("Periods", func(db *gorm.DB) *gorm.DB { return db.Order("start_date ASC") })
}

// FindByID loads a rental with configuration, gaps, accessories and periods
func (r *GormRentalRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Rental, error) {
	var rental trade.Rental
	if err := r.withChildren(ctx).First(&rental, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &rental, nil
}

// FindAll lists rentals with their child rows
func (r *GormRentalRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Rental, error) {
	var rentals []trade.Rental
	query := applyPaging(r.applyFilter(r.withChildren(ctx).Model(&trade.Rental{}), filter),
		filter, RentalSortFields, "created_at DESC")
	if err := query.Find(&rentals).Error; err != nil {
		return nil, err
	}
	return rentals, nil
}

// Count counts rentals matching the filter
func (r *GormRentalRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return count(r.applyFilter(r.db.WithContext(ctx).Model(&trade.Rental{}), filter))
}

// HasActiveRentalForDevice reports whether the device is in an ACTIVE rental
func (r *GormRentalRepository) HasActiveRentalForDevice(ctx context.Context, deviceID uuid.UUID) (bool, error) {
	n, err := count(r.db.WithContext(ctx).Model(&trade.Rental{}).
		Where("medical_device_id = ? AND status = ?", deviceID, trade.RentalStatusActive))
	return n > 0, err
}

// CountByPatient counts the rentals of a patient
func (r *GormRentalRepository) CountByPatient(ctx context.Context, patientID uuid.UUID) (int64, error) {
	return count(r.db.WithContext(ctx).Model(&trade.Rental{}).Where("patient_id = ?", patientID))
}

// FindEndingBetween returns ACTIVE rentals whose end date is in [from, to]
func (r *GormRentalRepository) FindEndingBetween(ctx context.Context, from, to time.Time) ([]trade.Rental, error) {
	var rentals []trade.Rental
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_date >= ? AND end_date <= ?", trade.RentalStatusActive, from, to).
		Order("end_date ASC").
		Find(&rentals).Error
	if err != nil {
		return nil, err
	}
	return rentals, nil
}

// CountByStatus counts rentals stored in a status
func (r *GormRentalRepository) CountByStatus(ctx context.Context, status trade.RentalStatus) (int64, error) {
	return count(r.db.WithContext(ctx).Model(&trade.Rental{}).Where("status = ?", status))
}

// Save creates or updates the rental row only; child rows have their own writers
func (r *GormRentalRepository) Save(ctx context.Context, rental *trade.Rental) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(rental).Error
}

// SaveConfiguration creates or updates a rental configuration
func (r *GormRentalRepository) SaveConfiguration(ctx context.Context, cfg *trade.RentalConfiguration) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}

// SaveGap stores a gap row
func (r *GormRentalRepository) SaveGap(ctx context.Context, gap *trade.RentalGap) error {
	return r.db.WithContext(ctx).Save(gap).Error
}

// SaveAccessory stores an accessory row
func (r *GormRentalRepository) SaveAccessory(ctx context.Context, accessory *trade.RentalAccessory) error {
	return r.db.WithContext(ctx).Save(accessory).Error
}

// Delete removes the rental with its configuration, gaps, accessories and periods
func (r *GormRentalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	for _, child := range []interface{}{
		&trade.RentalPeriod{},
		&trade.RentalGap{},
		&trade.RentalAccessory{},
		&trade.RentalConfiguration{},
	} {
		if err := db.Where("rental_id = ?", id).Delete(child).Error; err != nil {
			return err
		}
	}
	return deleteByID(ctx, r.db, &trade.Rental{}, id)
}

func (r *GormRentalRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if term := filter.Search; term != "" {
		patients := applySearch(r.db.Table("patients").Select("id"), term, "first_name", "last_name", "patient_code")
		query = query.Where("(LOWER(rental_code) LIKE ? OR patient_id IN (?))", likePattern(term), patients)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "patient_id":
			query = query.Where("patient_id = ?", value)
		case "medical_device_id":
			query = query.Where("medical_device_id = ?", value)
		}
	}
	return query
}

// GormRentalPeriodRepository implements RentalPeriodRepository using GORM
type GormRentalPeriodRepository struct {
	db *gorm.DB
}

// NewGormRentalPeriodRepository creates a new GormRentalPeriodRepository
func NewGormRentalPeriodRepository(db *gorm.DB) *GormRentalPeriodRepository {
	return &GormRentalPeriodRepository{db: db}
}

// FindByID finds a period by ID
func (r *GormRentalPeriodRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.RentalPeriod, error) {
	var p trade.RentalPeriod
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// FindByRental returns the periods of a rental ordered by start date
func (r *GormRentalPeriodRepository) FindByRental(ctx context.Context, rentalID uuid.UUID) ([]trade.RentalPeriod, error) {
	var periods []trade.RentalPeriod
	if err := r.db.WithContext(ctx).Where("rental_id = ?", rentalID).Order("start_date ASC").Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

// Save creates or updates a period
func (r *GormRentalPeriodRepository) Save(ctx context.Context, period *trade.RentalPeriod) error {
	return r.db.WithContext(ctx).Save(period).Error
}

// Delete deletes a period by ID
func (r *GormRentalPeriodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &trade.RentalPeriod{}, id)
}

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func (r *GormSaleRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items.Configuration")
}

// FindByID loads a sale with items and their configurations
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	var sale trade.Sale
	if err := r.withItems(ctx).First(&sale, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &sale, nil
}

// FindAll lists sales matching the filter
func (r *GormSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Sale, error) {
	var sales []trade.Sale
	query := applyPaging(r.applyFilter(r.withItems(ctx).Model(&trade.Sale{}), filter),
		filter, SaleSortFields, "sale_date DESC")
	if err := query.Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// Count counts sales matching the filter
func (r *GormSaleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return count(r.applyFilter(r.db.WithContext(ctx).Model(&trade.Sale{}), filter))
}

// CountByPatient counts the sales of a patient
func (r *GormSaleRepository) CountByPatient(ctx context.Context, patientID uuid.UUID) (int64, error) {
	return count(r.db.WithContext(ctx).Model(&trade.Sale{}).Where("patient_id = ?", patientID))
}

// CountSince counts non-cancelled sales dated on or after since
func (r *GormSaleRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	return count(r.db.WithContext(ctx).Model(&trade.Sale{}).
		Where("sale_date >= ? AND status <> ?", since, trade.SaleStatusCancelled))
}

// Save creates or updates the sale row only
func (r *GormSaleRepository) Save(ctx context.Context, sale *trade.Sale) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(sale).Error
}

// SaveItem creates or updates a sale item
func (r *GormSaleRepository) SaveItem(ctx context.Context, item *trade.SaleItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(item).Error
}

// SaveConfiguration creates or updates an item configuration
func (r *GormSaleRepository) SaveConfiguration(ctx context.Context, cfg *trade.SaleConfiguration) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}

// DeleteConfigurations removes the configurations of the sale's items
func (r *GormSaleRepository) DeleteConfigurations(ctx context.Context, saleID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("sale_id = ?", saleID).Delete(&trade.SaleConfiguration{}).Error
}

// DeleteItems removes the sale's items
func (r *GormSaleRepository) DeleteItems(ctx context.Context, saleID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("sale_id = ?", saleID).Delete(&trade.SaleItem{}).Error
}

// Delete deletes the sale row
func (r *GormSaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &trade.Sale{}, id)
}

func (r *GormSaleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "sale_code", "invoice_number", "notes")
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "patient_id":
			query = query.Where("patient_id = ?", value)
		case "company_id":
			query = query.Where("company_id = ?", value)
		case "processed_by_id":
			query = query.Where("processed_by_id = ?", value)
		case "from_date":
			query = query.Where("sale_date >= ?", value)
		case "to_date":
			query = query.Where("sale_date <= ?", value)
		}
	}
	return query
}

var (
	_ trade.RentalRepository       = (*GormRentalRepository)(nil)
	_ trade.RentalPeriodRepository = (*GormRentalPeriodRepository)(nil)
	_ trade.SaleRepository         = (*GormSaleRepository)(nil)
)
