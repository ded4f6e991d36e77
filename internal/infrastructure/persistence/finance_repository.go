package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/finance"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID loads a payment with its details
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Payment, error) {
	var p finance.Payment
	if err := r.db.WithContext(ctx).Preload("Details").First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// FindAll lists payments matching the filter
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.Payment, error) {
	var payments []finance.Payment
	query := applyPaging(r.applyFilter(r.db.WithContext(ctx).Model(&finance.Payment{}), filter),
		filter, PaymentSortFields, "payment_date DESC")
	if err := query.Preload("Details").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Count counts payments matching the filter
func (r *GormPaymentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return count(r.applyFilter(r.db.WithContext(ctx).Model(&finance.Payment{}), filter))
}

// FindByRental returns the payments of a rental, oldest first
func (r *GormPaymentRepository) FindByRental(ctx context.Context, rentalID uuid.UUID) ([]finance.Payment, error) {
	return r.findBy(ctx, "rental_id = ?", rentalID)
}

// FindBySale returns the payments of a sale with their details
func (r *GormPaymentRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]finance.Payment, error) {
	return r.findBy(ctx, "sale_id = ?", saleID)
}

func (r *GormPaymentRepository) findBy(ctx context.Context, cond string, arg interface{}) ([]finance.Payment, error) {
	var payments []finance.Payment
	err := r.db.WithContext(ctx).Preload("Details").
		Where(cond, arg).
		Order("payment_date ASC, created_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// FindOverdue returns PENDING payments whose due date is before now
func (r *GormPaymentRepository) FindOverdue(ctx context.Context, now time.Time) ([]finance.Payment, error) {
	var payments []finance.Payment
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", finance.PaymentStatusPending, now).
		Order("due_date ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// SumByStatus sums amounts in a status, optionally bounded by payment date
func (r *GormPaymentRepository) SumByStatus(ctx context.Context, status finance.PaymentStatus, from, to *time.Time) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).Model(&finance.Payment{}).Where("status = ?", status)
	if from != nil {
		query = query.Where("payment_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("payment_date <= ?", *to)
	}
	var total decimal.NullDecimal
	if err := query.Select("SUM(amount)").Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// Save creates or updates a payment; details are written through SaveDetail
func (r *GormPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(payment).Error
}

// SaveDetail creates or updates a payment detail line
func (r *GormPaymentRepository) SaveDetail(ctx context.Context, detail *finance.PaymentDetail) error {
	return r.db.WithContext(ctx).Save(detail).Error
}

// DeleteDetailsByPayment removes every detail line of a payment
func (r *GormPaymentRepository) DeleteDetailsByPayment(ctx context.Context, paymentID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("payment_id = ?", paymentID).Delete(&finance.PaymentDetail{}).Error
}

// Delete deletes a payment and its details
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.DeleteDetailsByPayment(ctx, id); err != nil {
		return err
	}
	return deleteByID(ctx, r.db, &finance.Payment{}, id)
}

func (r *GormPaymentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "payment_code", "reference_number", "cheque_number", "cnam_bond_number")
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "method":
			query = query.Where("method = ?", value)
		case "patient_id":
			query = query.Where("patient_id = ?", value)
		case "company_id":
			query = query.Where("company_id = ?", value)
		case "source":
			query = query.Where("source = ?", value)
		case "rental_id":
			query = query.Where("rental_id = ?", value)
		case "sale_id":
			query = query.Where("sale_id = ?", value)
		case "from_date":
			query = query.Where("payment_date >= ?", value)
		case "to_date":
			query = query.Where("payment_date <= ?", value)
		}
	}
	return query
}

// GormCNAMBondRepository implements CNAMBondRepository using GORM
type GormCNAMBondRepository struct {
	db *gorm.DB
}

// NewGormCNAMBondRepository creates a new GormCNAMBondRepository
func NewGormCNAMBondRepository(db *gorm.DB) *GormCNAMBondRepository {
	return &GormCNAMBondRepository{db: db}
}

// FindByID finds a bond by ID
func (r *GormCNAMBondRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.CNAMBondRental, error) {
	var b finance.CNAMBondRental
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// FindByRental returns the bonds of a rental
func (r *GormCNAMBondRepository) FindByRental(ctx context.Context, rentalID uuid.UUID) ([]finance.CNAMBondRental, error) {
	var bonds []finance.CNAMBondRental
	err := r.db.WithContext(ctx).Where("rental_id = ?", rentalID).Order("created_at ASC").Find(&bonds).Error
	if err != nil {
		return nil, err
	}
	return bonds, nil
}

// FindBySale returns the bonds of a sale
func (r *GormCNAMBondRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]finance.CNAMBondRental, error) {
	var bonds []finance.CNAMBondRental
	err := r.db.WithContext(ctx).Where("sale_id = ?", saleID).Order("created_at ASC").Find(&bonds).Error
	if err != nil {
		return nil, err
	}
	return bonds, nil
}

// FindEndingBetween returns bonds in the status whose end date lies in [from, to]
func (r *GormCNAMBondRepository) FindEndingBetween(ctx context.Context, status finance.CNAMStatus, from, to time.Time) ([]finance.CNAMBondRental, error) {
	var bonds []finance.CNAMBondRental
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_date >= ? AND end_date <= ?", status, from, to).
		Order("end_date ASC").
		Find(&bonds).Error
	if err != nil {
		return nil, err
	}
	return bonds, nil
}

// Save creates or updates a bond
func (r *GormCNAMBondRepository) Save(ctx context.Context, bond *finance.CNAMBondRental) error {
	return r.db.WithContext(ctx).Save(bond).Error
}

// Delete deletes a bond by ID
func (r *GormCNAMBondRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &finance.CNAMBondRental{}, id)
}

// GormCNAMDossierRepository implements CNAMDossierRepository using GORM
type GormCNAMDossierRepository struct {
	db *gorm.DB
}

// NewGormCNAMDossierRepository creates a new GormCNAMDossierRepository
func NewGormCNAMDossierRepository(db *gorm.DB) *GormCNAMDossierRepository {
	return &GormCNAMDossierRepository{db: db}
}

func (r *GormCNAMDossierRepository) withHistory(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("StepHistory", func(db *gorm.DB) *gorm.DB {
		return db.Order("change_date ASC")
	})
}

// FindByID loads a dossier with its step history
func (r *GormCNAMDossierRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.CNAMDossier, error) {
	var d finance.CNAMDossier
	if err := r.withHistory(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

// FindAll lists dossiers matching the filter
func (r *GormCNAMDossierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.CNAMDossier, error) {
	var dossiers []finance.CNAMDossier
	query := applyPaging(r.applyFilter(r.withHistory(ctx).Model(&finance.CNAMDossier{}), filter),
		filter, DossierSortFields, "created_at DESC")
	if err := query.Find(&dossiers).Error; err != nil {
		return nil, err
	}
	return dossiers, nil
}

// Count counts dossiers matching the filter
func (r *GormCNAMDossierRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return count(r.applyFilter(r.db.WithContext(ctx).Model(&finance.CNAMDossier{}), filter))
}

// FindBySale returns the dossiers of a sale
func (r *GormCNAMDossierRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]finance.CNAMDossier, error) {
	var dossiers []finance.CNAMDossier
	if err := r.withHistory(ctx).Where("sale_id = ?", saleID).Order("created_at ASC").Find(&dossiers).Error; err != nil {
		return nil, err
	}
	return dossiers, nil
}

// Save persists the dossier together with any new step history entries
func (r *GormCNAMDossierRepository) Save(ctx context.Context, dossier *finance.CNAMDossier) error {
	return r.db.WithContext(ctx).Save(dossier).Error
}

// SaveStep appends a step history entry
func (r *GormCNAMDossierRepository) SaveStep(ctx context.Context, entry *finance.CNAMStepHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// DeleteBySale removes the sale's dossiers and their history
func (r *GormCNAMDossierRepository) DeleteBySale(ctx context.Context, saleID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	ids := db.Model(&finance.CNAMDossier{}).Select("id").Where("sale_id = ?", saleID)
	if err := db.Where("dossier_id IN (?)", ids).Delete(&finance.CNAMStepHistory{}).Error; err != nil {
		return err
	}
	return db.Where("sale_id = ?", saleID).Delete(&finance.CNAMDossier{}).Error
}

func (r *GormCNAMDossierRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "dossier_number", "notes")
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "patient_id":
			query = query.Where("patient_id = ?", value)
		case "sale_id":
			query = query.Where("sale_id = ?", value)
		}
	}
	return query
}

var (
	_ finance.PaymentRepository     = (*GormPaymentRepository)(nil)
	_ finance.CNAMBondRepository    = (*GormCNAMBondRepository)(nil)
	_ finance.CNAMDossierRepository = (*GormCNAMDossierRepository)(nil)
)
