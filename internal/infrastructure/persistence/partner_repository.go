package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/partner"
	"github.com/medrent/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPatientRepository implements PatientRepository using GORM
type GormPatientRepository struct {
	db *gorm.DB
}

// NewGormPatientRepository creates a new GormPatientRepository
func NewGormPatientRepository(db *gorm.DB) *GormPatientRepository {
	return &GormPatientRepository{db: db}
}

// FindByID finds a patient by ID
func (r *GormPatientRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Patient, error) {
	var p partner.Patient
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// FindAll lists patients matching the filter
func (r *GormPatientRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Patient, error) {
	var patients []partner.Patient
	query := applyPaging(r.applyFilter(r.db.WithContext(ctx).Model(&partner.Patient{}), filter),
		filter, PatientSortFields, "created_at DESC")
	if err := query.Find(&patients).Error; err != nil {
		return nil, err
	}
	return patients, nil
}

// Count counts patients matching the filter
func (r *GormPatientRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return count(r.applyFilter(r.db.WithContext(ctx).Model(&partner.Patient{}), filter))
}

// ExistsByCIN reports whether a patient with that CIN exists
func (r *GormPatientRepository) ExistsByCIN(ctx context.Context, cin string) (bool, error) {
	n, err := count(r.db.WithContext(ctx).Model(&partner.Patient{}).Where("cin = ?", cin))
	return n > 0, err
}

// Save creates or updates a patient
func (r *GormPatientRepository) Save(ctx context.Context, patient *partner.Patient) error {
	return r.db.WithContext(ctx).Save(patient).Error
}

// Delete deletes a patient by ID
func (r *GormPatientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &partner.Patient{}, id)
}

func (r *GormPatientRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "first_name", "last_name", "telephone", "cin", "patient_code")
	for key, value := range filter.Filters {
		switch key {
		case "assigned_to_id":
			query = query.Where("assigned_to_id = ?", value)
		case "doctor_id":
			query = query.Where("doctor_id = ?", value)
		case "technician_id":
			query = query.Where("technician_id = ?", value)
		case "governorate":
			query = query.Where("governorate = ?", value)
		}
	}
	return query
}

// GormCompanyRepository implements CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByID finds a company by ID
func (r *GormCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Company, error) {
	var c partner.Company
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// FindAll lists companies matching the filter
func (r *GormCompanyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Company, error) {
	var companies []partner.Company
	query := applyPaging(r.applyFilter(r.db.WithContext(ctx).Model(&partner.Company{}), filter),
		filter, CompanySortFields, "company_name ASC")
	if err := query.Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

// Count counts companies matching the filter
func (r *GormCompanyRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return count(r.applyFilter(r.db.WithContext(ctx).Model(&partner.Company{}), filter))
}

// Save creates or updates a company
func (r *GormCompanyRepository) Save(ctx context.Context, company *partner.Company) error {
	return r.db.WithContext(ctx).Save(company).Error
}

// Delete deletes a company by ID
func (r *GormCompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &partner.Company{}, id)
}

func (r *GormCompanyRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "company_name", "company_code", "telephone", "tax_id")
	if v, ok := filter.Filters["assigned_to_id"]; ok {
		query = query.Where("assigned_to_id = ?", v)
	}
	return query
}

// GormPatientHistoryRepository implements PatientHistoryRepository using GORM
type GormPatientHistoryRepository struct {
	db *gorm.DB
}

// NewGormPatientHistoryRepository creates a new GormPatientHistoryRepository
func NewGormPatientHistoryRepository(db *gorm.DB) *GormPatientHistoryRepository {
	return &GormPatientHistoryRepository{db: db}
}

// Save stores a history entry
func (r *GormPatientHistoryRepository) Save(ctx context.Context, entry *partner.PatientHistory) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

// FindByPatient returns the patient's history, newest first
func (r *GormPatientHistoryRepository) FindByPatient(ctx context.Context, patientID uuid.UUID) ([]partner.PatientHistory, error) {
	var entries []partner.PatientHistory
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteByRelatedItem removes the entries pointing at a deleted record
func (r *GormPatientHistoryRepository) DeleteByRelatedItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("related_item_id = ?", itemID).Delete(&partner.PatientHistory{}).Error
}

var (
	_ partner.PatientRepository        = (*GormPatientRepository)(nil)
	_ partner.CompanyRepository        = (*GormCompanyRepository)(nil)
	_ partner.PatientHistoryRepository = (*GormPatientHistoryRepository)(nil)
)
