package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/clinical"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/domain/trade"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDiagnosticRepository implements DiagnosticRepository using GORM
type GormDiagnosticRepository struct {
	db *gorm.DB
}

// NewGormDiagnosticRepository creates a new GormDiagnosticRepository
func NewGormDiagnosticRepository(db *gorm.DB) *GormDiagnosticRepository {
	return &GormDiagnosticRepository{db: db}
}

// FindByID loads a diagnostic with its result
func (r *GormDiagnosticRepository) FindByID(ctx context.Context, id uuid.UUID) (*clinical.Diagnostic, error) {
	var d clinical.Diagnostic
	if err := r.db.WithContext(ctx).Preload("Result").First(&d, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

// FindAll lists diagnostics with their results
func (r *GormDiagnosticRepository) FindAll(ctx context.Context, filter shared.Filter) ([]clinical.Diagnostic, error) {
	var diagnostics []clinical.Diagnostic
	query := applyPaging(r.applyFilter(r.db.WithContext(ctx).Preload("Result").Model(&clinical.Diagnostic{}), filter),
		filter, DiagnosticSortFields, "diagnostic_date DESC")
	if err := query.Find(&diagnostics).Error; err != nil {
		return nil, err
	}
	return diagnostics, nil
}

// Count counts diagnostics matching the filter
func (r *GormDiagnosticRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return count(r.applyFilter(r.db.WithContext(ctx).Model(&clinical.Diagnostic{}), filter))
}

// Save creates or updates the diagnostic row
func (r *GormDiagnosticRepository) Save(ctx context.Context, diagnostic *clinical.Diagnostic) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(diagnostic).Error
}

// SaveResult creates or updates the result row
func (r *GormDiagnosticRepository) SaveResult(ctx context.Context, result *clinical.DiagnosticResult) error {
	return r.db.WithContext(ctx).Save(result).Error
}

// FirstEquipmentDate returns the earliest rental start or sale date of a patient
func (r *GormDiagnosticRepository) FirstEquipmentDate(ctx context.Context, patientID uuid.UUID) (*time.Time, error) {
	var rentals []trade.Rental
	if err := r.db.WithContext(ctx).Select("id", "start_date").Where("patient_id = ?", patientID).
		Order("start_date ASC").Limit(1).Find(&rentals).Error; err != nil {
		return nil, err
	}
	var sales []trade.Sale
	if err := r.db.WithContext(ctx).Select("id", "sale_date").Where("patient_id = ?", patientID).
		Order("sale_date ASC").Limit(1).Find(&sales).Error; err != nil {
		return nil, err
	}

	var first *time.Time
	if len(rentals) > 0 {
		first = &rentals[0].StartDate
	}
	if len(sales) > 0 && (first == nil || sales[0].SaleDate.Before(*first)) {
		first = &sales[0].SaleDate
	}
	return first, nil
}

// Delete removes the diagnostic and its result
func (r *GormDiagnosticRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("diagnostic_id = ?", id).Delete(&clinical.DiagnosticResult{}).Error; err != nil {
		return err
	}
	return deleteByID(ctx, r.db, &clinical.Diagnostic{}, id)
}

func (r *GormDiagnosticRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "diagnostic_code", "notes")
	for key, value := range filter.Filters {
		switch key {
		case "patient_id":
			query = query.Where("patient_id = ?", value)
		case "medical_device_id":
			query = query.Where("medical_device_id = ?", value)
		case "performed_by_id":
			query = query.Where("performed_by_id = ?", value)
		}
	}
	return query
}

// GormAppointmentRepository implements AppointmentRepository using GORM
type GormAppointmentRepository struct {
	db *gorm.DB
}

// NewGormAppointmentRepository creates a new GormAppointmentRepository
func NewGormAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

// FindByID finds an appointment by ID
func (r *GormAppointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*clinical.Appointment, error) {
	var a clinical.Appointment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// FindAll lists appointments, soonest first
func (r *GormAppointmentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]clinical.Appointment, error) {
	var appointments []clinical.Appointment
	query := applyPaging(r.applyFilter(r.db.WithContext(ctx).Model(&clinical.Appointment{}), filter),
		filter, AppointmentSortFields, "scheduled_date ASC")
	if err := query.Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

// Count counts appointments matching the filter
func (r *GormAppointmentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return count(r.applyFilter(r.db.WithContext(ctx).Model(&clinical.Appointment{}), filter))
}

// FindScheduledBetween returns non-cancelled appointments in [from, to)
func (r *GormAppointmentRepository) FindScheduledBetween(ctx context.Context, from, to time.Time) ([]clinical.Appointment, error) {
	var appointments []clinical.Appointment
	err := r.db.WithContext(ctx).
		Where("scheduled_date >= ? AND scheduled_date < ? AND status <> ?", from, to, clinical.AppointmentCancelled).
		Order("scheduled_date ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// Save creates or updates an appointment
func (r *GormAppointmentRepository) Save(ctx context.Context, appointment *clinical.Appointment) error {
	return r.db.WithContext(ctx).Save(appointment).Error
}

// Delete deletes an appointment by ID
func (r *GormAppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &clinical.Appointment{}, id)
}

func (r *GormAppointmentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "appointment_code", "appointment_type", "location")
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "patient_id":
			query = query.Where("patient_id = ?", value)
		case "company_id":
			query = query.Where("company_id = ?", value)
		case "assigned_to_id":
			query = query.Where("assigned_to_id = ?", value)
		case "from_date":
			query = query.Where("scheduled_date >= ?", value)
		case "to_date":
			query = query.Where("scheduled_date <= ?", value)
		}
	}
	return query
}

// GormFileRepository implements FileRepository using GORM
type GormFileRepository struct {
	db *gorm.DB
}

// NewGormFileRepository creates a new GormFileRepository
func NewGormFileRepository(db *gorm.DB) *GormFileRepository {
	return &GormFileRepository{db: db}
}

// FindByID finds a file record by ID
func (r *GormFileRepository) FindByID(ctx context.Context, id uuid.UUID) (*clinical.File, error) {
	var f clinical.File
	if err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

// FindByPatient returns a patient's files, newest first
func (r *GormFileRepository) FindByPatient(ctx context.Context, patientID uuid.UUID) ([]clinical.File, error) {
	var files []clinical.File
	if err := r.db.WithContext(ctx).Where("patient_id = ?", patientID).Order("created_at DESC").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// Save creates or updates a file record
func (r *GormFileRepository) Save(ctx context.Context, file *clinical.File) error {
	return r.db.WithContext(ctx).Save(file).Error
}

// Delete deletes a file record by ID
func (r *GormFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &clinical.File{}, id)
}

var (
	_ clinical.DiagnosticRepository  = (*GormDiagnosticRepository)(nil)
	_ clinical.AppointmentRepository = (*GormAppointmentRepository)(nil)
	_ clinical.FileRepository        = (*GormFileRepository)(nil)
)
