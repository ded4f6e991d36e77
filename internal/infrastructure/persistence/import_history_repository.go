package persistence

import (
	"context"

	"github.com/medrent/backend/internal/domain/bulk"
	"github.com/medrent/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormImportHistoryRepository implements ImportHistoryRepository using GORM
type GormImportHistoryRepository struct {
	db *gorm.DB
}

// NewGormImportHistoryRepository creates a new GormImportHistoryRepository
func NewGormImportHistoryRepository(db *gorm.DB) *GormImportHistoryRepository {
	return &GormImportHistoryRepository{db: db}
}

// FindAll lists import runs, newest first
func (r *GormImportHistoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]bulk.ImportHistory, error) {
	var runs []bulk.ImportHistory
	query := applyPaging(r.applyFilter(r.db.WithContext(ctx).Model(&bulk.ImportHistory{}), filter),
		filter, ImportHistorySortFields, "created_at DESC")
	if err := query.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// Count counts import runs matching the filter
func (r *GormImportHistoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return count(r.applyFilter(r.db.WithContext(ctx).Model(&bulk.ImportHistory{}), filter))
}

// Save creates or updates an import run
func (r *GormImportHistoryRepository) Save(ctx context.Context, history *bulk.ImportHistory) error {
	return r.db.WithContext(ctx).Save(history).Error
}

func (r *GormImportHistoryRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "file_name")
	for key, value := range filter.Filters {
		switch key {
		case "entity_type":
			query = query.Where("entity_type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "imported_by":
			query = query.Where("imported_by = ?", value)
		}
	}
	return query
}

var _ bulk.ImportHistoryRepository = (*GormImportHistoryRepository)(nil)
