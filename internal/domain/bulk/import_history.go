package bulk

import (
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// ImportEntityType is what a spreadsheet import creates
type ImportEntityType string

const (
	ImportEntityPatients ImportEntityType = "patients"
	ImportEntityDevices  ImportEntityType = "devices"
)

// IsValid checks if the entity type is valid
func (e ImportEntityType) IsValid() bool {
	return e == ImportEntityPatients || e == ImportEntityDevices
}

// ImportStatus represents the status of an import run
type ImportStatus string

const (
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
)

// RowError is a rejected spreadsheet row
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

// ImportHistory records one spreadsheet import and its outcome
type ImportHistory struct {
	shared.BaseEntity
	EntityType  ImportEntityType `gorm:"type:varchar(20);not null;index"`
	FileName    string           `gorm:"type:varchar(255);not null"`
	FileSize    int64            `gorm:"not null;default:0"`
	TotalRows   int              `gorm:"not null;default:0"`
	CreatedRows int              `gorm:"not null;default:0"`
	SkippedRows int              `gorm:"not null;default:0"`
	Status      ImportStatus     `gorm:"type:varchar(20);not null"`
	Errors      []RowError       `gorm:"type:jsonb;serializer:json"`
	ImportedBy  uuid.UUID        `gorm:"type:uuid;not null"`
	CompletedAt *time.Time
}

// TableName returns the table name for GORM
func (ImportHistory) TableName() string {
	return "import_histories"
}

// NewImportHistory starts a processing record
func NewImportHistory(entityType ImportEntityType, fileName string, fileSize int64, importedBy uuid.UUID) (*ImportHistory, error) {
	if !entityType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", "Invalid import entity type: "+string(entityType))
	}
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	return &ImportHistory{
		BaseEntity: shared.NewBaseEntity(),
		EntityType: entityType,
		FileName:   fileName,
		FileSize:   fileSize,
		Status:     ImportStatusProcessing,
		Errors:     make([]RowError, 0),
		ImportedBy: importedBy,
	}, nil
}

// Complete closes the run. A run that created nothing but rejected rows
// is marked failed.
func (h *ImportHistory) Complete(total, created, skipped int, errs []RowError) error {
	if h.Status != ImportStatusProcessing {
		return shared.NewDomainError("INVALID_STATE", "Import is already finished")
	}
	status := ImportStatusCompleted
	if created == 0 && len(errs) > 0 {
		status = ImportStatusFailed
	}
	now := time.Now()
	h.TotalRows = total
	h.CreatedRows = created
	h.SkippedRows = skipped
	if errs == nil {
		errs = make([]RowError, 0)
	}
	h.Errors = errs
	h.Status = status
	h.CompletedAt = &now
	h.Touch()
	return nil
}

// SuccessRate returns created rows as a percentage of total rows
func (h *ImportHistory) SuccessRate() float64 {
	if h.TotalRows == 0 {
		return 0
	}
	return float64(h.CreatedRows) / float64(h.TotalRows) * 100
}
