package clinical

import (
	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// FileType classifies a stored document
type FileType string

const (
	FileDiagnosticDocument FileType = "DIAGNOSTIC_DOCUMENT"
	FilePatientDocument    FileType = "PATIENT_DOCUMENT"
	FileOther              FileType = "OTHER"
)

// IsValid reports whether t is a known file type
func (t FileType) IsValid() bool {
	switch t {
	case FileDiagnosticDocument, FilePatientDocument, FileOther:
		return true
	}
	return false
}

// File is a document kept in object storage
type File struct {
	shared.BaseEntity
	URL         string     `gorm:"column:url;type:text;not null"`
	ObjectKey   string     `gorm:"type:varchar(500)"`
	Type        FileType   `gorm:"type:varchar(30);not null;default:'OTHER'"`
	FileName    string     `gorm:"type:varchar(255)"`
	ContentType string     `gorm:"type:varchar(100)"`
	Size        int64      `gorm:"not null;default:0"`
	PatientID   *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (File) TableName() string {
	return "files"
}

// NewFile creates a file record
func NewFile(url, objectKey string, fileType FileType, patientID *uuid.UUID) (*File, error) {
	if url == "" {
		return nil, shared.NewDomainError("INVALID_FILE_URL", "File URL is required")
	}
	if fileType == "" {
		fileType = FileOther
	}
	if !fileType.IsValid() {
		return nil, shared.NewDomainError("INVALID_FILE_TYPE", "Invalid file type")
	}
	return &File{
		BaseEntity: shared.NewBaseEntity(),
		URL:        url,
		ObjectKey:  objectKey,
		Type:       fileType,
		PatientID:  patientID,
	}, nil
}
