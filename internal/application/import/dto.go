package importapp

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/bulk"
	"github.com/medrent/backend/internal/infrastructure/importer"
)

// previewRows is how many data rows a preview returns
const previewRows = 10

// Upload is a spreadsheet received from a multipart form
type Upload struct {
	FileName string
	Size     int64
	Body     io.Reader
}

// PreviewResponse shows the start of a file and the proposed mapping
type PreviewResponse struct {
	FileName  string                   `json:"file_name"`
	Headers   []string                 `json:"headers"`
	Rows      [][]string               `json:"rows"`
	TotalRows int                      `json:"total_rows"`
	Fields    []importer.TargetField   `json:"fields"`
	Mapping   []importer.ColumnMapping `json:"mapping"`
}

// ImportRequest is an upload plus an optional field→column mapping.
// When Mapping is empty the proposed mapping is used.
type ImportRequest struct {
	Upload
	Mapping map[string]string
}

// ImportResult summarises one import run
type ImportResult struct {
	HistoryID   uuid.UUID       `json:"history_id"`
	Total       int             `json:"total"`
	Created     int             `json:"created"`
	Skipped     int             `json:"skipped"`
	Errors      []bulk.RowError `json:"errors"`
	TotalErrors int             `json:"total_errors"`
	IsTruncated bool            `json:"is_truncated,omitempty"`
}

// HistoryFilter filters the import history
type HistoryFilter struct {
	EntityType string `form:"entity_type" binding:"omitempty,oneof=patients devices"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// HistoryResponse represents one import run in API responses
type HistoryResponse struct {
	ID          uuid.UUID       `json:"id"`
	EntityType  string          `json:"entity_type"`
	FileName    string          `json:"file_name"`
	FileSize    int64           `json:"file_size"`
	TotalRows   int             `json:"total_rows"`
	CreatedRows int             `json:"created_rows"`
	SkippedRows int             `json:"skipped_rows"`
	Status      string          `json:"status"`
	SuccessRate float64         `json:"success_rate"`
	Errors      []bulk.RowError `json:"errors"`
	ImportedBy  uuid.UUID       `json:"imported_by"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// ToHistoryResponse converts an import run
func ToHistoryResponse(h *bulk.ImportHistory) HistoryResponse {
	return HistoryResponse{
		ID:          h.ID,
		EntityType:  string(h.EntityType),
		FileName:    h.FileName,
		FileSize:    h.FileSize,
		TotalRows:   h.TotalRows,
		CreatedRows: h.CreatedRows,
		SkippedRows: h.SkippedRows,
		Status:      string(h.Status),
		SuccessRate: h.SuccessRate(),
		Errors:      h.Errors,
		ImportedBy:  h.ImportedBy,
		CreatedAt:   h.CreatedAt,
		CompletedAt: h.CompletedAt,
	}
}
