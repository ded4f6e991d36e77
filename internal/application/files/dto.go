package files

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/clinical"
)

// UploadRequest is one document read from a multipart form
type UploadRequest struct {
	PatientID   *uuid.UUID
	Type        string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// FileResponse represents a file in API responses
type FileResponse struct {
	ID          uuid.UUID  `json:"id"`
	URL         string     `json:"url"`
	ObjectKey   string     `json:"object_key,omitempty"`
	Type        string     `json:"type"`
	FileName    string     `json:"file_name,omitempty"`
	ContentType string     `json:"content_type,omitempty"`
	Size        int64      `json:"size"`
	PatientID   *uuid.UUID `json:"patient_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToFileResponse converts a domain file
func ToFileResponse(f *clinical.File) FileResponse {
	return FileResponse{
		ID:          f.ID,
		URL:         f.URL,
		ObjectKey:   f.ObjectKey,
		Type:        string(f.Type),
		FileName:    f.FileName,
		ContentType: f.ContentType,
		Size:        f.Size,
		PatientID:   f.PatientID,
		CreatedAt:   f.CreatedAt,
	}
}

// DownloadURLResponse carries a download link and, for presigned links, its expiry
type DownloadURLResponse struct {
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
