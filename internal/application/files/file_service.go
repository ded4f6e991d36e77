// Package files stores patient and diagnostic documents in object storage.
package files

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/clinical"
	"github.com/medrent/backend/internal/domain/partner"
	"github.com/medrent/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Config bounds what may be uploaded
type Config struct {
	MaxSize      int64
	AllowedTypes []string
	PresignTTL   time.Duration
}

// DefaultConfig allows PDF and images up to 10 MiB
func DefaultConfig() Config {
	return Config{
		MaxSize:      10 << 20,
		AllowedTypes: []string{"application/pdf", "image/jpeg", "image/png"},
		PresignTTL:   15 * time.Minute,
	}
}

// FileService handles uploaded documents
type FileService struct {
	fileRepo    clinical.FileRepository
	patientRepo partner.PatientRepository
	storage     ObjectStorage
	config      Config
	allowed     map[string]bool
	logger      *zap.Logger
}

// NewFileService creates a new FileService
func NewFileService(fileRepo clinical.FileRepository, patientRepo partner.PatientRepository, storage ObjectStorage, config Config, logger *zap.Logger) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultConfig()
	if config.MaxSize <= 0 {
		config.MaxSize = defaults.MaxSize
	}
	if len(config.AllowedTypes) == 0 {
		config.AllowedTypes = defaults.AllowedTypes
	}
	if config.PresignTTL <= 0 {
		config.PresignTTL = defaults.PresignTTL
	}
	allowed := make(map[string]bool, len(config.AllowedTypes))
	for _, t := range config.AllowedTypes {
		allowed[strings.ToLower(t)] = true
	}
	return &FileService{
		fileRepo:    fileRepo,
		patientRepo: patientRepo,
		storage:     storage,
		config:      config,
		allowed:     allowed,
		logger:      logger,
	}
}

// Upload validates and stores a document, then records it
func (s *FileService) Upload(ctx context.Context, req UploadRequest) (*FileResponse, error) {
	if req.Size <= 0 {
		return nil, shared.NewDomainError("EMPTY_FILE", "File is empty")
	}
	if req.Size > s.config.MaxSize {
		return nil, shared.NewDomainError("FILE_TOO_LARGE", fmt.Sprintf("File exceeds the %d bytes limit", s.config.MaxSize))
	}
	contentType := normalizeContentType(req.ContentType)
	if !s.allowed[contentType] {
		return nil, shared.NewDomainError("UNSUPPORTED_FILE_TYPE", "File type "+contentType+" is not allowed")
	}
	fileType := clinical.FileType(req.Type)
	if fileType == "" {
		fileType = clinical.FileOther
	}
	if !fileType.IsValid() {
		return nil, shared.NewDomainError("INVALID_FILE_TYPE", "Invalid file type")
	}
	if req.PatientID != nil {
		if _, err := s.patientRepo.FindByID(ctx, *req.PatientID); err != nil {
			return nil, err
		}
	}

	name := sanitizeFileName(req.FileName)
	key := objectKey(req.PatientID, name)
	if err := s.storage.Put(ctx, key, io.LimitReader(req.Body, s.config.MaxSize), req.Size, contentType); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	file, err := clinical.NewFile(key, key, fileType, req.PatientID)
	if err != nil {
		return nil, err
	}
	file.FileName = name
	file.ContentType = contentType
	file.Size = req.Size
	if err := s.fileRepo.Save(ctx, file); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned object", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("file uploaded",
		zap.String("file_id", file.ID.String()),
		zap.String("key", key),
		zap.Int64("size", req.Size))
	response := ToFileResponse(file)
	return &response, nil
}

// GetByID returns a file record
func (s *FileService) GetByID(ctx context.Context, id uuid.UUID) (*FileResponse, error) {
	file, err := s.fileRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToFileResponse(file)
	return &response, nil
}

// ListByPatient returns the documents of a patient
func (s *FileService) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]FileResponse, error) {
	if _, err := s.patientRepo.FindByID(ctx, patientID); err != nil {
		return nil, err
	}
	files, err := s.fileRepo.FindByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	out := make([]FileResponse, len(files))
	for i := range files {
		out[i] = ToFileResponse(&files[i])
	}
	return out, nil
}

// DownloadURL returns a presigned URL for stored objects, or the recorded
// URL for external links
func (s *FileService) DownloadURL(ctx context.Context, id uuid.UUID) (*DownloadURLResponse, error) {
	file, err := s.fileRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if file.ObjectKey == "" {
		return &DownloadURLResponse{URL: file.URL}, nil
	}
	url, expires, err := s.storage.PresignGet(ctx, file.ObjectKey, s.config.PresignTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to presign download: %w", err)
	}
	return &DownloadURLResponse{URL: url, ExpiresAt: &expires}, nil
}

// Delete removes the stored object and its record
func (s *FileService) Delete(ctx context.Context, id uuid.UUID) error {
	file, err := s.fileRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if file.ObjectKey != "" {
		if err := s.storage.Delete(ctx, file.ObjectKey); err != nil {
			return fmt.Errorf("failed to delete object: %w", err)
		}
	}
	if err := s.fileRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("file deleted", zap.String("file_id", id.String()))
	return nil
}

func normalizeContentType(raw string) string {
	if mt, _, err := mime.ParseMediaType(raw); err == nil {
		return strings.ToLower(mt)
	}
	return strings.ToLower(strings.TrimSpace(raw))
}

// sanitizeFileName keeps the base name with letters, digits, dot, dash and
// underscore; anything else becomes a dash
func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "document"
	}
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '-'
	}, name)
	if len(clean) > 120 {
		clean = clean[len(clean)-120:]
	}
	return clean
}

// objectKey is patients/<patient>/<uuid>-<name>, or documents/<uuid>-<name>
// for files not tied to a patient
func objectKey(patientID *uuid.UUID, name string) string {
	if patientID == nil {
		return fmt.Sprintf("documents/%s-%s", uuid.NewString(), name)
	}
	return fmt.Sprintf("patients/%s/%s-%s", patientID, uuid.NewString(), name)
}
