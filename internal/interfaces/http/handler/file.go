package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medrent/backend/internal/application/files"
)

// FileHandler handles uploaded patient and diagnostic documents
type FileHandler struct {
	BaseHandler
	fileService *files.FileService
}

// NewFileHandler creates a new FileHandler
func NewFileHandler(fileService *files.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// Upload godoc
// @Summary      Upload document
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "Document"
// @Param        patient_id formData string false "Patient" format(uuid)
// @Param        type formData string false "Type" Enums(DIAGNOSTIC_DOCUMENT, PATIENT_DOCUMENT, OTHER)
// @Success      201 {object} APIResponse[files.FileResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      415 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /files [post]
func (h *FileHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	req := files.UploadRequest{
		Type:        c.PostForm("type"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
	if raw := c.PostForm("patient_id"); raw != "" {
		patientID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid patient_id")
			return
		}
		req.PatientID = &patientID
	}

	uploaded, err := h.fileService.Upload(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, uploaded)
}

// GetByID godoc
// @Summary      Get document metadata
// @Tags         files
// @Produce      json
// @Param        id path string true "File ID" format(uuid)
// @Success      200 {object} APIResponse[files.FileResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /files/{id} [get]
func (h *FileHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	file, err := h.fileService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, file)
}

// ListByPatient godoc
// @Summary      List a patient's documents
// @Tags         files
// @Produce      json
// @Param        id path string true "Patient ID" format(uuid)
// @Success      200 {object} APIResponse[[]files.FileResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /patients/{id}/files [get]
func (h *FileHandler) ListByPatient(c *gin.Context) {
	patientID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	list, err := h.fileService.ListByPatient(c.Request.Context(), patientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// DownloadURL godoc
// @Summary      Document download link
// @Description  Returns a time-limited presigned URL
// @Tags         files
// @Produce      json
// @Param        id path string true "File ID" format(uuid)
// @Success      200 {object} APIResponse[files.DownloadURLResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /files/{id}/url [get]
func (h *FileHandler) DownloadURL(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	link, err := h.fileService.DownloadURL(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, link)
}

// Delete godoc
// @Summary      Delete document
// @Description  Removes the stored object and its record
// @Tags         files
// @Param        id path string true "File ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /files/{id} [delete]
func (h *FileHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.fileService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
