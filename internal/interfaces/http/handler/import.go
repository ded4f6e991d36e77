package handler

import (
	"context"
	"encoding/json"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	importapp "github.com/medrent/backend/internal/application/import"
	"github.com/medrent/backend/internal/domain/bulk"
	"github.com/medrent/backend/internal/domain/identity"
)

// ImportHandler handles spreadsheet imports of patients and devices
type ImportHandler struct {
	BaseHandler
	importService *importapp.ImportService
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(importService *importapp.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// Preview godoc
// @Summary      Preview import file
// @Description  Returns the header row, the first rows and the proposed column mapping
// @Tags         import
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "xlsx or csv file"
// @Param        entity_type formData string true "Entity type" Enums(patients, devices)
// @Success      200 {object} APIResponse[importapp.PreviewResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /import/preview [post]
func (h *ImportHandler) Preview(c *gin.Context) {
	entityType := bulk.ImportEntityType(c.PostForm("entity_type"))
	if !entityType.IsValid() {
		h.BadRequest(c, "entity_type must be one of: patients, devices")
		return
	}
	file, header, ok := h.formFile(c)
	if !ok {
		return
	}
	defer file.Close()

	preview, err := h.importService.Preview(c.Request.Context(), entityType, importapp.Upload{
		FileName: header.Filename,
		Size:     header.Size,
		Body:     file,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// ImportPatients godoc
// @Summary      Import patients
// @Description  mapping is a JSON object of field name to column header; the proposed mapping is used when omitted
// @Tags         import
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "xlsx or csv file"
// @Param        mapping formData string false "Field to column mapping (JSON)"
// @Success      200 {object} APIResponse[importapp.ImportResult]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /import/patients [post]
func (h *ImportHandler) ImportPatients(c *gin.Context) {
	h.runImport(c, h.importService.ImportPatients)
}

// ImportDevices godoc
// @Summary      Import medical devices
// @Description  mapping is a JSON object of field name to column header; the proposed mapping is used when omitted
// @Tags         import
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "xlsx or csv file"
// @Param        mapping formData string false "Field to column mapping (JSON)"
// @Success      200 {object} APIResponse[importapp.ImportResult]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /import/devices [post]
func (h *ImportHandler) ImportDevices(c *gin.Context) {
	h.runImport(c, h.importService.ImportDevices)
}

// History godoc
// @Summary      Import history
// @Tags         import
// @Produce      json
// @Param        entity_type query string false "Entity type" Enums(patients, devices)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]importapp.HistoryResponse]
// @Security     BearerAuth
// @Router       /import/history [get]
func (h *ImportHandler) History(c *gin.Context) {
	var filter importapp.HistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	runs, total, err := h.importService.History(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, runs, total, filter.Page, filter.PageSize)
}

type importFunc func(ctx context.Context, actor identity.Actor, req importapp.ImportRequest) (*importapp.ImportResult, error)

func (h *ImportHandler) runImport(c *gin.Context, run importFunc) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	file, header, ok := h.formFile(c)
	if !ok {
		return
	}
	defer file.Close()

	req := importapp.ImportRequest{
		Upload: importapp.Upload{
			FileName: header.Filename,
			Size:     header.Size,
			Body:     file,
		},
	}
	if raw := c.PostForm("mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Mapping); err != nil {
			h.BadRequest(c, "mapping must be a JSON object of field to column")
			return
		}
	}

	result, err := run(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *ImportHandler) formFile(c *gin.Context) (multipart.File, *multipart.FileHeader, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return nil, nil, false
	}
	return file, header, true
}
