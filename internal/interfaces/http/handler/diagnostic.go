package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/medrent/backend/internal/application/clinical"
)

// DiagnosticHandler handles sleep diagnostics and their results
type DiagnosticHandler struct {
	BaseHandler
	diagnosticService *clinical.DiagnosticService
}

// NewDiagnosticHandler creates a new DiagnosticHandler
func NewDiagnosticHandler(diagnosticService *clinical.DiagnosticService) *DiagnosticHandler {
	return &DiagnosticHandler{diagnosticService: diagnosticService}
}

// Create godoc
// @Summary      Create diagnostic
// @Description  Reserves the device and opens a PENDING result
// @Tags         diagnostics
// @Accept       json
// @Produce      json
// @Param        request body clinical.CreateDiagnosticRequest true "Diagnostic"
// @Success      201 {object} APIResponse[clinical.DiagnosticResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /diagnostics [post]
func (h *DiagnosticHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req clinical.CreateDiagnosticRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	diagnostic, err := h.diagnosticService.Create(c.Request.Context(), actor.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, diagnostic)
}

// GetByID godoc
// @Summary      Get diagnostic
// @Tags         diagnostics
// @Produce      json
// @Param        id path string true "Diagnostic ID" format(uuid)
// @Success      200 {object} APIResponse[clinical.DiagnosticResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /diagnostics/{id} [get]
func (h *DiagnosticHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	diagnostic, err := h.diagnosticService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, diagnostic)
}

// List godoc
// @Summary      List diagnostics
// @Description  Each row carries the patient's equipment outcome
// @Tags         diagnostics
// @Produce      json
// @Param        search query string false "Diagnostic code or patient"
// @Param        patient_id query string false "Patient" format(uuid)
// @Param        medical_device_id query string false "Device" format(uuid)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]clinical.DiagnosticResponse]
// @Security     BearerAuth
// @Router       /diagnostics [get]
func (h *DiagnosticHandler) List(c *gin.Context) {
	var filter clinical.DiagnosticListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	diagnostics, total, err := h.diagnosticService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, diagnostics, total, filter.Page, filter.PageSize)
}

// UpdateResult godoc
// @Summary      Record diagnostic result
// @Tags         diagnostics
// @Accept       json
// @Produce      json
// @Param        id path string true "Diagnostic ID" format(uuid)
// @Param        request body clinical.DiagnosticResultRequest true "Result"
// @Success      200 {object} APIResponse[clinical.DiagnosticResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /diagnostics/{id}/result [put]
func (h *DiagnosticHandler) UpdateResult(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req clinical.DiagnosticResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	diagnostic, err := h.diagnosticService.UpdateResult(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, diagnostic)
}

// Delete godoc
// @Summary      Delete diagnostic
// @Description  Releases the device back to ACTIVE
// @Tags         diagnostics
// @Param        id path string true "Diagnostic ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /diagnostics/{id} [delete]
func (h *DiagnosticHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.diagnosticService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
