package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/medrent/backend/internal/application/partner"
)

// PatientHandler handles patient records and their history
type PatientHandler struct {
	BaseHandler
	patientService *partner.PatientService
}

// NewPatientHandler creates a new PatientHandler
func NewPatientHandler(patientService *partner.PatientService) *PatientHandler {
	return &PatientHandler{patientService: patientService}
}

// AddNoteRequest is a free-text note appended to a patient's history
type AddNoteRequest struct {
	Note string `json:"note" binding:"required,max=2000"`
}

// Create godoc
// @Summary      Create patient
// @Description  Creates a patient with a generated PAT code
// @Tags         patients
// @Accept       json
// @Produce      json
// @Param        request body partner.CreatePatientRequest true "Patient"
// @Success      201 {object} APIResponse[partner.PatientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /patients [post]
func (h *PatientHandler) Create(c *gin.Context) {
	var req partner.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	patient, err := h.patientService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, patient)
}

// GetByID godoc
// @Summary      Get patient
// @Tags         patients
// @Produce      json
// @Param        id path string true "Patient ID" format(uuid)
// @Success      200 {object} APIResponse[partner.PatientResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /patients/{id} [get]
func (h *PatientHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	patient, err := h.patientService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, patient)
}

// List godoc
// @Summary      List patients
// @Tags         patients
// @Produce      json
// @Param        search query string false "Name, code, CIN or telephone"
// @Param        assigned_to_id query string false "Assigned employee" format(uuid)
// @Param        doctor_id query string false "Doctor" format(uuid)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]partner.PatientResponse]
// @Security     BearerAuth
// @Router       /patients [get]
func (h *PatientHandler) List(c *gin.Context) {
	var filter partner.PatientListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	patients, total, err := h.patientService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, patients, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update patient
// @Description  Changed fields are recorded in the patient's history
// @Tags         patients
// @Accept       json
// @Produce      json
// @Param        id path string true "Patient ID" format(uuid)
// @Param        request body partner.UpdatePatientRequest true "Fields to change"
// @Success      200 {object} APIResponse[partner.PatientResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /patients/{id} [put]
func (h *PatientHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req partner.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	patient, err := h.patientService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, patient)
}

// Delete godoc
// @Summary      Delete patient
// @Tags         patients
// @Param        id path string true "Patient ID" format(uuid)
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /patients/{id} [delete]
func (h *PatientHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.patientService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// History godoc
// @Summary      Patient history
// @Tags         patients
// @Produce      json
// @Param        id path string true "Patient ID" format(uuid)
// @Success      200 {object} APIResponse[[]partner.PatientHistoryResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /patients/{id}/history [get]
func (h *PatientHandler) History(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	history, err := h.patientService.History(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}

// AddNote godoc
// @Summary      Add patient note
// @Tags         patients
// @Accept       json
// @Produce      json
// @Param        id path string true "Patient ID" format(uuid)
// @Param        request body AddNoteRequest true "Note"
// @Success      201 {object} APIResponse[partner.PatientHistoryResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /patients/{id}/notes [post]
func (h *PatientHandler) AddNote(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	entry, err := h.patientService.AddNote(c.Request.Context(), id, actor.UserID, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}
