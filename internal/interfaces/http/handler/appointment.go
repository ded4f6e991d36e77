package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/medrent/backend/internal/application/clinical"
)

// AppointmentHandler handles patient and company appointments
type AppointmentHandler struct {
	BaseHandler
	appointmentService *clinical.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler
func NewAppointmentHandler(appointmentService *clinical.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

// Create godoc
// @Summary      Create appointment
// @Description  Schedules a reminder notification one day before
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Param        request body clinical.CreateAppointmentRequest true "Appointment"
// @Success      201 {object} APIResponse[clinical.AppointmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /appointments [post]
func (h *AppointmentHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req clinical.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	appointment, err := h.appointmentService.Create(c.Request.Context(), actor.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, appointment)
}

// GetByID godoc
// @Summary      Get appointment
// @Tags         appointments
// @Produce      json
// @Param        id path string true "Appointment ID" format(uuid)
// @Success      200 {object} APIResponse[clinical.AppointmentResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /appointments/{id} [get]
func (h *AppointmentHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	appointment, err := h.appointmentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appointment)
}

// List godoc
// @Summary      List appointments
// @Description  Ordered by scheduled date
// @Tags         appointments
// @Produce      json
// @Param        search query string false "Appointment code or location"
// @Param        status query string false "Status" Enums(SCHEDULED, CONFIRMED, COMPLETED, CANCELLED)
// @Param        patient_id query string false "Patient" format(uuid)
// @Param        company_id query string false "Company" format(uuid)
// @Param        assigned_to_id query string false "Assignee" format(uuid)
// @Param        from_date query string false "From date" format(date)
// @Param        to_date query string false "To date" format(date)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]clinical.AppointmentResponse]
// @Security     BearerAuth
// @Router       /appointments [get]
func (h *AppointmentHandler) List(c *gin.Context) {
	var filter clinical.AppointmentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	appointments, total, err := h.appointmentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, appointments, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update appointment
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Param        id path string true "Appointment ID" format(uuid)
// @Param        request body clinical.UpdateAppointmentRequest true "Fields to change"
// @Success      200 {object} APIResponse[clinical.AppointmentResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /appointments/{id} [put]
func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req clinical.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	appointment, err := h.appointmentService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appointment)
}

// Delete godoc
// @Summary      Delete appointment
// @Tags         appointments
// @Param        id path string true "Appointment ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /appointments/{id} [delete]
func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.appointmentService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
