package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/medrent/backend/internal/application/trade"
)

// RentalHandler handles rentals and their payment periods
type RentalHandler struct {
	BaseHandler
	rentalService *trade.RentalService
	periodService *trade.RentalPeriodService
}

// NewRentalHandler creates a new RentalHandler
func NewRentalHandler(rentalService *trade.RentalService, periodService *trade.RentalPeriodService) *RentalHandler {
	return &RentalHandler{
		rentalService: rentalService,
		periodService: periodService,
	}
}

// Create godoc
// @Summary      Create rental
// @Description  Creates the rental with its accessories, periods, gaps, bonds and payments in one transaction.
// @Description  Send an Idempotency-Key header to make retries safe.
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key"
// @Param        request body trade.CreateRentalRequest true "Rental"
// @Success      201 {object} APIResponse[trade.CreateRentalResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rentals [post]
func (h *RentalHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req trade.CreateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.rentalService.Create(c.Request.Context(), actor.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ValidatePeriods godoc
// @Summary      Validate rental periods
// @Description  Reports overlaps, gaps and totals without saving anything
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Param        request body trade.ValidatePeriodsRequest true "Periods"
// @Success      200 {object} APIResponse[trade.ValidatePeriodsResult]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rentals/validate-periods [post]
func (h *RentalHandler) ValidatePeriods(c *gin.Context) {
	var req trade.ValidatePeriodsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	h.Success(c, h.rentalService.ValidatePeriods(req))
}

// GetByID godoc
// @Summary      Get rental
// @Tags         rentals
// @Produce      json
// @Param        id path string true "Rental ID" format(uuid)
// @Success      200 {object} APIResponse[trade.RentalDetail]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rentals/{id} [get]
func (h *RentalHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	rental, err := h.rentalService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rental)
}

// List godoc
// @Summary      List rentals
// @Description  Status is derived from the rental dates
// @Tags         rentals
// @Produce      json
// @Param        search query string false "Rental code or patient"
// @Param        status query string false "Status" Enums(PENDING, ACTIVE, COMPLETED, CANCELLED, EXPIRED, PAUSED)
// @Param        patient_id query string false "Patient" format(uuid)
// @Param        medical_device_id query string false "Device" format(uuid)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]trade.RentalResponse]
// @Security     BearerAuth
// @Router       /rentals [get]
func (h *RentalHandler) List(c *gin.Context) {
	var filter trade.RentalListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	rentals, total, err := h.rentalService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, rentals, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update rental
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Param        id path string true "Rental ID" format(uuid)
// @Param        request body trade.UpdateRentalRequest true "Status, end date and notes"
// @Success      200 {object} APIResponse[trade.RentalResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rentals/{id} [put]
func (h *RentalHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req trade.UpdateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	rental, err := h.rentalService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rental)
}

// Delete godoc
// @Summary      Delete rental
// @Description  Removes periods, gaps and accessories and restores the device
// @Tags         rentals
// @Param        id path string true "Rental ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rentals/{id} [delete]
func (h *RentalHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.rentalService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddPeriod godoc
// @Summary      Add rental period
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Param        id path string true "Rental ID" format(uuid)
// @Param        request body trade.PeriodRequest true "Period"
// @Success      201 {object} APIResponse[trade.RentalPeriodResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rentals/{id}/periods [post]
func (h *RentalHandler) AddPeriod(c *gin.Context) {
	rentalID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req trade.PeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	period, err := h.periodService.Add(c.Request.Context(), rentalID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, period)
}

// UpdatePeriod godoc
// @Summary      Update rental period
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Param        id path string true "Period ID" format(uuid)
// @Param        request body trade.PeriodRequest true "Period"
// @Success      200 {object} APIResponse[trade.RentalPeriodResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rental-periods/{id} [put]
func (h *RentalHandler) UpdatePeriod(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req trade.PeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	period, err := h.periodService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, period)
}

// DeletePeriod godoc
// @Summary      Delete rental period
// @Tags         rentals
// @Param        id path string true "Period ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rental-periods/{id} [delete]
func (h *RentalHandler) DeletePeriod(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.periodService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
