package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/medrent/backend/internal/application/inventory"
)

// LocationHandler handles stock locations
type LocationHandler struct {
	BaseHandler
	locationService *inventory.LocationService
}

// NewLocationHandler creates a new LocationHandler
func NewLocationHandler(locationService *inventory.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

// Create godoc
// @Summary      Create stock location
// @Tags         stock-locations
// @Accept       json
// @Produce      json
// @Param        request body inventory.CreateLocationRequest true "Location"
// @Success      201 {object} APIResponse[inventory.LocationResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock-locations [post]
func (h *LocationHandler) Create(c *gin.Context) {
	var req inventory.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	location, err := h.locationService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, location)
}

// GetByID godoc
// @Summary      Get stock location
// @Tags         stock-locations
// @Produce      json
// @Param        id path string true "Location ID" format(uuid)
// @Success      200 {object} APIResponse[inventory.LocationResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock-locations/{id} [get]
func (h *LocationHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	location, err := h.locationService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, location)
}

// List godoc
// @Summary      List stock locations
// @Tags         stock-locations
// @Produce      json
// @Param        search query string false "Name"
// @Param        is_active query bool false "Active flag"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]inventory.LocationResponse]
// @Security     BearerAuth
// @Router       /stock-locations [get]
func (h *LocationHandler) List(c *gin.Context) {
	var filter inventory.LocationListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	locations, total, err := h.locationService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, locations, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update stock location
// @Tags         stock-locations
// @Accept       json
// @Produce      json
// @Param        id path string true "Location ID" format(uuid)
// @Param        request body inventory.UpdateLocationRequest true "Fields to change"
// @Success      200 {object} APIResponse[inventory.LocationResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock-locations/{id} [put]
func (h *LocationHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req inventory.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	location, err := h.locationService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, location)
}

// Delete godoc
// @Summary      Delete stock location
// @Description  Refused while the location still holds stock or devices
// @Tags         stock-locations
// @Param        id path string true "Location ID" format(uuid)
// @Success      204
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock-locations/{id} [delete]
func (h *LocationHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.locationService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
