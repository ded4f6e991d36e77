package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/medrent/backend/internal/application/catalog"
)

// DeviceHandler handles medical and diagnostic devices
type DeviceHandler struct {
	BaseHandler
	deviceService *catalog.DeviceService
}

// NewDeviceHandler creates a new DeviceHandler
func NewDeviceHandler(deviceService *catalog.DeviceService) *DeviceHandler {
	return &DeviceHandler{deviceService: deviceService}
}

// Create godoc
// @Summary      Create device
// @Tags         medical-devices
// @Accept       json
// @Produce      json
// @Param        request body catalog.CreateDeviceRequest true "Device"
// @Success      201 {object} APIResponse[catalog.DeviceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /medical-devices [post]
func (h *DeviceHandler) Create(c *gin.Context) {
	var req catalog.CreateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	device, err := h.deviceService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, device)
}

// GetByID godoc
// @Summary      Get device
// @Tags         medical-devices
// @Produce      json
// @Param        id path string true "Device ID" format(uuid)
// @Success      200 {object} APIResponse[catalog.DeviceResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /medical-devices/{id} [get]
func (h *DeviceHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	device, err := h.deviceService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, device)
}

// List godoc
// @Summary      List devices
// @Tags         medical-devices
// @Produce      json
// @Param        search query string false "Name, code or serial number"
// @Param        status query string false "Status" Enums(ACTIVE, MAINTENANCE, RETIRED, RESERVED, SOLD)
// @Param        type query string false "Type" Enums(MEDICAL_DEVICE, DIAGNOSTIC_DEVICE)
// @Param        destination query string false "Destination" Enums(FOR_SALE, FOR_RENT)
// @Param        stock_location_id query string false "Stock location" format(uuid)
// @Param        patient_id query string false "Patient" format(uuid)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]catalog.DeviceResponse]
// @Security     BearerAuth
// @Router       /medical-devices [get]
func (h *DeviceHandler) List(c *gin.Context) {
	var filter catalog.DeviceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	devices, total, err := h.deviceService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, devices, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update device
// @Tags         medical-devices
// @Accept       json
// @Produce      json
// @Param        id path string true "Device ID" format(uuid)
// @Param        request body catalog.UpdateDeviceRequest true "Fields to change"
// @Success      200 {object} APIResponse[catalog.DeviceResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /medical-devices/{id} [put]
func (h *DeviceHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req catalog.UpdateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	device, err := h.deviceService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, device)
}

// Delete godoc
// @Summary      Delete device
// @Tags         medical-devices
// @Param        id path string true "Device ID" format(uuid)
// @Success      204
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /medical-devices/{id} [delete]
func (h *DeviceHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.deviceService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
