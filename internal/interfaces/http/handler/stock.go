package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/medrent/backend/internal/application/inventory"
)

// StockHandler handles stock rows, transfers and transfer requests
type StockHandler struct {
	BaseHandler
	stockService   *inventory.StockService
	requestService *inventory.TransferRequestService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *inventory.StockService, requestService *inventory.TransferRequestService) *StockHandler {
	return &StockHandler{
		stockService:   stockService,
		requestService: requestService,
	}
}

// Inventory godoc
// @Summary      List stock
// @Tags         stock
// @Produce      json
// @Param        search query string false "Product name"
// @Param        location_id query string false "Location" format(uuid)
// @Param        status query string false "Status" Enums(FOR_SALE, FOR_RENT, IN_REPAIR, OUT_OF_SERVICE)
// @Param        product_type query string false "Product type" Enums(ACCESSORY, SPARE_PART)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]inventory.StockResponse]
// @Security     BearerAuth
// @Router       /stock/inventory [get]
func (h *StockHandler) Inventory(c *gin.Context) {
	var filter inventory.InventoryListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	rows, total, err := h.stockService.Inventory(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, rows, total, filter.Page, filter.PageSize)
}

// MyInventory godoc
// @Summary      List my stock
// @Description  Stock held at the caller's own location
// @Tags         stock
// @Produce      json
// @Param        status query string false "Status" Enums(FOR_SALE, FOR_RENT, IN_REPAIR, OUT_OF_SERVICE)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]inventory.StockResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/my-inventory [get]
func (h *StockHandler) MyInventory(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var filter inventory.InventoryListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	rows, total, err := h.stockService.MyInventory(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, rows, total, filter.Page, filter.PageSize)
}

// Adjust godoc
// @Summary      Adjust stock row
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        id path string true "Stock ID" format(uuid)
// @Param        request body inventory.AdjustStockRequest true "Quantity and/or status"
// @Success      200 {object} APIResponse[inventory.StockResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/{id} [patch]
func (h *StockHandler) Adjust(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req inventory.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	row, err := h.stockService.Adjust(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// Transfer godoc
// @Summary      Transfer stock
// @Description  Moves product units or a single device between locations
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request body inventory.CreateTransferRequest true "Transfer"
// @Success      201 {object} APIResponse[inventory.TransferResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/transfers [post]
func (h *StockHandler) Transfer(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req inventory.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	transfer, err := h.stockService.Transfer(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, transfer)
}

// ListTransfers godoc
// @Summary      List transfers
// @Tags         stock
// @Produce      json
// @Param        location_id query string false "Source or destination" format(uuid)
// @Param        from_date query string false "From date" format(date)
// @Param        to_date query string false "To date" format(date)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]inventory.TransferResponse]
// @Security     BearerAuth
// @Router       /stock/transfers [get]
func (h *StockHandler) ListTransfers(c *gin.Context) {
	var filter inventory.TransferListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	transfers, total, err := h.stockService.ListTransfers(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, transfers, total, filter.Page, filter.PageSize)
}

// VerifyTransfer godoc
// @Summary      Verify transfer
// @Tags         stock
// @Produce      json
// @Param        id path string true "Transfer ID" format(uuid)
// @Success      200 {object} APIResponse[inventory.TransferResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/transfers/{id}/verify [patch]
func (h *StockHandler) VerifyTransfer(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	transfer, err := h.stockService.VerifyTransfer(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfer)
}

// CreateTransferRequest godoc
// @Summary      Request a transfer
// @Description  The destination is the caller's own stock location
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request body inventory.CreateTransferRequestRequest true "Request"
// @Success      201 {object} APIResponse[inventory.TransferRequestResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/transfer-requests [post]
func (h *StockHandler) CreateTransferRequest(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req inventory.CreateTransferRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	request, err := h.requestService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, request)
}

// ListTransferRequests godoc
// @Summary      List transfer requests
// @Description  Admins see every request; others see requests touching them or their location
// @Tags         stock
// @Produce      json
// @Param        search query string false "Request code or reason"
// @Param        status query string false "Status" Enums(PENDING, APPROVED, REJECTED, COMPLETED)
// @Param        urgency query string false "Urgency" Enums(LOW, MEDIUM, HIGH)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[inventory.TransferRequestList]
// @Security     BearerAuth
// @Router       /stock/transfer-requests [get]
func (h *StockHandler) ListTransferRequests(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var filter inventory.TransferRequestListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	list, err := h.requestService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, list, list.Total, filter.Page, filter.PageSize)
}

// GetTransferRequest godoc
// @Summary      Get transfer request
// @Tags         stock
// @Produce      json
// @Param        id path string true "Request ID" format(uuid)
// @Success      200 {object} APIResponse[inventory.TransferRequestResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/transfer-requests/{id} [get]
func (h *StockHandler) GetTransferRequest(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	request, err := h.requestService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, request)
}

// ReviewTransferRequest godoc
// @Summary      Review transfer request
// @Description  Approving moves the stock and completes the request
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Request ID" format(uuid)
// @Param        request body inventory.ReviewTransferRequest true "Decision"
// @Success      200 {object} APIResponse[inventory.TransferRequestResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/transfer-requests/{id}/review [patch]
func (h *StockHandler) ReviewTransferRequest(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req inventory.ReviewTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	request, err := h.requestService.Review(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, request)
}
