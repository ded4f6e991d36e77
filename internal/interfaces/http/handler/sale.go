package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medrent/backend/internal/application/trade"
)

// SaleHandler handles device and accessory sales
type SaleHandler struct {
	BaseHandler
	saleService    *trade.SaleService
	invoiceService *trade.InvoiceService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *trade.SaleService, invoiceService *trade.InvoiceService) *SaleHandler {
	return &SaleHandler{saleService: saleService, invoiceService: invoiceService}
}

// Create godoc
// @Summary      Create sale
// @Description  Creates the sale with items, payments and CNAM dossiers in one transaction.
// @Description  Send an Idempotency-Key header to make retries safe.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key"
// @Param        request body trade.CreateSaleRequest true "Sale"
// @Success      201 {object} APIResponse[trade.SaleDetail]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req trade.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	sale, err := h.saleService.Create(c.Request.Context(), actor.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// GetByID godoc
// @Summary      Get sale
// @Description  Includes items, payments and CNAM dossiers
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} APIResponse[trade.SaleDetail]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id} [get]
func (h *SaleHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	sale, err := h.saleService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Invoice godoc
// @Summary      Print sale invoice
// @Description  Renders the sale invoice to PDF with headless Chrome. format=html returns the HTML preview instead.
// @Tags         sales
// @Produce      application/pdf
// @Produce      text/html
// @Param        id path string true "Sale ID" format(uuid)
// @Param        format query string false "pdf (default) or html" Enums(pdf, html)
// @Success      200 {file} binary
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Failure      504 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id}/invoice [get]
func (h *SaleHandler) Invoice(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	switch c.DefaultQuery("format", "pdf") {
	case "html":
		doc, err := h.invoiceService.HTML(c.Request.Context(), id)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc.HTML))
	case "pdf":
		doc, err := h.invoiceService.PDF(c.Request.Context(), id)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		c.Header("Content-Disposition", "inline; filename=\""+doc.Filename()+"\"")
		c.Data(http.StatusOK, "application/pdf", doc.PDF)
	default:
		h.BadRequest(c, "format must be pdf or html")
	}
}

// List godoc
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Param        search query string false "Sale code or invoice number"
// @Param        status query string false "Status" Enums(PENDING, ON_PROGRESS, COMPLETED, CANCELLED)
// @Param        patient_id query string false "Patient" format(uuid)
// @Param        company_id query string false "Company" format(uuid)
// @Param        from_date query string false "From date" format(date)
// @Param        to_date query string false "To date" format(date)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]trade.SaleResponse]
// @Security     BearerAuth
// @Router       /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	var filter trade.SaleListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	sales, total, err := h.saleService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, sales, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update sale
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Param        request body trade.UpdateSaleRequest true "Fields to change"
// @Success      200 {object} APIResponse[trade.SaleResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id} [put]
func (h *SaleHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req trade.UpdateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	sale, err := h.saleService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Delete godoc
// @Summary      Delete sale
// @Description  Restores sold devices and accessory stock
// @Tags         sales
// @Param        id path string true "Sale ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id} [delete]
func (h *SaleHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.saleService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
