package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/medrent/backend/internal/application/partner"
)

// CompanyHandler handles insurer and supplier companies
type CompanyHandler struct {
	BaseHandler
	companyService *partner.CompanyService
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(companyService *partner.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// Create godoc
// @Summary      Create company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        request body partner.CreateCompanyRequest true "Company"
// @Success      201 {object} APIResponse[partner.CompanyResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /companies [post]
func (h *CompanyHandler) Create(c *gin.Context) {
	var req partner.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	company, err := h.companyService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, company)
}

// GetByID godoc
// @Summary      Get company
// @Tags         companies
// @Produce      json
// @Param        id path string true "Company ID" format(uuid)
// @Success      200 {object} APIResponse[partner.CompanyResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /companies/{id} [get]
func (h *CompanyHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	company, err := h.companyService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}

// List godoc
// @Summary      List companies
// @Tags         companies
// @Produce      json
// @Param        search query string false "Name or code"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]partner.CompanyResponse]
// @Security     BearerAuth
// @Router       /companies [get]
func (h *CompanyHandler) List(c *gin.Context) {
	var filter partner.CompanyListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	companies, total, err := h.companyService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, companies, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id path string true "Company ID" format(uuid)
// @Param        request body partner.UpdateCompanyRequest true "Fields to change"
// @Success      200 {object} APIResponse[partner.CompanyResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /companies/{id} [put]
func (h *CompanyHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req partner.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	company, err := h.companyService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}

// Delete godoc
// @Summary      Delete company
// @Tags         companies
// @Param        id path string true "Company ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /companies/{id} [delete]
func (h *CompanyHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.companyService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
