package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medrent/backend/internal/application/finance"
)

// CNAMHandler handles CNAM bonds and dossiers
type CNAMHandler struct {
	BaseHandler
	cnamService *finance.CNAMService
}

// NewCNAMHandler creates a new CNAMHandler
func NewCNAMHandler(cnamService *finance.CNAMService) *CNAMHandler {
	return &CNAMHandler{cnamService: cnamService}
}

// ListBonds godoc
// @Summary      List rental bonds
// @Tags         cnam
// @Produce      json
// @Param        rental_id query string true "Rental" format(uuid)
// @Success      200 {object} APIResponse[[]finance.BondResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cnam-bonds [get]
func (h *CNAMHandler) ListBonds(c *gin.Context) {
	rentalID, err := uuid.Parse(c.Query("rental_id"))
	if err != nil {
		h.BadRequest(c, "rental_id is required")
		return
	}
	bonds, err := h.cnamService.ListBonds(c.Request.Context(), rentalID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bonds)
}

// CreateBond godoc
// @Summary      Create rental bond
// @Description  The patient is copied from the rental
// @Tags         cnam
// @Accept       json
// @Produce      json
// @Param        request body finance.CreateBondRequest true "Bond"
// @Success      201 {object} APIResponse[finance.BondResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cnam-bonds [post]
func (h *CNAMHandler) CreateBond(c *gin.Context) {
	var req finance.CreateBondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	bond, err := h.cnamService.CreateBond(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, bond)
}

// ReconcileBonds godoc
// @Summary      Replace a rental's bonds
// @Description  Updates listed bonds, creates new ones and deletes the rest
// @Tags         cnam
// @Accept       json
// @Produce      json
// @Param        request body finance.ReconcileBondsRequest true "Bonds"
// @Success      200 {object} APIResponse[[]finance.BondResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cnam-bonds [patch]
func (h *CNAMHandler) ReconcileBonds(c *gin.Context) {
	var req finance.ReconcileBondsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	bonds, err := h.cnamService.ReconcileBonds(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bonds)
}

// DeleteBond godoc
// @Summary      Delete bond
// @Tags         cnam
// @Param        id path string true "Bond ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cnam-bonds/{id} [delete]
func (h *CNAMHandler) DeleteBond(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.cnamService.DeleteBond(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListDossiers godoc
// @Summary      List CNAM dossiers
// @Tags         cnam
// @Produce      json
// @Param        search query string false "Dossier number"
// @Param        status query string false "Status"
// @Param        patient_id query string false "Patient" format(uuid)
// @Param        sale_id query string false "Sale" format(uuid)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]finance.DossierResponse]
// @Security     BearerAuth
// @Router       /cnam-dossiers [get]
func (h *CNAMHandler) ListDossiers(c *gin.Context) {
	var filter finance.DossierListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	dossiers, total, err := h.cnamService.ListDossiers(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, dossiers, total, filter.Page, filter.PageSize)
}

// GetDossier godoc
// @Summary      Get CNAM dossier
// @Tags         cnam
// @Produce      json
// @Param        id path string true "Dossier ID" format(uuid)
// @Success      200 {object} APIResponse[finance.DossierResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cnam-dossiers/{id} [get]
func (h *CNAMHandler) GetDossier(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	dossier, err := h.cnamService.GetDossier(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dossier)
}

// AdvanceStep godoc
// @Summary      Advance dossier step
// @Description  Appends a step history entry
// @Tags         cnam
// @Accept       json
// @Produce      json
// @Param        id path string true "Dossier ID" format(uuid)
// @Param        request body finance.AdvanceStepRequest true "Step"
// @Success      200 {object} APIResponse[finance.DossierResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cnam-dossiers/{id}/step [patch]
func (h *CNAMHandler) AdvanceStep(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req finance.AdvanceStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	dossier, err := h.cnamService.AdvanceStep(c.Request.Context(), id, actor.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dossier)
}
