package handler

import (
	"github.com/gin-gonic/gin"
	appreport "github.com/medrent/backend/internal/application/report"
)

// AnalyticsHandler serves the dashboard summary
type AnalyticsHandler struct {
	BaseHandler
	summaryService *appreport.SummaryService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(summaryService *appreport.SummaryService) *AnalyticsHandler {
	return &AnalyticsHandler{summaryService: summaryService}
}

// Summary godoc
// @Summary      Dashboard summary
// @Description  Counts and revenue for the current month, cached for five minutes
// @Tags         analytics
// @Produce      json
// @Param        refresh query bool false "Bypass the cache"
// @Success      200 {object} APIResponse[report.AnalyticsSummary]
// @Security     BearerAuth
// @Router       /analytics/summary [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	summary, err := h.summaryService.Summary(c.Request.Context(), c.Query("refresh") == "true")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
