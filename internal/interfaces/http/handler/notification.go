package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/medrent/backend/internal/application/workflow"
)

// NotificationHandler handles the caller's notifications and the reminder sweep
type NotificationHandler struct {
	BaseHandler
	notificationService *workflow.NotificationService
	sweepService        *workflow.SweepService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *workflow.NotificationService, sweepService *workflow.SweepService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		sweepService:        sweepService,
	}
}

// List godoc
// @Summary      List my notifications
// @Tags         notifications
// @Produce      json
// @Param        status query string false "Status" Enums(PENDING, READ, COMPLETED, DISMISSED)
// @Param        type query string false "Type"
// @Param        is_read query bool false "Read flag"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]workflow.NotificationResponse]
// @Security     BearerAuth
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var filter workflow.NotificationListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	notifications, total, err := h.notificationService.List(c.Request.Context(), actor.UserID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, notifications, total, filter.Page, filter.PageSize)
}

// MarkRead godoc
// @Summary      Mark notification read
// @Tags         notifications
// @Produce      json
// @Param        id path string true "Notification ID" format(uuid)
// @Success      200 {object} APIResponse[workflow.NotificationResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	notification, err := h.notificationService.MarkRead(c.Request.Context(), actor.UserID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, notification)
}

// MarkAllRead godoc
// @Summary      Mark all notifications read
// @Tags         notifications
// @Produce      json
// @Success      200 {object} APIResponse[CountData]
// @Security     BearerAuth
// @Router       /notifications/read-all [patch]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	count, err := h.notificationService.MarkAllRead(c.Request.Context(), actor.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CountData{Count: count})
}

// Delete godoc
// @Summary      Delete notification
// @Tags         notifications
// @Param        id path string true "Notification ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.notificationService.Delete(c.Request.Context(), actor.UserID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Sweep godoc
// @Summary      Run the reminder sweep
// @Description  Creates due payment, expiring rental, CNAM renewal, maintenance and appointment reminders
// @Tags         admin
// @Produce      json
// @Success      200 {object} APIResponse[workflow.SweepResult]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/notifications/sweep [post]
func (h *NotificationHandler) Sweep(c *gin.Context) {
	result, err := h.sweepService.Run(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
