package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/identity"
	"github.com/medrent/backend/internal/domain/inventory"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/domain/trade"
	"github.com/medrent/backend/internal/domain/workflow"
	"go.uber.org/zap"
)

// NotificationEventHandler turns committed domain events into notifications
type NotificationEventHandler struct {
	notificationRepo workflow.NotificationRepository
	userRepo         identity.UserRepository
	logger           *zap.Logger
}

// NewNotificationEventHandler creates a new NotificationEventHandler
func NewNotificationEventHandler(notificationRepo workflow.NotificationRepository, userRepo identity.UserRepository, logger *zap.Logger) *NotificationEventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationEventHandler{notificationRepo: notificationRepo, userRepo: userRepo, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *NotificationEventHandler) EventTypes() []string {
	return []string{
		inventory.EventTypeTransferRequestReviewed,
		trade.EventTypeSaleCreated,
		workflow.EventTypeTaskCompleted,
	}
}

// Handle processes a domain event
func (h *NotificationEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *inventory.TransferRequestReviewedEvent:
		return h.onTransferReviewed(ctx, e)
	case *trade.SaleCreatedEvent:
		return h.onSaleCreated(ctx, e)
	case *workflow.TaskCompletedEvent:
		return h.onTaskCompleted(ctx, e)
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

func (h *NotificationEventHandler) onTransferReviewed(ctx context.Context, e *inventory.TransferRequestReviewedEvent) error {
	ntype := workflow.NotificationTransferRejected
	title := "Demande de transfert rejetée"
	message := fmt.Sprintf("Votre demande %s a été rejetée", e.RequestCode)
	if e.Decision == inventory.TransferRequestApproved {
		ntype = workflow.NotificationTransferApproved
		title = "Demande de transfert approuvée"
		message = fmt.Sprintf("Votre demande %s a été approuvée et le stock a été transféré", e.RequestCode)
	}
	if e.ReviewNotes != "" {
		message += ": " + e.ReviewNotes
	}

	n, err := workflow.NewNotification(e.RequestedByID, ntype, title, message, nil)
	if err != nil {
		return err
	}
	n.Metadata = shared.JSONMap{"request_code": e.RequestCode, "decision": string(e.Decision)}
	return h.save(ctx, n.About(e.AggregateID(), "stock_transfer_request"))
}

func (h *NotificationEventHandler) onSaleCreated(ctx context.Context, e *trade.SaleCreatedEvent) error {
	n, err := workflow.NewNotification(e.ProcessedByID, workflow.NotificationSaleCompleted,
		"Vente effectuée - "+e.SaleCode,
		fmt.Sprintf("La vente %s a été enregistrée", e.SaleCode), nil)
	if err != nil {
		return err
	}
	n.Priority = workflow.PriorityLow
	n.Metadata = shared.JSONMap{"sale_code": e.SaleCode}
	return h.save(ctx, n.About(e.AggregateID(), "sale").ForPatient(e.PatientID))
}

// onTaskCompleted informs every admin and manager other than the user who
// completed the task
func (h *NotificationEventHandler) onTaskCompleted(ctx context.Context, e *workflow.TaskCompletedEvent) error {
	supervisors, err := supervisorsOf(ctx, h.userRepo)
	if err != nil {
		return err
	}
	for _, userID := range supervisors {
		if userID == e.ActorID {
			continue
		}
		n, err := workflow.NewNotification(userID, workflow.NotificationTaskCompleted,
			"Tâche terminée - "+e.Title,
			fmt.Sprintf("La tâche \"%s\" a été terminée", e.Title), nil)
		if err != nil {
			return err
		}
		n.Priority = workflow.PriorityLow
		n.Metadata = shared.JSONMap{
			"task_code":    e.TaskCode,
			"completed_by": e.ActorID.String(),
			"completed_at": e.OccurredAt().Format(time.RFC3339),
		}
		if err := h.save(ctx, n.About(e.AggregateID(), "task")); err != nil {
			return err
		}
	}
	return nil
}

func (h *NotificationEventHandler) save(ctx context.Context, n *workflow.Notification) error {
	if err := h.notificationRepo.Save(ctx, n); err != nil {
		return err
	}
	h.logger.Debug("notification created",
		zap.String("type", string(n.Type)),
		zap.String("user_id", n.UserID.String()))
	return nil
}

// supervisorsOf returns the active admins followed by the active managers
func supervisorsOf(ctx context.Context, users identity.UserRepository) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, role := range []identity.Role{identity.RoleAdmin, identity.RoleManager} {
		found, err := users.FindByRole(ctx, role)
		if err != nil {
			return nil, err
		}
		for _, u := range found {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

var _ shared.EventHandler = (*NotificationEventHandler)(nil)
