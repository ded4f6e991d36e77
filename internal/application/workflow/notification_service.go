package workflow

import (
	"context"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/domain/workflow"
	"go.uber.org/zap"
)

// NotificationService serves a user's own notifications
type NotificationService struct {
	notificationRepo workflow.NotificationRepository
	logger           *zap.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo workflow.NotificationRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{notificationRepo: notificationRepo, logger: logger}
}

// List returns the user's notifications, unread first
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, filter NotificationListFilter) ([]NotificationResponse, int64, error) {
	domainFilter := shared.NewFilter(filter.Page, filter.PageSize, "", "", "").
		With("status", filter.Status).
		With("type", filter.Type)
	domainFilter.OrderBy = ""
	if filter.IsRead != nil {
		domainFilter = domainFilter.With("is_read", *filter.IsRead)
	}

	notifications, err := s.notificationRepo.FindByUser(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.notificationRepo.CountByUser(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]NotificationResponse, len(notifications))
	for i := range notifications {
		out[i] = ToNotificationResponse(&notifications[i])
	}
	return out, total, nil
}

// owned loads a notification of the user; another user's is reported missing
func (s *NotificationService) owned(ctx context.Context, userID, id uuid.UUID) (*workflow.Notification, error) {
	n, err := s.notificationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return n, nil
}

// MarkRead flags one notification as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) (*NotificationResponse, error) {
	n, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !n.IsRead {
		n.MarkRead()
		if err := s.notificationRepo.Save(ctx, n); err != nil {
			return nil, err
		}
	}
	response := ToNotificationResponse(n)
	return &response, nil
}

// MarkAllRead flags every unread notification of the user and returns how many changed
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.notificationRepo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logger.Debug("notifications marked read", zap.String("user_id", userID.String()), zap.Int64("count", n))
	return n, nil
}

// Delete removes one of the user's notifications
func (s *NotificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.notificationRepo.Delete(ctx, id)
}
