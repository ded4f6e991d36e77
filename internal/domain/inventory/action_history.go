package inventory

import (
	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// UserActionType classifies an audit entry
type UserActionType string

const (
	UserActionTransfer    UserActionType = "TRANSFER"
	UserActionStockAdjust UserActionType = "STOCK_ADJUSTMENT"
	UserActionReview      UserActionType = "TRANSFER_REVIEW"
)

// UserActionHistory is an audit entry of a stock-affecting action by a user
type UserActionHistory struct {
	shared.BaseEntity
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index"`
	ActionType      UserActionType `gorm:"type:varchar(30);not null"`
	Details         shared.JSONMap `gorm:"type:jsonb"`
	RelatedItemID   *uuid.UUID     `gorm:"type:uuid"`
	RelatedItemType string         `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (UserActionHistory) TableName() string {
	return "user_action_histories"
}

// NewUserActionHistory creates an audit entry
func NewUserActionHistory(userID uuid.UUID, action UserActionType, itemID uuid.UUID, itemType string, details shared.JSONMap) *UserActionHistory {
	if details == nil {
		details = shared.JSONMap{}
	}
	id := itemID
	return &UserActionHistory{
		BaseEntity:      shared.NewBaseEntity(),
		UserID:          userID,
		ActionType:      action,
		Details:         details,
		RelatedItemID:   &id,
		RelatedItemType: itemType,
	}
}
