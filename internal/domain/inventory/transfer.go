package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// StockTransfer records a completed move of product units or a device
// between two locations
type StockTransfer struct {
	shared.BaseEntity
	FromLocationID   uuid.UUID   `gorm:"type:uuid;not null;index"`
	ToLocationID     uuid.UUID   `gorm:"type:uuid;not null;index"`
	ProductID        *uuid.UUID  `gorm:"type:uuid;index"`
	MedicalDeviceID  *uuid.UUID  `gorm:"type:uuid;index"`
	Quantity         int         `gorm:"not null"`
	NewStatus        StockStatus `gorm:"type:varchar(20)"`
	TransferredByID  uuid.UUID   `gorm:"type:uuid;not null"`
	SentByID         *uuid.UUID  `gorm:"type:uuid"`
	ReceivedByID     *uuid.UUID  `gorm:"type:uuid"`
	IsVerified       bool        `gorm:"not null;default:false"`
	VerifiedByID     *uuid.UUID  `gorm:"type:uuid"`
	VerificationDate *time.Time
	Notes            string      `gorm:"type:text"`
	TransferDate     time.Time   `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockTransfer) TableName() string {
	return "stock_transfers"
}

// NewProductTransfer records quantity units of a product moving between locations
func NewProductTransfer(from, to, productID, by uuid.UUID, quantity int, status StockStatus, notes string) (*StockTransfer, error) {
	if err := ValidateTransferEndpoints(from, to, quantity); err != nil {
		return nil, err
	}
	pid := productID
	return &StockTransfer{
		BaseEntity:      shared.NewBaseEntity(),
		FromLocationID:  from,
		ToLocationID:    to,
		ProductID:       &pid,
		Quantity:        quantity,
		NewStatus:       status,
		TransferredByID: by,
		SentByID:        &by,
		Notes:           notes,
		TransferDate:    time.Now(),
	}, nil
}

// NewDeviceTransfer records a device moving between locations
func NewDeviceTransfer(from, to, deviceID, by uuid.UUID, notes string) (*StockTransfer, error) {
	if err := ValidateTransferEndpoints(from, to, 1); err != nil {
		return nil, err
	}
	did := deviceID
	return &StockTransfer{
		BaseEntity:      shared.NewBaseEntity(),
		FromLocationID:  from,
		ToLocationID:    to,
		MedicalDeviceID: &did,
		Quantity:        1,
		TransferredByID: by,
		SentByID:        &by,
		Notes:           notes,
		TransferDate:    time.Now(),
	}, nil
}

// Verify marks the transfer as verified by a user
func (t *StockTransfer) Verify(by uuid.UUID) error {
	if t.IsVerified {
		return shared.NewDomainError("ALREADY_VERIFIED", "Transfer is already verified")
	}
	now := time.Now()
	t.IsVerified = true
	t.VerifiedByID = &by
	t.ReceivedByID = &by
	t.VerificationDate = &now
	t.Touch()
	return nil
}

// ValidateTransferEndpoints checks locations differ and quantity is positive
func ValidateTransferEndpoints(from, to uuid.UUID, quantity int) error {
	if from == uuid.Nil || to == uuid.Nil {
		return shared.NewDomainError("INVALID_LOCATION", "Source and destination locations are required")
	}
	if from == to {
		return shared.NewDomainError("SAME_LOCATION", "Source and destination locations must be different")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be a positive integer")
	}
	return nil
}
