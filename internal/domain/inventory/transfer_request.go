package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// TransferUrgency is how urgent an employee flagged a request
type TransferUrgency string

const (
	UrgencyLow    TransferUrgency = "LOW"
	UrgencyMedium TransferUrgency = "MEDIUM"
	UrgencyHigh   TransferUrgency = "HIGH"
)

// TransferRequestStatus tracks a request through review
type TransferRequestStatus string

const (
	TransferRequestPending   TransferRequestStatus = "PENDING"
	TransferRequestApproved  TransferRequestStatus = "APPROVED"
	TransferRequestRejected  TransferRequestStatus = "REJECTED"
	TransferRequestCompleted TransferRequestStatus = "COMPLETED"
)

// ReviewAction is the admin decision on a pending request
type ReviewAction string

const (
	ReviewApprove ReviewAction = "APPROVED"
	ReviewReject  ReviewAction = "REJECTED"
)

// StockTransferRequest is an employee's ask to bring stock to their location
type StockTransferRequest struct {
	shared.BaseAggregateRoot
	RequestCode       string                `gorm:"type:varchar(20);uniqueIndex"`
	FromLocationID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	ToLocationID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	ProductID         *uuid.UUID            `gorm:"type:uuid"`
	MedicalDeviceID   *uuid.UUID            `gorm:"type:uuid"`
	RequestedQuantity int                   `gorm:"not null"`
	Reason            string                `gorm:"type:text;not null"`
	Urgency           TransferUrgency       `gorm:"type:varchar(10);not null;default:'MEDIUM'"`
	Status            TransferRequestStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	RequestedByID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	ReviewedByID      *uuid.UUID            `gorm:"type:uuid"`
	ReviewedAt        *time.Time
	ReviewNotes       string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (StockTransferRequest) TableName() string {
	return "stock_transfer_requests"
}

// NewStockTransferRequest builds a PENDING request for exactly one of
// productID or deviceID
func NewStockTransferRequest(code string, from, to uuid.UUID, productID, deviceID *uuid.UUID, quantity int, reason string, urgency TransferUrgency, requestedBy uuid.UUID) (*StockTransferRequest, error) {
	if (productID == nil) == (deviceID == nil) {
		return nil, shared.NewDomainError("INVALID_ITEM", "Either a product or a medical device is required")
	}
	if deviceID != nil && quantity != 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Device requests must have a quantity of 1")
	}
	if err := ValidateTransferEndpoints(from, to, quantity); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Reason is required")
	}
	switch urgency {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
	default:
		return nil, shared.NewDomainError("INVALID_URGENCY", "Urgency must be LOW, MEDIUM or HIGH")
	}

	return &StockTransferRequest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RequestCode:       code,
		FromLocationID:    from,
		ToLocationID:      to,
		ProductID:         productID,
		MedicalDeviceID:   deviceID,
		RequestedQuantity: quantity,
		Reason:            strings.TrimSpace(reason),
		Urgency:           urgency,
		Status:            TransferRequestPending,
		RequestedByID:     requestedBy,
	}, nil
}

// IsDeviceRequest reports whether the request moves a device
func (r *StockTransferRequest) IsDeviceRequest() bool {
	return r.MedicalDeviceID != nil
}

// Review records the admin decision. Only PENDING requests can be reviewed.
func (r *StockTransferRequest) Review(action ReviewAction, reviewer uuid.UUID, notes string) error {
	if r.Status != TransferRequestPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending requests can be reviewed")
	}
	switch action {
	case ReviewApprove:
		r.Status = TransferRequestApproved
	case ReviewReject:
		r.Status = TransferRequestRejected
	default:
		return shared.NewDomainError("INVALID_ACTION", "Action must be APPROVED or REJECTED")
	}
	now := time.Now()
	r.ReviewedByID = &reviewer
	r.ReviewedAt = &now
	r.ReviewNotes = strings.TrimSpace(notes)
	r.MarkModified()
	r.AddDomainEvent(NewTransferRequestReviewedEvent(r, reviewer))
	return nil
}

// Complete closes an approved request once stock has moved
func (r *StockTransferRequest) Complete() error {
	if r.Status != TransferRequestApproved {
		return shared.NewDomainError("INVALID_STATE", "Only approved requests can be completed")
	}
	r.Status = TransferRequestCompleted
	r.MarkModified()
	return nil
}
