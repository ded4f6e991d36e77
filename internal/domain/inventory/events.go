package inventory

import (
	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// AggregateTypeTransferRequest is the aggregate type for transfer requests
const AggregateTypeTransferRequest = "StockTransferRequest"

// EventTypeTransferRequestReviewed is published when an admin reviews a request
const EventTypeTransferRequestReviewed = "TransferRequestReviewed"

// TransferRequestReviewedEvent carries the review decision to the requester
type TransferRequestReviewedEvent struct {
	shared.BaseDomainEvent
	RequestCode   string                `json:"request_code"`
	RequestedByID uuid.UUID             `json:"requested_by_id"`
	Decision      TransferRequestStatus `json:"decision"`
	ReviewNotes   string                `json:"review_notes,omitempty"`
}

// NewTransferRequestReviewedEvent creates the event from the reviewed request
func NewTransferRequestReviewedEvent(r *StockTransferRequest, reviewer uuid.UUID) *TransferRequestReviewedEvent {
	return &TransferRequestReviewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferRequestReviewed, AggregateTypeTransferRequest, r.ID, reviewer),
		RequestCode:     r.RequestCode,
		RequestedByID:   r.RequestedByID,
		Decision:        r.Status,
		ReviewNotes:     r.ReviewNotes,
	}
}
