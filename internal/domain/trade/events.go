package trade

import (
	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeSale   = "Sale"
	AggregateTypeRental = "Rental"
)

// Event type constants
const (
	EventTypeSaleCreated = "SaleCreated"
)

// SaleCreatedEvent is published once a sale has been committed
type SaleCreatedEvent struct {
	shared.BaseDomainEvent
	SaleCode      string     `json:"sale_code"`
	PatientID     *uuid.UUID `json:"patient_id,omitempty"`
	ProcessedByID uuid.UUID  `json:"processed_by_id"`
}

// NewSaleCreatedEvent creates a SaleCreatedEvent
func NewSaleCreatedEvent(s *Sale) *SaleCreatedEvent {
	return &SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCreated, AggregateTypeSale, s.ID, s.ProcessedByID),
		SaleCode:        s.SaleCode,
		PatientID:       s.PatientID,
		ProcessedByID:   s.ProcessedByID,
	}
}
