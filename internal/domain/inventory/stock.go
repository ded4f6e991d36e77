package inventory

import (
	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// StockStatus is the usage state of a stock row
type StockStatus string

const (
	StockStatusForSale      StockStatus = "FOR_SALE"
	StockStatusForRent      StockStatus = "FOR_RENT"
	StockStatusInRepair     StockStatus = "IN_REPAIR"
	StockStatusOutOfService StockStatus = "OUT_OF_SERVICE"
)

// IsValid reports whether s is a known stock status
func (s StockStatus) IsValid() bool {
	switch s {
	case StockStatusForSale, StockStatusForRent, StockStatusInRepair, StockStatusOutOfService:
		return true
	}
	return false
}

// Stock is the quantity of one product at one location in one status
type Stock struct {
	shared.BaseAggregateRoot
	LocationID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_stock_location_product_status,priority:1"`
	ProductID  uuid.UUID   `gorm:"type:uuid;not null;index;uniqueIndex:idx_stock_location_product_status,priority:2"`
	Quantity   int         `gorm:"not null;default:0"`
	Status     StockStatus `gorm:"type:varchar(20);not null;default:'FOR_SALE';uniqueIndex:idx_stock_location_product_status,priority:3"`
}

// TableName returns the table name for GORM
func (Stock) TableName() string {
	return "stocks"
}

// NewStock creates a stock row
func NewStock(locationID, productID uuid.UUID, quantity int, status StockStatus) (*Stock, error) {
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if status == "" {
		status = StockStatusForSale
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STOCK_STATUS", "Invalid stock status")
	}
	return &Stock{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LocationID:        locationID,
		ProductID:         productID,
		Quantity:          quantity,
		Status:            status,
	}, nil
}

// Increase adds quantity to the row
func (s *Stock) Increase(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	s.Quantity += quantity
	s.MarkModified()
	return nil
}

// Decrease removes quantity; the row can never go negative
func (s *Stock) Decrease(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if s.Quantity < quantity {
		return shared.ErrInsufficientStock
	}
	s.Quantity -= quantity
	s.MarkModified()
	return nil
}

// Adjust sets an absolute quantity and optionally a new status
func (s *Stock) Adjust(quantity int, status StockStatus) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if status != "" {
		if !status.IsValid() {
			return shared.NewDomainError("INVALID_STOCK_STATUS", "Invalid stock status")
		}
		s.Status = status
	}
	s.Quantity = quantity
	s.MarkModified()
	return nil
}

// CanFulfill reports whether the row holds at least quantity units
func (s *Stock) CanFulfill(quantity int) bool {
	return s.Quantity >= quantity
}
