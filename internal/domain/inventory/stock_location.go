package inventory

import (
	"strings"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// SoldLocationName is the well-known location that receives sold devices
const SoldLocationName = "Vendu"

// StockLocation is a place holding stock: a depot, a technician's van, a branch
type StockLocation struct {
	shared.BaseAggregateRoot
	Name        string     `gorm:"type:varchar(200);not null;uniqueIndex"`
	Description string     `gorm:"type:text"`
	UserID      *uuid.UUID `gorm:"type:uuid;index"`
	IsActive    bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (StockLocation) TableName() string {
	return "stock_locations"
}

// NewStockLocation creates an active location
func NewStockLocation(name, description string, userID *uuid.UUID) (*StockLocation, error) {
	l := &StockLocation{BaseAggregateRoot: shared.NewBaseAggregateRoot(), IsActive: true, UserID: userID}
	if err := l.Update(name, description); err != nil {
		return nil, err
	}
	return l, nil
}

// Update renames the location
func (l *StockLocation) Update(name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_LOCATION_NAME", "Location name is required")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_LOCATION_NAME", "Location name cannot exceed 200 characters")
	}
	l.Name = name
	l.Description = strings.TrimSpace(description)
	l.MarkModified()
	return nil
}

// SetActive toggles the active flag
func (l *StockLocation) SetActive(active bool) {
	l.IsActive = active
	l.MarkModified()
}
