package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SaleStatus is the status of a sale
type SaleStatus string

const (
	SaleStatusPending    SaleStatus = "PENDING"
	SaleStatusOnProgress SaleStatus = "ON_PROGRESS"
	SaleStatusCompleted  SaleStatus = "COMPLETED"
	SaleStatusCancelled  SaleStatus = "CANCELLED"
)

// IsValid checks if the status is a valid SaleStatus
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusPending, SaleStatusOnProgress, SaleStatusCompleted, SaleStatusCancelled:
		return true
	}
	return false
}

// Sale is a purchase of devices and/or products by a patient or company
type Sale struct {
	shared.BaseAggregateRoot
	SaleCode      string          `gorm:"type:varchar(20);uniqueIndex"`
	InvoiceNumber string          `gorm:"type:varchar(30);uniqueIndex"`
	SaleDate      time.Time       `gorm:"not null;index"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Discount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	FinalAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Status        SaleStatus      `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Notes         string          `gorm:"type:text"`
	PatientID     *uuid.UUID      `gorm:"type:uuid;index"`
	CompanyID     *uuid.UUID      `gorm:"type:uuid;index"`
	ProcessedByID uuid.UUID       `gorm:"type:uuid;not null"`
	AssignedToID  *uuid.UUID      `gorm:"type:uuid"`

	Items []SaleItem `gorm:"foreignKey:SaleID"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSale creates a sale for exactly one client (patient or company)
func NewSale(code, invoice string, patientID, companyID *uuid.UUID, processedBy uuid.UUID, saleDate time.Time) (*Sale, error) {
	if patientID == nil && companyID == nil {
		return nil, shared.NewDomainError("CLIENT_REQUIRED", "A patient or a company is required")
	}
	if saleDate.IsZero() {
		saleDate = time.Now()
	}
	s := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SaleCode:          code,
		InvoiceNumber:     invoice,
		SaleDate:          saleDate,
		TotalAmount:       decimal.Zero,
		Discount:          decimal.Zero,
		FinalAmount:       decimal.Zero,
		Status:            SaleStatusPending,
		PatientID:         patientID,
		CompanyID:         companyID,
		ProcessedByID:     processedBy,
	}
	s.AddDomainEvent(NewSaleCreatedEvent(s))
	return s, nil
}

// SetAmounts sets total and discount; the final amount is total minus discount
func (s *Sale) SetAmounts(total, discount decimal.Decimal) error {
	if total.IsNegative() || discount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amounts cannot be negative")
	}
	if discount.GreaterThan(total) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed total amount")
	}
	s.TotalAmount = total
	s.Discount = discount
	s.FinalAmount = total.Sub(discount)
	s.MarkModified()
	return nil
}

// SetStatus changes the status
func (s *Sale) SetStatus(status SaleStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_SALE_STATUS", "Invalid sale status")
	}
	s.Status = status
	s.MarkModified()
	return nil
}

// SaleItem is a sold product quantity or a sold device
type SaleItem struct {
	shared.BaseEntity
	SaleID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID       *uuid.UUID `gorm:"type:uuid;index"`
	MedicalDeviceID *uuid.UUID `gorm:"type:uuid;index"`
	// SourceLocationID is where the first units of a product line were taken from
	SourceLocationID *uuid.UUID      `gorm:"type:uuid"`
	Quantity         int             `gorm:"not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Discount         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ItemTotal        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	SerialNumber     string          `gorm:"type:varchar(100)"`
	Warranty         string          `gorm:"type:varchar(100)"`
	Description      string          `gorm:"type:text"`

	Configuration *SaleConfiguration `gorm:"foreignKey:SaleItemID"`
}

// TableName returns the table name for GORM
func (SaleItem) TableName() string {
	return "sale_items"
}

// NewSaleItem creates a line for exactly one of productID or deviceID
func NewSaleItem(saleID uuid.UUID, productID, deviceID *uuid.UUID, quantity int, unitPrice, discount, itemTotal decimal.Decimal) (*SaleItem, error) {
	if (productID == nil) == (deviceID == nil) {
		return nil, shared.NewDomainError("INVALID_ITEM", "Each item needs exactly one product or medical device")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
	}
	if unitPrice.IsNegative() || itemTotal.IsNegative() || discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Item amounts cannot be negative")
	}
	return &SaleItem{
		BaseEntity:      shared.NewBaseEntity(),
		SaleID:          saleID,
		ProductID:       productID,
		MedicalDeviceID: deviceID,
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		Discount:        discount,
		ItemTotal:       itemTotal,
	}, nil
}

// SaleConfiguration holds device settings prescribed for a sold device
type SaleConfiguration struct {
	shared.BaseEntity
	SaleItemID            uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	SaleID                uuid.UUID      `gorm:"type:uuid;not null;index"`
	Pression              string         `gorm:"type:varchar(20)"`
	PressionRampe         string         `gorm:"type:varchar(20)"`
	DureeRampe            *int
	EPR                   string         `gorm:"column:epr;type:varchar(20)"`
	IPAP                  string         `gorm:"column:ipap;type:varchar(20)"`
	EPAP                  string         `gorm:"column:epap;type:varchar(20)"`
	AID                   string         `gorm:"column:aid;type:varchar(20)"`
	Mode                  string         `gorm:"type:varchar(20)"`
	FrequenceRespiratoire string         `gorm:"type:varchar(20)"`
	VolumeCourant         string         `gorm:"type:varchar(20)"`
	Debit                 string         `gorm:"type:varchar(20)"`
	AdditionalParams      shared.JSONMap `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (SaleConfiguration) TableName() string {
	return "sale_configurations"
}
