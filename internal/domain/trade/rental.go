package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RentalStatus is the stored status of a rental
type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "PENDING"
	RentalStatusActive    RentalStatus = "ACTIVE"
	RentalStatusCompleted RentalStatus = "COMPLETED"
	RentalStatusCancelled RentalStatus = "CANCELLED"
	RentalStatusExpired   RentalStatus = "EXPIRED"
	RentalStatusPaused    RentalStatus = "PAUSED"
)

// IsValid checks if the status is a valid RentalStatus
func (s RentalStatus) IsValid() bool {
	switch s {
	case RentalStatusPending, RentalStatusActive, RentalStatusCompleted,
		RentalStatusCancelled, RentalStatusExpired, RentalStatusPaused:
		return true
	}
	return false
}

// Rental is a medical device rented to a patient
type Rental struct {
	shared.BaseAggregateRoot
	RentalCode      string       `gorm:"type:varchar(20);uniqueIndex"`
	MedicalDeviceID uuid.UUID    `gorm:"type:uuid;not null;index"`
	PatientID       uuid.UUID    `gorm:"type:uuid;not null;index"`
	StartDate       time.Time    `gorm:"not null"`
	EndDate         *time.Time   `gorm:"index"`
	Status          RentalStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	Notes           string       `gorm:"type:text"`
	PaymentID       *uuid.UUID   `gorm:"type:uuid"`
	CreatedByID     uuid.UUID    `gorm:"type:uuid;not null"`

	Configuration *RentalConfiguration `gorm:"foreignKey:RentalID"`
	Gaps          []RentalGap          `gorm:"foreignKey:RentalID"`
	Accessories   []RentalAccessory    `gorm:"foreignKey:RentalID"`
	Periods       []RentalPeriod       `gorm:"foreignKey:RentalID"`
}

// TableName returns the table name for GORM
func (Rental) TableName() string {
	return "rentals"
}

// NewRental creates an ACTIVE rental of a device for a patient
func NewRental(code string, deviceID, patientID uuid.UUID, start time.Time, end *time.Time, createdBy uuid.UUID) (*Rental, error) {
	if start.IsZero() {
		return nil, shared.NewDomainError("INVALID_START_DATE", "Start date is required")
	}
	if end != nil && end.Before(start) {
		return nil, shared.NewDomainError("INVALID_END_DATE", "End date cannot be before start date")
	}
	return &Rental{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RentalCode:        code,
		MedicalDeviceID:   deviceID,
		PatientID:         patientID,
		StartDate:         start,
		EndDate:           end,
		Status:            RentalStatusActive,
		CreatedByID:       createdBy,
	}, nil
}

// Update changes status, end date and notes
func (r *Rental) Update(status RentalStatus, end *time.Time, notes *string) error {
	if status != "" {
		if !status.IsValid() {
			return shared.NewDomainError("INVALID_RENTAL_STATUS", "Invalid rental status")
		}
		r.Status = status
	}
	if end != nil {
		if end.Before(r.StartDate) {
			return shared.NewDomainError("INVALID_END_DATE", "End date cannot be before start date")
		}
		r.EndDate = end
	}
	if notes != nil {
		r.Notes = *notes
	}
	r.MarkModified()
	return nil
}

// IsOpenEnded reports whether the rental has no end date
func (r *Rental) IsOpenEnded() bool {
	return r.EndDate == nil
}

// RentalConfiguration holds rental-wide settings captured at creation
type RentalConfiguration struct {
	shared.BaseEntity
	RentalID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	IsGlobalOpenEnded  bool            `gorm:"not null;default:false"`
	UrgentRental       bool            `gorm:"not null;default:false"`
	CNAMEligible       bool            `gorm:"column:cnam_eligible;not null;default:false"`
	TotalPaymentAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DepositAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DepositMethod      string          `gorm:"type:varchar(20)"`
	Notes              string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (RentalConfiguration) TableName() string {
	return "rental_configurations"
}

// GapType distinguishes gaps identified by staff from gaps in payment coverage
type GapType string

const (
	GapTypeIdentified GapType = "IDENTIFIED"
	GapTypePayment    GapType = "PAYMENT"
)

// RentalGap is a period the device was out but not covered
type RentalGap struct {
	shared.BaseEntity
	RentalID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	GapType     GapType         `gorm:"type:varchar(20);not null"`
	StartDate   time.Time       `gorm:"not null"`
	EndDate     time.Time       `gorm:"not null"`
	Reason      string          `gorm:"type:text"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Description string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (RentalGap) TableName() string {
	return "rental_gaps"
}

// RentalAccessory is a consumable delivered with a rental
type RentalAccessory struct {
	shared.BaseEntity
	RentalID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	StockID   *uuid.UUID      `gorm:"type:uuid"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (RentalAccessory) TableName() string {
	return "rental_accessories"
}

// NewRentalAccessory creates an accessory line
func NewRentalAccessory(rentalID, productID uuid.UUID, quantity int, unitPrice decimal.Decimal) (*RentalAccessory, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Accessory quantity must be positive")
	}
	return &RentalAccessory{
		BaseEntity: shared.NewBaseEntity(),
		RentalID:   rentalID,
		ProductID:  productID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
	}, nil
}

// RentalPeriod is a billed (or gap) stretch of a rental
type RentalPeriod struct {
	shared.BaseEntity
	RentalID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	StartDate     time.Time       `gorm:"not null"`
	EndDate       time.Time       `gorm:"not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PaymentMethod string          `gorm:"type:varchar(20)"`
	IsGapPeriod   bool            `gorm:"not null;default:false"`
	GapReason     string          `gorm:"type:text"`
	Notes         string          `gorm:"type:text"`
	PaymentID     *uuid.UUID      `gorm:"type:uuid"`
	CNAMBondID    *uuid.UUID      `gorm:"column:cnam_bond_id;type:uuid"`
}

// TableName returns the table name for GORM
func (RentalPeriod) TableName() string {
	return "rental_periods"
}

// NewRentalPeriod creates a period after checking dates and amount
func NewRentalPeriod(rentalID uuid.UUID, start, end time.Time, amount decimal.Decimal, method string) (*RentalPeriod, error) {
	if start.IsZero() || end.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Period dates are required")
	}
	if start.After(end) {
		return nil, shared.NewDomainError("INVALID_DATE", "Period end date is before its start date")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Period amount cannot be negative")
	}
	return &RentalPeriod{
		BaseEntity:    shared.NewBaseEntity(),
		RentalID:      rentalID,
		StartDate:     start,
		EndDate:       end,
		Amount:        amount,
		PaymentMethod: method,
	}, nil
}

// AsSpan converts a stored period to the span used by validation
func (p *RentalPeriod) AsSpan() PeriodSpan {
	return PeriodSpan{
		ID:            p.ID.String(),
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		IsGapPeriod:   p.IsGapPeriod,
	}
}
