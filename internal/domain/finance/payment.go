package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a payment was settled
type PaymentMethod string

const (
	PaymentMethodCNAM         PaymentMethod = "CNAM"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodMandat       PaymentMethod = "MANDAT"
	PaymentMethodVirement     PaymentMethod = "VIREMENT"
	PaymentMethodTraite       PaymentMethod = "TRAITE"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCNAM, PaymentMethodCheque, PaymentMethodCash, PaymentMethodBankTransfer,
		PaymentMethodMandat, PaymentMethodVirement, PaymentMethodTraite:
		return true
	}
	return false
}

// ParsePaymentMethod upper-cases and validates a method name
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(raw)))
	if !m.IsValid() {
		return "", shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method: "+raw)
	}
	return m, nil
}

// PaymentStatus is the settlement state of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusGuarantee PaymentStatus = "GUARANTEE"
	PaymentStatusPartial   PaymentStatus = "PARTIAL"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// IsValid checks if the status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusGuarantee, PaymentStatusPartial, PaymentStatusCancelled:
		return true
	}
	return false
}

// MapPaymentStatus maps client-side and legacy status names onto PaymentStatus.
// Unknown values fall back to PENDING.
func MapPaymentStatus(raw string) PaymentStatus {
	switch s := strings.ToUpper(strings.TrimSpace(raw)); s {
	case "COMPLETED_WITH_PENDING_CNAM":
		return PaymentStatusPartial
	case "COMPLETED":
		return PaymentStatusPaid
	default:
		if PaymentStatus(s).IsValid() {
			return PaymentStatus(s)
		}
		return PaymentStatusPending
	}
}

// PaymentSource is the business flow a payment belongs to
type PaymentSource string

const (
	PaymentSourceRental PaymentSource = "RENTAL"
	PaymentSourceSale   PaymentSource = "SALE"
	PaymentSourceOther  PaymentSource = "OTHER"
)

// Payment is money owed or received from a patient or company
type Payment struct {
	shared.BaseAggregateRoot
	PaymentCode      string          `gorm:"type:varchar(20);uniqueIndex"`
	Amount           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Method           PaymentMethod   `gorm:"type:varchar(20);not null"`
	Status           PaymentStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Source           PaymentSource   `gorm:"type:varchar(10);not null;default:'OTHER'"`
	PatientID        *uuid.UUID      `gorm:"type:uuid;index"`
	CompanyID        *uuid.UUID      `gorm:"type:uuid;index"`
	RentalID         *uuid.UUID      `gorm:"type:uuid;index"`
	SaleID           *uuid.UUID      `gorm:"type:uuid;index"`
	ChequeNumber     string          `gorm:"type:varchar(50)"`
	BankName         string          `gorm:"type:varchar(100)"`
	ReferenceNumber  string          `gorm:"type:varchar(100)"`
	CNAMCardNumber   string          `gorm:"column:cnam_card_number;type:varchar(50)"`
	CNAMBondNumber   string          `gorm:"column:cnam_bond_number;type:varchar(50)"`
	CNAMBondType     string          `gorm:"column:cnam_bond_type;type:varchar(30)"`
	CNAMStatus       string          `gorm:"column:cnam_status;type:varchar(30)"`
	CNAMApprovalDate *time.Time      `gorm:"column:cnam_approval_date"`
	CNAMStartDate    *time.Time      `gorm:"column:cnam_start_date"`
	CNAMEndDate      *time.Time      `gorm:"column:cnam_end_date"`
	IsGapPeriod      bool            `gorm:"not null;default:false"`
	GapReason        string          `gorm:"type:text"`
	IsRentalPayment  bool            `gorm:"not null;default:false"`
	IsDepositPayment bool            `gorm:"not null;default:false"`
	PaymentDate      time.Time       `gorm:"not null"`
	DueDate          *time.Time      `gorm:"index"`
	Notes            string          `gorm:"type:text"`
	Details          []PaymentDetail `gorm:"foreignKey:PaymentID"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a payment; amount must be non-negative
func NewPayment(code string, amount decimal.Decimal, method PaymentMethod, status PaymentStatus, source PaymentSource) (*Payment, error) {
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount cannot be negative")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method")
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_STATUS", "Invalid payment status")
	}
	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PaymentCode:       code,
		Amount:            amount,
		Method:            method,
		Status:            status,
		Source:            source,
		PaymentDate:       time.Now(),
	}, nil
}

// IsOverdue reports whether a pending payment is past its due date
func (p *Payment) IsOverdue(now time.Time) bool {
	return p.Status == PaymentStatusPending && p.DueDate != nil && p.DueDate.Before(now)
}

// SetStatus changes the status
func (p *Payment) SetStatus(status PaymentStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_STATUS", "Invalid payment status")
	}
	p.Status = status
	p.MarkModified()
	return nil
}

// SetAmount changes the amount
func (p *Payment) SetAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount cannot be negative")
	}
	p.Amount = amount
	p.MarkModified()
	return nil
}

// DetailClassification tags the role of a payment line
type DetailClassification string

const (
	ClassificationPrincipal  DetailClassification = "principale"
	ClassificationGuarantee  DetailClassification = "garantie"
	ClassificationComplement DetailClassification = "complement"
)

// PaymentDetail is one line of a split payment (cash part, CNAM part, ...)
type PaymentDetail struct {
	shared.BaseEntity
	PaymentID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	Method         string               `gorm:"type:varchar(30);not null"`
	Amount         decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Classification DetailClassification `gorm:"type:varchar(20);not null;default:'principale'"`
	Reference      string               `gorm:"type:varchar(100)"`
	Metadata       shared.JSONMap       `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (PaymentDetail) TableName() string {
	return "payment_details"
}

// NewPaymentDetail creates a payment line
func NewPaymentDetail(paymentID uuid.UUID, method string, amount decimal.Decimal, classification DetailClassification, reference string, metadata shared.JSONMap) (*PaymentDetail, error) {
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment detail amount cannot be negative")
	}
	switch classification {
	case "":
		classification = ClassificationPrincipal
	case ClassificationPrincipal, ClassificationGuarantee, ClassificationComplement:
	default:
		return nil, shared.NewDomainError("INVALID_CLASSIFICATION", "Invalid payment classification")
	}
	if metadata == nil {
		metadata = shared.JSONMap{}
	}
	return &PaymentDetail{
		BaseEntity:     shared.NewBaseEntity(),
		PaymentID:      paymentID,
		Method:         strings.ToUpper(strings.TrimSpace(method)),
		Amount:         amount,
		Classification: classification,
		Reference:      reference,
		Metadata:       metadata,
	}, nil
}
