package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Payment DTOs
// =============================================================================

// PaymentDetailInput is one line of a split payment
type PaymentDetailInput struct {
	Method         string                 `json:"method" binding:"required"`
	Amount         decimal.Decimal        `json:"amount"`
	Classification string                 `json:"classification" binding:"omitempty,oneof=principale garantie complement"`
	Reference      string                 `json:"reference"`
	Metadata       map[string]interface{} `json:"metadata"`
}

// CreatePaymentRequest represents a standalone payment
type CreatePaymentRequest struct {
	Amount          decimal.Decimal      `json:"amount"`
	Method          string               `json:"method" binding:"required"`
	Status          string               `json:"status"`
	Source          string               `json:"source" binding:"omitempty,oneof=RENTAL SALE OTHER"`
	PatientID       *uuid.UUID           `json:"patient_id"`
	CompanyID       *uuid.UUID           `json:"company_id"`
	RentalID        *uuid.UUID           `json:"rental_id"`
	SaleID          *uuid.UUID           `json:"sale_id"`
	ChequeNumber    string               `json:"cheque_number" binding:"max=50"`
	BankName        string               `json:"bank_name" binding:"max=100"`
	ReferenceNumber string               `json:"reference_number" binding:"max=100"`
	PaymentDate     *time.Time           `json:"payment_date"`
	DueDate         *time.Time           `json:"due_date"`
	Notes           string               `json:"notes"`
	Details         []PaymentDetailInput `json:"details" binding:"dive"`
}

// UpdatePaymentRequest changes status, amount or detail lines. A non-nil
// Details replaces every existing line.
type UpdatePaymentRequest struct {
	Status          *string              `json:"status"`
	Amount          *decimal.Decimal     `json:"amount"`
	Method          *string              `json:"method"`
	ReferenceNumber *string              `json:"reference_number"`
	DueDate         *time.Time           `json:"due_date"`
	Notes           *string              `json:"notes"`
	Details         []PaymentDetailInput `json:"details" binding:"omitempty,dive"`
}

// PaymentListFilter represents filter options for the payment list
type PaymentListFilter struct {
	Search    string     `form:"search"`
	Status    string     `form:"status" binding:"omitempty,oneof=PENDING PAID GUARANTEE PARTIAL CANCELLED"`
	Method    string     `form:"method"`
	PatientID string     `form:"patient_id" binding:"omitempty,uuid"`
	Source    string     `form:"source" binding:"omitempty,oneof=RENTAL SALE OTHER"`
	FromDate  *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate    *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page      int        `form:"page" binding:"min=0"`
	PageSize  int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PaymentDetailResponse is one detail line in API responses
type PaymentDetailResponse struct {
	ID             uuid.UUID              `json:"id"`
	Method         string                 `json:"method"`
	Amount         decimal.Decimal        `json:"amount"`
	Classification string                 `json:"classification"`
	Reference      string                 `json:"reference,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID               uuid.UUID               `json:"id"`
	PaymentCode      string                  `json:"payment_code"`
	Amount           decimal.Decimal         `json:"amount"`
	Method           string                  `json:"method"`
	Status           string                  `json:"status"`
	Source           string                  `json:"source"`
	PatientID        *uuid.UUID              `json:"patient_id,omitempty"`
	CompanyID        *uuid.UUID              `json:"company_id,omitempty"`
	RentalID         *uuid.UUID              `json:"rental_id,omitempty"`
	SaleID           *uuid.UUID              `json:"sale_id,omitempty"`
	ChequeNumber     string                  `json:"cheque_number,omitempty"`
	BankName         string                  `json:"bank_name,omitempty"`
	ReferenceNumber  string                  `json:"reference_number,omitempty"`
	CNAMCardNumber   string                  `json:"cnam_card_number,omitempty"`
	CNAMBondNumber   string                  `json:"cnam_bond_number,omitempty"`
	CNAMBondType     string                  `json:"cnam_bond_type,omitempty"`
	CNAMStatus       string                  `json:"cnam_status,omitempty"`
	CNAMApprovalDate *time.Time              `json:"cnam_approval_date,omitempty"`
	CNAMStartDate    *time.Time              `json:"cnam_start_date,omitempty"`
	CNAMEndDate      *time.Time              `json:"cnam_end_date,omitempty"`
	IsGapPeriod      bool                    `json:"is_gap_period"`
	GapReason        string                  `json:"gap_reason,omitempty"`
	IsRentalPayment  bool                    `json:"is_rental_payment"`
	IsDepositPayment bool                    `json:"is_deposit_payment"`
	PaymentDate      time.Time               `json:"payment_date"`
	DueDate          *time.Time              `json:"due_date,omitempty"`
	Notes            string                  `json:"notes,omitempty"`
	Details          []PaymentDetailResponse `json:"details"`
	CreatedAt        time.Time               `json:"created_at"`
}

// ToPaymentResponse converts a domain Payment
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	details := make([]PaymentDetailResponse, len(p.Details))
	for i, d := range p.Details {
		details[i] = PaymentDetailResponse{
			ID:             d.ID,
			Method:         d.Method,
			Amount:         d.Amount,
			Classification: string(d.Classification),
			Reference:      d.Reference,
			Metadata:       d.Metadata,
		}
	}
	return PaymentResponse{
		ID:               p.ID,
		PaymentCode:      p.PaymentCode,
		Amount:           p.Amount,
		Method:           string(p.Method),
		Status:           string(p.Status),
		Source:           string(p.Source),
		PatientID:        p.PatientID,
		CompanyID:        p.CompanyID,
		RentalID:         p.RentalID,
		SaleID:           p.SaleID,
		ChequeNumber:     p.ChequeNumber,
		BankName:         p.BankName,
		ReferenceNumber:  p.ReferenceNumber,
		CNAMCardNumber:   p.CNAMCardNumber,
		CNAMBondNumber:   p.CNAMBondNumber,
		CNAMBondType:     p.CNAMBondType,
		CNAMStatus:       p.CNAMStatus,
		CNAMApprovalDate: p.CNAMApprovalDate,
		CNAMStartDate:    p.CNAMStartDate,
		CNAMEndDate:      p.CNAMEndDate,
		IsGapPeriod:      p.IsGapPeriod,
		GapReason:        p.GapReason,
		IsRentalPayment:  p.IsRentalPayment,
		IsDepositPayment: p.IsDepositPayment,
		PaymentDate:      p.PaymentDate,
		DueDate:          p.DueDate,
		Notes:            p.Notes,
		Details:          details,
		CreatedAt:        p.CreatedAt,
	}
}

// ToPaymentResponses converts a slice of payments
func ToPaymentResponses(payments []finance.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out
}

// =============================================================================
// CNAM bond DTOs
// =============================================================================

// BondInput describes a bond in create and reconcile requests. In a
// reconcile, an empty ID or one starting with "new-" creates a bond.
type BondInput struct {
	ID                  string           `json:"id"`
	BondNumber          string           `json:"bond_number" binding:"max=50"`
	BondType            string           `json:"bond_type" binding:"required"`
	Status              string           `json:"status"`
	DossierNumber       string           `json:"dossier_number" binding:"max=50"`
	SubmissionDate      *time.Time       `json:"submission_date"`
	ApprovalDate        *time.Time       `json:"approval_date"`
	StartDate           *time.Time       `json:"start_date"`
	EndDate             *time.Time       `json:"end_date"`
	MonthlyAmount       *decimal.Decimal `json:"monthly_amount"`
	CoveredMonths       int              `json:"covered_months" binding:"min=0"`
	TotalAmount         decimal.Decimal  `json:"total_amount"`
	DevicePrice         *decimal.Decimal `json:"device_price"`
	ComplementAmount    *decimal.Decimal `json:"complement_amount"`
	RenewalReminderDays int              `json:"renewal_reminder_days" binding:"min=0"`
	Notes               string           `json:"notes"`
}

// IsNew reports whether the input describes a bond not stored yet
func (in BondInput) IsNew() bool {
	return in.ID == "" || strings.HasPrefix(in.ID, "new-")
}

// CreateBondRequest attaches a bond to a rental
type CreateBondRequest struct {
	RentalID uuid.UUID `json:"rental_id" binding:"required"`
	BondInput
}

// ReconcileBondsRequest replaces a rental's bonds with the given list
type ReconcileBondsRequest struct {
	RentalID uuid.UUID   `json:"rental_id" binding:"required"`
	Bonds    []BondInput `json:"bonds" binding:"dive"`
}

// BondResponse represents a CNAM bond in API responses
type BondResponse struct {
	ID                  uuid.UUID       `json:"id"`
	BondNumber          string          `json:"bond_number,omitempty"`
	BondType            string          `json:"bond_type"`
	Category            string          `json:"category"`
	Status              string          `json:"status"`
	DossierNumber       string          `json:"dossier_number,omitempty"`
	SubmissionDate      *time.Time      `json:"submission_date,omitempty"`
	ApprovalDate        *time.Time      `json:"approval_date,omitempty"`
	StartDate           *time.Time      `json:"start_date,omitempty"`
	EndDate             *time.Time      `json:"end_date,omitempty"`
	MonthlyAmount       decimal.Decimal `json:"monthly_amount"`
	CoveredMonths       int             `json:"covered_months"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	DevicePrice         decimal.Decimal `json:"device_price"`
	ComplementAmount    decimal.Decimal `json:"complement_amount"`
	RenewalReminderDays int             `json:"renewal_reminder_days"`
	RemainingMonths     int             `json:"remaining_months"`
	Notes               string          `json:"notes,omitempty"`
	PatientID           uuid.UUID       `json:"patient_id"`
	RentalID            *uuid.UUID      `json:"rental_id,omitempty"`
	SaleID              *uuid.UUID      `json:"sale_id,omitempty"`
}

// ToBondResponse converts a domain bond; remaining months are computed at now
func ToBondResponse(b *finance.CNAMBondRental, now time.Time) BondResponse {
	return BondResponse{
		ID:                  b.ID,
		BondNumber:          b.BondNumber,
		BondType:            string(b.BondType),
		Category:            string(b.Category),
		Status:              string(b.Status),
		DossierNumber:       b.DossierNumber,
		SubmissionDate:      b.SubmissionDate,
		ApprovalDate:        b.ApprovalDate,
		StartDate:           b.StartDate,
		EndDate:             b.EndDate,
		MonthlyAmount:       b.MonthlyAmount,
		CoveredMonths:       b.CoveredMonths,
		TotalAmount:         b.TotalAmount,
		DevicePrice:         b.DevicePrice,
		ComplementAmount:    b.ComplementAmount,
		RenewalReminderDays: b.RenewalReminderDays,
		RemainingMonths:     b.RemainingMonths(now),
		Notes:               b.Notes,
		PatientID:           b.PatientID,
		RentalID:            b.RentalID,
		SaleID:              b.SaleID,
	}
}

// ToBondResponses converts a slice of bonds
func ToBondResponses(bonds []finance.CNAMBondRental, now time.Time) []BondResponse {
	out := make([]BondResponse, len(bonds))
	for i := range bonds {
		out[i] = ToBondResponse(&bonds[i], now)
	}
	return out
}

// =============================================================================
// CNAM dossier DTOs
// =============================================================================

// DossierListFilter represents filter options for the dossier list
type DossierListFilter struct {
	Search    string `form:"search"`
	Status    string `form:"status"`
	PatientID string `form:"patient_id" binding:"omitempty,uuid"`
	SaleID    string `form:"sale_id" binding:"omitempty,uuid"`
	Page      int    `form:"page" binding:"min=0"`
	PageSize  int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy   string `form:"order_by"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// AdvanceStepRequest moves a dossier to another step
type AdvanceStepRequest struct {
	ToStep   int    `json:"to_step" binding:"required,min=1"`
	ToStatus string `json:"to_status" binding:"required"`
	Notes    string `json:"notes"`
}

// StepHistoryResponse is one dossier transition
type StepHistoryResponse struct {
	FromStep    *int      `json:"from_step,omitempty"`
	ToStep      int       `json:"to_step"`
	FromStatus  string    `json:"from_status,omitempty"`
	ToStatus    string    `json:"to_status"`
	Notes       string    `json:"notes,omitempty"`
	ChangedByID uuid.UUID `json:"changed_by_id"`
	ChangeDate  time.Time `json:"change_date"`
}

// DossierResponse represents a CNAM dossier in API responses
type DossierResponse struct {
	ID               uuid.UUID             `json:"id"`
	DossierNumber    string                `json:"dossier_number"`
	BonType          string                `json:"bon_type"`
	BondAmount       decimal.Decimal       `json:"bond_amount"`
	DevicePrice      decimal.Decimal       `json:"device_price"`
	ComplementAmount decimal.Decimal       `json:"complement_amount"`
	CurrentStep      int                   `json:"current_step"`
	TotalSteps       int                   `json:"total_steps"`
	Status           string                `json:"status"`
	Notes            string                `json:"notes,omitempty"`
	SaleID           uuid.UUID             `json:"sale_id"`
	PatientID        uuid.UUID             `json:"patient_id"`
	StepHistory      []StepHistoryResponse `json:"step_history"`
	CreatedAt        time.Time             `json:"created_at"`
}

// ToDossierResponse converts a domain dossier
func ToDossierResponse(d *finance.CNAMDossier) DossierResponse {
	history := make([]StepHistoryResponse, len(d.StepHistory))
	for i, h := range d.StepHistory {
		history[i] = StepHistoryResponse{
			FromStep:    h.FromStep,
			ToStep:      h.ToStep,
			ToStatus:    string(h.ToStatus),
			Notes:       h.Notes,
			ChangedByID: h.ChangedByID,
			ChangeDate:  h.ChangeDate,
		}
		if h.FromStatus != nil {
			history[i].FromStatus = string(*h.FromStatus)
		}
	}
	return DossierResponse{
		ID:               d.ID,
		DossierNumber:    d.DossierNumber,
		BonType:          string(d.BonType),
		BondAmount:       d.BondAmount,
		DevicePrice:      d.DevicePrice,
		ComplementAmount: d.ComplementAmount,
		CurrentStep:      d.CurrentStep,
		TotalSteps:       d.TotalSteps,
		Status:           string(d.Status),
		Notes:            d.Notes,
		SaleID:           d.SaleID,
		PatientID:        d.PatientID,
		StepHistory:      history,
		CreatedAt:        d.CreatedAt,
	}
}
