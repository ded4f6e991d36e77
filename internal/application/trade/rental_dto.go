package trade

import (
	"strings"
	"time"

	"github.com/google/uuid"
	financeapp "github.com/medrent/backend/internal/application/finance"
	"github.com/medrent/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Rental creation
// =============================================================================

// RentalProductInput is one device or accessory of a rental request
type RentalProductInput struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	Type        string          `json:"type"`
	Quantity    int             `json:"quantity" binding:"min=0"`
	RentalPrice decimal.Decimal `json:"rental_price"`
}

// IsAccessory reports whether the entry is a stock product rather than a device
func (p RentalProductInput) IsAccessory() bool {
	return strings.EqualFold(p.Type, "ACCESSORY")
}

// ProductPeriodInput overrides the rental dates for one device
type ProductPeriodInput struct {
	ProductID uuid.UUID  `json:"product_id"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// GapInput is an identified or payment gap. Entries whose dates are
// missing or unparseable are skipped.
type GapInput struct {
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	Reason      string          `json:"reason"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// PaymentPeriodInput is one billed stretch of a rental
type PaymentPeriodInput struct {
	ID               string          `json:"id"`
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentMethod    string          `json:"payment_method"`
	IsGapPeriod      bool            `json:"is_gap_period"`
	GapReason        string          `json:"gap_reason"`
	Notes            string          `json:"notes"`
	CNAMBondNumber   string          `json:"cnam_bond_number"`
	CNAMBondType     string          `json:"cnam_bond_type"`
	CNAMStatus       string          `json:"cnam_status"`
	CNAMApprovalDate *time.Time      `json:"cnam_approval_date"`
	CNAMStartDate    *time.Time      `json:"cnam_start_date"`
	CNAMEndDate      *time.Time      `json:"cnam_end_date"`
}

// Span converts the input to the span checked by period validation
func (p PaymentPeriodInput) Span() trade.PeriodSpan {
	return trade.PeriodSpan{
		ID:            p.ID,
		StartDate:     parseDate(p.StartDate),
		EndDate:       parseDate(p.EndDate),
		Amount:        p.Amount,
		PaymentMethod: strings.ToUpper(p.PaymentMethod),
		IsGapPeriod:   p.IsGapPeriod,
	}
}

// LegacyPaymentInput is the single-payment form older clients send
type LegacyPaymentInput struct {
	Amount          *decimal.Decimal `json:"amount"`
	Method          string           `json:"method"`
	Status          string           `json:"status"`
	ChequeNumber    string           `json:"cheque_number"`
	BankName        string           `json:"bank_name"`
	ReferenceNumber string           `json:"reference_number"`
	CNAMCardNumber  string           `json:"cnam_card_number"`
	Notes           string           `json:"notes"`
}

// CreateRentalRequest creates one rental per device plus its payments,
// bonds, periods and accessories
type CreateRentalRequest struct {
	ClientID           uuid.UUID              `json:"client_id" binding:"required"`
	ClientType         string                 `json:"client_type" binding:"required"`
	Products           []RentalProductInput   `json:"products" binding:"required,min=1,dive"`
	GlobalStartDate    *time.Time             `json:"global_start_date"`
	GlobalEndDate      *time.Time             `json:"global_end_date"`
	StartDate          *time.Time             `json:"start_date"`
	EndDate            *time.Time             `json:"end_date"`
	IsGlobalOpenEnded  bool                   `json:"is_global_open_ended"`
	UrgentRental       bool                   `json:"urgent_rental"`
	ProductPeriods     []ProductPeriodInput   `json:"product_periods"`
	IdentifiedGaps     []GapInput             `json:"identified_gaps"`
	PaymentGaps        []GapInput             `json:"payment_gaps"`
	Notes              string                 `json:"notes"`
	PaymentPeriods     []PaymentPeriodInput   `json:"payment_periods"`
	CNAMBonds          []financeapp.BondInput `json:"cnam_bonds"`
	DepositAmount      decimal.Decimal        `json:"deposit_amount"`
	DepositMethod      string                 `json:"deposit_method"`
	CNAMEligible       bool                   `json:"cnam_eligible"`
	Payment            *LegacyPaymentInput    `json:"payment"`
	TotalPrice         decimal.Decimal        `json:"total_price"`
	TotalPaymentAmount decimal.Decimal        `json:"total_payment_amount"`
}

// RentalStart is the global start date, falling back to the legacy field
func (r CreateRentalRequest) RentalStart() *time.Time {
	if r.GlobalStartDate != nil {
		return r.GlobalStartDate
	}
	return r.StartDate
}

// RentalEnd is the global end date, falling back to the legacy field
func (r CreateRentalRequest) RentalEnd() *time.Time {
	if r.GlobalEndDate != nil {
		return r.GlobalEndDate
	}
	return r.EndDate
}

// RentalSummary describes what a create produced
type RentalSummary struct {
	TotalRentals        int             `json:"total_rentals"`
	TotalAccessories    int             `json:"total_accessories"`
	TotalProducts       int             `json:"total_products"`
	TotalPaymentPeriods int             `json:"total_payment_periods"`
	TotalCNAMBonds      int             `json:"total_cnam_bonds"`
	TotalRentalPeriods  int             `json:"total_rental_periods"`
	HasDeposit          bool            `json:"has_deposit"`
	HasStockReduction   bool            `json:"has_stock_reduction"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	CNAMEligible        bool            `json:"cnam_eligible"`
	UrgentRental        bool            `json:"urgent_rental"`
	IsOpenEnded         bool            `json:"is_open_ended"`
}

// CreateRentalResult lists every record created by a rental create
type CreateRentalResult struct {
	Rentals       []RentalResponse             `json:"rentals"`
	Accessories   []RentalAccessoryResponse    `json:"accessories"`
	Payments      []financeapp.PaymentResponse `json:"payments"`
	Deposit       *financeapp.PaymentResponse  `json:"deposit,omitempty"`
	LegacyPayment *financeapp.PaymentResponse  `json:"legacy_payment,omitempty"`
	Bonds         []financeapp.BondResponse    `json:"cnam_bonds"`
	Periods       []RentalPeriodResponse       `json:"rental_periods"`
	Summary       RentalSummary                `json:"summary"`
}

// =============================================================================
// Period tools
// =============================================================================

// ValidatePeriodsRequest checks a set of periods against rental bounds
type ValidatePeriodsRequest struct {
	Periods         []PaymentPeriodInput `json:"periods"`
	RentalStartDate *time.Time           `json:"rental_start_date"`
	RentalEndDate   *time.Time           `json:"rental_end_date"`
	DailyRate       decimal.Decimal      `json:"daily_rate"`
}

// ValidatePeriodsResult carries issues, uncovered gaps and totals
type ValidatePeriodsResult struct {
	IsValid    bool                `json:"is_valid"`
	Errors     []trade.PeriodIssue `json:"errors"`
	Warnings   []trade.PeriodIssue `json:"warnings"`
	Gaps       []trade.DetectedGap `json:"gaps"`
	Financials trade.Financials    `json:"financials"`
}

// PeriodRequest creates or updates one rental period
type PeriodRequest struct {
	StartDate     time.Time       `json:"start_date" binding:"required"`
	EndDate       time.Time       `json:"end_date" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	IsGapPeriod   bool            `json:"is_gap_period"`
	GapReason     string          `json:"gap_reason"`
	Notes         string          `json:"notes"`
	PaymentID     *uuid.UUID      `json:"payment_id"`
	CNAMBondID    *uuid.UUID      `json:"cnam_bond_id"`
}

// =============================================================================
// Rental read and update
// =============================================================================

// RentalListFilter represents filter options for the rental list
type RentalListFilter struct {
	Search          string `form:"search"`
	Status          string `form:"status" binding:"omitempty,oneof=PENDING ACTIVE COMPLETED CANCELLED EXPIRED PAUSED"`
	PatientID       string `form:"patient_id" binding:"omitempty,uuid"`
	MedicalDeviceID string `form:"medical_device_id" binding:"omitempty,uuid"`
	Page            int    `form:"page" binding:"min=0"`
	PageSize        int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy         string `form:"order_by"`
	OrderDir        string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// UpdateRentalRequest changes status, end date or notes
type UpdateRentalRequest struct {
	Status  string     `json:"status" binding:"omitempty,oneof=PENDING ACTIVE COMPLETED CANCELLED EXPIRED PAUSED"`
	EndDate *time.Time `json:"end_date"`
	Notes   *string    `json:"notes"`
}

// RentalConfigurationResponse is the configuration captured at creation
type RentalConfigurationResponse struct {
	IsGlobalOpenEnded  bool            `json:"is_global_open_ended"`
	UrgentRental       bool            `json:"urgent_rental"`
	CNAMEligible       bool            `json:"cnam_eligible"`
	TotalPaymentAmount decimal.Decimal `json:"total_payment_amount"`
	DepositAmount      decimal.Decimal `json:"deposit_amount"`
	DepositMethod      string          `json:"deposit_method,omitempty"`
	Notes              string          `json:"notes,omitempty"`
}

// RentalGapResponse is a stored gap
type RentalGapResponse struct {
	ID          uuid.UUID       `json:"id"`
	GapType     string          `json:"gap_type"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	Reason      string          `json:"reason,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// RentalAccessoryResponse is an accessory delivered with a rental
type RentalAccessoryResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// RentalPeriodResponse is a period with its state relative to now
type RentalPeriodResponse struct {
	ID            uuid.UUID       `json:"id"`
	RentalID      uuid.UUID       `json:"rental_id"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	IsGapPeriod   bool            `json:"is_gap_period"`
	GapReason     string          `json:"gap_reason,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	PaymentID     *uuid.UUID      `json:"payment_id,omitempty"`
	CNAMBondID    *uuid.UUID      `json:"cnam_bond_id,omitempty"`
	State         string          `json:"state"`
}

// RentalFinancialSummary totals the money attached to a rental
type RentalFinancialSummary struct {
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
}

// RentalResponse represents a rental in API responses
type RentalResponse struct {
	ID              uuid.UUID                    `json:"id"`
	RentalCode      string                       `json:"rental_code"`
	MedicalDeviceID uuid.UUID                    `json:"medical_device_id"`
	PatientID       uuid.UUID                    `json:"patient_id"`
	StartDate       time.Time                    `json:"start_date"`
	EndDate         *time.Time                   `json:"end_date,omitempty"`
	Status          string                       `json:"status"`
	DisplayStatus   string                       `json:"display_status"`
	Notes           string                       `json:"notes,omitempty"`
	PaymentID       *uuid.UUID                   `json:"payment_id,omitempty"`
	CreatedByID     uuid.UUID                    `json:"created_by_id"`
	Configuration   *RentalConfigurationResponse `json:"configuration,omitempty"`
	Gaps            []RentalGapResponse          `json:"gaps"`
	Accessories     []RentalAccessoryResponse    `json:"accessories"`
	Periods         []RentalPeriodResponse       `json:"periods"`
	Financial       *RentalFinancialSummary      `json:"financial_summary,omitempty"`
	CreatedAt       time.Time                    `json:"created_at"`
}

// RentalDetail adds payments, bonds, detected gaps and period totals
type RentalDetail struct {
	RentalResponse
	Payments     []financeapp.PaymentResponse `json:"payments"`
	Bonds        []financeapp.BondResponse    `json:"cnam_bonds"`
	DetectedGaps []trade.DetectedGap          `json:"detected_gaps"`
	Financials   trade.Financials             `json:"financials"`
}

// ToRentalResponse converts a rental and its loaded children
func ToRentalResponse(r *trade.Rental, now time.Time) RentalResponse {
	out := RentalResponse{
		ID:              r.ID,
		RentalCode:      r.RentalCode,
		MedicalDeviceID: r.MedicalDeviceID,
		PatientID:       r.PatientID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		Status:          string(r.Status),
		DisplayStatus:   string(trade.DeriveDisplayStatus(r, now)),
		Notes:           r.Notes,
		PaymentID:       r.PaymentID,
		CreatedByID:     r.CreatedByID,
		Gaps:            make([]RentalGapResponse, len(r.Gaps)),
		Accessories:     make([]RentalAccessoryResponse, len(r.Accessories)),
		Periods:         ToRentalPeriodResponses(r.Periods, now),
		CreatedAt:       r.CreatedAt,
	}
	if c := r.Configuration; c != nil {
		out.Configuration = &RentalConfigurationResponse{
			IsGlobalOpenEnded:  c.IsGlobalOpenEnded,
			UrgentRental:       c.UrgentRental,
			CNAMEligible:       c.CNAMEligible,
			TotalPaymentAmount: c.TotalPaymentAmount,
			DepositAmount:      c.DepositAmount,
			DepositMethod:      c.DepositMethod,
			Notes:              c.Notes,
		}
	}
	for i, g := range r.Gaps {
		out.Gaps[i] = RentalGapResponse{
			ID:          g.ID,
			GapType:     string(g.GapType),
			StartDate:   g.StartDate,
			EndDate:     g.EndDate,
			Reason:      g.Reason,
			Amount:      g.Amount,
			Description: g.Description,
		}
	}
	for i := range r.Accessories {
		out.Accessories[i] = toAccessoryResponse(&r.Accessories[i])
	}
	return out
}

func toAccessoryResponse(a *trade.RentalAccessory) RentalAccessoryResponse {
	return RentalAccessoryResponse{ID: a.ID, ProductID: a.ProductID, Quantity: a.Quantity, UnitPrice: a.UnitPrice}
}

// ToRentalPeriodResponse converts a period
func ToRentalPeriodResponse(p *trade.RentalPeriod, now time.Time) RentalPeriodResponse {
	return RentalPeriodResponse{
		ID:            p.ID,
		RentalID:      p.RentalID,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		IsGapPeriod:   p.IsGapPeriod,
		GapReason:     p.GapReason,
		Notes:         p.Notes,
		PaymentID:     p.PaymentID,
		CNAMBondID:    p.CNAMBondID,
		State:         string(trade.DerivePeriodState(p, now)),
	}
}

// ToRentalPeriodResponses converts a slice of periods
func ToRentalPeriodResponses(periods []trade.RentalPeriod, now time.Time) []RentalPeriodResponse {
	out := make([]RentalPeriodResponse, len(periods))
	for i := range periods {
		out[i] = ToRentalPeriodResponse(&periods[i], now)
	}
	return out
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// parseDate accepts RFC 3339 or plain dates; anything else yields zero
func parseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
