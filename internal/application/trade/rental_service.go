package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	financeapp "github.com/medrent/backend/internal/application/finance"
	"github.com/medrent/backend/internal/application/uow"
	"github.com/medrent/backend/internal/domain/catalog"
	"github.com/medrent/backend/internal/domain/finance"
	"github.com/medrent/backend/internal/domain/inventory"
	"github.com/medrent/backend/internal/domain/partner"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/domain/trade"
	"github.com/medrent/backend/internal/domain/workflow"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// expiryNoticeLead is how long before the end of a rental its expiry notice falls due
const expiryNoticeLead = 30 * 24 * time.Hour

// RentalService handles rentals and everything created alongside them
type RentalService struct {
	repos   uow.Repositories
	txScope uow.TransactionScope
	logger  *zap.Logger
	now     func() time.Time
}

// NewRentalService creates a new RentalService
func NewRentalService(repos uow.Repositories, txScope uow.TransactionScope, logger *zap.Logger) *RentalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RentalService{repos: repos, txScope: txScope, logger: logger, now: time.Now}
}

// rentalDraft accumulates what a create writes so the response can be built
// after commit
type rentalDraft struct {
	req      CreateRentalRequest
	actorID  uuid.UUID
	patient  *partner.Patient
	bonds    []finance.CNAMBondRental
	periodPs []*finance.Payment
	deposit  *finance.Payment
	legacy   *finance.Payment
	rentals  []*trade.Rental
	periods  []trade.RentalPeriod
	extras   []trade.RentalAccessory
}

// Create validates the request and writes rentals, payments, bonds, periods,
// accessories and notifications in one transaction
func (s *RentalService) Create(ctx context.Context, actorID uuid.UUID, req CreateRentalRequest) (*CreateRentalResult, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}
	spans := make([]trade.PeriodSpan, len(req.PaymentPeriods))
	for i, p := range req.PaymentPeriods {
		spans[i] = p.Span()
	}
	if issues := trade.ValidatePeriods(spans, req.RentalStart(), req.RentalEnd()); trade.HasBlockingIssues(issues) {
		return nil, periodsError(issues)
	}

	d := &rentalDraft{req: req, actorID: actorID}
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		patient, err := repos.Patients().FindByID(ctx, req.ClientID)
		if err != nil {
			return err
		}
		d.patient = patient

		steps := []func(context.Context, uow.Repositories, *rentalDraft) error{
			s.createBonds,
			s.createPeriodPayments,
			s.createDeposit,
			s.createLegacyPayment,
			s.createRentals,
			s.attachAccessories,
			s.createPeriods,
			s.notify,
			linkToFirstRental,
		}
		for _, step := range steps {
			if err := step(ctx, repos, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("rental created",
		zap.Int("rentals", len(d.rentals)),
		zap.String("patient_id", req.ClientID.String()),
		zap.Int("accessories", len(d.extras)))
	return s.buildResult(d), nil
}

func validateCreate(req CreateRentalRequest) error {
	if req.ClientID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "client_id is required")
	}
	if len(req.Products) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "At least one product is required")
	}
	if start := req.RentalStart(); start == nil || start.IsZero() {
		return shared.NewDomainError("INVALID_INPUT", "A start date is required")
	}
	switch strings.ToLower(strings.TrimSpace(req.ClientType)) {
	case "patient":
	case "societe":
		return shared.NewDomainError("PATIENT_REQUIRED", "Rentals are only available to patients")
	default:
		return shared.NewDomainError("INVALID_CLIENT_TYPE", "client_type must be patient or societe")
	}
	for _, p := range req.Products {
		if !p.IsAccessory() {
			return nil
		}
	}
	return shared.NewDomainError("DEVICE_REQUIRED", "A rental needs at least one medical device")
}

func periodsError(issues []trade.PeriodIssue) error {
	msgs := make([]string, 0, len(issues))
	for _, issue := range issues {
		if issue.Severity == trade.SeverityError {
			msgs = append(msgs, issue.Message)
		}
	}
	return shared.NewDomainError("INVALID_PERIODS", strings.Join(msgs, "; "))
}

func (s *RentalService) createBonds(ctx context.Context, repos uow.Repositories, d *rentalDraft) error {
	for _, in := range d.req.CNAMBonds {
		bond, err := financeapp.BuildBond(d.patient.ID, finance.BondCategoryLocation, in)
		if err != nil {
			return err
		}
		if err := repos.Bonds().Save(ctx, bond); err != nil {
			return err
		}
		d.bonds = append(d.bonds, *bond)
	}
	return nil
}

// newRentalPayment creates a RENTAL payment for the patient with the next code
func newRentalPayment(ctx context.Context, repos uow.Repositories, patientID uuid.UUID, amount decimal.Decimal, method finance.PaymentMethod, status finance.PaymentStatus) (*finance.Payment, error) {
	code, err := repos.Codes().Next(ctx, shared.CodePayment)
	if err != nil {
		return nil, err
	}
	payment, err := finance.NewPayment(code, amount, method, status, finance.PaymentSourceRental)
	if err != nil {
		return nil, err
	}
	payment.PatientID = &patientID
	return payment, nil
}

// methodOrCash parses a payment method, defaulting to CASH when empty
func methodOrCash(raw string) (finance.PaymentMethod, error) {
	if strings.TrimSpace(raw) == "" {
		return finance.PaymentMethodCash, nil
	}
	return finance.ParsePaymentMethod(raw)
}

func (s *RentalService) createPeriodPayments(ctx context.Context, repos uow.Repositories, d *rentalDraft) error {
	for _, p := range d.req.PaymentPeriods {
		method, err := methodOrCash(p.PaymentMethod)
		if err != nil {
			return err
		}
		status := finance.PaymentStatusPending
		if finance.ParseCNAMStatus(p.CNAMStatus) == finance.CNAMStatusApproved {
			status = finance.PaymentStatusPaid
		}
		payment, err := newRentalPayment(ctx, repos, d.patient.ID, p.Amount, method, status)
		if err != nil {
			return err
		}
		if start := parseDate(p.StartDate); !start.IsZero() {
			payment.PaymentDate = start
			if status == finance.PaymentStatusPending {
				payment.DueDate = &start
			}
		}
		payment.IsRentalPayment = true
		payment.IsGapPeriod = p.IsGapPeriod
		payment.GapReason = p.GapReason
		payment.Notes = p.Notes
		payment.CNAMBondNumber = p.CNAMBondNumber
		payment.CNAMBondType = p.CNAMBondType
		if p.CNAMStatus != "" {
			payment.CNAMStatus = string(finance.ParseCNAMStatus(p.CNAMStatus))
		}
		payment.CNAMApprovalDate = p.CNAMApprovalDate
		payment.CNAMStartDate = p.CNAMStartDate
		payment.CNAMEndDate = p.CNAMEndDate
		if err := repos.Payments().Save(ctx, payment); err != nil {
			return err
		}
		d.periodPs = append(d.periodPs, payment)
	}
	return nil
}

func (s *RentalService) createDeposit(ctx context.Context, repos uow.Repositories, d *rentalDraft) error {
	if !d.req.DepositAmount.IsPositive() {
		return nil
	}
	method, err := methodOrCash(d.req.DepositMethod)
	if err != nil {
		return err
	}
	payment, err := newRentalPayment(ctx, repos, d.patient.ID, d.req.DepositAmount, method, finance.PaymentStatusGuarantee)
	if err != nil {
		return err
	}
	payment.IsDepositPayment = true
	payment.IsRentalPayment = true
	payment.Notes = "Dépôt de garantie pour location"
	if start := d.req.RentalStart(); start != nil {
		payment.PaymentDate = *start
	}
	if err := repos.Payments().Save(ctx, payment); err != nil {
		return err
	}
	d.deposit = payment
	return nil
}

func (s *RentalService) createLegacyPayment(ctx context.Context, repos uow.Repositories, d *rentalDraft) error {
	in := d.req.Payment
	if in == nil {
		return nil
	}
	method, err := finance.ParsePaymentMethod(in.Method)
	if err != nil {
		return err
	}
	amount := d.req.TotalPrice
	if in.Amount != nil {
		amount = *in.Amount
	}
	payment, err := newRentalPayment(ctx, repos, d.patient.ID, amount, method, finance.MapPaymentStatus(in.Status))
	if err != nil {
		return err
	}
	payment.IsRentalPayment = true
	payment.ChequeNumber = in.ChequeNumber
	payment.BankName = in.BankName
	payment.ReferenceNumber = in.ReferenceNumber
	payment.CNAMCardNumber = in.CNAMCardNumber
	payment.Notes = in.Notes
	if err := repos.Payments().Save(ctx, payment); err != nil {
		return err
	}
	d.legacy = payment
	return nil
}

// datesFor returns the rental dates of one device
func datesFor(req CreateRentalRequest, deviceID uuid.UUID) (time.Time, *time.Time) {
	start, end := *req.RentalStart(), req.RentalEnd()
	for _, pp := range req.ProductPeriods {
		if pp.ProductID != deviceID {
			continue
		}
		if pp.StartDate != nil && !pp.StartDate.IsZero() {
			start = *pp.StartDate
		}
		if pp.EndDate != nil {
			end = pp.EndDate
		}
	}
	if req.IsGlobalOpenEnded {
		end = nil
	}
	return start, end
}

func (s *RentalService) createRentals(ctx context.Context, repos uow.Repositories, d *rentalDraft) error {
	var paymentID *uuid.UUID
	switch {
	case d.legacy != nil:
		paymentID = &d.legacy.ID
	case len(d.periodPs) > 0:
		paymentID = &d.periodPs[0].ID
	}

	for _, item := range d.req.Products {
		if item.IsAccessory() {
			continue
		}
		device, err := repos.Devices().FindByID(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if err := device.EnsureAvailable(); err != nil {
			return err
		}
		busy, err := repos.Rentals().HasActiveRentalForDevice(ctx, device.ID)
		if err != nil {
			return err
		}
		if busy {
			return shared.NewDomainError("DEVICE_ALREADY_RENTED", "Device "+device.Name+" is already in an active rental")
		}

		code, err := repos.Codes().Next(ctx, shared.CodeRental)
		if err != nil {
			return err
		}
		start, end := datesFor(d.req, device.ID)
		rental, err := trade.NewRental(code, device.ID, d.patient.ID, start, end, d.actorID)
		if err != nil {
			return err
		}
		rental.Notes = d.req.Notes
		rental.PaymentID = paymentID
		if err := repos.Rentals().Save(ctx, rental); err != nil {
			return err
		}

		cfg := &trade.RentalConfiguration{
			BaseEntity:         shared.NewBaseEntity(),
			RentalID:           rental.ID,
			IsGlobalOpenEnded:  d.req.IsGlobalOpenEnded,
			UrgentRental:       d.req.UrgentRental,
			CNAMEligible:       d.req.CNAMEligible,
			TotalPaymentAmount: d.req.TotalPaymentAmount,
			DepositAmount:      d.req.DepositAmount,
			DepositMethod:      strings.ToUpper(d.req.DepositMethod),
			Notes:              d.req.Notes,
		}
		if err := repos.Rentals().SaveConfiguration(ctx, cfg); err != nil {
			return err
		}
		rental.Configuration = cfg

		gaps, err := saveGaps(ctx, repos, rental.ID, trade.GapTypeIdentified, d.req.IdentifiedGaps)
		if err != nil {
			return err
		}
		paymentGaps, err := saveGaps(ctx, repos, rental.ID, trade.GapTypePayment, d.req.PaymentGaps)
		if err != nil {
			return err
		}
		rental.Gaps = append(gaps, paymentGaps...)

		device.AssignToPatient(&d.patient.ID)
		if device.Status == catalog.DeviceStatusReserved {
			if err := device.SetStatus(catalog.DeviceStatusActive); err != nil {
				return err
			}
		}
		if err := repos.Devices().Save(ctx, device); err != nil {
			return err
		}

		entry := partner.NewPatientHistory(d.patient.ID, d.actorID, partner.HistoryRental, rental.ID, "rental", shared.JSONMap{
			"rental_code":  rental.RentalCode,
			"device_name":  device.Name,
			"device_code":  device.DeviceCode,
			"start_date":   rental.StartDate,
			"open_ended":   rental.IsOpenEnded(),
			"urgent":       d.req.UrgentRental,
			"rental_price": item.RentalPrice.String(),
		})
		if err := repos.PatientHistory().Save(ctx, entry); err != nil {
			return err
		}
		d.rentals = append(d.rentals, rental)
	}
	return nil
}

// saveGaps stores the gaps whose dates parse; the others are skipped
func saveGaps(ctx context.Context, repos uow.Repositories, rentalID uuid.UUID, gapType trade.GapType, inputs []GapInput) ([]trade.RentalGap, error) {
	out := make([]trade.RentalGap, 0, len(inputs))
	for _, in := range inputs {
		start, end := parseDate(in.StartDate), parseDate(in.EndDate)
		if start.IsZero() || end.IsZero() || end.Before(start) {
			continue
		}
		gap := trade.RentalGap{
			BaseEntity:  shared.NewBaseEntity(),
			RentalID:    rentalID,
			GapType:     gapType,
			StartDate:   start,
			EndDate:     end,
			Reason:      in.Reason,
			Amount:      in.Amount,
			Description: in.Description,
		}
		if err := repos.Rentals().SaveGap(ctx, &gap); err != nil {
			return nil, err
		}
		out = append(out, gap)
	}
	return out, nil
}

// attachAccessories takes each accessory from the single stock row holding
// the most units and marks what is left on it FOR_RENT
func (s *RentalService) attachAccessories(ctx context.Context, repos uow.Repositories, d *rentalDraft) error {
	first := d.rentals[0]
	for _, item := range d.req.Products {
		if !item.IsAccessory() {
			continue
		}
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		if _, err := repos.Products().FindByID(ctx, item.ProductID); err != nil {
			return err
		}
		rows, err := repos.Stocks().FindAvailableByProduct(ctx, item.ProductID)
		if err != nil {
			return err
		}
		row, err := inventory.PickLargestRow(qty, rentable(rows))
		if err != nil {
			return shared.NewDomainError("INSUFFICIENT_STOCK", fmt.Sprintf("Not enough stock to rent %d unit(s) of accessory %s", qty, item.ProductID))
		}
		if err := row.Decrease(qty); err != nil {
			return err
		}
		holder, err := inventory.Relabel(ctx, repos.Stocks(), row, inventory.StockStatusForRent)
		if err != nil {
			return err
		}

		accessory, err := trade.NewRentalAccessory(first.ID, item.ProductID, qty, item.RentalPrice)
		if err != nil {
			return err
		}
		accessory.StockID = &holder.ID
		if err := repos.Rentals().SaveAccessory(ctx, accessory); err != nil {
			return err
		}
		d.extras = append(d.extras, *accessory)
	}
	first.Accessories = d.extras
	return nil
}

// rentable keeps the rows whose units can leave the shelf
func rentable(rows []inventory.Stock) []inventory.Stock {
	out := make([]inventory.Stock, 0, len(rows))
	for _, r := range rows {
		if r.Status == inventory.StockStatusForSale || r.Status == inventory.StockStatusForRent {
			out = append(out, r)
		}
	}
	return out
}

func (s *RentalService) createPeriods(ctx context.Context, repos uow.Repositories, d *rentalDraft) error {
	first := d.rentals[0]
	bondsByNumber := make(map[string]uuid.UUID, len(d.bonds))
	for _, b := range d.bonds {
		if b.BondNumber != "" {
			bondsByNumber[b.BondNumber] = b.ID
		}
	}

	for i, in := range d.req.PaymentPeriods {
		period, err := trade.NewRentalPeriod(first.ID, parseDate(in.StartDate), parseDate(in.EndDate), in.Amount, strings.ToUpper(in.PaymentMethod))
		if err != nil {
			return err
		}
		period.IsGapPeriod = in.IsGapPeriod
		period.GapReason = in.GapReason
		period.Notes = in.Notes
		if i < len(d.periodPs) {
			period.PaymentID = &d.periodPs[i].ID
		}
		if id, ok := bondsByNumber[in.CNAMBondNumber]; ok && in.CNAMBondNumber != "" {
			bondID := id
			period.CNAMBondID = &bondID
		}
		if err := repos.RentalPeriods().Save(ctx, period); err != nil {
			return err
		}
		d.periods = append(d.periods, *period)
	}
	first.Periods = d.periods
	return nil
}

// notify writes the expiry and payment-due notices for the patient's
// assigned user, or the creator when nobody is assigned
func (s *RentalService) notify(ctx context.Context, repos uow.Repositories, d *rentalDraft) error {
	recipient := d.actorID
	if d.patient.AssignedToID != nil {
		recipient = *d.patient.AssignedToID
	}
	patientID := d.patient.ID

	for _, rental := range d.rentals {
		if rental.EndDate == nil {
			continue
		}
		due := rental.EndDate.Add(-expiryNoticeLead)
		n, err := workflow.NewNotification(recipient, workflow.NotificationRentalExpiring,
			"Expiration de location",
			fmt.Sprintf("La location %s de %s se termine le %s", rental.RentalCode, d.patient.FullName(), rental.EndDate.Format("02/01/2006")),
			&due)
		if err != nil {
			return err
		}
		if err := repos.Notifications().Save(ctx, n.About(rental.ID, "rental").ForPatient(&patientID)); err != nil {
			return err
		}
	}

	for i, in := range d.req.PaymentPeriods {
		if i >= len(d.periodPs) {
			break
		}
		payment := d.periodPs[i]
		if payment.Status != finance.PaymentStatusPending || payment.Method == finance.PaymentMethodCNAM {
			continue
		}
		n, err := workflow.NewNotification(recipient, workflow.NotificationPaymentDue,
			"Paiement de location à venir",
			fmt.Sprintf("Paiement de %s DT attendu de %s pour la période du %s", payment.Amount.StringFixed(2), d.patient.FullName(), in.StartDate),
			payment.DueDate)
		if err != nil {
			return err
		}
		n.Metadata = shared.JSONMap{
			"payment_code":        payment.PaymentCode,
			workflow.MetaReminder: workflow.ReminderUpcoming,
		}
		if err := repos.Notifications().Save(ctx, n.About(payment.ID, "payment").ForPatient(&patientID)); err != nil {
			return err
		}
	}
	return nil
}

// linkToFirstRental points the bonds and payments at the first rental
func linkToFirstRental(ctx context.Context, repos uow.Repositories, d *rentalDraft) error {
	rentalID := d.rentals[0].ID
	for i := range d.bonds {
		d.bonds[i].RentalID = &rentalID
		if err := repos.Bonds().Save(ctx, &d.bonds[i]); err != nil {
			return err
		}
	}
	for _, p := range d.payments() {
		p.RentalID = &rentalID
		if err := repos.Payments().Save(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (d *rentalDraft) payments() []*finance.Payment {
	out := append([]*finance.Payment{}, d.periodPs...)
	if d.deposit != nil {
		out = append(out, d.deposit)
	}
	if d.legacy != nil {
		out = append(out, d.legacy)
	}
	return out
}

func (s *RentalService) buildResult(d *rentalDraft) *CreateRentalResult {
	now := s.now()
	res := &CreateRentalResult{
		Rentals:     make([]RentalResponse, len(d.rentals)),
		Accessories: make([]RentalAccessoryResponse, len(d.extras)),
		Payments:    make([]financeapp.PaymentResponse, len(d.periodPs)),
		Bonds:       financeapp.ToBondResponses(d.bonds, now),
		Periods:     ToRentalPeriodResponses(d.periods, now),
	}
	for i, r := range d.rentals {
		res.Rentals[i] = ToRentalResponse(r, now)
	}
	for i := range d.extras {
		res.Accessories[i] = toAccessoryResponse(&d.extras[i])
	}
	for i, p := range d.periodPs {
		res.Payments[i] = financeapp.ToPaymentResponse(p)
	}
	if d.deposit != nil {
		dep := financeapp.ToPaymentResponse(d.deposit)
		res.Deposit = &dep
	}
	if d.legacy != nil {
		leg := financeapp.ToPaymentResponse(d.legacy)
		res.LegacyPayment = &leg
	}

	total := d.req.TotalPaymentAmount
	if total.IsZero() {
		total = d.req.TotalPrice
	}
	res.Summary = RentalSummary{
		TotalRentals:        len(d.rentals),
		TotalAccessories:    len(d.extras),
		TotalProducts:       len(d.req.Products),
		TotalPaymentPeriods: len(d.periodPs),
		TotalCNAMBonds:      len(d.bonds),
		TotalRentalPeriods:  len(d.periods),
		HasDeposit:          d.deposit != nil,
		HasStockReduction:   len(d.extras) > 0,
		TotalAmount:         total,
		CNAMEligible:        d.req.CNAMEligible,
		UrgentRental:        d.req.UrgentRental,
		IsOpenEnded:         d.req.IsGlobalOpenEnded || d.req.RentalEnd() == nil,
	}
	return res
}

// ValidatePeriods reports issues, uncovered gaps and totals for a set of
// periods without writing anything
func (s *RentalService) ValidatePeriods(req ValidatePeriodsRequest) ValidatePeriodsResult {
	spans := make([]trade.PeriodSpan, len(req.Periods))
	for i, p := range req.Periods {
		spans[i] = p.Span()
	}
	issues := trade.ValidatePeriods(spans, req.RentalStartDate, req.RentalEndDate)
	res := ValidatePeriodsResult{
		IsValid:    !trade.HasBlockingIssues(issues),
		Errors:     make([]trade.PeriodIssue, 0),
		Warnings:   make([]trade.PeriodIssue, 0),
		Gaps:       make([]trade.DetectedGap, 0),
		Financials: trade.CalculateFinancials(spans),
	}
	for _, issue := range issues {
		if issue.Severity == trade.SeverityError {
			res.Errors = append(res.Errors, issue)
		} else {
			res.Warnings = append(res.Warnings, issue)
		}
	}
	if req.RentalStartDate != nil && res.IsValid {
		res.Gaps = trade.DetectGaps(spans, *req.RentalStartDate, req.RentalEndDate, req.DailyRate, s.now())
	}
	return res
}

// List retrieves rentals with their derived status and money summary
func (s *RentalService) List(ctx context.Context, filter RentalListFilter) ([]RentalResponse, int64, error) {
	domainFilter := shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search).
		With("status", filter.Status).
		With("patient_id", filter.PatientID).
		With("medical_device_id", filter.MedicalDeviceID)
	if filter.OrderBy == "" {
		domainFilter.OrderBy = ""
	}

	rentals, err := s.repos.Rentals().FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repos.Rentals().Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	out := make([]RentalResponse, len(rentals))
	for i := range rentals {
		payments, err := s.repos.Payments().FindByRental(ctx, rentals[i].ID)
		if err != nil {
			return nil, 0, err
		}
		out[i] = ToRentalResponse(&rentals[i], now)
		out[i].Financial = summarize(&rentals[i], payments)
	}
	return out, total, nil
}

// summarize totals the periods and the payments of a rental
func summarize(r *trade.Rental, payments []finance.Payment) *RentalFinancialSummary {
	sum := &RentalFinancialSummary{
		TotalAmount:   decimal.Zero,
		PaidAmount:    decimal.Zero,
		PendingAmount: decimal.Zero,
		DepositAmount: decimal.Zero,
	}
	for _, p := range r.Periods {
		sum.TotalAmount = sum.TotalAmount.Add(p.Amount)
	}
	for _, p := range payments {
		switch {
		case p.IsDepositPayment:
			sum.DepositAmount = sum.DepositAmount.Add(p.Amount)
		case p.Status == finance.PaymentStatusPaid:
			sum.PaidAmount = sum.PaidAmount.Add(p.Amount)
		case p.Status == finance.PaymentStatusPending || p.Status == finance.PaymentStatusPartial:
			sum.PendingAmount = sum.PendingAmount.Add(p.Amount)
		}
	}
	return sum
}

// GetByID returns a rental with payments, bonds, uncovered gaps and totals
func (s *RentalService) GetByID(ctx context.Context, id uuid.UUID) (*RentalDetail, error) {
	rental, err := s.repos.Rentals().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.repos.Payments().FindByRental(ctx, id)
	if err != nil {
		return nil, err
	}
	bonds, err := s.repos.Bonds().FindByRental(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	spans := make([]trade.PeriodSpan, len(rental.Periods))
	for i := range rental.Periods {
		spans[i] = rental.Periods[i].AsSpan()
	}
	device, err := s.repos.Devices().FindByID(ctx, rental.MedicalDeviceID)
	dailyRate := decimal.Zero
	switch {
	case err == nil:
		dailyRate = device.RentalPrice.Div(decimal.NewFromInt(30)).Round(2)
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	detail := &RentalDetail{
		RentalResponse: ToRentalResponse(rental, now),
		Payments:       financeapp.ToPaymentResponses(payments),
		Bonds:          financeapp.ToBondResponses(bonds, now),
		DetectedGaps:   trade.DetectGaps(spans, rental.StartDate, rental.EndDate, dailyRate, now),
		Financials:     trade.CalculateFinancials(spans),
	}
	detail.Financial = summarize(rental, payments)
	return detail, nil
}

// Update changes status, end date or notes. Ending a rental releases the
// device from the patient.
func (s *RentalService) Update(ctx context.Context, id uuid.UUID, req UpdateRentalRequest) (*RentalResponse, error) {
	var rental *trade.Rental
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		rental, err = repos.Rentals().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := rental.Update(trade.RentalStatus(req.Status), req.EndDate, req.Notes); err != nil {
			return err
		}
		if err := repos.Rentals().Save(ctx, rental); err != nil {
			return err
		}
		if rental.Status == trade.RentalStatusCompleted || rental.Status == trade.RentalStatusCancelled {
			return releaseDevice(ctx, repos, rental)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	response := ToRentalResponse(rental, s.now())
	return &response, nil
}

// releaseDevice clears the device's patient when it is still the rental's
func releaseDevice(ctx context.Context, repos uow.Repositories, rental *trade.Rental) error {
	device, err := repos.Devices().FindByID(ctx, rental.MedicalDeviceID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if device.PatientID == nil || *device.PatientID != rental.PatientID {
		return nil
	}
	device.AssignToPatient(nil)
	return repos.Devices().Save(ctx, device)
}

// Delete removes a rental with its child rows, puts accessories back in
// stock, releases the device and unlinks bonds and payments
func (s *RentalService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		rental, err := repos.Rentals().FindByID(ctx, id)
		if err != nil {
			return err
		}
		device, err := repos.Devices().FindByID(ctx, rental.MedicalDeviceID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		for i := range rental.Accessories {
			if err := restoreAccessory(ctx, repos, &rental.Accessories[i], device); err != nil {
				return err
			}
		}
		if err := releaseDevice(ctx, repos, rental); err != nil {
			return err
		}

		bonds, err := repos.Bonds().FindByRental(ctx, id)
		if err != nil {
			return err
		}
		for i := range bonds {
			bonds[i].RentalID = nil
			if err := repos.Bonds().Save(ctx, &bonds[i]); err != nil {
				return err
			}
		}
		payments, err := repos.Payments().FindByRental(ctx, id)
		if err != nil {
			return err
		}
		for i := range payments {
			payments[i].RentalID = nil
			if err := repos.Payments().Save(ctx, &payments[i]); err != nil {
				return err
			}
		}
		return repos.Rentals().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("rental deleted", zap.String("rental_id", id.String()))
	return nil
}

// restoreAccessory adds the accessory back to the row it was taken from, or
// to the FOR_SALE row at the device's location when that row is gone
func restoreAccessory(ctx context.Context, repos uow.Repositories, a *trade.RentalAccessory, device *catalog.MedicalDevice) error {
	if a.StockID != nil {
		row, err := repos.Stocks().FindByID(ctx, *a.StockID)
		switch {
		case err == nil:
			if err := row.Increase(a.Quantity); err != nil {
				return err
			}
			return repos.Stocks().Save(ctx, row)
		case !errors.Is(err, shared.ErrNotFound):
			return err
		}
	}
	if device == nil || device.StockLocationID == nil {
		return shared.NewDomainError("NO_STOCK_LOCATION", "Cannot return accessory stock: the device has no stock location")
	}
	_, err := inventory.ReceiveStock(ctx, repos.Stocks(), *device.StockLocationID, a.ProductID, a.Quantity, inventory.StockStatusForSale)
	return err
}
