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
	"go.uber.org/zap"
)

// SoldLocationName is the stock location sold devices are moved to
const SoldLocationName = "Vendu"

// SaleService handles sales, their stock movements and payments
type SaleService struct {
	repos     uow.Repositories
	txScope   uow.TransactionScope
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewSaleService creates a new SaleService
func NewSaleService(repos uow.Repositories, txScope uow.TransactionScope, publisher shared.EventPublisher, logger *zap.Logger) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{repos: repos, txScope: txScope, publisher: publisher, logger: logger, now: time.Now}
}

// Create records a sale: items, stock deduction, sold devices, CNAM
// dossiers and bonds, patient history and payments, in one transaction
func (s *SaleService) Create(ctx context.Context, actorID uuid.UUID, req CreateSaleRequest) (*SaleDetail, error) {
	if req.PatientID == nil && req.CompanyID == nil {
		return nil, shared.NewDomainError("CLIENT_REQUIRED", "A patient or a company is required")
	}
	for i, item := range req.Items {
		if (item.ProductID == nil) == (item.MedicalDeviceID == nil) {
			return nil, shared.NewDomainError("INVALID_ITEM", fmt.Sprintf("Item %d: exactly one of product_id or medical_device_id is required", i+1))
		}
	}

	var (
		sale     *trade.Sale
		payments []finance.Payment
		dossiers []finance.CNAMDossier
		bonds    []finance.CNAMBondRental
	)
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		if req.PatientID != nil {
			if _, err := repos.Patients().FindByID(ctx, *req.PatientID); err != nil {
				return err
			}
		}
		if req.CompanyID != nil {
			if _, err := repos.Companies().FindByID(ctx, *req.CompanyID); err != nil {
				return err
			}
		}

		var err error
		sale, err = s.newSale(ctx, repos, actorID, req)
		if err != nil {
			return err
		}
		if err := repos.Sales().Save(ctx, sale); err != nil {
			return err
		}
		if err := s.saveItems(ctx, repos, sale, req.Items); err != nil {
			return err
		}
		if req.PatientID != nil {
			if dossiers, err = openDossiers(ctx, repos, sale, actorID, req.Payments); err != nil {
				return err
			}
			if bonds, err = saleBonds(ctx, repos, sale, req.CNAMBonds); err != nil {
				return err
			}
			entry := partner.NewPatientHistory(*req.PatientID, actorID, partner.HistorySale, sale.ID, "sale", shared.JSONMap{
				"sale_code":      sale.SaleCode,
				"invoice_number": sale.InvoiceNumber,
				"final_amount":   sale.FinalAmount.String(),
				"item_count":     len(req.Items),
				"notes":          sale.Notes,
			})
			if err := repos.PatientHistory().Save(ctx, entry); err != nil {
				return err
			}
		}
		payments, err = salePayments(ctx, repos, sale, req.Payments)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sale created",
		zap.String("sale_code", sale.SaleCode),
		zap.String("invoice_number", sale.InvoiceNumber),
		zap.Int("items", len(sale.Items)))
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, sale.GetDomainEvents()...); err != nil {
			s.logger.Warn("failed to publish sale events", zap.String("sale_code", sale.SaleCode), zap.Error(err))
		}
	}
	sale.ClearDomainEvents()

	return s.detail(sale, payments, dossiers, bonds), nil
}

func (s *SaleService) newSale(ctx context.Context, repos uow.Repositories, actorID uuid.UUID, req CreateSaleRequest) (*trade.Sale, error) {
	saleDate := s.now()
	if req.SaleDate != nil && !req.SaleDate.IsZero() {
		saleDate = *req.SaleDate
	}
	code, err := repos.Codes().Next(ctx, shared.CodeSale)
	if err != nil {
		return nil, err
	}
	invoice, err := repos.Codes().NextInvoiceNumber(ctx, saleDate)
	if err != nil {
		return nil, err
	}
	sale, err := trade.NewSale(code, invoice, req.PatientID, req.CompanyID, actorID, saleDate)
	if err != nil {
		return nil, err
	}

	total := req.TotalAmount
	if total.IsZero() {
		for _, item := range req.Items {
			total = total.Add(item.ItemTotal)
		}
	}
	if err := sale.SetAmounts(total, req.Discount); err != nil {
		return nil, err
	}
	if req.Status != "" {
		if err := sale.SetStatus(trade.SaleStatus(req.Status)); err != nil {
			return nil, err
		}
	}
	sale.Notes = req.Notes
	sale.AssignedToID = req.AssignedToID
	return sale, nil
}

func (s *SaleService) saveItems(ctx context.Context, repos uow.Repositories, sale *trade.Sale, inputs []SaleItemInput) error {
	var sold *inventory.StockLocation
	for _, in := range inputs {
		item, err := trade.NewSaleItem(sale.ID, in.ProductID, in.MedicalDeviceID, in.Quantity, in.UnitPrice, in.Discount, in.ItemTotal)
		if err != nil {
			return err
		}
		item.SerialNumber = in.SerialNumber
		item.Warranty = in.Warranty
		item.Description = in.Description

		if in.ProductID != nil {
			source, err := deductFIFO(ctx, repos, *in.ProductID, in.Quantity)
			if err != nil {
				return err
			}
			item.SourceLocationID = &source
		}
		if in.MedicalDeviceID != nil {
			if sold == nil {
				if sold, err = soldLocation(ctx, repos); err != nil {
					return err
				}
			}
			if err := sellDevice(ctx, repos, *in.MedicalDeviceID, sold.ID, sale); err != nil {
				return err
			}
		}

		if err := repos.Sales().SaveItem(ctx, item); err != nil {
			return err
		}
		if in.Configuration != nil {
			cfg := newSaleConfiguration(sale.ID, item.ID, in.Configuration)
			if err := repos.Sales().SaveConfiguration(ctx, cfg); err != nil {
				return err
			}
			item.Configuration = cfg
		}
		sale.Items = append(sale.Items, *item)
	}
	return nil
}

// deductFIFO takes quantity units of a product from its stock rows, oldest
// first, and returns the location of the first row touched
func deductFIFO(ctx context.Context, repos uow.Repositories, productID uuid.UUID, quantity int) (uuid.UUID, error) {
	rows, err := repos.Stocks().FindAvailableByProduct(ctx, productID)
	if err != nil {
		return uuid.Nil, err
	}
	plan, err := inventory.PlanFIFODeduction(quantity, rows)
	if err != nil {
		if errors.Is(err, shared.ErrInsufficientStock) {
			available := 0
			for _, r := range rows {
				available += r.Quantity
			}
			return uuid.Nil, shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("Stock insuffisant pour le produit. Disponible: %d, Demandé: %d", available, quantity))
		}
		return uuid.Nil, err
	}
	byID := make(map[uuid.UUID]*inventory.Stock, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}
	for _, step := range plan {
		row := byID[step.StockID]
		if err := row.Decrease(step.Quantity); err != nil {
			return uuid.Nil, err
		}
		if err := repos.Stocks().Save(ctx, row); err != nil {
			return uuid.Nil, err
		}
	}
	return plan[0].LocationID, nil
}

// soldLocation returns the location sold devices are parked at, creating it
// on first use
func soldLocation(ctx context.Context, repos uow.Repositories) (*inventory.StockLocation, error) {
	loc, err := repos.Locations().FindByName(ctx, SoldLocationName)
	if err == nil {
		return loc, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	loc, err = inventory.NewStockLocation(SoldLocationName, "Appareils vendus", nil)
	if err != nil {
		return nil, err
	}
	if err := repos.Locations().Save(ctx, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

func sellDevice(ctx context.Context, repos uow.Repositories, deviceID, soldLocationID uuid.UUID, sale *trade.Sale) error {
	device, err := repos.Devices().FindByID(ctx, deviceID)
	if err != nil {
		return err
	}
	if err := device.EnsureAvailable(); err != nil {
		return err
	}
	device.MarkSold(soldLocationID, sale.PatientID, sale.CompanyID)
	return repos.Devices().Save(ctx, device)
}

func newSaleConfiguration(saleID, itemID uuid.UUID, in *SaleConfigurationInput) *trade.SaleConfiguration {
	params := shared.JSONMap{}
	for k, v := range in.AdditionalParams {
		params[k] = v
	}
	return &trade.SaleConfiguration{
		BaseEntity:            shared.NewBaseEntity(),
		SaleItemID:            itemID,
		SaleID:                saleID,
		Pression:              in.Pression,
		PressionRampe:         in.PressionRampe,
		DureeRampe:            in.DureeRampe,
		EPR:                   in.EPR,
		IPAP:                  in.IPAP,
		EPAP:                  in.EPAP,
		AID:                   in.AID,
		Mode:                  in.Mode,
		FrequenceRespiratoire: in.FrequenceRespiratoire,
		VolumeCourant:         in.VolumeCourant,
		Debit:                 in.Debit,
		AdditionalParams:      params,
	}
}

func isCNAMPayment(p SalePaymentInput) bool {
	return strings.EqualFold(strings.TrimSpace(p.Type), "cnam")
}

// openDossiers opens one CNAM dossier per CNAM payment carrying CNAM details
func openDossiers(ctx context.Context, repos uow.Repositories, sale *trade.Sale, actorID uuid.UUID, inputs []SalePaymentInput) ([]finance.CNAMDossier, error) {
	out := make([]finance.CNAMDossier, 0)
	for _, p := range inputs {
		if !isCNAMPayment(p) || p.CNAMInfo == nil {
			continue
		}
		info := p.CNAMInfo
		number, err := repos.Codes().Next(ctx, shared.CodeCNAMDossier)
		if err != nil {
			return nil, err
		}
		dossier, err := finance.NewCNAMDossier(number, sale.ID, *sale.PatientID,
			finance.ParseBondType(info.BonType), finance.ParseCNAMStatus(info.Status), info.CurrentStep, actorID)
		if err != nil {
			return nil, err
		}
		dossier.BondAmount = p.Amount
		if info.BonAmount != nil {
			dossier.BondAmount = *info.BonAmount
		}
		dossier.DevicePrice = info.DevicePrice
		dossier.ComplementAmount = info.ComplementAmount
		dossier.Notes = p.Notes
		if dossier.Notes == "" {
			dossier.Notes = info.Notes
		}
		for i := range dossier.StepHistory {
			dossier.StepHistory[i].Notes = "Dossier CNAM créé lors de la vente"
		}
		if err := repos.Dossiers().Save(ctx, dossier); err != nil {
			return nil, err
		}
		out = append(out, *dossier)
	}
	return out, nil
}

func saleBonds(ctx context.Context, repos uow.Repositories, sale *trade.Sale, inputs []financeapp.BondInput) ([]finance.CNAMBondRental, error) {
	out := make([]finance.CNAMBondRental, 0, len(inputs))
	for _, in := range inputs {
		bond, err := financeapp.BuildBond(*sale.PatientID, finance.BondCategoryAchat, in)
		if err != nil {
			return nil, err
		}
		if bond.BondNumber == "" {
			bond.BondNumber = "BON-" + strings.ToUpper(bond.ID.String()[:8])
		}
		bond.SaleID = &sale.ID
		if err := repos.Bonds().Save(ctx, bond); err != nil {
			return nil, err
		}
		out = append(out, *bond)
	}
	return out, nil
}

// salePayments records each payment as PAID with one detail line
func salePayments(ctx context.Context, repos uow.Repositories, sale *trade.Sale, inputs []SalePaymentInput) ([]finance.Payment, error) {
	out := make([]finance.Payment, 0, len(inputs))
	for _, in := range inputs {
		method, err := methodOrCash(in.Type)
		if err != nil {
			return nil, err
		}
		code, err := repos.Codes().Next(ctx, shared.CodePayment)
		if err != nil {
			return nil, err
		}
		payment, err := finance.NewPayment(code, in.Amount, method, finance.PaymentStatusPaid, finance.PaymentSourceSale)
		if err != nil {
			return nil, err
		}
		payment.SaleID = &sale.ID
		payment.PatientID = sale.PatientID
		payment.CompanyID = sale.CompanyID
		payment.Notes = in.Notes
		payment.DueDate = in.DueDate
		if in.PaymentDate != nil {
			payment.PaymentDate = *in.PaymentDate
		}
		switch method {
		case finance.PaymentMethodCheque:
			payment.ChequeNumber = in.ChequeNumber
			payment.BankName = in.Bank
		case finance.PaymentMethodVirement, finance.PaymentMethodMandat, finance.PaymentMethodBankTransfer:
			payment.ReferenceNumber = in.Reference
		case finance.PaymentMethodCNAM:
			payment.CNAMCardNumber = in.DossierNumber
		}
		if err := repos.Payments().Save(ctx, payment); err != nil {
			return nil, err
		}

		detail := financeapp.PaymentDetailInput{
			Method:         string(method),
			Amount:         in.Amount,
			Classification: in.Classification,
			Reference:      detailReference(in),
			Metadata:       detailMetadata(in),
		}
		details, err := financeapp.SaveDetails(ctx, repos.Payments(), payment.ID, []financeapp.PaymentDetailInput{detail})
		if err != nil {
			return nil, err
		}
		payment.Details = details
		out = append(out, *payment)
	}
	return out, nil
}

func detailReference(in SalePaymentInput) string {
	switch {
	case in.ChequeNumber != "":
		return in.ChequeNumber
	case in.Reference != "":
		return in.Reference
	default:
		return in.DossierNumber
	}
}

func detailMetadata(in SalePaymentInput) map[string]interface{} {
	meta := map[string]interface{}{"type": strings.ToLower(in.Type)}
	if in.Bank != "" {
		meta["bank"] = in.Bank
	}
	if in.DossierNumber != "" {
		meta["dossier_number"] = in.DossierNumber
	}
	if info := in.CNAMInfo; info != nil {
		meta["cnam_info"] = map[string]interface{}{
			"bon_type":     info.BonType,
			"current_step": info.CurrentStep,
			"status":       info.Status,
		}
	}
	return meta
}

func (s *SaleService) detail(sale *trade.Sale, payments []finance.Payment, dossiers []finance.CNAMDossier, bonds []finance.CNAMBondRental) *SaleDetail {
	out := &SaleDetail{
		SaleResponse: ToSaleResponse(sale),
		Payments:     financeapp.ToPaymentResponses(payments),
		Dossiers:     make([]financeapp.DossierResponse, len(dossiers)),
		Bonds:        financeapp.ToBondResponses(bonds, s.now()),
	}
	for i := range dossiers {
		out.Dossiers[i] = financeapp.ToDossierResponse(&dossiers[i])
	}
	return out
}

// GetByID returns a sale with items, payments, dossiers and bonds
func (s *SaleService) GetByID(ctx context.Context, id uuid.UUID) (*SaleDetail, error) {
	sale, err := s.repos.Sales().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.repos.Payments().FindBySale(ctx, id)
	if err != nil {
		return nil, err
	}
	dossiers, err := s.repos.Dossiers().FindBySale(ctx, id)
	if err != nil {
		return nil, err
	}
	bonds, err := s.repos.Bonds().FindBySale(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(sale, payments, dossiers, bonds), nil
}

// List retrieves sales with filtering and pagination
func (s *SaleService) List(ctx context.Context, filter SaleListFilter) ([]SaleResponse, int64, error) {
	domainFilter := shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search).
		With("status", filter.Status).
		With("patient_id", filter.PatientID).
		With("company_id", filter.CompanyID)
	if filter.OrderBy == "" {
		domainFilter.OrderBy = ""
	}
	if filter.FromDate != "" {
		if t, err := time.Parse("2006-01-02", filter.FromDate); err == nil {
			domainFilter = domainFilter.With("from_date", t)
		}
	}
	if filter.ToDate != "" {
		if t, err := time.Parse("2006-01-02", filter.ToDate); err == nil {
			domainFilter = domainFilter.With("to_date", t.AddDate(0, 0, 1))
		}
	}

	sales, err := s.repos.Sales().FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repos.Sales().Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToSaleResponses(sales), total, nil
}

// Update changes status, notes or the assigned employee
func (s *SaleService) Update(ctx context.Context, id uuid.UUID, req UpdateSaleRequest) (*SaleResponse, error) {
	sale, err := s.repos.Sales().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != nil {
		if err := sale.SetStatus(trade.SaleStatus(*req.Status)); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		sale.Notes = *req.Notes
	}
	if req.AssignedToID != nil {
		sale.AssignedToID = req.AssignedToID
	}
	sale.MarkModified()
	if err := s.repos.Sales().Save(ctx, sale); err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// Delete removes a sale with everything attached to it and puts the sold
// products and devices back in stock
func (s *SaleService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		sale, err := repos.Sales().FindByID(ctx, id)
		if err != nil {
			return err
		}

		if err := repos.Sales().DeleteConfigurations(ctx, id); err != nil {
			return err
		}
		if err := repos.Sales().DeleteItems(ctx, id); err != nil {
			return err
		}
		payments, err := repos.Payments().FindBySale(ctx, id)
		if err != nil {
			return err
		}
		for _, p := range payments {
			if err := repos.Payments().Delete(ctx, p.ID); err != nil {
				return err
			}
		}
		bonds, err := repos.Bonds().FindBySale(ctx, id)
		if err != nil {
			return err
		}
		for _, b := range bonds {
			if err := repos.Bonds().Delete(ctx, b.ID); err != nil {
				return err
			}
		}
		if err := repos.Dossiers().DeleteBySale(ctx, id); err != nil {
			return err
		}
		if err := repos.PatientHistory().DeleteByRelatedItem(ctx, id); err != nil {
			return err
		}
		if err := repos.Sales().Delete(ctx, id); err != nil {
			return err
		}

		for i := range sale.Items {
			if err := s.restoreItem(ctx, repos, &sale.Items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("sale deleted", zap.String("sale_id", id.String()))
	return nil
}

// restoreItem adds a product line back to the product's FOR_SALE row, or
// returns a sold device to service
func (s *SaleService) restoreItem(ctx context.Context, repos uow.Repositories, item *trade.SaleItem) error {
	if item.MedicalDeviceID != nil {
		device, err := repos.Devices().FindByID(ctx, *item.MedicalDeviceID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := device.SetStatus(catalog.DeviceStatusActive); err != nil {
			return err
		}
		device.AssignToPatient(nil)
		device.CompanyID = nil
		return repos.Devices().Save(ctx, device)
	}
	if item.ProductID == nil {
		return nil
	}

	rows, err := repos.Stocks().FindByProductAndStatus(ctx, *item.ProductID, inventory.StockStatusForSale)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		row := &rows[0]
		if err := row.Increase(item.Quantity); err != nil {
			return err
		}
		return repos.Stocks().Save(ctx, row)
	}
	if item.SourceLocationID == nil {
		s.logger.Warn("sold product has no source location, stock not restored",
			zap.String("sale_item_id", item.ID.String()), zap.Int("quantity", item.Quantity))
		return nil
	}
	_, err = inventory.ReceiveStock(ctx, repos.Stocks(), *item.SourceLocationID, *item.ProductID, item.Quantity, inventory.StockStatusForSale)
	return err
}
