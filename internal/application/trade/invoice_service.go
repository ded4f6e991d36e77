package trade

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/application/uow"
	"github.com/medrent/backend/internal/domain/finance"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/domain/trade"
	infra "github.com/medrent/backend/internal/infrastructure/printing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceDocument is a printed sale invoice
type InvoiceDocument struct {
	Number string
	HTML   string
	PDF    []byte
	Pages  int
}

// Filename is the download name of the PDF
func (d *InvoiceDocument) Filename() string {
	return d.Number + ".pdf"
}

// InvoiceService prints sale invoices
type InvoiceService struct {
	repos    uow.Repositories
	renderer infra.PDFRenderer
	seller   infra.Letterhead
	logger   *zap.Logger
}

// NewInvoiceService creates an InvoiceService. seller is printed as the
// invoice letterhead.
func NewInvoiceService(repos uow.Repositories, renderer infra.PDFRenderer, seller infra.Letterhead, logger *zap.Logger) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{repos: repos, renderer: renderer, seller: seller, logger: logger}
}

// HTML renders the invoice of a sale without printing it
func (s *InvoiceService) HTML(ctx context.Context, saleID uuid.UUID) (*InvoiceDocument, error) {
	inv, err := s.build(ctx, saleID)
	if err != nil {
		return nil, err
	}
	html, err := infra.RenderInvoiceHTML(inv)
	if err != nil {
		return nil, err
	}
	return &InvoiceDocument{Number: inv.Number, HTML: html}, nil
}

// PDF renders the invoice of a sale and prints it to PDF
func (s *InvoiceService) PDF(ctx context.Context, saleID uuid.UUID) (*InvoiceDocument, error) {
	doc, err := s.HTML(ctx, saleID)
	if err != nil {
		return nil, err
	}
	result, err := s.renderer.Render(ctx, &infra.RenderRequest{
		HTML:       doc.HTML,
		Title:      doc.Number,
		Margins:    infra.DefaultMargins(),
		FooterHTML: infra.InvoiceFooter(doc.Number),
	})
	if err != nil {
		s.logger.Error("Invoice rendering failed",
			zap.String("sale_id", saleID.String()),
			zap.String("invoice", doc.Number),
			zap.Error(err),
		)
		var renderErr *infra.RenderError
		if errors.As(err, &renderErr) && renderErr.Code == infra.ErrCodeRenderTimeout {
			return nil, shared.NewDomainError("PDF_RENDER_TIMEOUT", "Invoice printing timed out")
		}
		return nil, shared.NewDomainError("PDF_RENDER_FAILED", "Invoice could not be printed")
	}
	doc.PDF = result.PDFData
	doc.Pages = result.PageCount
	return doc, nil
}

func (s *InvoiceService) build(ctx context.Context, saleID uuid.UUID) (*infra.Invoice, error) {
	sale, err := s.repos.Sales().FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	payments, err := s.repos.Payments().FindBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	client, err := s.client(ctx, sale)
	if err != nil {
		return nil, err
	}

	number := sale.InvoiceNumber
	if number == "" {
		number = sale.SaleCode
	}
	inv := &infra.Invoice{
		Seller:   s.seller,
		Number:   number,
		SaleCode: sale.SaleCode,
		Date:     sale.SaleDate,
		Status:   string(sale.Status),
		Client:   client,
		Total:    sale.TotalAmount,
		Discount: sale.Discount,
		Final:    sale.FinalAmount,
		Paid:     decimal.Zero,
		Notes:    sale.Notes,
	}
	for i := range sale.Items {
		line, err := s.line(ctx, &sale.Items[i])
		if err != nil {
			return nil, err
		}
		inv.Lines = append(inv.Lines, line)
	}
	for _, p := range payments {
		if p.Status == finance.PaymentStatusCancelled {
			continue
		}
		if p.Status == finance.PaymentStatusPaid || p.Status == finance.PaymentStatusPartial {
			inv.Paid = inv.Paid.Add(p.Amount)
		}
		inv.Payments = append(inv.Payments, infra.InvoicePayment{
			Date:      p.PaymentDate,
			Method:    string(p.Method),
			Reference: paymentReference(&p),
			Status:    string(p.Status),
			Amount:    p.Amount,
		})
	}
	inv.Balance = decimal.Max(inv.Final.Sub(inv.Paid), decimal.Zero)
	return inv, nil
}

func (s *InvoiceService) client(ctx context.Context, sale *trade.Sale) (infra.InvoiceParty, error) {
	if sale.PatientID != nil {
		p, err := s.repos.Patients().FindByID(ctx, *sale.PatientID)
		if err != nil {
			return infra.InvoiceParty{}, err
		}
		address := strings.TrimSpace(strings.Join(nonEmpty(p.DetailedAddress, p.Delegation, p.Governorate), ", "))
		return infra.InvoiceParty{
			Name:    p.FullName(),
			Code:    p.PatientCode,
			Address: address,
			Phone:   p.Telephone,
			CNAMID:  p.CNAMID,
		}, nil
	}
	if sale.CompanyID == nil {
		return infra.InvoiceParty{}, shared.NewDomainError("CLIENT_REQUIRED", "A patient or a company is required")
	}
	c, err := s.repos.Companies().FindByID(ctx, *sale.CompanyID)
	if err != nil {
		return infra.InvoiceParty{}, err
	}
	return infra.InvoiceParty{
		Name:    c.CompanyName,
		Code:    c.CompanyCode,
		Address: c.Address,
		Phone:   c.Telephone,
		TaxID:   c.TaxID,
	}, nil
}

// line names an item after its product or device. Items whose catalog entry
// is gone keep their recorded description.
func (s *InvoiceService) line(ctx context.Context, item *trade.SaleItem) (infra.InvoiceLine, error) {
	out := infra.InvoiceLine{
		Description:  item.Description,
		SerialNumber: item.SerialNumber,
		Quantity:     item.Quantity,
		UnitPrice:    item.UnitPrice,
		Discount:     item.Discount,
		Total:        item.ItemTotal,
	}
	var name, serial string
	switch {
	case item.ProductID != nil:
		product, err := s.repos.Products().FindByID(ctx, *item.ProductID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return out, err
		}
		if product != nil {
			name = product.Name
		}
	case item.MedicalDeviceID != nil:
		device, err := s.repos.Devices().FindByID(ctx, *item.MedicalDeviceID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return out, err
		}
		if device != nil {
			name, serial = device.Name, device.SerialNumber
		}
	}
	if name != "" {
		if out.Description != "" && out.Description != name {
			name += " - " + out.Description
		}
		out.Description = name
	}
	if out.SerialNumber == "" {
		out.SerialNumber = serial
	}
	return out, nil
}

func paymentReference(p *finance.Payment) string {
	for _, ref := range []string{p.ChequeNumber, p.ReferenceNumber, p.CNAMBondNumber, p.PaymentCode} {
		if ref != "" {
			return ref
		}
	}
	return ""
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
