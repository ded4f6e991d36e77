package trade

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/infrastructure/persistence"
	infra "github.com/medrent/backend/internal/infrastructure/printing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPDFRenderer struct {
	mock.Mock
}

func (m *MockPDFRenderer) Render(ctx context.Context, req *infra.RenderRequest) (*infra.RenderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.RenderResult), args.Error(1)
}

func (m *MockPDFRenderer) Close() error {
	return m.Called().Error(0)
}

func (f *tradeFixture) invoiceSale(t *testing.T) *SaleDetail {
	t.Helper()
	detail, err := f.sales.Create(context.Background(), f.user.ID, CreateSaleRequest{
		PatientID: &f.patient.ID,
		Discount:  decimal.NewFromInt(25),
		Items: []SaleItemInput{
			{ProductID: &f.product.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(40), ItemTotal: decimal.NewFromInt(80)},
			{MedicalDeviceID: &f.device.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(1200), ItemTotal: decimal.NewFromInt(1200),
				SerialNumber: "RM-2231"},
		},
		Payments: []SalePaymentInput{{Type: "cash", Amount: decimal.NewFromInt(255)}},
	})
	require.NoError(t, err)
	return detail
}

func TestInvoiceService_HTML(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture(t)
	sale := f.invoiceSale(t)

	svc := NewInvoiceService(persistence.NewRepositories(f.db), new(MockPDFRenderer),
		infra.Letterhead{Name: "MedRent Sfax", TaxID: "1234567A/M/000"}, nil)

	doc, err := svc.HTML(ctx, sale.ID)
	require.NoError(t, err)

	assert.Equal(t, sale.InvoiceNumber, doc.Number)
	assert.Equal(t, sale.InvoiceNumber+".pdf", doc.Filename())
	assert.Contains(t, doc.HTML, "MedRent Sfax")
	assert.Contains(t, doc.HTML, "Amel Trabelsi")
	assert.Contains(t, doc.HTML, "PAT-0001")
	assert.Contains(t, doc.HTML, "Masque nasal")
	assert.Contains(t, doc.HTML, "CPAP ResMed")
	assert.Contains(t, doc.HTML, "RM-2231")
	// Total 1280, discount 25, paid 255: 1000 left to pay
	assert.Contains(t, doc.HTML, "1 255,000 DT")
	assert.Contains(t, doc.HTML, "1 000,000 DT")
	assert.Nil(t, doc.PDF)
}

func TestInvoiceService_PDF(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture(t)
	sale := f.invoiceSale(t)
	repos := persistence.NewRepositories(f.db)

	t.Run("prints the invoice with a numbered footer", func(t *testing.T) {
		renderer := new(MockPDFRenderer)
		renderer.On("Render", ctx, mock.MatchedBy(func(req *infra.RenderRequest) bool {
			return req.Title == sale.InvoiceNumber &&
				req.Margins == infra.DefaultMargins() &&
				req.FooterHTML == infra.InvoiceFooter(sale.InvoiceNumber)
		})).Return(&infra.RenderResult{PDFData: []byte("%PDF-1.7"), PageCount: 1}, nil).Once()

		doc, err := NewInvoiceService(repos, renderer, infra.Letterhead{Name: "MedRent"}, nil).PDF(ctx, sale.ID)
		require.NoError(t, err)

		assert.Equal(t, []byte("%PDF-1.7"), doc.PDF)
		assert.Equal(t, 1, doc.Pages)
		renderer.AssertExpectations(t)
	})

	t.Run("maps render failures to domain errors", func(t *testing.T) {
		renderer := new(MockPDFRenderer)
		renderer.On("Render", ctx, mock.Anything).
			Return(nil, infra.NewRenderError(infra.ErrCodeRenderFailed, "chromedp execution failed", nil)).Once()

		_, err := NewInvoiceService(repos, renderer, infra.Letterhead{}, nil).PDF(ctx, sale.ID)
		assertDomainCode(t, err, "PDF_RENDER_FAILED")
	})

	t.Run("maps timeouts separately", func(t *testing.T) {
		renderer := new(MockPDFRenderer)
		renderer.On("Render", ctx, mock.Anything).
			Return(nil, infra.NewRenderError(infra.ErrCodeRenderTimeout, "PDF rendering timed out", nil)).Once()

		_, err := NewInvoiceService(repos, renderer, infra.Letterhead{}, nil).PDF(ctx, sale.ID)
		assertDomainCode(t, err, "PDF_RENDER_TIMEOUT")
	})

	t.Run("unknown sale is not printed", func(t *testing.T) {
		renderer := new(MockPDFRenderer)

		_, err := NewInvoiceService(repos, renderer, infra.Letterhead{}, nil).PDF(ctx, uuid.New())
		require.Error(t, err)
		renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
	})
}
