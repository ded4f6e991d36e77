package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medrent/backend/internal/application/trade"
	"github.com/medrent/backend/internal/domain/identity"
	"github.com/medrent/backend/internal/domain/inventory"
	"github.com/medrent/backend/internal/infrastructure/persistence"
	"github.com/medrent/backend/internal/infrastructure/printing"
	"github.com/medrent/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct {
	err  error
	last *printing.RenderRequest
}

func (r *stubRenderer) Render(_ context.Context, req *printing.RenderRequest) (*printing.RenderResult, error) {
	r.last = req
	if r.err != nil {
		return nil, r.err
	}
	return &printing.RenderResult{PDFData: []byte("%PDF-1.7 invoice"), PageCount: 1}, nil
}

func (r *stubRenderer) Close() error { return nil }

func newSaleEngine(t *testing.T, renderer printing.PDFRenderer) (*gin.Engine, *trade.SaleDetail) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	user := testutil.SeedUser(t, db, "vente@medrent.tn", identity.RoleEmployee)
	patient := testutil.SeedPatient(t, db, "PAT-0001", "Sami", "Gharbi")
	product := testutil.SeedProduct(t, db, "Circuit patient")
	depot := testutil.SeedLocation(t, db, "Depot")
	testutil.SeedStock(t, db, depot.ID, product.ID, 5, inventory.StockStatusForSale)

	repos := persistence.NewRepositories(db)
	sales := trade.NewSaleService(repos, persistence.NewGormTransactionScope(db), nil, testutil.NopLogger())
	sale, err := sales.Create(context.Background(), user.ID, trade.CreateSaleRequest{
		PatientID: &patient.ID,
		Items: []trade.SaleItemInput{
			{ProductID: &product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(90), ItemTotal: decimal.NewFromInt(90)},
		},
	})
	require.NoError(t, err)

	h := NewSaleHandler(sales, trade.NewInvoiceService(repos, renderer,
		printing.Letterhead{Name: "MedRent"}, testutil.NopLogger()))
	engine := gin.New()
	api := engine.Group("/api/v1", testutil.AuthAs(user.ID, string(user.Role), nil))
	api.GET("/sales/:id/invoice", h.Invoice)
	return engine, sale
}

func serveGET(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSaleHandler_Invoice(t *testing.T) {
	renderer := &stubRenderer{}
	engine, sale := newSaleEngine(t, renderer)
	path := "/api/v1/sales/" + sale.ID.String() + "/invoice"

	t.Run("serves the PDF inline", func(t *testing.T) {
		w := serveGET(engine, path)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, `inline; filename="`+sale.InvoiceNumber+`.pdf"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "%PDF-1.7 invoice", w.Body.String())
		require.NotNil(t, renderer.last)
		assert.Contains(t, renderer.last.HTML, "Circuit patient")
	})

	t.Run("html preview skips the renderer", func(t *testing.T) {
		renderer.last = nil
		w := serveGET(engine, path+"?format=html")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "Sami Gharbi")
		assert.Contains(t, w.Body.String(), sale.InvoiceNumber)
		assert.Nil(t, renderer.last)
	})

	t.Run("unknown format", func(t *testing.T) {
		w := serveGET(engine, path+"?format=docx")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown sale", func(t *testing.T) {
		w := serveGET(engine, "/api/v1/sales/"+uuid.NewString()+"/invoice")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSaleHandler_InvoiceRendererDown(t *testing.T) {
	renderer := &stubRenderer{err: printing.NewRenderError(printing.ErrCodeRenderFailed, "chromedp execution failed", nil)}
	engine, sale := newSaleEngine(t, renderer)

	w := serveGET(engine, "/api/v1/sales/"+sale.ID.String()+"/invoice")

	testutil.AssertError(t, w, http.StatusServiceUnavailable, "PDF_RENDER_FAILED")
}
