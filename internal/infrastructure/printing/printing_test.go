package printing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrintParams(t *testing.T) {
	r := &ChromedpRenderer{config: ChromedpConfig{DefaultTimeout: time.Second}}

	t.Run("A4 portrait with margins", func(t *testing.T) {
		params := r.buildPrintParams(&RenderRequest{
			HTML:    "<p>x</p>",
			Margins: DefaultMargins(),
		})

		assert.InDelta(t, 8.27, params.paperWidth, 0.01)
		assert.InDelta(t, 11.69, params.paperHeight, 0.01)
		assert.InDelta(t, mmToInches(15), params.marginTop, 0.001)
		assert.InDelta(t, mmToInches(12), params.marginLeft, 0.001)
		assert.False(t, params.landscape)
		assert.False(t, params.displayFooter)
	})

	t.Run("footer forces a minimum bottom margin", func(t *testing.T) {
		params := r.buildPrintParams(&RenderRequest{
			HTML:       "<p>x</p>",
			Landscape:  true,
			FooterHTML: InvoiceFooter("FACTURE-2026-0001"),
		})

		assert.True(t, params.landscape)
		assert.True(t, params.displayFooter)
		assert.InDelta(t, mmToInches(minFooterMarginMM), params.marginBottom, 0.001)
		assert.Contains(t, params.footerTemplate, "FACTURE-2026-0001")
	})
}

func TestBuildCompleteHTML(t *testing.T) {
	t.Run("wraps a fragment", func(t *testing.T) {
		out := buildCompleteHTML(&RenderRequest{HTML: "<p>Bonjour</p>", Title: "A&B"})
		assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
		assert.Contains(t, out, `<meta charset="UTF-8">`)
		assert.Contains(t, out, "<title>A&amp;B</title>")
		assert.Contains(t, out, "<body><p>Bonjour</p></body>")
	})

	t.Run("keeps a full document", func(t *testing.T) {
		doc := "<html><body>x</body></html>"
		assert.Equal(t, doc, buildCompleteHTML(&RenderRequest{HTML: doc}))
	})
}

func TestChromedpRenderer_RejectsEmptyHTML(t *testing.T) {
	r := NewChromedpRenderer(ChromedpConfig{RemoteURL: "ws://127.0.0.1:1"})
	defer r.Close()

	_, err := r.Render(context.Background(), &RenderRequest{HTML: "  "})

	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)

	_, err = r.Render(context.Background(), nil)
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)
}

func TestNewChromedpRenderer_Defaults(t *testing.T) {
	r := NewChromedpRenderer(ChromedpConfig{RemoteURL: "ws://127.0.0.1:1"})
	defer r.Close()

	assert.Equal(t, defaultChromeTimeout, r.config.DefaultTimeout)
	assert.NotNil(t, r.logger)
	assert.NoError(t, r.Close())
}

func TestCountPages(t *testing.T) {
	pdf := []byte("<< /Type /Pages /Kids [3 0 R 4 0 R] >> << /Type /Page >> << /Type /Page >>")
	assert.Equal(t, 2, countPages(pdf))
	assert.Equal(t, 1, countPages([]byte("%PDF-1.4")))
}

func TestRenderError(t *testing.T) {
	cause := errors.New("websocket closed")
	err := NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", cause)

	assert.Equal(t, "chromedp execution failed: websocket closed", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "HTML content is empty", NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil).Error())
}

func TestFormatMoney(t *testing.T) {
	tests := map[string]string{
		"0":        "0,000 DT",
		"12.5":     "12,500 DT",
		"1234.5":   "1 234,500 DT",
		"1250000":  "1 250 000,000 DT",
		"-980.125": "-980,125 DT",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestRenderInvoiceHTML(t *testing.T) {
	inv := &Invoice{
		Seller:   Letterhead{Name: "MedRent", Address: "Route de Tunis km 4, Sfax", TaxID: "1234567A/M/000"},
		Number:   "FACTURE-2026-0007",
		SaleCode: "VNT-0007",
		Date:     time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC),
		Client:   InvoiceParty{Name: "Ben <b>Ali</b> Salah", Code: "PAT-0001", CNAMID: "CN-998"},
		Lines: []InvoiceLine{
			{Description: "Concentrateur O2 5L", SerialNumber: "SN-42", Quantity: 1,
				UnitPrice: decimal.NewFromInt(2500), Total: decimal.NewFromInt(2500)},
			{Description: "Masque nasal", Quantity: 2, UnitPrice: decimal.NewFromInt(60),
				Discount: decimal.NewFromInt(20), Total: decimal.NewFromInt(100)},
		},
		Total:    decimal.NewFromInt(2600),
		Discount: decimal.NewFromInt(100),
		Final:    decimal.NewFromInt(2500),
		Paid:     decimal.NewFromInt(1000),
		Balance:  decimal.NewFromInt(1500),
		Payments: []InvoicePayment{
			{Date: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), Method: "CASH", Status: "PAID", Amount: decimal.NewFromInt(1000)},
		},
	}

	out, err := RenderInvoiceHTML(inv)
	require.NoError(t, err)

	assert.Contains(t, out, "FACTURE-2026-0007")
	assert.Contains(t, out, "09/03/2026")
	assert.Contains(t, out, "MF : 1234567A/M/000")
	assert.Contains(t, out, "Concentrateur O2 5L")
	assert.Contains(t, out, "SN-42")
	assert.Contains(t, out, "2 500,000 DT")
	assert.Contains(t, out, "1 500,000 DT")
	assert.Contains(t, out, "N° CNAM : CN-998")
	assert.Contains(t, out, "Règlements")
	assert.Contains(t, out, "Ben &lt;b&gt;Ali&lt;/b&gt; Salah")
	assert.NotContains(t, out, "<b>Ali</b>")
	assert.NotContains(t, out, "VENTE ANNULÉE")

	inv.Status = "CANCELLED"
	out, err = RenderInvoiceHTML(inv)
	require.NoError(t, err)
	assert.Contains(t, out, "VENTE ANNULÉE")
}
