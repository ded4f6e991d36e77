package printing

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Letterhead is the seller block printed at the top of every invoice
type Letterhead struct {
	Name    string
	Address string
	TaxID   string
	Phone   string
}

// InvoiceParty is the billed patient or company
type InvoiceParty struct {
	Name    string
	Code    string
	Address string
	Phone   string
	TaxID   string
	CNAMID  string
}

// InvoiceLine is one sold device or product line
type InvoiceLine struct {
	Description  string
	SerialNumber string
	Quantity     int
	UnitPrice    decimal.Decimal
	Discount     decimal.Decimal
	Total        decimal.Decimal
}

// InvoicePayment is a payment recorded against the sale
type InvoicePayment struct {
	Date      time.Time
	Method    string
	Reference string
	Status    string
	Amount    decimal.Decimal
}

// Invoice is everything printed on a sale invoice
type Invoice struct {
	Seller   Letterhead
	Number   string
	SaleCode string
	Date     time.Time
	Status   string
	Client   InvoiceParty
	Lines    []InvoiceLine
	Total    decimal.Decimal
	Discount decimal.Decimal
	Final    decimal.Decimal
	Paid     decimal.Decimal
	Balance  decimal.Decimal
	Payments []InvoicePayment
	Notes    string
}

var invoiceTemplate = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"formatMoney": formatMoney,
	"formatDate":  formatDate,
	"positive":    func(d decimal.Decimal) bool { return d.IsPositive() },
}).Parse(invoiceHTML))

// RenderInvoiceHTML fills the invoice template. Every value is HTML-escaped.
func RenderInvoiceHTML(inv *Invoice) (string, error) {
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, inv); err != nil {
		return "", fmt.Errorf("failed to render invoice template: %w", err)
	}
	return buf.String(), nil
}

// InvoiceFooter is the per-page footer with the invoice number and page count
func InvoiceFooter(number string) string {
	return `<div style="font-size:8px;width:100%;text-align:center;color:#555">` +
		html.EscapeString(number) +
		` - page <span class="pageNumber"></span> / <span class="totalPages"></span></div>`
}

// formatMoney prints Tunisian dinars with three decimals and spaced
// thousands: 1234.5 gives "1 234,500 DT".
func formatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	intPart, fracPart, _ := strings.Cut(d.StringFixed(3), ".")

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(' ')
		}
		grouped.WriteRune(r)
	}
	return sign + grouped.String() + "," + fracPart + " DT"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

const invoiceHTML = `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="UTF-8">
<title>Facture {{.Number}}</title>
<style>
  body { font-family: "DejaVu Sans", Arial, sans-serif; font-size: 11px; color: #222; }
  header { display: flex; justify-content: space-between; border-bottom: 2px solid #1d4e89; padding-bottom: 8px; }
  h1 { color: #1d4e89; font-size: 20px; margin: 0; }
  .muted { color: #666; }
  .client { margin: 16px 0; padding: 8px; border: 1px solid #ccc; width: 50%; }
  table { width: 100%; border-collapse: collapse; margin-top: 8px; }
  th { background: #1d4e89; color: #fff; text-align: left; padding: 4px; }
  td { border-bottom: 1px solid #ddd; padding: 4px; }
  .num { text-align: right; white-space: nowrap; }
  .totals { width: 40%; margin-left: auto; }
  .totals td { border: none; }
  .grand { font-weight: bold; font-size: 13px; }
  .cancelled { color: #b00020; font-weight: bold; font-size: 14px; text-align: center; }
</style>
</head>
<body>
<header>
  <div>
    <strong>{{.Seller.Name}}</strong><br>
    {{with .Seller.Address}}{{.}}<br>{{end}}
    {{with .Seller.Phone}}Tél : {{.}}<br>{{end}}
    {{with .Seller.TaxID}}MF : {{.}}{{end}}
  </div>
  <div>
    <h1>FACTURE</h1>
    N° {{.Number}}<br>
    <span class="muted">Vente {{.SaleCode}}</span><br>
    Date : {{formatDate .Date}}
  </div>
</header>
{{if eq .Status "CANCELLED"}}<p class="cancelled">VENTE ANNULÉE</p>{{end}}

<div class="client">
  <strong>{{.Client.Name}}</strong>{{with .Client.Code}} <span class="muted">({{.}})</span>{{end}}<br>
  {{with .Client.Address}}{{.}}<br>{{end}}
  {{with .Client.Phone}}Tél : {{.}}<br>{{end}}
  {{with .Client.TaxID}}MF : {{.}}<br>{{end}}
  {{with .Client.CNAMID}}N° CNAM : {{.}}{{end}}
</div>

<table>
  <thead>
    <tr><th>Désignation</th><th>N° série</th><th class="num">Qté</th><th class="num">P.U.</th><th class="num">Remise</th><th class="num">Total</th></tr>
  </thead>
  <tbody>
  {{range .Lines}}
    <tr>
      <td>{{.Description}}</td>
      <td>{{.SerialNumber}}</td>
      <td class="num">{{.Quantity}}</td>
      <td class="num">{{formatMoney .UnitPrice}}</td>
      <td class="num">{{if positive .Discount}}{{formatMoney .Discount}}{{end}}</td>
      <td class="num">{{formatMoney .Total}}</td>
    </tr>
  {{end}}
  </tbody>
</table>

<table class="totals">
  <tr><td>Total</td><td class="num">{{formatMoney .Total}}</td></tr>
  {{if positive .Discount}}<tr><td>Remise</td><td class="num">- {{formatMoney .Discount}}</td></tr>{{end}}
  <tr class="grand"><td>Net à payer</td><td class="num">{{formatMoney .Final}}</td></tr>
  <tr><td>Payé</td><td class="num">{{formatMoney .Paid}}</td></tr>
  <tr><td>Reste</td><td class="num">{{formatMoney .Balance}}</td></tr>
</table>

{{if .Payments}}
<h3>Règlements</h3>
<table>
  <thead><tr><th>Date</th><th>Mode</th><th>Référence</th><th>Statut</th><th class="num">Montant</th></tr></thead>
  <tbody>
  {{range .Payments}}
    <tr>
      <td>{{formatDate .Date}}</td>
      <td>{{.Method}}</td>
      <td>{{.Reference}}</td>
      <td>{{.Status}}</td>
      <td class="num">{{formatMoney .Amount}}</td>
    </tr>
  {{end}}
  </tbody>
</table>
{{end}}

{{with .Notes}}<p class="muted">{{.}}</p>{{end}}
</body>
</html>
`
