package receipt

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
)

var receiptTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money": formatMoney,
}).Parse(receiptHTML))

// Render writes the receipt as a standalone HTML page.
func Render(w io.Writer, doc *Document) error {
	if doc == nil || doc.Order == nil {
		return fmt.Errorf("render receipt: document has no order")
	}
	if err := receiptTemplate.Execute(w, doc); err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}
	return nil
}

// RenderString renders the receipt into a string.
func RenderString(doc *Document) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// LogoURL returns the company logo, falling back to the template logo. Only
// inline images and http(s) URLs are used; anything else renders no logo.
func (d *Document) LogoURL() template.URL {
	for _, logo := range []string{d.Company.Logo, d.Template.Logo} {
		logo = strings.TrimSpace(logo)
		if isImageSource(logo) {
			return template.URL(logo)
		}
	}
	return ""
}

func isImageSource(src string) bool {
	lower := strings.ToLower(src)
	for _, prefix := range []string{"data:image/", "https://", "http://"} {
		if strings.HasPrefix(lower, prefix) && len(lower) > len(prefix) {
			return true
		}
	}
	return false
}

func formatMoney(amount float64) string {
	if amount < 0 {
		return fmt.Sprintf("-£%.2f", -amount)
	}
	return fmt.Sprintf("£%.2f", amount)
}

const receiptHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Receipt {{.ReceiptNumber}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; color: #222; margin: 2rem; }
table { width: 100%; border-collapse: collapse; }
th, td { padding: 6px 8px; text-align: left; border-bottom: 1px solid #eee; }
td.num, th.num { text-align: right; }
.muted { color: #666; font-size: 0.9em; }
</style>
</head>
<body>
<header style="border-bottom: 3px solid {{.Template.PrimaryColor}}">
{{- with .LogoURL}}
<img src="{{.}}" alt="{{$.Company.Name}}" height="48">
{{- end}}
<h1 style="color: {{.Template.PrimaryColor}}">RECEIPT</h1>
<p><strong>{{.Company.Name}}</strong></p>
{{- range .Company.Address}}
<p class="muted">{{.}}</p>
{{- end}}
{{- if .Company.Email}}<p class="muted">{{.Company.Email}}</p>{{end}}
{{- if .Company.PhoneNumber}}<p class="muted">{{.Company.PhoneNumber}}</p>{{end}}
{{- if .Company.Website}}<p class="muted">{{.Company.Website}}</p>{{end}}
{{- if and .Template.ShowVAT .Company.VATNumber}}<p class="muted">VAT No: {{.Company.VATNumber}}</p>{{end}}
{{- if .Company.CompanyNumber}}<p class="muted">Company No: {{.Company.CompanyNumber}}</p>{{end}}
</header>

<section>
<p>Receipt No: <strong>{{.ReceiptNumber}}</strong></p>
<p>Receipt Date: {{.ReceiptDate}}</p>
<p>Order ID: {{.Order.OrderID}}</p>
<p>Purchase Date: {{.Order.PurchaseDate}}{{if .Order.PurchaseTime}} {{.Order.PurchaseTime}}{{end}}</p>
<p>Payment Method: {{.PaymentMethod}}</p>
<p>Payment Date: {{.PaymentDate}}</p>
</section>

<section>
<h2 style="color: {{.Template.SecondaryColor}}">Bill To</h2>
<p>{{.Order.Customer.Name}}</p>
{{- range .Order.Customer.Address}}
<p>{{.}}</p>
{{- end}}
{{- if .Order.Customer.Postcode}}<p>{{.Order.Customer.Postcode}}</p>{{end}}
{{- if .Order.Customer.Country}}<p>{{.Order.Customer.Country}}</p>{{end}}
</section>

<table>
<thead>
<tr>
<th>Item</th>
<th class="num">Qty</th>
{{- if .Template.ShowVAT}}
<th class="num">Unit (ex VAT)</th>
<th class="num">VAT</th>
{{- end}}
<th class="num">Unit Price</th>
<th class="num">Total</th>
</tr>
</thead>
<tbody>
{{- $showVAT := .Template.ShowVAT}}
{{- range .Lines}}
<tr>
<td>{{.Name}}{{if .SKU}}<br><span class="muted">SKU: {{.SKU}}</span>{{end}}</td>
<td class="num">{{.Quantity}}</td>
{{- if $showVAT}}
<td class="num">{{money .PriceExVAT}}</td>
<td class="num">{{money .TotalVAT}}</td>
{{- end}}
<td class="num">{{money .Price}}</td>
<td class="num">{{money .Total}}</td>
</tr>
{{- end}}
</tbody>
</table>

<section>
<p>Subtotal: {{money .Order.Totals.Subtotal}}</p>
<p>Shipping: {{money .Order.Totals.Shipping}}</p>
{{- if .Template.ShowVAT}}
<p>VAT included: {{money .VATTotal}}</p>
{{- end}}
<p><strong>Total: {{money .Order.Totals.Total}}</strong></p>
</section>
{{- if .Notes}}

<section>
<h2>Notes</h2>
<p>{{.Notes}}</p>
</section>
{{- end}}
{{- with .Template.TermsAndConditions}}

<footer class="muted">
<h3>Terms and Conditions</h3>
{{- range .}}
<p>{{.}}</p>
{{- end}}
</footer>
{{- end}}
</body>
</html>
`
