// Package receipt builds the display model of a receipt and renders it as HTML.
package receipt

import (
	"sort"
	"time"

	"github.com/gitshopapp/orderreceipt/internal/models"
)

const (
	DefaultPaymentMethod  = "Credit Card"
	DefaultVATRatePercent = 20.0
	InvalidDate           = "Invalid Date"

	receiptDateLayout = "2006-01-02"
	paymentDateLayout = "02/01/2006"
)

var purchaseDateLayouts = []string{
	"Mon, 2 Jan 2006",
	"Mon, 02 Jan 2006",
	"2 Jan 2006",
	"2 January 2006",
	"2006-01-02",
}

// Options overrides the derived receipt fields. Zero values fall back to the
// defaults.
type Options struct {
	ReceiptNumber  string
	ReceiptDate    string
	PaymentMethod  string
	Notes          string
	VATRatePercent float64
	Now            func() time.Time
}

// Line is a line item with its display-only VAT breakdown.
type Line struct {
	models.LineItem
	PriceExVAT float64
	VATAmount  float64
	TotalExVAT float64
	TotalVAT   float64
}

type Document struct {
	Order         *models.OrderRecord
	Company       models.CompanyDetails
	Template      models.ReceiptTemplate
	ReceiptNumber string
	ReceiptDate   string
	PaymentMethod string
	PaymentDate   string
	Notes         string
	Lines         []Line
}

// Build assembles a receipt document. The order is not modified.
func Build(order *models.OrderRecord, company models.CompanyDetails, template models.ReceiptTemplate, opts Options) *Document {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	doc := &Document{
		Order:         order,
		Company:       company,
		Template:      template,
		ReceiptNumber: opts.ReceiptNumber,
		ReceiptDate:   opts.ReceiptDate,
		PaymentMethod: opts.PaymentMethod,
		PaymentDate:   PaymentDate(order.PurchaseDate),
		Notes:         opts.Notes,
	}
	if doc.ReceiptNumber == "" {
		doc.ReceiptNumber = ReceiptNumber(order.OrderID)
	}
	if doc.ReceiptDate == "" {
		doc.ReceiptDate = now().Format(receiptDateLayout)
	}
	if doc.PaymentMethod == "" {
		doc.PaymentMethod = DefaultPaymentMethod
	}

	rate := 0.0
	if template.ShowVAT {
		rate = opts.VATRatePercent
		if rate <= 0 {
			rate = DefaultVATRatePercent
		}
		rate /= 100
	}
	doc.Lines = Breakdown(order.Items, rate)

	return doc
}

// Breakdown splits VAT out of each VAT-inclusive unit price. Promotions carry
// no VAT and are moved to the end, keeping the order of the other items.
func Breakdown(items []models.LineItem, rate float64) []Line {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		line := Line{LineItem: item}
		if item.IsPromotion() || rate <= 0 {
			line.PriceExVAT = item.Price
			line.TotalExVAT = item.Total
		} else {
			line.PriceExVAT = item.Price / (1 + rate)
			line.VATAmount = item.Price - line.PriceExVAT
			line.TotalExVAT = line.PriceExVAT * float64(item.Quantity)
			line.TotalVAT = line.VATAmount * float64(item.Quantity)
		}
		lines = append(lines, line)
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return !lines[i].IsPromotion() && lines[j].IsPromotion()
	})
	return lines
}

// ReceiptNumber derives a receipt number from the last 15 characters of the order ID.
func ReceiptNumber(orderID string) string {
	if len(orderID) > 15 {
		orderID = orderID[len(orderID)-15:]
	}
	return "REC-" + orderID
}

// PaymentDate returns the day after the purchase date, or InvalidDate when the
// free-text purchase date cannot be read.
func PaymentDate(purchaseDate string) string {
	for _, layout := range purchaseDateLayouts {
		if t, err := time.Parse(layout, purchaseDate); err == nil {
			return t.AddDate(0, 0, 1).Format(paymentDateLayout)
		}
	}
	return InvalidDate
}

// VATTotal sums the VAT of all lines.
func (d *Document) VATTotal() float64 {
	var total float64
	for _, line := range d.Lines {
		total += line.TotalVAT
	}
	return total
}
