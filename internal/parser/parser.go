// Package parser extracts structured order records from copy-pasted marketplace order text.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gitshopapp/orderreceipt/internal/models"
)

// ErrExtraction is returned when the scan hits an unexpected internal failure.
// Missing fields are never reported through it.
var ErrExtraction = errors.New("order text extraction failed")

const countryUnitedKingdom = "United Kingdom"

var (
	orderIDPattern         = regexp.MustCompile(`(?i)(?:Order ID:?\s*#?\s*)?(\d{3}-\d{7}-\d{7})`)
	purchaseDatePattern    = regexp.MustCompile(`(?i)Purchase date:\s*(.*?),\s*(\d{1,2}:\d{2})\s*([A-Z]{2,3})?`)
	shippingServicePattern = regexp.MustCompile(`(?i)Shipping service:\s*(.*)`)
	fulfillmentPattern     = regexp.MustCompile(`(?i)Fulfilment:\s*(.*)`)
	salesChannelPattern    = regexp.MustCompile(`(?i)Sales channel:\s*(.*)`)

	shipToPattern   = regexp.MustCompile(`(?i)Ship to\s*\n+\s*([\s\S]+?)(?:\n+\s*(Contact|United Kingdom|Shipping)|$)`)
	postcodePattern = regexp.MustCompile(`(?i)([A-Z]{1,2}\d[A-Z\d]? \d[A-Z]{2})`)
	countryPattern  = regexp.MustCompile(`(?i)United Kingdom`)

	shippingTotalPattern = regexp.MustCompile(`Shipping total:£(\d+\.\d{2})`)
	promotionPattern     = regexp.MustCompile(`Promotion:-£(\d+\.\d{2})`)
	quantityPricePattern = regexp.MustCompile(`^(\d+)\s+£(\d+\.\d{2})$`)

	// The backward name search gives up at item data and skips table headers.
	nameBoundaryPattern = regexp.MustCompile(`ASIN|SKU|Order Item ID|£`)
	tableHeaderPattern  = regexp.MustCompile(`(?i)Status|Image|Product name|More information|Quantity|Unit price|Proceeds`)
)

const (
	asinLabel = "ASIN:"
	skuLabel  = "SKU:"
)

type scalarField struct {
	pattern *regexp.Regexp
	apply   func(order *models.OrderRecord, match []string)
}

// scalarFields are evaluated independently against the whole text; the first
// match of each pattern wins.
var scalarFields = []scalarField{
	{
		pattern: orderIDPattern,
		apply: func(order *models.OrderRecord, match []string) {
			order.OrderID = match[1]
		},
	},
	{
		pattern: purchaseDatePattern,
		apply: func(order *models.OrderRecord, match []string) {
			order.PurchaseDate = strings.TrimSpace(match[1])
			order.PurchaseTime = match[2]
		},
	},
	{
		pattern: shippingServicePattern,
		apply: func(order *models.OrderRecord, match []string) {
			order.ShippingDetails.Service = strings.TrimSpace(match[1])
		},
	},
	{
		pattern: fulfillmentPattern,
		apply: func(order *models.OrderRecord, match []string) {
			order.ShippingDetails.Fulfillment = strings.TrimSpace(match[1])
		},
	},
	{
		pattern: salesChannelPattern,
		apply: func(order *models.OrderRecord, match []string) {
			order.ShippingDetails.Channel = strings.TrimSpace(match[1])
		},
	},
}

// Extractor is stateless and safe for concurrent use.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract builds an order record from raw text on a best-effort basis. Fields
// that are not found keep their zero value. An error is returned only when the
// scan itself fails, and never together with a record.
func (e *Extractor) Extract(text string) (order *models.OrderRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			order = nil
			err = fmt.Errorf("%w: %v", ErrExtraction, r)
		}
	}()

	order = models.NewOrderRecord()

	for _, field := range scalarFields {
		if match := field.pattern.FindStringSubmatch(text); match != nil {
			field.apply(order, match)
		}
	}

	order.Customer = extractCustomer(text)

	result, err := scanLines(splitLines(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	order.Items = result.items
	order.Totals.Shipping = result.shipping

	var subtotal float64
	for _, item := range order.Items {
		subtotal += item.Total
	}
	order.Totals.Subtotal = subtotal
	order.Totals.Total = subtotal + order.Totals.Shipping

	return order, nil
}

// ExtractFromString is a convenience wrapper around a zero Extractor.
func ExtractFromString(text string) (*models.OrderRecord, error) {
	return NewExtractor().Extract(text)
}

func extractCustomer(text string) models.Customer {
	customer := models.Customer{Address: []string{}}

	match := shipToPattern.FindStringSubmatch(text)
	if match == nil {
		return customer
	}

	var lines []string
	for _, line := range strings.Split(match[1], "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return customer
	}

	customer.Name = lines[0]
	customer.Address = append(customer.Address, lines[1:]...)

	joined := strings.Join(lines, " ")
	if postcode := postcodePattern.FindStringSubmatch(joined); postcode != nil {
		customer.Postcode = postcode[1]
	}
	// The country line usually terminates the block, so it is checked as well.
	if countryPattern.MatchString(joined) || strings.EqualFold(match[2], countryUnitedKingdom) {
		customer.Country = countryUnitedKingdom
	}

	return customer
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}
