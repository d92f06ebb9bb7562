package models

import "math"

const (
	PromotionName = "Promotion"
	PromotionCode = "PROMO"
)

// OrderRecord is the structured form of a pasted marketplace order. Fields the
// extractor could not find keep their zero value; Address and Items are never nil
// on records built by NewOrderRecord.
type OrderRecord struct {
	OrderID         string          `json:"orderId" validate:"omitempty,order_id"`
	PurchaseDate    string          `json:"purchaseDate"`
	PurchaseTime    string          `json:"purchaseTime"`
	ShippingDetails ShippingDetails `json:"shippingDetails"`
	Customer        Customer        `json:"customer"`
	Items           []LineItem      `json:"items" validate:"dive"`
	Totals          Totals          `json:"totals"`
}

type ShippingDetails struct {
	Service     string `json:"service"`
	Fulfillment string `json:"fulfillment"`
	Channel     string `json:"channel"`
}

type Customer struct {
	Name     string   `json:"name"`
	Address  []string `json:"address"`
	Postcode string   `json:"postcode,omitempty"`
	Country  string   `json:"country,omitempty"`
	Contact  string   `json:"contact,omitempty"`
}

type LineItem struct {
	Name     string  `json:"name"`
	ASIN     string  `json:"asin"`
	SKU      string  `json:"sku"`
	Quantity int     `json:"quantity" validate:"gte=0"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

// Totals holds the derived order amounts. VATRate is a percentage and is zero
// until SetVATRate has been called.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping" validate:"gte=0"`
	VAT      float64 `json:"vat,omitempty" validate:"gte=0"`
	VATRate  float64 `json:"vatRate,omitempty" validate:"gte=0,lte=100"`
	Total    float64 `json:"total"`
}

func NewOrderRecord() *OrderRecord {
	return &OrderRecord{
		Customer: Customer{Address: []string{}},
		Items:    []LineItem{},
	}
}

// NewLineItem builds an item whose total is derived from price and quantity.
func NewLineItem(name, asin, sku string, quantity int, price float64) LineItem {
	item := LineItem{Name: name, ASIN: asin, SKU: sku, Quantity: quantity, Price: price}
	item.recalculate()
	return item
}

// NewPromotion builds the discount pseudo-item. The sign of amount is ignored.
func NewPromotion(amount float64) LineItem {
	discount := -math.Abs(amount)
	if discount == 0 {
		discount = 0 // drop the sign of -0
	}
	return LineItem{
		Name:     PromotionName,
		ASIN:     PromotionCode,
		SKU:      PromotionCode,
		Quantity: 1,
		Price:    discount,
		Total:    discount,
	}
}

func (i *LineItem) IsPromotion() bool {
	return i != nil && i.Name == PromotionName
}

func (i *LineItem) recalculate() {
	i.Total = i.Price * float64(i.Quantity)
}

// Recalculate recomputes every item total, the subtotal, VAT and the grand total.
func (o *OrderRecord) Recalculate() {
	var subtotal float64
	for idx := range o.Items {
		o.Items[idx].recalculate()
		subtotal += o.Items[idx].Total
	}
	o.Totals.Subtotal = subtotal
	if o.Totals.VATRate > 0 {
		o.Totals.VAT = roundPence(subtotal * o.Totals.VATRate / 100)
	} else {
		o.Totals.VAT = 0
	}
	o.Totals.Total = o.Totals.Subtotal + o.Totals.Shipping + o.Totals.VAT
}

// Clone returns a deep copy so history entries are never aliased by callers.
func (o *OrderRecord) Clone() *OrderRecord {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Customer.Address = append([]string{}, o.Customer.Address...)
	clone.Items = append([]LineItem{}, o.Items...)
	return &clone
}

func roundPence(v float64) float64 {
	return math.Round(v*100) / 100
}
