package models

import (
	"errors"
	"fmt"
)

// ErrInvalidEdit is returned when an edit value is outside its allowed range.
var ErrInvalidEdit = errors.New("invalid order edit")

// ItemPatch carries the fields of a line item edit. Nil fields are left unchanged.
type ItemPatch struct {
	Name     *string  `json:"name,omitempty"`
	ASIN     *string  `json:"asin,omitempty"`
	SKU      *string  `json:"sku,omitempty"`
	Quantity *int     `json:"quantity,omitempty"`
	Price    *float64 `json:"price,omitempty"`
}

type CustomerPatch struct {
	Name     *string   `json:"name,omitempty"`
	Address  *[]string `json:"address,omitempty"`
	Postcode *string   `json:"postcode,omitempty"`
	Country  *string   `json:"country,omitempty"`
	Contact  *string   `json:"contact,omitempty"`
}

type ShippingDetailsPatch struct {
	Service     *string `json:"service,omitempty"`
	Fulfillment *string `json:"fulfillment,omitempty"`
	Channel     *string `json:"channel,omitempty"`
}

// UpdateItem applies patch to the item at index and recomputes all totals.
func (o *OrderRecord) UpdateItem(index int, patch ItemPatch) error {
	if index < 0 || index >= len(o.Items) {
		return fmt.Errorf("%w: item index %d out of range (items: %d)", ErrInvalidEdit, index, len(o.Items))
	}

	item := &o.Items[index]
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.ASIN != nil {
		item.ASIN = *patch.ASIN
	}
	if patch.SKU != nil {
		item.SKU = *patch.SKU
	}
	if patch.Quantity != nil {
		item.Quantity = *patch.Quantity
	}
	if patch.Price != nil {
		item.Price = *patch.Price
	}

	o.Recalculate()
	return nil
}

func (o *OrderRecord) UpdateCustomer(patch CustomerPatch) {
	if patch.Name != nil {
		o.Customer.Name = *patch.Name
	}
	if patch.Address != nil {
		o.Customer.Address = append([]string{}, (*patch.Address)...)
	}
	if patch.Postcode != nil {
		o.Customer.Postcode = *patch.Postcode
	}
	if patch.Country != nil {
		o.Customer.Country = *patch.Country
	}
	if patch.Contact != nil {
		o.Customer.Contact = *patch.Contact
	}
}

func (o *OrderRecord) UpdateShippingDetails(patch ShippingDetailsPatch) {
	if patch.Service != nil {
		o.ShippingDetails.Service = *patch.Service
	}
	if patch.Fulfillment != nil {
		o.ShippingDetails.Fulfillment = *patch.Fulfillment
	}
	if patch.Channel != nil {
		o.ShippingDetails.Channel = *patch.Channel
	}
}

func (o *OrderRecord) SetShipping(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("%w: shipping must be zero or positive", ErrInvalidEdit)
	}
	o.Totals.Shipping = amount
	o.Recalculate()
	return nil
}

// SetVATRate stores a VAT percentage and recomputes the VAT amount from the subtotal.
func (o *OrderRecord) SetVATRate(percent float64) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("%w: vat rate must be between 0 and 100", ErrInvalidEdit)
	}
	o.Totals.VATRate = percent
	o.Recalculate()
	return nil
}
