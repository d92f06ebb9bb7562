// Package validation re-checks the shape of extracted order records before they
// are persisted or exported.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/gitshopapp/orderreceipt/internal/models"
)

// amountTolerance absorbs float rounding when comparing derived amounts.
const amountTolerance = 1e-9

var orderIDRegex = regexp.MustCompile(`^\d{3}-\d{7}-\d{7}$`)

// IsValidOrderID reports whether id has the DDD-DDDDDDD-DDDDDDD marketplace shape.
func IsValidOrderID(id string) bool {
	return orderIDRegex.MatchString(id)
}

type Validator struct {
	validate *validatorv10.Validate
}

// New returns a validator with the order_id tag and the order struct-level
// rules registered.
func New() *Validator {
	v := validatorv10.New()
	v.RegisterTagNameFunc(jsonFieldName)

	_ = v.RegisterValidation("order_id", func(fl validatorv10.FieldLevel) bool {
		return IsValidOrderID(fl.Field().String())
	})
	v.RegisterStructValidation(lineItemStructValidation, models.LineItem{})
	v.RegisterStructValidation(orderStructValidation, models.OrderRecord{})

	return &Validator{validate: v}
}

// Shape checks an order record for structural consistency. Every record the
// extractor can produce passes, including the all-empty one.
func (v *Validator) Shape(order *models.OrderRecord) error {
	if order == nil {
		return Errors{{Path: "order", Message: "order is required"}}
	}
	if err := v.validate.Struct(order); err != nil {
		return toErrors(err)
	}
	return nil
}

// Complete runs Shape and additionally requires the fields a receipt cannot be
// rendered without.
func (v *Validator) Complete(order *models.OrderRecord) error {
	if err := v.Shape(order); err != nil {
		return err
	}

	var errs Errors
	require := func(path, value, message string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, FieldError{Path: path, Message: message})
		}
	}

	if !IsValidOrderID(order.OrderID) {
		errs = append(errs, FieldError{Path: "orderId", Message: "Invalid order ID format"})
	}
	require("purchaseDate", order.PurchaseDate, "Purchase date is required")
	require("purchaseTime", order.PurchaseTime, "Purchase time is required")
	require("customer.name", order.Customer.Name, "Customer name is required")
	if len(order.Customer.Address) == 0 {
		errs = append(errs, FieldError{Path: "customer.address", Message: "At least one address line is required"})
	}
	if len(order.Items) == 0 {
		errs = append(errs, FieldError{Path: "items", Message: "At least one item is required"})
	}
	for i, item := range order.Items {
		prefix := fmt.Sprintf("items.%d.", i)
		require(prefix+"name", item.Name, "Product name is required")
		require(prefix+"asin", item.ASIN, "ASIN is required")
		require(prefix+"sku", item.SKU, "SKU is required")
		if item.Quantity < 1 {
			errs = append(errs, FieldError{Path: prefix + "quantity", Message: "Quantity must be at least 1"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateCompany checks a company profile.
func (v *Validator) ValidateCompany(company *models.CompanyDetails) error {
	if company == nil {
		return Errors{{Path: "company", Message: "company details are required"}}
	}
	if err := v.validate.Struct(company); err != nil {
		return toErrors(err)
	}
	return nil
}

// ValidateTemplate checks a receipt template.
func (v *Validator) ValidateTemplate(template *models.ReceiptTemplate) error {
	if template == nil {
		return Errors{{Path: "template", Message: "template is required"}}
	}
	if err := v.validate.Struct(template); err != nil {
		return toErrors(err)
	}
	return nil
}

func lineItemStructValidation(sl validatorv10.StructLevel) {
	item := sl.Current().Interface().(models.LineItem)

	if item.IsPromotion() {
		if item.Price > 0 {
			sl.ReportError(item.Price, "price", "Price", "promotion_non_positive", "")
		}
	} else if item.Price < 0 {
		sl.ReportError(item.Price, "price", "Price", "gte", "0")
	}

	if math.Abs(item.Total-item.Price*float64(item.Quantity)) > amountTolerance {
		sl.ReportError(item.Total, "total", "Total", "total_matches_price", "")
	}
}

// orderStructValidation checks that the stored totals agree with the items.
func orderStructValidation(sl validatorv10.StructLevel) {
	order := sl.Current().Interface().(models.OrderRecord)

	var sum float64
	for _, item := range order.Items {
		sum += item.Total
	}
	if math.Abs(order.Totals.Subtotal-sum) > amountTolerance {
		sl.ReportError(order.Totals.Subtotal, "totals.subtotal", "Subtotal", "subtotal_matches_items", fmt.Sprintf("%.2f", sum))
	}

	want := order.Totals.Subtotal + order.Totals.Shipping + order.Totals.VAT
	if math.Abs(order.Totals.Total-want) > amountTolerance {
		sl.ReportError(order.Totals.Total, "totals.total", "Total", "total_matches_subtotal", fmt.Sprintf("%.2f", want))
	}
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

func toErrors(err error) error {
	var validationErrs validatorv10.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	out := make(Errors, 0, len(validationErrs))
	for _, fe := range validationErrs {
		out = append(out, FieldError{
			Path:    fieldPath(fe),
			Message: fieldMessage(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validatorv10.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}

func fieldMessage(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "order_id":
		return "Invalid order ID format"
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", fe.Field(), fe.Param())
	case "promotion_non_positive":
		return "Promotion price must not be positive"
	case "total_matches_price":
		return "Total must equal price multiplied by quantity"
	case "subtotal_matches_items":
		return "Subtotal must equal the sum of item totals (" + fe.Param() + ")"
	case "total_matches_subtotal":
		return "Total must equal subtotal plus shipping and VAT (" + fe.Param() + ")"
	case "email":
		return "Invalid email address"
	case "url|fqdn":
		return "Invalid website URL"
	case "hexcolor":
		return fe.Field() + " must be a hex colour"
	default:
		return fe.Error()
	}
}
