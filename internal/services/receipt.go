package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gitshopapp/orderreceipt/internal/company"
	"github.com/gitshopapp/orderreceipt/internal/history"
	"github.com/gitshopapp/orderreceipt/internal/logging"
	"github.com/gitshopapp/orderreceipt/internal/models"
	"github.com/gitshopapp/orderreceipt/internal/receipt"
	"github.com/gitshopapp/orderreceipt/internal/templates"
	"github.com/gitshopapp/orderreceipt/internal/validation"
)

var (
	ErrEmptyInput    = errors.New("order text is empty")
	ErrInputTooLarge = errors.New("order text is too large")
	ErrParseFailed   = errors.New("failed to parse order text")
	ErrNoOrderID     = errors.New("could not detect an order identifier")
)

const defaultMaxTextBytes = 1 << 20

type orderExtractor interface {
	Extract(text string) (*models.OrderRecord, error)
}

type orderValidator interface {
	Shape(order *models.OrderRecord) error
	Complete(order *models.OrderRecord) error
	ValidateCompany(company *models.CompanyDetails) error
	ValidateTemplate(template *models.ReceiptTemplate) error
}

// ReceiptLimits bounds the accepted input and sets the VAT rate used on receipts.
type ReceiptLimits struct {
	MaxTextBytes   int64
	VATRatePercent float64
}

type ReceiptService struct {
	extractor      orderExtractor
	validator      orderValidator
	history        *history.Store
	templates      *templates.Store
	company        *company.Store
	maxTextBytes   int64
	vatRatePercent float64
	logger         *slog.Logger
}

func NewReceiptService(extractor orderExtractor, validator orderValidator, historyStore *history.Store, templateStore *templates.Store, companyStore *company.Store, limits ReceiptLimits, logger *slog.Logger) *ReceiptService {
	if limits.MaxTextBytes <= 0 {
		limits.MaxTextBytes = defaultMaxTextBytes
	}
	if limits.VATRatePercent <= 0 {
		limits.VATRatePercent = receipt.DefaultVATRatePercent
	}

	return &ReceiptService{
		extractor:      extractor,
		validator:      validator,
		history:        historyStore,
		templates:      templateStore,
		company:        companyStore,
		maxTextBytes:   limits.MaxTextBytes,
		vatRatePercent: limits.VATRatePercent,
		logger:         logger,
	}
}

func (s *ReceiptService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

func (s *ReceiptService) MaxTextBytes() int64 {
	return s.maxTextBytes
}

// ParseResult carries an extracted record together with the fields a receipt
// would still need.
type ParseResult struct {
	Order    *models.OrderRecord `json:"order"`
	Warnings validation.Errors   `json:"warnings,omitempty"`
}

// Parse extracts an order record from pasted text. A record without an order ID
// is rejected with ErrNoOrderID.
func (s *ReceiptService) Parse(ctx context.Context, text string) (*ParseResult, error) {
	logger := s.loggerFromContext(ctx)

	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	if int64(len(text)) > s.maxTextBytes {
		logger.Warn("order text rejected", "bytes", len(text), "max_bytes", s.maxTextBytes)
		return nil, ErrInputTooLarge
	}

	order, err := s.extractor.Extract(text)
	if err != nil {
		logger.Error("order extraction failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	if order.OrderID == "" {
		logger.Info("order text has no order id", "bytes", len(text))
		return nil, ErrNoOrderID
	}

	result := &ParseResult{Order: order}
	if err := s.validator.Complete(order); err != nil {
		var fieldErrs validation.Errors
		if !errors.As(err, &fieldErrs) {
			return nil, err
		}
		result.Warnings = fieldErrs
	}

	logger.Info("order parsed",
		"order_id", order.OrderID,
		"items", len(order.Items),
		"total", order.Totals.Total,
		"warnings", len(result.Warnings),
	)
	return result, nil
}

// SaveOrder stores a shape-valid record at the head of the history.
func (s *ReceiptService) SaveOrder(ctx context.Context, order *models.OrderRecord) error {
	if err := s.validator.Shape(order); err != nil {
		return err
	}
	if err := s.history.Save(ctx, order); err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	s.loggerFromContext(ctx).Info("order saved to history", "order_id", order.OrderID)
	return nil
}

func (s *ReceiptService) History(ctx context.Context) ([]*models.OrderRecord, error) {
	orders, err := s.history.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list order history: %w", err)
	}
	return orders, nil
}

func (s *ReceiptService) LoadOrder(ctx context.Context, orderID string) (*models.OrderRecord, error) {
	order, err := s.history.Find(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order %s: %w", orderID, err)
	}
	return order, nil
}

// ExportCSV writes the history as CSV. An empty history yields history.ErrEmpty.
func (s *ReceiptService) ExportCSV(ctx context.Context, w io.Writer) error {
	orders, err := s.History(ctx)
	if err != nil {
		return err
	}
	return history.WriteCSV(w, orders)
}

func (s *ReceiptService) ClearHistory(ctx context.Context) error {
	if err := s.history.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear order history: %w", err)
	}
	s.loggerFromContext(ctx).Info("order history cleared")
	return nil
}

// UpdateItem patches one line item of a stored order and returns the saved copy.
func (s *ReceiptService) UpdateItem(ctx context.Context, orderID string, index int, patch models.ItemPatch) (*models.OrderRecord, error) {
	return s.editStored(ctx, "item", orderID, func(o *models.OrderRecord) error {
		return o.UpdateItem(index, patch)
	})
}

func (s *ReceiptService) SetShipping(ctx context.Context, orderID string, amount float64) (*models.OrderRecord, error) {
	return s.editStored(ctx, "shipping", orderID, func(o *models.OrderRecord) error {
		return o.SetShipping(amount)
	})
}

func (s *ReceiptService) SetVATRate(ctx context.Context, orderID string, percent float64) (*models.OrderRecord, error) {
	return s.editStored(ctx, "vat_rate", orderID, func(o *models.OrderRecord) error {
		return o.SetVATRate(percent)
	})
}

func (s *ReceiptService) UpdateCustomer(ctx context.Context, orderID string, patch models.CustomerPatch) (*models.OrderRecord, error) {
	return s.editStored(ctx, "customer", orderID, func(o *models.OrderRecord) error {
		o.UpdateCustomer(patch)
		return nil
	})
}

func (s *ReceiptService) UpdateShippingDetails(ctx context.Context, orderID string, patch models.ShippingDetailsPatch) (*models.OrderRecord, error) {
	return s.editStored(ctx, "shipping_details", orderID, func(o *models.OrderRecord) error {
		o.UpdateShippingDetails(patch)
		return nil
	})
}

// editStored applies an edit to the history entry for orderID. The entry is
// only replaced when the edited copy is still shape-valid.
func (s *ReceiptService) editStored(ctx context.Context, field, orderID string, apply func(o *models.OrderRecord) error) (*models.OrderRecord, error) {
	edited, err := s.history.Update(ctx, orderID, func(order *models.OrderRecord) (*models.OrderRecord, error) {
		return s.edit(order, apply)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to edit order %s: %w", orderID, err)
	}
	s.loggerFromContext(ctx).Info("order edited",
		"order_id", orderID,
		"field", field,
		"total", edited.Totals.Total,
	)
	return edited, nil
}

func (s *ReceiptService) edit(order *models.OrderRecord, apply func(o *models.OrderRecord) error) (*models.OrderRecord, error) {
	if order == nil {
		return nil, fmt.Errorf("order is required")
	}
	edited := order.Clone()
	if err := apply(edited); err != nil {
		return nil, err
	}
	if err := s.validator.Shape(edited); err != nil {
		return nil, err
	}
	return edited, nil
}

func (s *ReceiptService) Company(ctx context.Context) (*models.CompanyDetails, error) {
	return s.company.Get(ctx)
}

func (s *ReceiptService) SaveCompany(ctx context.Context, details *models.CompanyDetails) error {
	if err := s.validator.ValidateCompany(details); err != nil {
		return err
	}
	return s.company.Save(ctx, details)
}

func (s *ReceiptService) Templates(ctx context.Context) ([]models.ReceiptTemplate, error) {
	return s.templates.List(ctx)
}

func (s *ReceiptService) SaveTemplate(ctx context.Context, template *models.ReceiptTemplate) error {
	if err := s.validator.ValidateTemplate(template); err != nil {
		return err
	}
	return s.templates.Save(ctx, *template)
}

func (s *ReceiptService) DeleteTemplate(ctx context.Context, id string) error {
	return s.templates.Delete(ctx, id)
}

type RenderReceiptInput struct {
	OrderID    string
	TemplateID string
	Options    receipt.Options
}

// RenderReceipt renders the HTML receipt for an order in the history. The order
// must pass completeness validation.
func (s *ReceiptService) RenderReceipt(ctx context.Context, w io.Writer, input RenderReceiptInput) error {
	ctx, logger := logging.With(ctx, s.logger, "order_id", input.OrderID)

	order, err := s.LoadOrder(ctx, input.OrderID)
	if err != nil {
		return err
	}
	if err := s.validator.Complete(order); err != nil {
		return err
	}

	details, err := s.company.Get(ctx)
	if err != nil {
		return err
	}

	templateID := input.TemplateID
	if templateID == "" {
		templateID = templates.DefaultTemplateID
	}
	template, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return fmt.Errorf("failed to load template %s: %w", templateID, err)
	}

	opts := input.Options
	if opts.VATRatePercent <= 0 {
		opts.VATRatePercent = s.vatRatePercent
	}
	doc := receipt.Build(order, *details, *template, opts)
	if err := receipt.Render(w, doc); err != nil {
		return err
	}

	logger.Info("receipt rendered",
		"receipt_number", doc.ReceiptNumber,
		"template_id", template.ID,
	)
	return nil
}
