package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gitshopapp/orderreceipt/internal/models"
)

// scanState is threaded through the line scan. current is nil until some
// field of the next item has been seen.
type scanState struct {
	items    []models.LineItem
	current  *models.LineItem
	shipping float64
}

// flush moves the pending item, if any, into the item list.
func (s scanState) flush() scanState {
	if s.current == nil {
		return s
	}
	s.items = append(s.items, *s.current)
	s.current = nil
	return s
}

// pending returns a copy of the accumulator so a step never mutates the
// previous state's item.
func (s scanState) pending() models.LineItem {
	if s.current == nil {
		return models.LineItem{}
	}
	return *s.current
}

func (s scanState) with(item models.LineItem) scanState {
	s.current = &item
	return s
}

func scanLines(lines []string) (scanState, error) {
	state := scanState{items: []models.LineItem{}}
	for i := range lines {
		next, err := step(state, lines, i)
		if err != nil {
			return scanState{}, fmt.Errorf("line %d: %w", i+1, err)
		}
		state = next
	}
	return state.flush(), nil
}

func step(state scanState, lines []string, i int) (scanState, error) {
	line := lines[i]

	if match := shippingTotalPattern.FindStringSubmatch(line); match != nil {
		amount, ok, err := parseAmount(match[1])
		if err != nil {
			return state, fmt.Errorf("shipping total: %w", err)
		}
		if ok {
			state.shipping = amount
		}
	}

	if match := promotionPattern.FindStringSubmatch(line); match != nil {
		amount, ok, err := parseAmount(match[1])
		if err != nil {
			return state, fmt.Errorf("promotion: %w", err)
		}
		if ok {
			state.items = append(state.items, models.NewPromotion(amount))
		}
	}

	switch {
	case strings.HasPrefix(line, asinLabel):
		state = state.flush()
		return state.with(models.LineItem{
			Name: itemName(lines, i),
			ASIN: strings.TrimSpace(strings.Replace(line, asinLabel, "", 1)),
		}), nil
	case strings.HasPrefix(line, skuLabel):
		item := state.pending()
		item.SKU = strings.TrimSpace(strings.Replace(line, skuLabel, "", 1))
		return state.with(item), nil
	}

	if match := quantityPricePattern.FindStringSubmatch(line); match != nil {
		quantity, err := parseQuantity(match[1])
		if err != nil {
			return state, fmt.Errorf("quantity: %w", err)
		}
		price, ok, err := parseAmount(match[2])
		if err != nil {
			return state, fmt.Errorf("unit price: %w", err)
		}
		if !ok {
			return state, nil
		}
		item := state.pending()
		item = models.NewLineItem(item.Name, item.ASIN, item.SKU, quantity, price)
		return state.with(item), nil
	}

	return state, nil
}

// parseQuantity saturates at the largest int instead of failing on overflow.
func parseQuantity(s string) (int, error) {
	quantity, err := strconv.Atoi(s)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	return quantity, nil
}

// parseAmount reports ok=false for a value too large for a float64, so the
// line is ignored rather than producing an infinite total.
func parseAmount(s string) (float64, bool, error) {
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return amount, true, nil
}

// itemName walks back from the ASIN line at index i and returns the first
// non-empty line that is not a table header. It gives up at a line holding
// other item data. The candidate is not validated further, so a stray label
// can end up as the product name.
func itemName(lines []string, i int) string {
	for j := i - 1; j >= 0; j-- {
		line := lines[j]
		if nameBoundaryPattern.MatchString(line) {
			return ""
		}
		if line != "" && !tableHeaderPattern.MatchString(line) {
			return line
		}
	}
	return ""
}
