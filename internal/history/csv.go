package history

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gitshopapp/orderreceipt/internal/models"
)

var ErrEmpty = errors.New("order history is empty")

var csvHeader = []string{"Order ID", "Date", "Customer", "Items", "Total"}

// WriteCSV writes one row per order with every field quoted.
func WriteCSV(w io.Writer, orders []*models.OrderRecord) error {
	if len(orders) == 0 {
		return ErrEmpty
	}

	rows := make([]string, 0, len(orders)+1)
	rows = append(rows, strings.Join(csvHeader, ","))
	for _, order := range orders {
		rows = append(rows, strings.Join([]string{
			quote(order.OrderID),
			quote(order.PurchaseDate),
			quote(order.Customer.Name),
			quote(strconv.Itoa(len(order.Items))),
			quote(fmt.Sprintf("£%.2f", order.Totals.Total)),
		}, ","))
	}

	_, err := io.WriteString(w, strings.Join(rows, "\n"))
	return err
}

func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
