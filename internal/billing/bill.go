// Package billing renders an order into a bill: a derived total, a plain
// text representation, and a paginated PDF invoice, optionally dispatched
// by mail.
package billing

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one billed order line with its captured unit price.
type Line struct {
	Name      string
	Quantity  int32
	UnitPrice decimal.Decimal
}

// LineTotal returns unit price times quantity.
func (l Line) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt32(l.Quantity))
}

// Bill is the renderable view of an order. Lines keep insertion order.
type Bill struct {
	OrderID     uuid.UUID
	GuestName   string
	TableNumber string
	Lines       []Line
}

// Total sums unit_price * quantity over the lines with exact decimal
// arithmetic. Always computed fresh; never cached or stored.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// Total returns the bill's derived total.
func (b Bill) Total() decimal.Decimal {
	return Total(b.Lines)
}

// TextLines returns the bill as individual text lines: a header block, one
// line per order line, and a trailing total.
func (b Bill) TextLines() []string {
	lines := []string{
		fmt.Sprintf("Order #%s", b.OrderID),
		fmt.Sprintf("Guest: %s", b.GuestName),
		fmt.Sprintf("Table: %s", b.TableNumber),
		"Items:",
	}
	for _, l := range b.Lines {
		lines = append(lines, fmt.Sprintf(" - %d x %s @ %s = %s",
			l.Quantity, l.Name, l.UnitPrice.StringFixed(2), l.LineTotal().StringFixed(2)))
	}
	lines = append(lines, fmt.Sprintf("Total: %s", b.Total().StringFixed(2)))
	return lines
}

// Text returns the bill as a single newline-joined string.
func (b Bill) Text() string {
	return strings.Join(b.TextLines(), "\n")
}
