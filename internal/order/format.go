package order

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/talkincode/storefront/internal/domain"
)

// Formatter renders money with a fixed currency symbol and decimal
// separator. The zero value prints bare numbers with a dot.
type Formatter struct {
	CurrencySymbol   string
	DecimalSeparator string
}

// Summary is the formatted order handed to a Sink.
type Summary struct {
	Text      string          `json:"text"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

// Money formats d with two decimal places.
func (f Formatter) Money(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if f.DecimalSeparator != "" && f.DecimalSeparator != "." {
		s = strings.Replace(s, ".", f.DecimalSeparator, 1)
	}
	if f.CurrencySymbol == "" {
		return s
	}
	return f.CurrencySymbol + " " + s
}

// Format lists every line followed by a total line. The total is summed
// from exact line totals and rounded only when printed. An empty input
// yields a zero total.
func (f Formatter) Format(lines []domain.CartLine) Summary {
	var (
		b     strings.Builder
		total = decimal.Zero
		count int
	)
	for _, l := range lines {
		fmt.Fprintf(&b, "%dx %s — %s\n", l.Quantity, l.DisplayName, f.Money(l.LineTotal))
		total = total.Add(l.LineTotal)
		count += l.Quantity
	}
	fmt.Fprintf(&b, "Total: %s", f.Money(total))
	return Summary{Text: b.String(), Total: total, ItemCount: count}
}
