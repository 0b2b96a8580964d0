package domain

import "github.com/shopspring/decimal"

// Quantities maps line-item ids to their cart quantity. A missing key and a
// zero value mean the same thing.
type Quantities map[LineID]int

// Get returns the quantity of id, treating negative values as zero.
func (q Quantities) Get(id LineID) int {
	if n := q[id]; n > 0 {
		return n
	}
	return 0
}

// Clone returns a copy of q without zero entries.
func (q Quantities) Clone() Quantities {
	out := make(Quantities, len(q))
	for id, n := range q {
		if n > 0 {
			out[id] = n
		}
	}
	return out
}

// CartLine is a priced order line derived from the catalog and the cart.
type CartLine struct {
	LineID      LineID          `json:"lineId"`
	DisplayName string          `json:"displayName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// NewCartLine builds a line with LineTotal = UnitPrice x Quantity.
func NewCartLine(id LineID, name string, unitPrice decimal.Decimal, quantity int) CartLine {
	return CartLine{
		LineID:      id,
		DisplayName: name,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		LineTotal:   unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}
