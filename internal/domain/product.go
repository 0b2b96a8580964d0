package domain

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// ProductID identifies a catalog product.
type ProductID string

// LineID identifies an orderable line item: the id of a product without
// variants, or the id of a ProductVariant.
type LineID string

// ProductVariant is a priced option of a product (size, flavour...)
type ProductVariant struct {
	ID    LineID          `json:"id"`
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
}

// Product is a catalog entry. A product with variants is not orderable
// itself; only its variants are, and its own Price must be absent.
type Product struct {
	ID          ProductID           `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       decimal.NullDecimal `json:"price"`
	Category    string              `json:"category"`
	ImageURL    string              `json:"imageUrl"`
	Variants    []ProductVariant    `json:"variants,omitempty"`
}

// HasVariants reports whether only the variants of p are orderable.
func (p Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// LineID returns the line-item id of a product without variants.
func (p Product) LineID() LineID {
	return LineID(p.ID)
}

// LineIDs returns every line-item id p exposes to the cart.
func (p Product) LineIDs() []LineID {
	if !p.HasVariants() {
		return []LineID{p.LineID()}
	}
	ids := make([]LineID, 0, len(p.Variants))
	for _, v := range p.Variants {
		ids = append(ids, v.ID)
	}
	return ids
}

// Clone returns a deep copy of p.
func (p Product) Clone() Product {
	if p.Variants != nil {
		p.Variants = append([]ProductVariant(nil), p.Variants...)
	}
	return p
}

// Normalize trims the text fields and puts them in NFC form so labels
// typed on different devices compare equal.
func (p Product) Normalize() Product {
	p = p.Clone()
	p.ID = ProductID(strings.TrimSpace(string(p.ID)))
	p.Name = normalizeText(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Category = normalizeText(p.Category)
	p.ImageURL = strings.TrimSpace(p.ImageURL)
	for i := range p.Variants {
		p.Variants[i].ID = LineID(strings.TrimSpace(string(p.Variants[i].ID)))
		p.Variants[i].Label = normalizeText(p.Variants[i].Label)
	}
	return p
}

func normalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// ParsePrice parses a price typed as "12,50" or "12.50".
func ParsePrice(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return decimal.Zero, &ValidationError{Field: "price", Reason: "is required"}
	}
	d, err := decimal.NewFromString(strings.Replace(text, ",", ".", 1))
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "price", Reason: "is not a number"}
	}
	if d.IsNegative() {
		return decimal.Zero, &ValidationError{Field: "price", Reason: "must not be negative"}
	}
	return d, nil
}

// Validate checks the fields of a single product. Uniqueness of ids
// across a catalog is checked by ValidateCatalog.
func (p Product) Validate() error {
	switch {
	case p.ID == "":
		return &ValidationError{Field: "id", Reason: "is required"}
	case p.Name == "":
		return &ValidationError{Field: "name", Reason: "is required"}
	case p.ImageURL == "":
		return &ValidationError{Field: "imageUrl", Reason: "is required"}
	}

	if !p.HasVariants() {
		if !p.Price.Valid {
			return &ValidationError{Field: "price", Reason: "is required"}
		}
		if p.Price.Decimal.IsNegative() {
			return &ValidationError{Field: "price", Reason: "must not be negative"}
		}
		return nil
	}

	if p.Price.Valid {
		return &ValidationError{Field: "price", Reason: "must be empty when the product has variants"}
	}
	seen := make(map[LineID]struct{}, len(p.Variants))
	for i, v := range p.Variants {
		field := "variants[" + v.Label + "]"
		switch {
		case v.ID == "":
			return &ValidationError{Field: field, Reason: "id is required"}
		case v.Label == "":
			return &ValidationError{Field: field, Reason: "label is required"}
		case v.Price.IsNegative():
			return &ValidationError{Field: field, Reason: "price must not be negative"}
		case v.ID == p.LineID():
			return &ValidationError{Field: field, Reason: "id collides with its product id"}
		}
		if _, dup := seen[v.ID]; dup {
			return &ValidationError{Field: field, Reason: "duplicate variant id " + string(p.Variants[i].ID)}
		}
		seen[v.ID] = struct{}{}
	}
	return nil
}

// ValidateCatalog validates every product and checks that no line-item id
// is exposed twice across the catalog.
func ValidateCatalog(products []Product) error {
	owners := make(map[string]ProductID, len(products))
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return err
		}
		ids := []string{string(p.ID)}
		for _, v := range p.Variants {
			ids = append(ids, string(v.ID))
		}
		for _, id := range ids {
			if owner, taken := owners[id]; taken {
				return &ValidationError{Field: "id", Reason: "id " + id + " is already used by product " + string(owner)}
			}
			owners[id] = p.ID
		}
	}
	return nil
}
