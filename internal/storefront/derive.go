package storefront

import "github.com/talkincode/storefront/internal/domain"

// DeriveCart prices the cart against the catalog. Lines follow catalog
// order, then variant declaration order. Ids that resolve to nothing and
// quantities of zero are left out, so a cart that outlived its products
// never fails to derive.
func DeriveCart(products []domain.Product, quantities domain.Quantities) []domain.CartLine {
	lines := make([]domain.CartLine, 0, len(quantities))
	if len(quantities) == 0 {
		return lines
	}
	for _, p := range products {
		if p.HasVariants() {
			for _, v := range p.Variants {
				if n := quantities.Get(v.ID); n > 0 {
					lines = append(lines, domain.NewCartLine(v.ID, p.Name+" ("+v.Label+")", v.Price, n))
				}
			}
			continue
		}
		if !p.Price.Valid {
			continue
		}
		if n := quantities.Get(p.LineID()); n > 0 {
			lines = append(lines, domain.NewCartLine(p.LineID(), p.Name, p.Price.Decimal, n))
		}
	}
	return lines
}
