package catalog

import (
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/talkincode/storefront/internal/domain"
)

// csvRow is one line of the catalog spreadsheet. A product with variants
// spans one row per variant and leaves price empty.
type csvRow struct {
	ProductID    string `csv:"product_id"`
	Name         string `csv:"name"`
	Description  string `csv:"description"`
	Category     string `csv:"category"`
	ImageURL     string `csv:"image_url"`
	Price        string `csv:"price"`
	VariantID    string `csv:"variant_id"`
	VariantLabel string `csv:"variant_label"`
	VariantPrice string `csv:"variant_price"`
}

// ExportCSV writes the catalog as a spreadsheet. Prices keep their full
// precision so that ImportCSV reads back the same amounts.
func ExportCSV(products []domain.Product) ([]byte, error) {
	rows := make([]*csvRow, 0, len(products))
	for _, p := range products {
		base := csvRow{
			ProductID:   string(p.ID),
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			ImageURL:    p.ImageURL,
		}
		if !p.HasVariants() {
			if p.Price.Valid {
				base.Price = p.Price.Decimal.String()
			}
			rows = append(rows, &base)
			continue
		}
		for _, v := range p.Variants {
			row := base
			row.VariantID = string(v.ID)
			row.VariantLabel = v.Label
			row.VariantPrice = v.Price.String()
			rows = append(rows, &row)
		}
	}
	return gocsv.MarshalBytes(&rows)
}

// ImportCSV parses a spreadsheet written by ExportCSV (or by hand). Rows
// sharing a product_id are merged into one product with variants. The
// result is not validated; callers upsert each product.
func ImportCSV(data []byte) ([]domain.Product, error) {
	var rows []*csvRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, errors.Wrap(err, "parse catalog csv")
	}

	var products []domain.Product
	index := make(map[string]int)
	for n, row := range rows {
		line := n + 2 // header is line 1
		pid := strings.TrimSpace(row.ProductID)
		i, seen := index[pid]
		if !seen || pid == "" {
			p := domain.Product{
				ID:          domain.ProductID(pid),
				Name:        row.Name,
				Description: row.Description,
				Category:    row.Category,
				ImageURL:    row.ImageURL,
			}
			if strings.TrimSpace(row.Price) != "" {
				d, err := domain.ParsePrice(row.Price)
				if err != nil {
					return nil, errors.Wrapf(err, "csv line %d", line)
				}
				p.Price = decimal.NewNullDecimal(d)
			}
			products = append(products, p)
			i = len(products) - 1
			if pid != "" {
				index[pid] = i
			}
		}

		if strings.TrimSpace(row.VariantLabel) == "" && strings.TrimSpace(row.VariantID) == "" {
			continue
		}
		vp, err := domain.ParsePrice(row.VariantPrice)
		if err != nil {
			return nil, errors.Wrapf(err, "csv line %d variant", line)
		}
		products[i].Variants = append(products[i].Variants, domain.ProductVariant{
			ID:    domain.LineID(strings.TrimSpace(row.VariantID)),
			Label: row.VariantLabel,
			Price: vp,
		})
	}
	return products, nil
}
