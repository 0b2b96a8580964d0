package storefront

import (
	"sort"

	"github.com/talkincode/storefront/internal/domain"
)

// CategoryGroup is one section of the storefront.
type CategoryGroup struct {
	Category string           `json:"category"`
	Products []domain.Product `json:"products"`
}

// Categories returns the distinct category labels of products. Labels in
// priority come first, in priority order; the rest follow sorted by text.
func Categories(products []domain.Product, priority []string) []string {
	rank := make(map[string]int, len(priority))
	for i, c := range priority {
		if _, dup := rank[c]; !dup {
			rank[c] = i
		}
	}
	rankOf := func(c string) int {
		if i, ok := rank[c]; ok {
			return i
		}
		return len(priority)
	}

	seen := make(map[string]struct{})
	var labels []string
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		labels = append(labels, p.Category)
	}
	sort.Slice(labels, func(i, j int) bool {
		ri, rj := rankOf(labels[i]), rankOf(labels[j])
		if ri != rj {
			return ri < rj
		}
		return labels[i] < labels[j]
	})
	return labels
}

// ProjectCategories groups products under their category label, in the
// order given by Categories. Products keep catalog order within a group.
func ProjectCategories(products []domain.Product, priority []string) []CategoryGroup {
	labels := Categories(products, priority)
	index := make(map[string]int, len(labels))
	groups := make([]CategoryGroup, len(labels))
	for i, c := range labels {
		index[c] = i
		groups[i].Category = c
	}
	for _, p := range products {
		g := &groups[index[p.Category]]
		g.Products = append(g.Products, p)
	}
	return groups
}
