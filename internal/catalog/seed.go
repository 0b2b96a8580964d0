package catalog

import (
	"github.com/shopspring/decimal"
	"github.com/talkincode/storefront/internal/domain"
)

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

// Seed returns the built-in catalog used when nothing was persisted yet or
// when the vendor resets the catalog.
func Seed() []domain.Product {
	return []domain.Product{
		{
			ID:          "pao-tradicional",
			Name:        "Pão de Lenha Tradicional",
			Description: "Assado lentamente em forno de barro, com crosta rústica e miolo super macio.",
			Price:       price("15.00"),
			Category:    "Pães",
			ImageURL:    "https://images.unsplash.com/photo-1549931319-a545dcf3bc73?q=80&w=600&auto=format&fit=crop",
		},
		{
			ID:          "pao-doce",
			Name:        "Pão Artesanal de Massa Doce",
			Description: "Massa super macia com um toque delicado de baunilha, ideal para o café da tarde.",
			Price:       price("12.00"),
			Category:    "Pães",
			ImageURL:    "https://images.unsplash.com/photo-1509440159596-0249088772ff?q=80&w=600&auto=format&fit=crop",
		},
		{
			ID:          "pudim-fazenda",
			Name:        "Pudim de Leite Condensado",
			Description: "Receita clássica com textura aveludada e calda de caramelo artesanal.",
			Price:       price("25.00"),
			Category:    "Sobremesas",
			ImageURL:    "https://images.unsplash.com/photo-1528975604071-b4dc52a2d18c?q=80&w=600&auto=format&fit=crop",
		},
		{
			ID:          "mousse-maracuja",
			Name:        "Mousse de Maracujá Fresco",
			Description: "A doçura perfeita equilibrada com o azedinho da fruta colhida no pé.",
			Price:       price("7.00"),
			Category:    "Sobremesas",
			ImageURL:    "https://images.unsplash.com/photo-1590080875515-8a3a8dc5735e?q=80&w=600&auto=format&fit=crop",
		},
		{
			ID:          "tempero-caseiro",
			Name:        "Tempero Caseiro",
			Description: "Alho, cebola e ervas do quintal moídos na hora.",
			Category:    "Temperos",
			ImageURL:    "https://images.unsplash.com/photo-1596040033229-a9821ebd058d?q=80&w=600&auto=format&fit=crop",
			Variants: []domain.ProductVariant{
				{ID: "tempero-caseiro-g", Label: "G", Price: decimal.RequireFromString("8.00")},
				{ID: "tempero-caseiro-p", Label: "P", Price: decimal.RequireFromString("5.00")},
			},
		},
		{
			ID:          "cha-quintal",
			Name:        "Chá Especial do Quintal",
			Description: "Folhas selecionadas e secas naturalmente, aroma puro do campo.",
			Price:       price("8.50"),
			Category:    "Chás",
			ImageURL:    "https://images.unsplash.com/photo-1564890369478-c89ca6d9cde9?q=80&w=600&auto=format&fit=crop",
		},
	}
}
