package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/storefront/internal/domain"
)

func TestCSVRoundTrip(t *testing.T) {
	in := []domain.Product{bread(), spice()}
	data, err := ExportCSV(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), "product_id,name,description,category,image_url,price,variant_id,variant_label,variant_price")

	out, err := ImportCSV(data)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, domain.ProductID("bread"), out[0].ID)
	assert.True(t, out[0].Price.Valid)
	assert.Equal(t, "15.00", out[0].Price.Decimal.StringFixed(2))
	assert.False(t, out[1].Price.Valid)
	require.Len(t, out[1].Variants, 2)
	assert.Equal(t, domain.LineID("spice-S"), out[1].Variants[1].ID)
	assert.Equal(t, "5.00", out[1].Variants[1].Price.StringFixed(2))
	require.NoError(t, domain.ValidateCatalog(out))
}

func TestCSVRoundTripKeepsSubCentPrices(t *testing.T) {
	flour := bread()
	flour.ID = "flour"
	flour.Price = price("0.125")
	herbs := spice()
	herbs.Variants[0].Price = decimal.RequireFromString("2.3333")

	data, err := ExportCSV([]domain.Product{flour, herbs})
	require.NoError(t, err)
	assert.Contains(t, string(data), ",0.125,")

	out, err := ImportCSV(data)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out[0].Price.Decimal.Equal(decimal.RequireFromString("0.125")), out[0].Price.Decimal.String())
	assert.True(t, out[1].Variants[0].Price.Equal(decimal.RequireFromString("2.3333")), out[1].Variants[0].Price.String())
}

func TestImportCSVCommaPricesAndBlankIDs(t *testing.T) {
	data := []byte("product_id,name,description,category,image_url,price,variant_id,variant_label,variant_price\n" +
		",Broa,,Pães,https://img/broa.jpg,\"9,90\",,,\n" +
		",Geleia,,Outros,https://img/geleia.jpg,,,,\n")
	out, err := ImportCSV(data)
	require.NoError(t, err)
	require.Len(t, out, 2, "blank ids are never merged")
	assert.Equal(t, "9.90", out[0].Price.Decimal.StringFixed(2))
	assert.False(t, out[1].Price.Valid)
}

func TestImportCSVBadPrice(t *testing.T) {
	data := []byte("product_id,name,price\np1,Broa,abc\n")
	_, err := ImportCSV(data)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestAssignIDs(t *testing.T) {
	gen, err := NewIDGenerator(1)
	require.NoError(t, err)

	p := spice()
	p.ID = ""
	p.Variants[0].ID = ""
	got := gen.AssignIDs(p)
	assert.NotEmpty(t, got.ID)
	assert.Contains(t, string(got.Variants[0].ID), string(got.ID)+"-")
	assert.Equal(t, domain.LineID("spice-S"), got.Variants[1].ID)
	assert.Empty(t, p.Variants[0].ID, "input is not modified")
}
