package shopify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRecords(t *testing.T) {
	records := []Record{{
		ProductID:   "gid://shopify/Product/81",
		Title:       "Linen Throw Pillow",
		Description: "Stonewashed linen, 45x45cm",
		PriceRange:  PriceRange{Min: "24.00", Max: "32.00", Currency: "EUR"},
		URL:         "https://store.example.com/products/pillow",
		ImageURL:    "https://cdn.shopify.com/pillow.jpg",
		Vendor:      "Maison Lin",
		Rating:      4.9,
		ReviewCount: 57,
	}}

	products := FromRecords(records)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, "gid://shopify/Product/81", p.ID)
	assert.Equal(t, "Linen Throw Pillow", p.Title)
	require.NotNil(t, p.Price)
	assert.InDelta(t, 24.00, *p.Price, 1e-9)
	assert.Equal(t, "EUR", p.Currency)
	assert.Equal(t, "Maison Lin", p.SupplierName)
	assert.Equal(t, 1, p.MOQ)
	assert.Equal(t, "shopify", p.Source)
}

func TestFromRecordsStoreNameAlias(t *testing.T) {
	p := FromRecords([]Record{{ID: "p1", Title: "Candle", StoreName: "Waxworks"}})[0]
	assert.Equal(t, "Waxworks", p.SupplierName)
}

func TestParsePayloadRoundTrip(t *testing.T) {
	res := &Result{Content: []Content{{
		Type: "text",
		Text: `{"products":[{"product_id":"p2","title":"Mug","price_range":{"min":"12.5","currency":"USD"}}]}`,
	}}}

	var payload catalogPayload
	require.NoError(t, res.ParsePayload(&payload))
	require.Len(t, payload.Products, 1)
	assert.Equal(t, "Mug", payload.Products[0].Title)
}

func TestParsePayloadNoTextContent(t *testing.T) {
	res := &Result{Content: []Content{{Type: "image", Text: ""}}}
	var payload catalogPayload
	assert.Error(t, res.ParsePayload(&payload))
}
