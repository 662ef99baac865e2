package madeinchina

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRecords(t *testing.T) {
	records := []Record{{
		ItemID:      "mic-77",
		ProductName: "Solar Garden Light",
		Brief:       "IP65, warm white",
		UnitPrice:   2.35,
		Currency:    "cny",
		PicURL:      "https://img.example.com/light.jpg",
		MinOrder:    "100 Pieces",
		Company:     "Ningbo Lighting Co.",
		ProductURL:  "https://made-in-china.com/p/77",
		StarRating:  4.2,
		ReviewNum:   38,
	}}

	products := FromRecords(records)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, "mic-77", p.ID)
	assert.Equal(t, "Solar Garden Light", p.Title)
	assert.Equal(t, "made-in-china", p.Source)
	require.NotNil(t, p.Price)
	assert.InDelta(t, 2.35, *p.Price, 1e-9)
	assert.Equal(t, "CNY", p.Currency)
	assert.Equal(t, "Ningbo Lighting Co.", p.SupplierName)
	assert.Equal(t, 100, p.MOQ)
}

func TestFromRecordsVendorAlias(t *testing.T) {
	p := FromRecords([]Record{{ItemID: "mic-1", ProductName: "Mug", Vendor: "Yiwu Ceramics"}})[0]
	assert.Equal(t, "Yiwu Ceramics", p.SupplierName)
}

func TestFromRecordsDefaults(t *testing.T) {
	p := FromRecords([]Record{{}})[0]
	assert.True(t, strings.HasPrefix(p.ID, "made-in-china-"))
	assert.Equal(t, "Untitled product", p.Title)
	assert.Nil(t, p.Price, "zero price must map to absent, not zero")
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, 1, p.MOQ)
}
