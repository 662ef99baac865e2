package alibaba

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRecordsFullRecord(t *testing.T) {
	records := []Record{{
		ProductID:   "ali-991",
		Subject:     "Wireless Earbuds TWS Pro",
		Description: "Bluetooth 5.3, noise cancelling",
		PriceInfo:   PriceInfo{Price: "US $3.20-5.80", Currency: "usd"},
		ImageURL:    "https://img.example.com/earbuds.jpg",
		CompanyName: "Shenzhen Audio Co.",
		DetailURL:   "https://alibaba.com/p/991",
		MOQ:         "50 pieces",
		Evaluation:  4.6,
		ReviewCount: 212,
	}}

	products := FromRecords(records)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, "ali-991", p.ID)
	assert.Equal(t, "Wireless Earbuds TWS Pro", p.Title)
	assert.Equal(t, "alibaba", p.Source)
	require.NotNil(t, p.Price)
	assert.InDelta(t, 3.20, *p.Price, 1e-9)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, "Shenzhen Audio Co.", p.SupplierName)
	assert.Equal(t, 50, p.MOQ)
	require.NotNil(t, p.Rating)
	assert.InDelta(t, 4.6, *p.Rating, 1e-9)
	require.NotNil(t, p.ReviewCount)
	assert.Equal(t, 212, *p.ReviewCount)
}

func TestFromRecordsAliases(t *testing.T) {
	// title in "title", price at top level, image in mainImage,
	// supplier in supplierName, moq in minOrderQuantity
	records := []Record{{
		ProductID:        "ali-1",
		Title:            "USB-C Cable",
		Price:            "0.89",
		MainImage:        "https://img.example.com/cable.jpg",
		SupplierName:     "Dongguan Cables Ltd.",
		MinOrderQuantity: "200",
	}}

	p := FromRecords(records)[0]
	assert.Equal(t, "USB-C Cable", p.Title)
	require.NotNil(t, p.Price)
	assert.InDelta(t, 0.89, *p.Price, 1e-9)
	assert.Equal(t, "https://img.example.com/cable.jpg", p.ImageURL)
	assert.Equal(t, "Dongguan Cables Ltd.", p.SupplierName)
	assert.Equal(t, 200, p.MOQ)
}

func TestFromRecordsMalformedRecordGetsDefaults(t *testing.T) {
	products := FromRecords([]Record{{}})
	require.Len(t, products, 1)

	p := products[0]
	assert.True(t, strings.HasPrefix(p.ID, "alibaba-"), "missing id must be synthesized")
	assert.Equal(t, "Untitled product", p.Title)
	assert.Nil(t, p.Price)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, 1, p.MOQ)
	assert.Nil(t, p.Rating)
	assert.Nil(t, p.ReviewCount)
	assert.Equal(t, "alibaba", p.Source)
}

func TestFromRecordsUnparsablePriceIsAbsentNotZero(t *testing.T) {
	products := FromRecords([]Record{{ProductID: "x", Subject: "Thing", Price: "negotiable"}})
	assert.Nil(t, products[0].Price)
}

func TestFromRecordsEmptyInput(t *testing.T) {
	assert.Empty(t, FromRecords(nil))
}
