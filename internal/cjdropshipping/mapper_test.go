package cjdropshipping

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRecords(t *testing.T) {
	records := []Record{{
		Pid:           "cj-5501",
		ProductNameEn: "Wireless Earbuds With Case",
		ProductName:   "无线耳机",
		SellPrice:     "4.78",
		ProductImage:  "https://cc-west-usa.oss.aliyuncs.com/5501.jpg",
		SupplierName:  "CJ Warehouse",
		CategoryName:  "Consumer Electronics",
	}}

	products := FromRecords(records)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, "cj-5501", p.ID)
	assert.Equal(t, "Wireless Earbuds With Case", p.Title, "english name preferred")
	require.NotNil(t, p.Price)
	assert.InDelta(t, 4.78, *p.Price, 1e-9)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, 1, p.MOQ)
	assert.Equal(t, "https://cjdropshipping.com/product/cj-5501.html", p.SourceURL)
	assert.Equal(t, "cj-dropshipping", p.Source)
}

func TestFromRecordsPriceRange(t *testing.T) {
	p := FromRecords([]Record{{Pid: "x", ProductNameEn: "Lamp", SellPrice: "2.99 -- 5.43"}})[0]
	require.NotNil(t, p.Price)
	assert.InDelta(t, 2.99, *p.Price, 1e-9)
}

func TestFromRecordsDefaults(t *testing.T) {
	p := FromRecords([]Record{{}})[0]
	assert.True(t, strings.HasPrefix(p.ID, "cj-dropshipping-"))
	assert.Equal(t, "Untitled product", p.Title)
	assert.Nil(t, p.Price)
	assert.Empty(t, p.SourceURL, "no url without a pid")
}
