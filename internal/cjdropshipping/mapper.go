package cjdropshipping

import (
	"github.com/sourcepilot/sourcing-aggregator/internal/source"
	"github.com/sourcepilot/sourcing-aggregator/pkg/model"
)

// FromRecords normalizes raw CJ listings into canonical products. CJ has no
// MOQ concept for dropshipping; everything ships from quantity one.
func FromRecords(records []Record) []model.Product {
	products := make([]model.Product, 0, len(records))
	for _, r := range records {
		p := model.Product{
			ID:           source.IDOrSynthesized(r.Pid, Name),
			Title:        source.TitleOrFallback(r.ProductNameEn, r.ProductName),
			Description:  source.FirstString(r.Remark, r.CategoryName),
			Price:        source.ParsePrice(r.SellPrice),
			Currency:     "USD", // CJ quotes sell prices in USD
			ImageURL:     r.ProductImage,
			SupplierName: r.SupplierName,
			MOQ:          1,
			Source:       Name,
		}
		if r.Pid != "" {
			p.SourceURL = "https://cjdropshipping.com/product/" + r.Pid + ".html"
		}
		products = append(products, p)
	}
	return products
}
