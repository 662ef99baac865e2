package shopify

import (
	"github.com/sourcepilot/sourcing-aggregator/internal/source"
	"github.com/sourcepilot/sourcing-aggregator/pkg/model"
)

// FromRecords normalizes raw global-catalog products into canonical products.
// The catalog aggregates independent storefronts, so the supplier is the
// storefront (vendor or store name).
func FromRecords(records []Record) []model.Product {
	products := make([]model.Product, 0, len(records))
	for _, r := range records {
		products = append(products, model.Product{
			ID:           source.IDOrSynthesized(source.FirstString(r.ProductID, r.ID), Name),
			Title:        source.TitleOrFallback(r.Title),
			Description:  r.Description,
			Price:        source.ParsePrice(source.FirstString(r.PriceRange.Min, r.Price)),
			Currency:     source.CurrencyOrDefault(r.PriceRange.Currency),
			ImageURL:     r.ImageURL,
			SupplierName: source.FirstString(r.Vendor, r.StoreName),
			SourceURL:    r.URL,
			MOQ:          1,
			Rating:       source.Rating(r.Rating),
			ReviewCount:  source.Count(r.ReviewCount),
			Source:       Name,
		})
	}
	return products
}
