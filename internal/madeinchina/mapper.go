package madeinchina

import (
	"github.com/sourcepilot/sourcing-aggregator/internal/source"
	"github.com/sourcepilot/sourcing-aggregator/pkg/model"
)

// FromRecords normalizes raw Made-in-China listings into canonical products.
func FromRecords(records []Record) []model.Product {
	products := make([]model.Product, 0, len(records))
	for _, r := range records {
		products = append(products, model.Product{
			ID:           source.IDOrSynthesized(r.ItemID, Name),
			Title:        source.TitleOrFallback(r.ProductName),
			Description:  r.Brief,
			Price:        source.ParsePriceNumber(r.UnitPrice),
			Currency:     source.CurrencyOrDefault(r.Currency),
			ImageURL:     r.PicURL,
			SupplierName: source.FirstString(r.Company, r.Vendor),
			SourceURL:    r.ProductURL,
			MOQ:          source.ParseMOQ(r.MinOrder),
			Rating:       source.Rating(r.StarRating),
			ReviewCount:  source.Count(r.ReviewNum),
			Source:       Name,
		})
	}
	return products
}
