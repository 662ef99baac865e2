package alibaba

import (
	"github.com/sourcepilot/sourcing-aggregator/internal/source"
	"github.com/sourcepilot/sourcing-aggregator/pkg/model"
)

// FromRecords normalizes raw Alibaba listings into canonical products.
// Pure function: malformed records get best-effort defaults, never dropped.
func FromRecords(records []Record) []model.Product {
	products := make([]model.Product, 0, len(records))
	for _, r := range records {
		products = append(products, model.Product{
			ID:           source.IDOrSynthesized(r.ProductID, Name),
			Title:        source.TitleOrFallback(r.Subject, r.Title),
			Description:  r.Description,
			Price:        source.ParsePrice(source.FirstString(r.PriceInfo.Price, r.Price)),
			Currency:     source.CurrencyOrDefault(r.PriceInfo.Currency),
			ImageURL:     source.FirstString(r.ImageURL, r.MainImage),
			SupplierName: source.FirstString(r.CompanyName, r.SupplierName),
			SourceURL:    r.DetailURL,
			MOQ:          source.ParseMOQ(source.FirstString(r.MOQ, r.MinOrderQuantity)),
			Rating:       source.Rating(r.Evaluation),
			ReviewCount:  source.Count(r.ReviewCount),
			Source:       Name,
		})
	}
	return products
}
