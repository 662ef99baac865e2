package model

import "time"

// Source identifiers for the supported upstream catalogs.
const (
	SourceAlibaba        = "alibaba"
	SourceMadeInChina    = "made-in-china"
	SourceCJDropshipping = "cj-dropshipping"
	SourceShopify        = "shopify"
)

// KnownSources lists every source identifier the aggregator can dispatch to.
var KnownSources = []string{SourceAlibaba, SourceMadeInChina, SourceCJDropshipping, SourceShopify}

// Product is the canonical product shape every source connector normalizes into.
// Instances are immutable once produced by a mapper; callers only filter/sort them.
// ID and Source are always set; everything else is best-effort.
type Product struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Currency     string   `json:"currency"`
	ImageURL     string   `json:"image_url,omitempty"`
	SupplierName string   `json:"supplier_name,omitempty"`
	SourceURL    string   `json:"source_url,omitempty"`
	MOQ          int      `json:"moq"`
	Rating       *float64 `json:"rating,omitempty"`
	ReviewCount  *int     `json:"review_count,omitempty"`
	Source       string   `json:"source"`
}

// SourceResult is one source's contribution to an aggregated search.
// Degraded means the source exhausted its retries and contributed nothing;
// callers treat it like an empty list, but tests and diagnostics can tell
// "no products" and "source failed" apart.
type SourceResult struct {
	Source   string    `json:"source"`
	Products []Product `json:"products"`
	Degraded bool      `json:"degraded,omitempty"`
}

// AggregatedResult maps each requested source to its contribution.
// Every requested source has an entry, empty (never missing) on failure.
type AggregatedResult struct {
	Query    string                  `json:"query"`
	Results  map[string]SourceResult `json:"results"`
	Duration time.Duration           `json:"duration"`
}

// TotalProducts returns the number of products across all sources.
func (r *AggregatedResult) TotalProducts() int {
	n := 0
	for _, sr := range r.Results {
		n += len(sr.Products)
	}
	return n
}

// SavedProduct is a product a merchant pinned for later comparison.
type SavedProduct struct {
	MerchantID string    `json:"merchant_id"`
	Product    Product   `json:"product"`
	SavedAt    time.Time `json:"saved_at"`
}

// PushRecord tracks a product pushed into a merchant's own catalog.
type PushRecord struct {
	MerchantID string    `json:"merchant_id"`
	ProductID  string    `json:"product_id"`
	Source     string    `json:"source"`
	PushedAt   time.Time `json:"pushed_at"`
}
