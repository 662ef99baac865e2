package api

import "github.com/sourcepilot/sourcing-aggregator/pkg/model"

// SearchResponse is the wire shape of one aggregated search.
type SearchResponse struct {
	Query         string                        `json:"query"`
	Results       map[string]model.SourceResult `json:"results"`
	TotalProducts int                           `json:"total_products"`
	DurationMs    int64                         `json:"duration_ms"`
}

func toSearchResponse(res *model.AggregatedResult) SearchResponse {
	return SearchResponse{
		Query:         res.Query,
		Results:       res.Results,
		TotalProducts: res.TotalProducts(),
		DurationMs:    res.Duration.Milliseconds(),
	}
}

// BatchSearchResponse wraps the per-query results of a sequential batch.
type BatchSearchResponse struct {
	Results []SearchResponse `json:"results"`
}

// SourceHealthResponse reports one source's authentication health.
type SourceHealthResponse struct {
	Source   string `json:"source"`
	Healthy  bool   `json:"healthy"`
	ErrorMsg string `json:"error,omitempty"`
}
