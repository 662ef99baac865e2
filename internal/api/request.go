package api

import (
	"errors"

	"github.com/sourcepilot/sourcing-aggregator/pkg/model"
)

// SearchRequest is the payload for a multi-source product search.
type SearchRequest struct {
	Query   string   `json:"query"`
	Sources []string `json:"sources"`
	Limit   int      `json:"limit"`
}

// Validate applies defaults and rejects malformed inputs. An empty query is
// allowed here; the aggregator answers it with an empty result.
func (r *SearchRequest) Validate() error {
	if len(r.Sources) == 0 {
		r.Sources = model.KnownSources
	}
	if r.Limit < 0 {
		return errors.New("limit must not be negative")
	}
	return nil
}

// BatchSearchRequest is the payload for searching several queries in sequence.
type BatchSearchRequest struct {
	Queries []string `json:"queries"`
	Sources []string `json:"sources"`
	Limit   int      `json:"limit"`
}

func (r *BatchSearchRequest) Validate() error {
	if len(r.Queries) == 0 {
		return errors.New("queries must not be empty")
	}
	if len(r.Sources) == 0 {
		r.Sources = model.KnownSources
	}
	if r.Limit < 0 {
		return errors.New("limit must not be negative")
	}
	return nil
}

// SaveProductRequest pins a product for a merchant.
type SaveProductRequest struct {
	MerchantID string        `json:"merchant_id"`
	Product    model.Product `json:"product"`
}

func (r *SaveProductRequest) Validate() error {
	if r.MerchantID == "" {
		return errors.New("merchant_id is required")
	}
	if r.Product.ID == "" || r.Product.Source == "" {
		return errors.New("product id and source are required")
	}
	return nil
}

// PushProductRequest records a product pushed into a merchant's catalog.
type PushProductRequest struct {
	MerchantID string `json:"merchant_id"`
	ProductID  string `json:"product_id"`
	Source     string `json:"source"`
	Title      string `json:"title"`
}

func (r *PushProductRequest) Validate() error {
	if r.MerchantID == "" {
		return errors.New("merchant_id is required")
	}
	if r.ProductID == "" || r.Source == "" {
		return errors.New("product_id and source are required")
	}
	return nil
}
