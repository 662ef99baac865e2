package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/sourcepilot/sourcing-aggregator/pkg/model"
)

// Connector is one upstream product catalog (Alibaba, Made-in-China, CJ
// Dropshipping, Shopify global catalog). Implementations own their request
// and response shapes and return already-normalized products.
type Connector interface {
	// Name returns the source identifier used to tag results.
	Name() string

	// Search queries the upstream for products matching query, up to limit.
	// An empty or whitespace-only query returns an empty slice without I/O.
	Search(ctx context.Context, query string, limit int) ([]model.Product, error)

	// HealthCheck verifies that authentication against the upstream
	// currently succeeds.
	HealthCheck(ctx context.Context) error
}

// ErrNotConfigured marks a source whose client credentials are not set.
// The aggregator treats it as an empty contribution, never a hard failure.
var ErrNotConfigured = errors.New("source credentials not configured")

// Error is an upstream failure: a non-success status or a source-reported
// error payload. It is absorbed by the retry layer, never surfaced raw.
type Error struct {
	Source  string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: upstream error %d: %s", e.Source, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: upstream error: %s", e.Source, e.Message)
}

// NewError builds an upstream error for a source.
func NewError(source string, status int, message string) *Error {
	return &Error{Source: source, Status: status, Message: message}
}
