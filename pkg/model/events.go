package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope is the canonical event wrapper published to NATS.
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	CorrelationID uuid.UUID       `json:"correlation_id"`
	MerchantID    string          `json:"merchant_id,omitempty"`
	Topic         string          `json:"topic"`
	EventType     string          `json:"event_type"`
	Version       string          `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// SearchCompletedEvent summarizes one aggregated search for downstream consumers.
type SearchCompletedEvent struct {
	Query      string         `json:"query"`
	Sources    []string       `json:"sources"`
	Counts     map[string]int `json:"counts"`
	Degraded   []string       `json:"degraded,omitempty"`
	DurationMs int64          `json:"duration_ms"`
}

// ProductPushedEvent is emitted when a merchant pushes a sourced product
// into their own catalog.
type ProductPushedEvent struct {
	MerchantID string `json:"merchant_id"`
	ProductID  string `json:"product_id"`
	Source     string `json:"source"`
	Title      string `json:"title"`
}
