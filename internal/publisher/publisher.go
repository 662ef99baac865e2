package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/sourcepilot/sourcing-aggregator/internal/metrics"
	"github.com/sourcepilot/sourcing-aggregator/pkg/logger"
	"github.com/sourcepilot/sourcing-aggregator/pkg/model"
)

// Publisher wraps a NATS connection and provides helpers for publishing
// canonical sourcing events.
type Publisher struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	subject string
	service string
}

// New creates a new Publisher with JetStream enabled if available.
func New(nc *nats.Conn, subject, service string) (*Publisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	return &Publisher{
		nc:      nc,
		js:      js,
		subject: subject,
		service: service,
	}, nil
}

// PublishEnvelope serializes and publishes a canonical event envelope to NATS.
func (p *Publisher) PublishEnvelope(ctx context.Context, subject string, env *model.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		logger.S().Errorw("publisher.marshal_failed",
			"subject", subject,
			"event_type", env.EventType,
			"error", err,
		)
		metrics.NATSPublishErrors.WithLabelValues(subject).Inc()
		return err
	}

	if subject == "" {
		subject = p.subject
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"event_type":     []string{env.EventType},
			"correlation_id": []string{env.CorrelationID.String()},
			"service":        []string{p.service},
			"content_type":   []string{"application/json"},
		},
	}

	if _, err := p.js.PublishMsg(msg); err != nil {
		logger.S().Errorw("publisher.publish_failed",
			"subject", subject,
			"event_type", env.EventType,
			"error", err,
		)
		metrics.NATSPublishErrors.WithLabelValues(subject).Inc()
		return err
	}

	logger.S().Debugw("publisher.publish_success",
		"subject", subject,
		"event_type", env.EventType,
	)
	return nil
}

// PublishSearchCompleted emits a search.completed event for one aggregation.
func (p *Publisher) PublishSearchCompleted(ctx context.Context, ev model.SearchCompletedEvent) error {
	env := &model.Envelope{
		ID:            uuid.New(),
		CorrelationID: uuid.New(),
		Topic:         "evt.search.completed.v1",
		EventType:     "search.completed",
		Version:       "1.0.0",
		Timestamp:     time.Now().UTC(),
	}
	env.Payload, _ = json.Marshal(ev)

	return p.PublishEnvelope(ctx, "evt.search.completed.v1", env)
}

// PublishProductPushed emits a product.pushed event when a merchant pushes a
// sourced product into their catalog.
func (p *Publisher) PublishProductPushed(ctx context.Context, ev model.ProductPushedEvent) error {
	env := &model.Envelope{
		ID:            uuid.New(),
		CorrelationID: uuid.New(),
		MerchantID:    ev.MerchantID,
		Topic:         "evt.product.pushed.v1",
		EventType:     "product.pushed",
		Version:       "1.0.0",
		Timestamp:     time.Now().UTC(),
	}
	env.Payload, _ = json.Marshal(ev)

	return p.PublishEnvelope(ctx, "evt.product.pushed.v1", env)
}

func (p *Publisher) Close() {
	if p.nc != nil && p.nc.IsConnected() {
		p.nc.Close()
	}
}
