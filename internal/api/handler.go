package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sourcepilot/sourcing-aggregator/internal/aggregator"
	"github.com/sourcepilot/sourcing-aggregator/pkg/model"
)

// SearchService defines the aggregation operations used by the handler.
type SearchService interface {
	SearchAll(ctx context.Context, query string, sources []string, limit int) (*model.AggregatedResult, error)
	SearchBatch(ctx context.Context, queries []string, sources []string, limit int) ([]*model.AggregatedResult, error)
	HealthCheck(ctx context.Context, source string) error
	ClearCredential(ctx context.Context, source string) error
}

// ProductStore persists saved products and push records.
type ProductStore interface {
	SaveProduct(ctx context.Context, sp model.SavedProduct) error
	ListSavedProducts(ctx context.Context, merchantID string) ([]model.SavedProduct, error)
	RecordPush(ctx context.Context, rec model.PushRecord) error
	ListPushes(ctx context.Context, merchantID string) ([]model.PushRecord, error)
}

// PushPublisher emits product.pushed events; may be nil.
type PushPublisher interface {
	PublishProductPushed(ctx context.Context, ev model.ProductPushedEvent) error
}

// Handler serves the sourcing API.
type Handler struct {
	logger  *zap.Logger
	service SearchService
	store   ProductStore
	pub     PushPublisher
}

// NewHandler creates a Handler. store and pub may be nil when persistence
// or messaging is not wired.
func NewHandler(logger *zap.Logger, service SearchService, store ProductStore, pub PushPublisher) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
		store:   store,
		pub:     pub,
	}
}

// Search handles a multi-source product search.
func (h *Handler) Search(c *fiber.Ctx) error {
	var req SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	res, err := h.service.SearchAll(c.Context(), req.Query, req.Sources, req.Limit)
	if err != nil {
		return h.searchError(c, req.Query, err)
	}
	return c.JSON(toSearchResponse(res))
}

// SearchBatch handles several queries run back to back.
func (h *Handler) SearchBatch(c *fiber.Ctx) error {
	var req BatchSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	results, err := h.service.SearchBatch(c.Context(), req.Queries, req.Sources, req.Limit)
	if err != nil {
		return h.searchError(c, "", err)
	}

	out := BatchSearchResponse{Results: make([]SearchResponse, 0, len(results))}
	for _, res := range results {
		out.Results = append(out.Results, toSearchResponse(res))
	}
	return c.JSON(out)
}

// ListSources reports the registered source identifiers.
func (h *Handler) ListSources(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"sources": model.KnownSources})
}

// SourceHealth probes one source's authentication.
func (h *Handler) SourceHealth(c *fiber.Ctx) error {
	name := c.Params("source")
	err := h.service.HealthCheck(c.Context(), name)
	if errors.Is(err, aggregator.ErrUnknownSource) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(SourceHealthResponse{
			Source:   name,
			Healthy:  false,
			ErrorMsg: err.Error(),
		})
	}
	return c.JSON(SourceHealthResponse{Source: name, Healthy: true})
}

// ClearCredential drops a source's cached token from both cache tiers.
func (h *Handler) ClearCredential(c *fiber.Ctx) error {
	name := c.Params("source")
	err := h.service.ClearCredential(c.Context(), name)
	if errors.Is(err, aggregator.ErrUnknownSource) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		h.logger.Error("api.clear_credential_failed",
			zap.String("source", name),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"source": name, "cleared": true})
}

// SaveProduct pins a product for later comparison.
func (h *Handler) SaveProduct(c *fiber.Ctx) error {
	if h.store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "persistence not configured"})
	}

	var req SaveProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	sp := model.SavedProduct{
		MerchantID: req.MerchantID,
		Product:    req.Product,
		SavedAt:    time.Now().UTC(),
	}
	if err := h.store.SaveProduct(c.Context(), sp); err != nil {
		h.logger.Error("api.save_product_failed",
			zap.String("merchant", req.MerchantID),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(sp)
}

// ListSavedProducts returns a merchant's pinned products.
func (h *Handler) ListSavedProducts(c *fiber.Ctx) error {
	if h.store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "persistence not configured"})
	}

	merchantID := c.Query("merchant_id")
	if merchantID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "merchant_id is required"})
	}

	products, err := h.store.ListSavedProducts(c.Context(), merchantID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"saved_products": products})
}

// PushProduct records a push into the merchant's catalog and emits the event.
func (h *Handler) PushProduct(c *fiber.Ctx) error {
	if h.store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "persistence not configured"})
	}

	var req PushProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	rec := model.PushRecord{
		MerchantID: req.MerchantID,
		ProductID:  req.ProductID,
		Source:     req.Source,
		PushedAt:   time.Now().UTC(),
	}
	if err := h.store.RecordPush(c.Context(), rec); err != nil {
		h.logger.Error("api.record_push_failed",
			zap.String("merchant", req.MerchantID),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if h.pub != nil {
		ev := model.ProductPushedEvent{
			MerchantID: req.MerchantID,
			ProductID:  req.ProductID,
			Source:     req.Source,
			Title:      req.Title,
		}
		if err := h.pub.PublishProductPushed(c.Context(), ev); err != nil {
			h.logger.Warn("api.push_event_failed", zap.Error(err))
		}
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// ListPushes returns a merchant's push history.
func (h *Handler) ListPushes(c *fiber.Ctx) error {
	if h.store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "persistence not configured"})
	}

	merchantID := c.Query("merchant_id")
	if merchantID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "merchant_id is required"})
	}

	pushes, err := h.store.ListPushes(c.Context(), merchantID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"pushes": pushes})
}

func (h *Handler) searchError(c *fiber.Ctx, query string, err error) error {
	if errors.Is(err, aggregator.ErrNoSources) || errors.Is(err, aggregator.ErrUnknownSource) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	h.logger.Error("api.search_failed",
		zap.String("query", query),
		zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
