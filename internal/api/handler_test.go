package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sourcepilot/sourcing-aggregator/internal/aggregator"
	"github.com/sourcepilot/sourcing-aggregator/pkg/model"
)

type mockSearchService struct {
	searchAllFn   func(ctx context.Context, query string, sources []string, limit int) (*model.AggregatedResult, error)
	healthCheckFn func(ctx context.Context, source string) error
	clearFn       func(ctx context.Context, source string) error
}

func (m *mockSearchService) SearchAll(ctx context.Context, query string, sources []string, limit int) (*model.AggregatedResult, error) {
	if m.searchAllFn != nil {
		return m.searchAllFn(ctx, query, sources, limit)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockSearchService) SearchBatch(ctx context.Context, queries []string, sources []string, limit int) ([]*model.AggregatedResult, error) {
	results := make([]*model.AggregatedResult, 0, len(queries))
	for _, q := range queries {
		res, err := m.SearchAll(ctx, q, sources, limit)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (m *mockSearchService) HealthCheck(ctx context.Context, source string) error {
	if m.healthCheckFn != nil {
		return m.healthCheckFn(ctx, source)
	}
	return nil
}

func (m *mockSearchService) ClearCredential(ctx context.Context, source string) error {
	if m.clearFn != nil {
		return m.clearFn(ctx, source)
	}
	return nil
}

type mockProductStore struct {
	saved  []model.SavedProduct
	pushes []model.PushRecord
}

func (m *mockProductStore) SaveProduct(_ context.Context, sp model.SavedProduct) error {
	m.saved = append(m.saved, sp)
	return nil
}

func (m *mockProductStore) ListSavedProducts(_ context.Context, merchantID string) ([]model.SavedProduct, error) {
	var out []model.SavedProduct
	for _, sp := range m.saved {
		if sp.MerchantID == merchantID {
			out = append(out, sp)
		}
	}
	return out, nil
}

func (m *mockProductStore) RecordPush(_ context.Context, rec model.PushRecord) error {
	m.pushes = append(m.pushes, rec)
	return nil
}

func (m *mockProductStore) ListPushes(_ context.Context, merchantID string) ([]model.PushRecord, error) {
	var out []model.PushRecord
	for _, rec := range m.pushes {
		if rec.MerchantID == merchantID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type mockPushPublisher struct {
	events []model.ProductPushedEvent
}

func (m *mockPushPublisher) PublishProductPushed(_ context.Context, ev model.ProductPushedEvent) error {
	m.events = append(m.events, ev)
	return nil
}

func newTestApp(svc SearchService, st ProductStore, pub PushPublisher) *fiber.App {
	app := fiber.New()
	handler := NewHandler(zap.NewNop(), svc, st, pub)
	v1 := app.Group("/api/v1")
	v1.Post("/search", handler.Search)
	v1.Post("/search/batch", handler.SearchBatch)
	v1.Get("/sources", handler.ListSources)
	v1.Get("/sources/:source/health", handler.SourceHealth)
	v1.Delete("/sources/:source/credential", handler.ClearCredential)
	v1.Post("/products/saved", handler.SaveProduct)
	v1.Get("/products/saved", handler.ListSavedProducts)
	v1.Post("/products/push", handler.PushProduct)
	v1.Get("/products/pushes", handler.ListPushes)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, path, rd)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func aggregated(query string, results map[string]model.SourceResult) *model.AggregatedResult {
	return &model.AggregatedResult{
		Query:    query,
		Results:  results,
		Duration: 42 * time.Millisecond,
	}
}

func TestSearchEndpoint(t *testing.T) {
	svc := &mockSearchService{
		searchAllFn: func(_ context.Context, query string, sources []string, limit int) (*model.AggregatedResult, error) {
			assert.Equal(t, "wireless earbuds", query)
			assert.Equal(t, []string{model.SourceAlibaba}, sources)
			assert.Equal(t, 5, limit)
			return aggregated(query, map[string]model.SourceResult{
				model.SourceAlibaba: {
					Source:   model.SourceAlibaba,
					Products: []model.Product{{ID: "a-1", Title: "Earbuds", Source: model.SourceAlibaba}},
				},
			}), nil
		},
	}
	app := newTestApp(svc, nil, nil)

	resp, raw := doJSON(t, app, http.MethodPost, "/api/v1/search",
		`{"query":"wireless earbuds","sources":["alibaba"],"limit":5}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out SearchResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "wireless earbuds", out.Query)
	assert.Equal(t, 1, out.TotalProducts)
	assert.Len(t, out.Results[model.SourceAlibaba].Products, 1)
}

func TestSearchDefaultsToAllSources(t *testing.T) {
	var gotSources []string
	svc := &mockSearchService{
		searchAllFn: func(_ context.Context, query string, sources []string, _ int) (*model.AggregatedResult, error) {
			gotSources = sources
			return aggregated(query, map[string]model.SourceResult{}), nil
		},
	}
	app := newTestApp(svc, nil, nil)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/search", `{"query":"usb hub"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, model.KnownSources, gotSources)
}

func TestSearchRejectsUnknownSource(t *testing.T) {
	svc := &mockSearchService{
		searchAllFn: func(context.Context, string, []string, int) (*model.AggregatedResult, error) {
			return nil, fmt.Errorf("%w: ebay", aggregator.ErrUnknownSource)
		},
	}
	app := newTestApp(svc, nil, nil)

	resp, raw := doJSON(t, app, http.MethodPost, "/api/v1/search",
		`{"query":"earbuds","sources":["ebay"]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(raw), "unknown source")
}

func TestSearchRejectsNegativeLimit(t *testing.T) {
	app := newTestApp(&mockSearchService{}, nil, nil)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/search",
		`{"query":"earbuds","limit":-1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBatchSearchEndpoint(t *testing.T) {
	svc := &mockSearchService{
		searchAllFn: func(_ context.Context, query string, _ []string, _ int) (*model.AggregatedResult, error) {
			return aggregated(query, map[string]model.SourceResult{}), nil
		},
	}
	app := newTestApp(svc, nil, nil)

	resp, raw := doJSON(t, app, http.MethodPost, "/api/v1/search/batch",
		`{"queries":["earbuds","usb hub"],"sources":["alibaba"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out BatchSearchResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out.Results, 2)
	assert.Equal(t, "earbuds", out.Results[0].Query)
	assert.Equal(t, "usb hub", out.Results[1].Query)
}

func TestBatchSearchRequiresQueries(t *testing.T) {
	app := newTestApp(&mockSearchService{}, nil, nil)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/search/batch", `{"queries":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListSources(t *testing.T) {
	app := newTestApp(&mockSearchService{}, nil, nil)

	resp, raw := doJSON(t, app, http.MethodGet, "/api/v1/sources", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, name := range model.KnownSources {
		assert.Contains(t, string(raw), name)
	}
}

func TestSourceHealthEndpoint(t *testing.T) {
	svc := &mockSearchService{
		healthCheckFn: func(_ context.Context, source string) error {
			switch source {
			case model.SourceAlibaba:
				return nil
			case "ebay":
				return fmt.Errorf("%w: ebay", aggregator.ErrUnknownSource)
			default:
				return fmt.Errorf("credentials rejected")
			}
		},
	}
	app := newTestApp(svc, nil, nil)

	resp, raw := doJSON(t, app, http.MethodGet, "/api/v1/sources/alibaba/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"healthy":true`)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/v1/sources/cj-dropshipping/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(raw), "credentials rejected")

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/sources/ebay/health", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClearCredentialEndpoint(t *testing.T) {
	var cleared []string
	svc := &mockSearchService{
		clearFn: func(_ context.Context, source string) error {
			if source == "ebay" {
				return fmt.Errorf("%w: ebay", aggregator.ErrUnknownSource)
			}
			cleared = append(cleared, source)
			return nil
		},
	}
	app := newTestApp(svc, nil, nil)

	resp, _ := doJSON(t, app, http.MethodDelete, "/api/v1/sources/alibaba/credential", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{model.SourceAlibaba}, cleared)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/sources/ebay/credential", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSaveAndListProducts(t *testing.T) {
	st := &mockProductStore{}
	app := newTestApp(&mockSearchService{}, st, nil)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/products/saved",
		`{"merchant_id":"m-1","product":{"id":"a-1","source":"alibaba","title":"Earbuds"}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, st.saved, 1)
	assert.Equal(t, "m-1", st.saved[0].MerchantID)
	assert.False(t, st.saved[0].SavedAt.IsZero())

	resp, raw := doJSON(t, app, http.MethodGet, "/api/v1/products/saved?merchant_id=m-1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"a-1"`)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/products/saved", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSaveProductValidation(t *testing.T) {
	app := newTestApp(&mockSearchService{}, &mockProductStore{}, nil)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/products/saved",
		`{"merchant_id":"","product":{"id":"a-1","source":"alibaba"}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/products/saved",
		`{"merchant_id":"m-1","product":{"id":"","source":""}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPushProductRecordsAndPublishes(t *testing.T) {
	st := &mockProductStore{}
	pub := &mockPushPublisher{}
	app := newTestApp(&mockSearchService{}, st, pub)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/products/push",
		`{"merchant_id":"m-1","product_id":"a-1","source":"alibaba","title":"Earbuds"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.Len(t, st.pushes, 1)
	assert.Equal(t, "a-1", st.pushes[0].ProductID)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "m-1", pub.events[0].MerchantID)
	assert.Equal(t, "Earbuds", pub.events[0].Title)
}

func TestProductEndpointsWithoutStore(t *testing.T) {
	app := newTestApp(&mockSearchService{}, nil, nil)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/products/saved",
		`{"merchant_id":"m-1","product":{"id":"a-1","source":"alibaba"}}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
