package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sourcepilot/sourcing-aggregator/internal/source"
)

func TestSearchToolCallEnvelope(t *testing.T) {
	var gotReq Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      gotReq.ID,
			"result": map[string]any{
				"content": []map[string]any{{
					"type": "text",
					"text": `{"products":[{"product_id":"p1","title":"Tea Set","price_range":{"min":"39.00","currency":"USD"}}]}`,
				}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(zap.NewNop(), srv.URL, nil, 15*time.Second)
	products, err := client.Search(context.Background(), "tea set", 5)
	require.NoError(t, err)

	assert.Equal(t, "2.0", gotReq.JSONRPC)
	assert.Equal(t, "tools/call", gotReq.Method)
	assert.Equal(t, searchTool, gotReq.Params.Name)

	require.Len(t, products, 1)
	assert.Equal(t, "Tea Set", products[0].Title)
	require.NotNil(t, products[0].Price)
	assert.InDelta(t, 39.00, *products[0].Price, 1e-9)
}

func TestSearchRPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": 1,
			"error": map[string]any{"code": -32602, "message": "unknown tool"},
		})
	}))
	defer srv.Close()

	client := NewClient(zap.NewNop(), srv.URL, nil, 15*time.Second)
	_, err := client.Search(context.Background(), "tea set", 5)

	var srcErr *source.Error
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, -32602, srcErr.Status)
}

func TestSearchToolLevelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": 1,
			"result": map[string]any{
				"isError": true,
				"content": []map[string]any{{"type": "text", "text": "catalog unavailable"}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(zap.NewNop(), srv.URL, nil, 15*time.Second)
	_, err := client.Search(context.Background(), "tea set", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog unavailable")
}

func TestSearchEmptyQueryNoNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewClient(zap.NewNop(), srv.URL, nil, 15*time.Second)
	products, err := client.Search(context.Background(), "", 5)
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.False(t, called)
}
