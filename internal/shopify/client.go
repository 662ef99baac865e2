package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sourcepilot/sourcing-aggregator/internal/httpclient"
	"github.com/sourcepilot/sourcing-aggregator/internal/rate"
	"github.com/sourcepilot/sourcing-aggregator/internal/source"
	"github.com/sourcepilot/sourcing-aggregator/pkg/model"
)

// Name is the source identifier for the Shopify global catalog.
const Name = model.SourceShopify

const searchTool = "search_shop_catalog"

// Client speaks the MCP product-discovery endpoint: JSON-RPC 2.0 tool calls
// over HTTP. The catalog is public, so no token exchange is involved.
type Client struct {
	logger   *zap.Logger
	endpoint string
	exec     *httpclient.Executor
	seq      atomic.Int64
}

// NewClient constructs the global-catalog connector.
func NewClient(logger *zap.Logger, endpoint string, rateMgr *rate.Manager, timeout time.Duration) *Client {
	httpClient := &http.Client{Timeout: timeout}
	exec := httpclient.New(logger, rateMgr, httpClient, Name, nil)
	return &Client{
		logger:   logger,
		endpoint: endpoint,
		exec:     exec,
	}
}

func (c *Client) Name() string { return Name }

// Search invokes the search_shop_catalog tool for query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]model.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	args := map[string]any{
		"query":   query,
		"context": "merchant sourcing products to resell",
		"limit":   limit,
	}
	resp, err := c.call(ctx, NewToolCall(int(c.seq.Add(1)), searchTool, args))
	if err != nil {
		return nil, err
	}

	var payload catalogPayload
	if err := resp.Result.ParsePayload(&payload); err != nil {
		return nil, source.NewError(Name, 0, "invalid catalog payload: "+err.Error())
	}

	return FromRecords(payload.Products), nil
}

// HealthCheck lists the endpoint's tools to verify it is reachable and
// answering the protocol.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.call(ctx, Request{
		JSONRPC: "2.0",
		ID:      int(c.seq.Add(1)),
		Method:  "tools/list",
	})
	return err
}

func (c *Client) call(ctx context.Context, rpcReq Request) (*Response, error) {
	data, err := json.Marshal(rpcReq)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var resp Response
	if err := c.exec.DoJSON(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, source.NewError(Name, resp.Error.Code, resp.Error.Message)
	}
	if resp.Result == nil {
		return nil, source.NewError(Name, 0, "empty rpc result")
	}
	if resp.Result.IsError {
		return nil, source.NewError(Name, 0, source.FirstString(resp.Result.FirstText(), "tool call failed"))
	}
	return &resp, nil
}
