package madeinchina

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sourcepilot/sourcing-aggregator/internal/auth"
	"github.com/sourcepilot/sourcing-aggregator/internal/httpclient"
	"github.com/sourcepilot/sourcing-aggregator/internal/rate"
	"github.com/sourcepilot/sourcing-aggregator/internal/source"
	"github.com/sourcepilot/sourcing-aggregator/pkg/model"
)

// Name is the source identifier for Made-in-China.
const Name = model.SourceMadeInChina

// Client speaks the Made-in-China open API: bearer-token REST with a JSON
// POST search endpoint.
type Client struct {
	logger  *zap.Logger
	baseURL string
	auth    *auth.Manager
	exec    *httpclient.Executor
}

// NewClient constructs the Made-in-China connector.
func NewClient(logger *zap.Logger, baseURL string, authMgr *auth.Manager, rateMgr *rate.Manager, timeout time.Duration) *Client {
	httpClient := &http.Client{Timeout: timeout}
	exec := httpclient.New(logger, rateMgr, httpClient, Name, nil)
	return &Client{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		auth:    authMgr,
		exec:    exec,
	}
}

func (c *Client) Name() string { return Name }

type searchRequest struct {
	Keyword  string `json:"keyword"`
	PageSize int    `json:"pageSize"`
	PageNum  int    `json:"pageNum"`
}

// Search queries Made-in-China for products matching query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]model.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if !c.auth.Configured(ctx, Name) {
		c.logger.Warn("madeinchina.not_configured")
		return nil, nil
	}

	token, err := c.auth.GetToken(ctx, Name)
	if err != nil {
		return nil, err
	}

	body, _ := json.Marshal(searchRequest{Keyword: query, PageSize: limit, PageNum: 1})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/open/api/product/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	var resp searchResponse
	if err := c.exec.DoJSON(ctx, req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, source.NewError(Name, 0, source.FirstString(resp.Message, resp.Code, "search rejected"))
	}

	return FromRecords(resp.Result.Items), nil
}

// HealthCheck verifies the OAuth exchange currently succeeds.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.auth.HealthCheck(ctx, Name)
}
