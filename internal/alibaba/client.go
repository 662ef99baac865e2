package alibaba

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sourcepilot/sourcing-aggregator/internal/auth"
	"github.com/sourcepilot/sourcing-aggregator/internal/httpclient"
	"github.com/sourcepilot/sourcing-aggregator/internal/rate"
	"github.com/sourcepilot/sourcing-aggregator/internal/source"
	"github.com/sourcepilot/sourcing-aggregator/pkg/model"
)

// Name is the source identifier for Alibaba.
const Name = model.SourceAlibaba

// Client speaks the Alibaba open-platform product search API: bearer-token
// REST with OAuth client-credentials auth.
type Client struct {
	logger  *zap.Logger
	baseURL string
	auth    *auth.Manager
	exec    *httpclient.Executor
}

// NewClient constructs the Alibaba connector.
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

// Search queries Alibaba for products matching query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]model.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if !c.auth.Configured(ctx, Name) {
		c.logger.Warn("alibaba.not_configured")
		return nil, nil
	}

	token, err := c.auth.GetToken(ctx, Name)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/product/search?keywords=%s&pageSize=%s",
		c.baseURL, url.QueryEscape(query), strconv.Itoa(limit))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	var resp searchResponse
	if err := c.exec.DoJSON(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 && resp.Code != 200 {
		return nil, source.NewError(Name, resp.Code, resp.Message)
	}

	return FromRecords(resp.Data.Products), nil
}

// HealthCheck verifies the OAuth exchange currently succeeds.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.auth.HealthCheck(ctx, Name)
}
