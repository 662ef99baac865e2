package cjdropshipping

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

// Name is the source identifier for CJ Dropshipping.
const Name = model.SourceCJDropshipping

// Client speaks the CJ Dropshipping api2.0: JSON POST endpoints authorized
// with a CJ-Access-Token header rather than a bearer scheme.
type Client struct {
	logger  *zap.Logger
	baseURL string
	auth    *auth.Manager
	exec    *httpclient.Executor
}

// NewClient constructs the CJ Dropshipping connector.
func NewClient(logger *zap.Logger, baseURL string, authMgr *auth.Manager, rateMgr *rate.Manager, timeout time.Duration) *Client {
	httpClient := &http.Client{Timeout: timeout}
	exec := httpclient.New(logger, rateMgr, httpClient, Name, func(status int, body []byte) error {
		var er searchResponse
		_ = json.Unmarshal(body, &er)
		return source.NewError(Name, status, source.FirstString(er.Message, string(body)))
	})
	return &Client{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		auth:    authMgr,
		exec:    exec,
	}
}

func (c *Client) Name() string { return Name }

type listRequest struct {
	ProductNameEn string `json:"productNameEn"`
	PageNum       int    `json:"pageNum"`
	PageSize      int    `json:"pageSize"`
}

// Search queries CJ's product list for items matching query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]model.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if !c.auth.Configured(ctx, Name) {
		c.logger.Warn("cjdropshipping.not_configured")
		return nil, nil
	}

	token, err := c.auth.GetToken(ctx, Name)
	if err != nil {
		return nil, err
	}

	body, _ := json.Marshal(listRequest{ProductNameEn: query, PageNum: 1, PageSize: limit})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/product/list", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("CJ-Access-Token", token)

	var resp searchResponse
	if err := c.exec.DoJSON(ctx, req, &resp); err != nil {
		return nil, err
	}
	if !resp.Result {
		return nil, source.NewError(Name, resp.Code, resp.Message)
	}

	return FromRecords(resp.Data.List), nil
}

// HealthCheck verifies the CJ token exchange currently succeeds.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.auth.HealthCheck(ctx, Name)
}
