package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sourcepilot/sourcing-aggregator/internal/metrics"
	"github.com/sourcepilot/sourcing-aggregator/internal/rate"
	"github.com/sourcepilot/sourcing-aggregator/internal/source"
)

// Executor handles rate-limited HTTP execution with JSON decoding and
// upstream error mapping. It performs exactly one attempt per call; retry
// policy lives a layer up so that token refresh and request build are
// re-run on every attempt.
type Executor struct {
	logger       *zap.Logger
	rateMgr      *rate.Manager
	http         *http.Client
	sourceTag    string
	errorHandler func(status int, body []byte) error
}

// New creates an Executor. errorHandler is called on non-2xx responses to
// produce a source-specific error. If nil, a tagged source.Error is returned.
func New(
	logger *zap.Logger,
	rateMgr *rate.Manager,
	httpClient *http.Client,
	sourceTag string,
	errorHandler func(status int, body []byte) error,
) *Executor {
	return &Executor{
		logger:       logger,
		rateMgr:      rateMgr,
		http:         httpClient,
		sourceTag:    sourceTag,
		errorHandler: errorHandler,
	}
}

// DoJSON executes req under the source's rate limit, then JSON-decodes the
// response into out. Non-2xx statuses are mapped through errorHandler or to
// a source.Error carrying the source tag and upstream body.
func (e *Executor) DoJSON(ctx context.Context, req *http.Request, out any) error {
	if e.rateMgr != nil {
		if err := e.rateMgr.Wait(ctx, e.sourceTag); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	start := time.Now()
	resp, err := e.http.Do(req)
	if err != nil {
		metrics.IncSourceRequest(e.sourceTag, "transport_error")
		e.logger.Warn(e.sourceTag+".http_failed",
			zap.String("url", req.URL.String()),
			zap.Error(err))
		return source.NewError(e.sourceTag, 0, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	metrics.ObserveDuration(metrics.SourceRequestDuration, start, e.sourceTag)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.IncSourceRequest(e.sourceTag, "upstream_error")
		e.logger.Warn(e.sourceTag+".non_2xx",
			zap.Int("status", resp.StatusCode),
			zap.String("url", req.URL.String()),
			zap.Duration("latency", elapsed))
		if e.errorHandler != nil {
			return e.errorHandler(resp.StatusCode, body)
		}
		return source.NewError(e.sourceTag, resp.StatusCode, string(body))
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			metrics.IncSourceRequest(e.sourceTag, "decode_error")
			e.logger.Warn(e.sourceTag+".decode_failed",
				zap.Error(err),
				zap.String("url", req.URL.String()))
			return source.NewError(e.sourceTag, resp.StatusCode, "decode failed: "+err.Error())
		}
	}

	metrics.IncSourceRequest(e.sourceTag, "ok")
	e.logger.Debug(e.sourceTag+".http_success",
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed))

	return nil
}
