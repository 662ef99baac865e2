package aggregator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sourcepilot/sourcing-aggregator/internal/auth"
	"github.com/sourcepilot/sourcing-aggregator/internal/metrics"
	"github.com/sourcepilot/sourcing-aggregator/internal/retry"
	"github.com/sourcepilot/sourcing-aggregator/internal/source"
	"github.com/sourcepilot/sourcing-aggregator/pkg/model"
)

// Caller-input errors: the only failures SearchAll surfaces. Upstream
// trouble degrades to empty per-source contributions instead.
var (
	ErrNoSources     = errors.New("no sources selected")
	ErrUnknownSource = errors.New("unknown source")
)

// EventPublisher publishes search lifecycle events; nil-able collaborator.
type EventPublisher interface {
	PublishSearchCompleted(ctx context.Context, ev model.SearchCompletedEvent) error
}

// Service fans a logical search out across the selected source connectors
// and assembles their tagged contributions. One instance is constructed at
// startup and shared; it owns no per-request state.
type Service struct {
	logger       *zap.Logger
	connectors   map[string]source.Connector
	exec         *retry.Executor
	authMgr      *auth.Manager
	pub          EventPublisher
	defaultLimit int
}

// NewService constructs the aggregator over the given connectors.
func NewService(
	logger *zap.Logger,
	connectors []source.Connector,
	exec *retry.Executor,
	authMgr *auth.Manager,
	pub EventPublisher,
	defaultLimit int,
) *Service {
	byName := make(map[string]source.Connector, len(connectors))
	for _, c := range connectors {
		byName[c.Name()] = c
	}
	return &Service{
		logger:       logger,
		connectors:   byName,
		exec:         exec,
		authMgr:      authMgr,
		pub:          pub,
		defaultLimit: defaultLimit,
	}
}

// Sources returns the registered source identifiers.
func (s *Service) Sources() []string {
	names := make([]string, 0, len(s.connectors))
	for name := range s.connectors {
		names = append(names, name)
	}
	return names
}

// SearchAll runs one query against the selected sources concurrently and
// returns their tagged contributions. Sources that fail all retries
// contribute an empty (degraded) list; partial failure never raises. The
// only synchronous rejections are an empty source set and unknown source
// names; an empty query returns an empty result without any I/O.
func (s *Service) SearchAll(ctx context.Context, query string, sources []string, limit int) (*model.AggregatedResult, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	for _, name := range sources {
		if _, ok := s.connectors[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSource, name)
		}
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}

	result := &model.AggregatedResult{
		Query:   query,
		Results: make(map[string]model.SourceResult, len(sources)),
	}
	if strings.TrimSpace(query) == "" {
		return result, nil
	}

	start := time.Now()

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, name := range sources {
		conn := s.connectors[name]
		wg.Add(1)
		go func(name string, conn source.Connector) {
			defer wg.Done()

			products, degraded := s.exec.Run(ctx, name, func(ctx context.Context) ([]model.Product, error) {
				return conn.Search(ctx, query, limit)
			})
			if products == nil {
				products = []model.Product{}
			}

			mu.Lock()
			result.Results[name] = model.SourceResult{
				Source:   name,
				Products: products,
				Degraded: degraded,
			}
			mu.Unlock()
		}(name, conn)
	}
	wg.Wait()

	result.Duration = time.Since(start)
	metrics.AggregationDuration.WithLabelValues().Observe(result.Duration.Seconds())

	s.logger.Info("aggregator.search_completed",
		zap.String("query", query),
		zap.Strings("sources", sources),
		zap.Int("total_products", result.TotalProducts()),
		zap.Duration("duration", result.Duration))

	s.publishCompleted(ctx, query, sources, result)

	return result, nil
}

// SearchBatch runs several distinct queries against the same source set,
// one query fully completing before the next starts. Queries within one
// batch are deliberately not parallelized: the per-source rate budgets are
// sized for a single in-flight aggregation.
func (s *Service) SearchBatch(ctx context.Context, queries []string, sources []string, limit int) ([]*model.AggregatedResult, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	results := make([]*model.AggregatedResult, 0, len(queries))
	for _, query := range queries {
		res, err := s.SearchAll(ctx, query, sources, limit)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// HealthCheck reports whether the source's authentication currently succeeds.
func (s *Service) HealthCheck(ctx context.Context, sourceName string) error {
	conn, ok := s.connectors[sourceName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSource, sourceName)
	}
	return conn.HealthCheck(ctx)
}

// ClearCredential invalidates the source's cached token in both tiers.
func (s *Service) ClearCredential(ctx context.Context, sourceName string) error {
	if _, ok := s.connectors[sourceName]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSource, sourceName)
	}
	return s.authMgr.ClearCredential(ctx, sourceName)
}

func (s *Service) publishCompleted(ctx context.Context, query string, sources []string, result *model.AggregatedResult) {
	if s.pub == nil {
		return
	}

	counts := make(map[string]int, len(result.Results))
	var degraded []string
	for name, sr := range result.Results {
		counts[name] = len(sr.Products)
		if sr.Degraded {
			degraded = append(degraded, name)
		}
	}

	ev := model.SearchCompletedEvent{
		Query:      query,
		Sources:    sources,
		Counts:     counts,
		Degraded:   degraded,
		DurationMs: result.Duration.Milliseconds(),
	}
	if err := s.pub.PublishSearchCompleted(ctx, ev); err != nil {
		s.logger.Warn("aggregator.event_publish_failed", zap.Error(err))
	}
}
