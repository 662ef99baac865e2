package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sourcepilot/sourcing-aggregator/internal/metrics"
	"github.com/sourcepilot/sourcing-aggregator/internal/source"
)

// HealthProber periodically probes every source's authentication and keeps
// the per-source health gauge current, so operators see a source going
// dark before a user search does.
type HealthProber struct {
	logger     *zap.Logger
	connectors []source.Connector
	interval   time.Duration
	timeout    time.Duration
}

// NewHealthProber constructs a prober over the registered connectors.
func NewHealthProber(logger *zap.Logger, connectors []source.Connector, interval, timeout time.Duration) *HealthProber {
	return &HealthProber{
		logger:     logger,
		connectors: connectors,
		interval:   interval,
		timeout:    timeout,
	}
}

// Start probes once immediately, then on every tick until ctx is done.
func (p *HealthProber) Start(ctx context.Context) {
	p.logger.Info("health_prober.started",
		zap.Int("sources", len(p.connectors)),
		zap.Duration("interval", p.interval))

	p.probeAll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("health_prober.stopped")
			return
		case <-ticker.C:
			p.probeAll(ctx)
		}
	}
}

func (p *HealthProber) probeAll(ctx context.Context) {
	for _, conn := range p.connectors {
		p.probe(ctx, conn)
	}
}

func (p *HealthProber) probe(ctx context.Context, conn source.Connector) {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	err := conn.HealthCheck(probeCtx)
	latency := time.Since(start)

	if err != nil {
		metrics.SourceHealthy.WithLabelValues(conn.Name()).Set(0)
		p.logger.Warn("health_prober.source_unhealthy",
			zap.String("source", conn.Name()),
			zap.Duration("latency", latency),
			zap.Error(err))
		return
	}

	metrics.SourceHealthy.WithLabelValues(conn.Name()).Set(1)
	p.logger.Debug("health_prober.source_healthy",
		zap.String("source", conn.Name()),
		zap.Duration("latency", latency))
}
