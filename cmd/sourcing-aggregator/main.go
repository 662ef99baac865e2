package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/sourcepilot/sourcing-aggregator/internal/aggregator"
	"github.com/sourcepilot/sourcing-aggregator/internal/alibaba"
	"github.com/sourcepilot/sourcing-aggregator/internal/api"
	"github.com/sourcepilot/sourcing-aggregator/internal/auth"
	"github.com/sourcepilot/sourcing-aggregator/internal/cjdropshipping"
	"github.com/sourcepilot/sourcing-aggregator/internal/jobs"
	"github.com/sourcepilot/sourcing-aggregator/internal/madeinchina"
	"github.com/sourcepilot/sourcing-aggregator/internal/metrics"
	"github.com/sourcepilot/sourcing-aggregator/internal/publisher"
	"github.com/sourcepilot/sourcing-aggregator/internal/rate"
	"github.com/sourcepilot/sourcing-aggregator/internal/retry"
	"github.com/sourcepilot/sourcing-aggregator/internal/shopify"
	"github.com/sourcepilot/sourcing-aggregator/internal/source"
	"github.com/sourcepilot/sourcing-aggregator/internal/store"
	"github.com/sourcepilot/sourcing-aggregator/pkg/config"
	"github.com/sourcepilot/sourcing-aggregator/pkg/eventbus"
	"github.com/sourcepilot/sourcing-aggregator/pkg/logger"
	"github.com/sourcepilot/sourcing-aggregator/pkg/model"
	"github.com/sourcepilot/sourcing-aggregator/pkg/secrets"
	"github.com/sourcepilot/sourcing-aggregator/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	logg := logger.S()
	logg.Info("starting [sourcing-aggregator]...")
	if cfg.DatabaseURL != "" {
		logg.Info("connection to DSN: ", utils.MaskDSN(cfg.DatabaseURL))
	}

	// --- Secrets provider ---
	var secretsProv secrets.Provider
	switch cfg.SecretsBackend {
	case "aws":
		var err error
		secretsProv, err = secrets.NewAWSProvider(cfg.AWSRegion)
		if err != nil {
			logg.Fatalw("failed to create AWS Secrets Manager provider", "error", err)
		}
	default:
		secretsProv = secrets.NewEnvProvider()
	}

	// --- Store (Redis + Postgres hybrid) ---
	st, err := store.NewHybrid(cfg.RedisAddr, cfg.RedisDB, cfg.DatabaseURL, store.PGPoolConfig{
		MaxConns: 8,
		MinConns: 1,
	}, logger.L())
	if err != nil {
		logg.Fatalw("failed to init store", "error", err)
	}

	// --- Connect to NATS ---
	// Messaging is a best-effort collaborator: search still works without it.
	var nc *nats.Conn
	var pub *publisher.Publisher
	nc, err = nats.Connect(cfg.NATSURL)
	if err != nil {
		logg.Warnw("failed to connect to NATS, events disabled", "error", err)
		nc = nil
	} else {
		pub, err = publisher.New(nc, cfg.OutboundSubject, cfg.ServiceName)
		if err != nil {
			logg.Warnw("failed to init publisher, events disabled", "error", err)
			pub = nil
		}
	}

	// --- Rate limiter ---
	rateMgr := rate.NewManager(rate.Config{
		RequestsPerSecond: cfg.RateRequestsPerSecond,
		Burst:             cfg.RateBurst,
	})

	// --- Auth manager with per-source token exchanges ---
	authMgr := auth.NewManager(
		logger.L(),
		secretsProv,
		cfg.SecretsPrefix,
		st,
		map[string]auth.Authenticator{
			model.SourceAlibaba:        auth.NewOAuthAuthenticator(logger.L(), model.SourceAlibaba, cfg.Sources[model.SourceAlibaba].TokenURL),
			model.SourceMadeInChina:    auth.NewOAuthAuthenticator(logger.L(), model.SourceMadeInChina, cfg.Sources[model.SourceMadeInChina].TokenURL),
			model.SourceCJDropshipping: cjdropshipping.NewAuthenticator(logger.L(), cfg.Sources[model.SourceCJDropshipping].TokenURL),
		},
		cfg.TokenLocalTTL,
		cfg.TokenSafetyMargin,
	)

	// --- Source connectors ---
	connectors := []source.Connector{
		alibaba.NewClient(logger.L(), cfg.Sources[model.SourceAlibaba].BaseURL, authMgr, rateMgr, cfg.RequestTimeout),
		madeinchina.NewClient(logger.L(), cfg.Sources[model.SourceMadeInChina].BaseURL, authMgr, rateMgr, cfg.RequestTimeout),
		cjdropshipping.NewClient(logger.L(), cfg.Sources[model.SourceCJDropshipping].BaseURL, authMgr, rateMgr, cfg.RequestTimeout),
		shopify.NewClient(logger.L(), cfg.Sources[model.SourceShopify].BaseURL, rateMgr, cfg.RequestTimeout),
	}

	// --- Retry executor with attempt observer ---
	bus := eventbus.New()
	bus.Subscribe(retry.AttemptEvent{}, func(ev any) {
		attempt := ev.(retry.AttemptEvent)
		if attempt.Err == nil {
			return
		}
		logger.L().Debug("source.attempt_observed",
			zap.String("source", attempt.Source),
			zap.Int("attempt", attempt.Attempt),
			zap.Int("max_attempts", attempt.Max),
			zap.Duration("latency", attempt.Latency),
			zap.Error(attempt.Err))
	})
	exec := retry.New(logger.L(), bus, cfg.MaxAttempts)

	// --- Aggregation service ---
	var eventPub aggregator.EventPublisher
	if pub != nil {
		eventPub = pub
	}
	svc := aggregator.NewService(logger.L(), connectors, exec, authMgr, eventPub, cfg.DefaultLimit)

	// --- Periodic source health prober ---
	prober := jobs.NewHealthProber(logger.L(), connectors, cfg.HealthProbeInterval, cfg.RequestTimeout)
	go prober.Start(ctx)

	// --- Metrics server ---
	metrics.StartServer(fmt.Sprintf(":%d", cfg.MetricsPort))

	// --- Fiber HTTP server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	})

	var pushPub api.PushPublisher
	if pub != nil {
		pushPub = pub
	}
	handler := api.NewHandler(logger.L(), svc, st, pushPub)
	api.RegisterRoutes(app, nc, st, handler)

	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	logg.Infow("[sourcing-aggregator] running",
		"env", cfg.Env,
		"sources", svc.Sources(),
		"nats", nc != nil,
		"secrets_backend", cfg.SecretsBackend)

	<-ctx.Done()
	logg.Info("shutting down [sourcing-aggregator]...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Warnw("fiber.shutdown_failed", "error", err)
	}
	if nc != nil {
		if err := nc.Drain(); err != nil {
			logg.Warnw("nats.drain_failed", "error", err)
		}
	}
	if err := st.Close(); err != nil {
		logg.Warnw("store.close_failed", "error", err)
	}
}
