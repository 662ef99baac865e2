package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sourcepilot/sourcing-aggregator/pkg/model"
)

// ErrNotFound is returned when a cache key is absent or expired.
var ErrNotFound = errors.New("store: key not found")

// Store defines the contract for the shared token cache tier and for
// persisting merchant saved-product and push records.
type Store interface {
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error
	Delete(ctx context.Context, key string) error
	SaveProduct(ctx context.Context, sp model.SavedProduct) error
	ListSavedProducts(ctx context.Context, merchantID string) ([]model.SavedProduct, error)
	RecordPush(ctx context.Context, rec model.PushRecord) error
	ListPushes(ctx context.Context, merchantID string) ([]model.PushRecord, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

type HybridStore struct {
	redis  *redis.Client
	PG     *pgxpool.Pool
	logger *zap.Logger
}

type PGPoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// NewHybrid creates a Redis-first, Postgres-backed store. Postgres is
// optional; without it the store serves only the shared cache tier.
func NewHybrid(redisAddr string, redisDB int, pgURL string, pgPoolConfig PGPoolConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
		DB:   redisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	var pgPool *pgxpool.Pool
	if pgURL != "" {
		cfg, err := pgxpool.ParseConfig(pgURL)
		if err != nil {
			return nil, fmt.Errorf("invalid pg config: %w", err)
		}
		if pgPoolConfig.MaxConns > 0 {
			cfg.MaxConns = pgPoolConfig.MaxConns
		}
		if pgPoolConfig.MinConns > 0 {
			cfg.MinConns = pgPoolConfig.MinConns
		}
		if pgPoolConfig.MaxConnLifetime > 0 {
			cfg.MaxConnLifetime = pgPoolConfig.MaxConnLifetime
		}
		if pgPoolConfig.MaxConnIdleTime > 0 {
			cfg.MaxConnIdleTime = pgPoolConfig.MaxConnIdleTime
		}
		if pgPoolConfig.HealthCheckPeriod > 0 {
			cfg.HealthCheckPeriod = pgPoolConfig.HealthCheckPeriod
		}
		pgPool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}

	return &HybridStore{redis: rdb, PG: pgPool, logger: logger}, nil
}

func (s *HybridStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, ttl).Err()
}

func (s *HybridStore) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := s.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (s *HybridStore) Delete(ctx context.Context, key string) error {
	return s.redis.Del(ctx, key).Err()
}

// SaveProduct upserts a merchant's pinned product.
func (s *HybridStore) SaveProduct(ctx context.Context, sp model.SavedProduct) error {
	if s.PG == nil {
		return nil
	}
	data, err := json.Marshal(sp.Product)
	if err != nil {
		return err
	}
	_, err = s.PG.Exec(ctx, `
		INSERT INTO sourcing.saved_product (merchant_id, product_id, source, product, saved_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (merchant_id, source, product_id)
		DO UPDATE SET product = EXCLUDED.product, saved_at = NOW();
	`, sp.MerchantID, sp.Product.ID, sp.Product.Source, data)
	if err != nil {
		s.logger.Error("store.pg.save_product_failed", zap.Error(err))
	}
	return err
}

func (s *HybridStore) ListSavedProducts(ctx context.Context, merchantID string) ([]model.SavedProduct, error) {
	if s.PG == nil {
		return nil, fmt.Errorf("postgres unavailable")
	}
	rows, err := s.PG.Query(ctx, `
		SELECT merchant_id, product, saved_at
		FROM sourcing.saved_product
		WHERE merchant_id = $1
		ORDER BY saved_at DESC;
	`, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.SavedProduct
	for rows.Next() {
		var sp model.SavedProduct
		var data []byte
		if err := rows.Scan(&sp.MerchantID, &data, &sp.SavedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &sp.Product); err != nil {
			return nil, err
		}
		results = append(results, sp)
	}
	return results, nil
}

// RecordPush inserts an immutable record of a product pushed to a merchant catalog.
func (s *HybridStore) RecordPush(ctx context.Context, rec model.PushRecord) error {
	if s.PG == nil {
		return nil
	}
	_, err := s.PG.Exec(ctx, `
		INSERT INTO sourcing.push_record (merchant_id, product_id, source, pushed_at)
		VALUES ($1, $2, $3, NOW());
	`, rec.MerchantID, rec.ProductID, rec.Source)
	if err != nil {
		s.logger.Error("store.pg.record_push_failed", zap.Error(err))
	}
	return err
}

func (s *HybridStore) ListPushes(ctx context.Context, merchantID string) ([]model.PushRecord, error) {
	if s.PG == nil {
		return nil, fmt.Errorf("postgres unavailable")
	}
	rows, err := s.PG.Query(ctx, `
		SELECT merchant_id, product_id, source, pushed_at
		FROM sourcing.push_record
		WHERE merchant_id = $1
		ORDER BY pushed_at DESC;
	`, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.PushRecord
	for rows.Next() {
		var rec model.PushRecord
		if err := rows.Scan(&rec.MerchantID, &rec.ProductID, &rec.Source, &rec.PushedAt); err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	return results, nil
}

func (s *HybridStore) HealthCheck(ctx context.Context) error {
	if s.redis == nil {
		return fmt.Errorf("redis not initialized")
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	if s.PG != nil {
		if err := s.PG.Ping(ctx); err != nil {
			return fmt.Errorf("postgres ping failed: %w", err)
		}
	}
	return nil
}

func (s *HybridStore) Close() error {
	if s.PG != nil {
		s.PG.Close()
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
