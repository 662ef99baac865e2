package config

import (
	"time"

	"github.com/joho/godotenv"
)

// SourceEndpoints holds the upstream URLs for one product source.
// Client credentials are resolved separately through the secrets provider.
type SourceEndpoints struct {
	BaseURL  string
	TokenURL string
}

// Config holds the core runtime configuration for a service instance.
// It supports environment-based initialization, with sensible defaults.
type Config struct {
	ServiceName string // e.g. "sourcing-aggregator"
	Env         string // e.g. "dev", "uat", "prod"
	LogLevel    string // "debug", "info", etc.
	Port        int    // HTTP API port
	MetricsPort int    // prometheus scrape port

	DatabaseURL string
	RedisAddr   string // e.g. localhost:6379
	RedisDB     int
	RedisPass   string
	NATSURL     string // e.g. nats://localhost:4222
	AWSRegion   string // for AWS SDK client

	// SecretsBackend selects how per-source client credentials are resolved:
	// "aws" for AWS Secrets Manager, "env" for plain environment variables.
	SecretsBackend string
	SecretsPrefix  string // e.g. "sourcing/prod"

	RequestTimeout    time.Duration // per upstream HTTP call
	MaxAttempts       int           // retry attempts per source per search
	DefaultLimit      int           // result limit when the caller omits one
	TokenLocalTTL     time.Duration // in-process token cache TTL
	TokenSafetyMargin time.Duration // subtracted from upstream expires_in

	HealthProbeInterval time.Duration // periodic per-source auth probe

	RateRequestsPerSecond int
	RateBurst             int

	OutboundSubject string // NATS subject for search events
	StreamName      string // JetStream stream name

	Sources map[string]SourceEndpoints

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// Load loads configuration from environment variables and .env file if present.
func Load() *Config {
	// load .env silently (no error if missing)
	_ = godotenv.Load()

	return &Config{
		ServiceName: GetEnv("SERVICE_NAME", "sourcing-aggregator"),
		Env:         GetEnv("ENV", "dev"),
		LogLevel:    GetEnv("LOG_LEVEL", "info"),
		Port:        GetEnvInt("PORT", 8080),
		MetricsPort: GetEnvInt("METRICS_PORT", 9100),

		DatabaseURL: GetEnv("DATABASE_URL", ""),
		RedisAddr:   GetEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     GetEnvInt("REDIS_DB", 0),
		RedisPass:   GetEnv("REDIS_PASS", ""),
		NATSURL:     GetEnv("NATS_URL", "nats://localhost:4222"),
		AWSRegion:   GetEnv("AWS_REGION", "us-east-1"),

		SecretsBackend: GetEnv("SECRETS_BACKEND", "env"),
		SecretsPrefix:  GetEnv("SECRETS_PREFIX", "sourcing/dev"),

		RequestTimeout:    GetEnvDuration("REQUEST_TIMEOUT", 15*time.Second),
		MaxAttempts:       GetEnvInt("MAX_ATTEMPTS", 3),
		DefaultLimit:      GetEnvInt("DEFAULT_LIMIT", 20),
		TokenLocalTTL:     GetEnvDuration("TOKEN_LOCAL_TTL", 5*time.Minute),
		TokenSafetyMargin: GetEnvDuration("TOKEN_SAFETY_MARGIN", 60*time.Second),

		HealthProbeInterval: GetEnvDuration("HEALTH_PROBE_INTERVAL", 10*time.Minute),

		RateRequestsPerSecond: GetEnvInt("RATE_RPS", 5),
		RateBurst:             GetEnvInt("RATE_BURST", 10),

		OutboundSubject: GetEnv("OUTBOUND_SUBJECT", "evt.sourcing"),
		StreamName:      GetEnv("STREAM_NAME", "SOURCING_EVENTS"),

		Sources: map[string]SourceEndpoints{
			"alibaba": {
				BaseURL:  GetEnv("ALIBABA_BASE_URL", "https://open-api.alibaba.com"),
				TokenURL: GetEnv("ALIBABA_TOKEN_URL", "https://open-api.alibaba.com/oauth/token"),
			},
			"made-in-china": {
				BaseURL:  GetEnv("MIC_BASE_URL", "https://open.made-in-china.com"),
				TokenURL: GetEnv("MIC_TOKEN_URL", "https://open.made-in-china.com/oauth/token"),
			},
			"cj-dropshipping": {
				BaseURL:  GetEnv("CJ_BASE_URL", "https://developers.cjdropshipping.com/api2.0/v1"),
				TokenURL: GetEnv("CJ_TOKEN_URL", "https://developers.cjdropshipping.com/api2.0/v1/authentication/getAccessToken"),
			},
			"shopify": {
				BaseURL: GetEnv("SHOPIFY_MCP_URL", "https://shopify.com/api/mcp"),
			},
		},

		HTTPReadTimeout:  GetEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout: GetEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		HTTPIdleTimeout:  GetEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
	}
}
