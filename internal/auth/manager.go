package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sourcepilot/sourcing-aggregator/internal/source"
	"github.com/sourcepilot/sourcing-aggregator/internal/store"
	"github.com/sourcepilot/sourcing-aggregator/pkg/cache"
	"github.com/sourcepilot/sourcing-aggregator/pkg/secrets"
	"github.com/sourcepilot/sourcing-aggregator/pkg/utils"
)

// Credentials are the client credentials exchanged for a bearer token.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Token is a cached per-source access token. Expiry is checked lazily at
// read against the wall clock; entries are only ever replaced whole.
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Valid reports whether the token is still usable now.
func (t Token) Valid() bool {
	return t.AccessToken != "" && time.Now().Before(t.ExpiresAt)
}

// Error is an authentication failure against a source's token endpoint.
type Error struct {
	Source  string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: authentication failed: %s", e.Source, e.Message)
}

// Authenticator performs the source-specific token exchange.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (Token, error)
}

// Manager orchestrates per-source credential lookup and token caching in
// three tiers: in-process memory, shared Redis, then the network. The
// shared tier lets concurrent service processes reuse one token instead of
// each re-authenticating.
type Manager struct {
	logger        *zap.Logger
	secrets       secrets.Provider
	secretsPrefix string
	local         *cache.Cache[Token]
	shared        store.Store
	auths         map[string]Authenticator
	localTTL      time.Duration
	safetyMargin  time.Duration
}

// NewManager constructs the multi-source auth manager.
func NewManager(
	logger *zap.Logger,
	secretsProv secrets.Provider,
	secretsPrefix string,
	shared store.Store,
	auths map[string]Authenticator,
	localTTL, safetyMargin time.Duration,
) *Manager {
	return &Manager{
		logger:        logger,
		secrets:       secretsProv,
		secretsPrefix: secretsPrefix,
		local:         cache.New[Token](localTTL),
		shared:        shared,
		auths:         auths,
		localTTL:      localTTL,
		safetyMargin:  safetyMargin,
	}
}

func tokenKey(sourceName string) string {
	return "token:" + sourceName
}

// GetToken returns a valid access token for the source, consulting the
// in-process cache, then the shared cache, then the token endpoint.
// It returns source.ErrNotConfigured when the source has no credentials
// and *Error when the token exchange fails; it never returns a stale token.
func (m *Manager) GetToken(ctx context.Context, sourceName string) (string, error) {
	key := tokenKey(sourceName)

	// 1. In-process tier: no I/O.
	if tok, ok := m.local.Get(key); ok && tok.Valid() {
		return tok.AccessToken, nil
	}

	// 2. Shared tier: another process may have authenticated already.
	var tok Token
	err := m.shared.GetJSON(ctx, key, &tok)
	if err == nil && tok.Valid() {
		m.local.PutTTL(key, tok, m.localLifetime(tok))
		return tok.AccessToken, nil
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		m.logger.Warn("auth.shared_cache_read_failed",
			zap.String("source", sourceName), zap.Error(err))
	}

	// 3. Network.
	return m.refresh(ctx, sourceName)
}

// ClearCredential forcibly invalidates both cache tiers for the source.
func (m *Manager) ClearCredential(ctx context.Context, sourceName string) error {
	key := tokenKey(sourceName)
	m.local.Bust(key)
	if err := m.shared.Delete(ctx, key); err != nil {
		return fmt.Errorf("clear shared credential for %s: %w", sourceName, err)
	}
	m.logger.Info("auth.credential_cleared", zap.String("source", sourceName))
	return nil
}

// HealthCheck performs a fresh token exchange for the source, bypassing
// both cache tiers. The obtained token is cached on success.
func (m *Manager) HealthCheck(ctx context.Context, sourceName string) error {
	_, err := m.refresh(ctx, sourceName)
	return err
}

// Configured reports whether the source has client credentials available.
func (m *Manager) Configured(ctx context.Context, sourceName string) bool {
	_, err := m.resolveCredentials(ctx, sourceName)
	return err == nil
}

func (m *Manager) refresh(ctx context.Context, sourceName string) (string, error) {
	authn, ok := m.auths[sourceName]
	if !ok {
		return "", fmt.Errorf("%s: %w", sourceName, source.ErrNotConfigured)
	}

	creds, err := m.resolveCredentials(ctx, sourceName)
	if err != nil {
		return "", err
	}

	tok, err := authn.Authenticate(ctx, creds)
	if err != nil {
		m.logger.Error("auth.exchange_failed",
			zap.String("source", sourceName), zap.Error(err))
		var authErr *Error
		if errors.As(err, &authErr) {
			return "", err
		}
		return "", &Error{Source: sourceName, Message: err.Error()}
	}

	// Shave the safety margin off the upstream-declared lifetime so a token
	// handed out near expiry is never rejected mid-request.
	tok.ExpiresAt = tok.ExpiresAt.Add(-m.safetyMargin)
	if !tok.Valid() {
		return "", &Error{Source: sourceName, Message: "upstream returned an already-expired token"}
	}

	key := tokenKey(sourceName)
	if err := m.shared.SetJSON(ctx, key, tok, time.Until(tok.ExpiresAt)); err != nil {
		m.logger.Warn("auth.shared_cache_write_failed",
			zap.String("source", sourceName), zap.Error(err))
	}
	m.local.PutTTL(key, tok, m.localLifetime(tok))

	m.logger.Info("auth.token_refreshed",
		zap.String("source", sourceName),
		zap.String("token", utils.MaskToken(tok.AccessToken)),
		zap.Time("expires_at", tok.ExpiresAt))

	return tok.AccessToken, nil
}

func (m *Manager) resolveCredentials(ctx context.Context, sourceName string) (Credentials, error) {
	key := fmt.Sprintf("%s/%s", m.secretsPrefix, sourceName)
	credsMap, err := m.secrets.GetSecret(ctx, key)
	if err != nil {
		m.logger.Warn("auth.secret_fetch_failed", zap.String("key", key), zap.Error(err))
		return Credentials{}, fmt.Errorf("%s: %w", sourceName, source.ErrNotConfigured)
	}
	creds := Credentials{
		ClientID:     credsMap["client_id"],
		ClientSecret: credsMap["client_secret"],
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return Credentials{}, fmt.Errorf("%s: %w", sourceName, source.ErrNotConfigured)
	}
	return creds, nil
}

// localLifetime bounds the in-process copy's TTL: never longer than the
// token itself, never longer than the configured local TTL.
func (m *Manager) localLifetime(tok Token) time.Duration {
	remaining := time.Until(tok.ExpiresAt)
	if remaining < m.localTTL {
		return remaining
	}
	return m.localTTL
}
