package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sourcepilot/sourcing-aggregator/internal/source"
	"github.com/sourcepilot/sourcing-aggregator/internal/store"
)

type fakeSecrets struct {
	creds map[string]map[string]string
}

func (f *fakeSecrets) GetSecret(_ context.Context, key string) (map[string]string, error) {
	if m, ok := f.creds[key]; ok {
		return m, nil
	}
	return map[string]string{}, nil
}

func newTokenServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123",
			"expires_in":   3600,
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestManager(t *testing.T, tokenURL string, mr *miniredis.Miniredis) *Manager {
	t.Helper()
	st, err := store.NewHybrid(mr.Addr(), 0, "", store.PGPoolConfig{}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	provider := &fakeSecrets{creds: map[string]map[string]string{
		"sourcing/test/alibaba": {"client_id": "id", "client_secret": "secret"},
	}}

	auths := map[string]Authenticator{
		"alibaba": NewOAuthAuthenticator(zap.NewNop(), "alibaba", tokenURL),
	}

	return NewManager(zap.NewNop(), provider, "sourcing/test", st, auths, 5*time.Minute, 60*time.Second)
}

func TestGetTokenCachesWithinTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	srv, calls := newTokenServer(t)
	mgr := newTestManager(t, srv.URL, mr)
	ctx := context.Background()

	tok, err := mgr.GetToken(ctx, "alibaba")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tok)
	assert.EqualValues(t, 1, calls.Load())

	// Reads within the token's TTL must not hit the network.
	for i := 0; i < 5; i++ {
		tok, err = mgr.GetToken(ctx, "alibaba")
		require.NoError(t, err)
		assert.Equal(t, "tok-123", tok)
	}
	assert.EqualValues(t, 1, calls.Load())
}

func TestGetTokenUsesSharedTier(t *testing.T) {
	mr := miniredis.RunT(t)
	srv, calls := newTokenServer(t)
	ctx := context.Background()

	first := newTestManager(t, srv.URL, mr)
	_, err := first.GetToken(ctx, "alibaba")
	require.NoError(t, err)

	// A second process with a cold in-process tier finds the shared token.
	second := newTestManager(t, srv.URL, mr)
	tok, err := second.GetToken(ctx, "alibaba")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tok)
	assert.EqualValues(t, 1, calls.Load())
}

func TestClearCredentialForcesFreshAuth(t *testing.T) {
	mr := miniredis.RunT(t)
	srv, calls := newTokenServer(t)
	mgr := newTestManager(t, srv.URL, mr)
	ctx := context.Background()

	_, err := mgr.GetToken(ctx, "alibaba")
	require.NoError(t, err)
	require.NoError(t, mgr.ClearCredential(ctx, "alibaba"))

	_, err = mgr.GetToken(ctx, "alibaba")
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load(), "clear followed by get must authenticate exactly once more")
}

func TestGetTokenUnconfiguredSource(t *testing.T) {
	mr := miniredis.RunT(t)
	srv, _ := newTokenServer(t)
	mgr := newTestManager(t, srv.URL, mr)

	_, err := mgr.GetToken(context.Background(), "made-in-china")
	assert.ErrorIs(t, err, source.ErrNotConfigured)
}

func TestGetTokenAuthFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	mgr := newTestManager(t, srv.URL, mr)
	_, err := mgr.GetToken(context.Background(), "alibaba")

	var authErr *Error
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "alibaba", authErr.Source)
}

func TestHealthCheckBypassesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	srv, calls := newTokenServer(t)
	mgr := newTestManager(t, srv.URL, mr)
	ctx := context.Background()

	_, err := mgr.GetToken(ctx, "alibaba")
	require.NoError(t, err)

	require.NoError(t, mgr.HealthCheck(ctx, "alibaba"))
	assert.EqualValues(t, 2, calls.Load(), "health check must perform a fresh exchange")
}
