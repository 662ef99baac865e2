package cjdropshipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sourcepilot/sourcing-aggregator/internal/auth"
)

// Authenticator implements CJ's custom token exchange: an email/apiKey pair
// posted as JSON, returning an access token with an explicit expiry date.
// The configured client_id maps to the account email, client_secret to the
// API key.
type Authenticator struct {
	logger   *zap.Logger
	tokenURL string
	client   *http.Client
}

// NewAuthenticator creates the CJ-specific authenticator.
func NewAuthenticator(logger *zap.Logger, tokenURL string) *Authenticator {
	return &Authenticator{
		logger:   logger,
		tokenURL: tokenURL,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Authenticate exchanges the account credentials for an access token.
func (a *Authenticator) Authenticate(ctx context.Context, creds auth.Credentials) (auth.Token, error) {
	body := map[string]string{
		"email":    creds.ClientID,
		"password": creds.ClientSecret,
	}
	data, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL, bytes.NewReader(data))
	if err != nil {
		return auth.Token{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return auth.Token{}, &auth.Error{Source: Name, Message: err.Error()}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return auth.Token{}, &auth.Error{
			Source:  Name,
			Message: fmt.Sprintf("token endpoint returned %d", resp.StatusCode),
		}
	}

	var ar authResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return auth.Token{}, &auth.Error{Source: Name, Message: "invalid token response: " + err.Error()}
	}
	if !ar.Result || ar.Data.AccessToken == "" {
		return auth.Token{}, &auth.Error{Source: Name, Message: fmt.Sprintf("exchange rejected: %s", ar.Message)}
	}

	expiresAt := time.Now().Add(time.Hour)
	if ar.Data.AccessTokenExpiryDate != "" {
		if t, err := time.Parse(time.RFC3339, ar.Data.AccessTokenExpiryDate); err == nil {
			expiresAt = t
		} else {
			a.logger.Warn("cjdropshipping.expiry_parse_failed",
				zap.String("raw", ar.Data.AccessTokenExpiryDate), zap.Error(err))
		}
	}

	return auth.Token{AccessToken: ar.Data.AccessToken, ExpiresAt: expiresAt}, nil
}
