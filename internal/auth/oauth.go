package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// defaultTokenLifetime applies when the token endpoint omits expires_in.
const defaultTokenLifetime = 3600 * time.Second

// OAuthAuthenticator exchanges client credentials for a bearer token against
// a standard OAuth2 client-credentials endpoint. Alibaba and Made-in-China
// both speak this shape.
type OAuthAuthenticator struct {
	logger     *zap.Logger
	sourceName string
	tokenURL   string
	client     *http.Client
}

// NewOAuthAuthenticator creates an authenticator for the given token endpoint.
func NewOAuthAuthenticator(logger *zap.Logger, sourceName, tokenURL string) *OAuthAuthenticator {
	return &OAuthAuthenticator{
		logger:     logger,
		sourceName: sourceName,
		tokenURL:   tokenURL,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

type oauthTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Authenticate performs the client-credentials exchange.
func (a *OAuthAuthenticator) Authenticate(ctx context.Context, creds Credentials) (Token, error) {
	body := map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     creds.ClientID,
		"client_secret": creds.ClientSecret,
	}
	data, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL, bytes.NewReader(data))
	if err != nil {
		return Token{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return Token{}, &Error{Source: a.sourceName, Message: err.Error()}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return Token{}, &Error{
			Source:  a.sourceName,
			Message: fmt.Sprintf("token endpoint returned %d", resp.StatusCode),
		}
	}

	var tr oauthTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return Token{}, &Error{Source: a.sourceName, Message: "invalid token response: " + err.Error()}
	}
	if tr.AccessToken == "" {
		return Token{}, &Error{Source: a.sourceName, Message: "token endpoint returned no access_token"}
	}

	lifetime := defaultTokenLifetime
	if tr.ExpiresIn > 0 {
		lifetime = time.Duration(tr.ExpiresIn) * time.Second
	}

	a.logger.Debug("auth.oauth_exchange_success", zap.String("source", a.sourceName))

	return Token{
		AccessToken: tr.AccessToken,
		ExpiresAt:   time.Now().Add(lifetime),
	}, nil
}
