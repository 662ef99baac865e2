package secrets

import (
	"context"
	"os"
	"strings"
)

// EnvProvider resolves secrets from environment variables, for local/dev use.
// The last path segment of the secret key becomes the variable prefix:
// "sourcing/dev/cj-dropshipping" -> CJ_DROPSHIPPING_CLIENT_ID / _CLIENT_SECRET.
type EnvProvider struct{}

// NewEnvProvider creates an environment-variable backed provider.
func NewEnvProvider() Provider {
	return &EnvProvider{}
}

// GetSecret reads <PREFIX>_CLIENT_ID and <PREFIX>_CLIENT_SECRET. Unset
// variables are omitted from the returned map so callers can distinguish
// unconfigured sources.
func (p *EnvProvider) GetSecret(_ context.Context, key string) (map[string]string, error) {
	parts := strings.Split(key, "/")
	prefix := strings.ToUpper(strings.ReplaceAll(parts[len(parts)-1], "-", "_"))

	result := make(map[string]string)
	if v := os.Getenv(prefix + "_CLIENT_ID"); v != "" {
		result["client_id"] = v
	}
	if v := os.Getenv(prefix + "_CLIENT_SECRET"); v != "" {
		result["client_secret"] = v
	}
	return result, nil
}
