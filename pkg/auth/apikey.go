package auth

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/opsbeacon/mcp-opsbeacon/pkg/config"
	"github.com/opsbeacon/mcp-opsbeacon/pkg/middleware"
)

// APIKeyAuthenticator authenticates inbound calls using static API keys.
type APIKeyAuthenticator struct {
	keys []config.APIKeyDef
}

// NewAPIKeyAuthenticator creates an authenticator over the configured keys.
func NewAPIKeyAuthenticator(keys []config.APIKeyDef) *APIKeyAuthenticator {
	return &APIKeyAuthenticator{keys: keys}
}

// Authenticate validates the API key found in the context.
func (a *APIKeyAuthenticator) Authenticate(ctx context.Context) (*middleware.UserInfo, error) {
	token := GetToken(ctx)
	if token == "" {
		return nil, fmt.Errorf("no API key found in request")
	}

	// Constant-time comparison against every key.
	var matched *config.APIKeyDef
	for i := range a.keys {
		if subtle.ConstantTimeCompare([]byte(a.keys[i].Key), []byte(token)) == 1 {
			matched = &a.keys[i]
		}
	}
	if matched == nil {
		return nil, fmt.Errorf("invalid API key")
	}

	return &middleware.UserInfo{
		UserID:   "apikey:" + matched.Name,
		Roles:    matched.Roles,
		AuthType: "apikey",
	}, nil
}

// Verify interface compliance.
var _ middleware.Authenticator = (*APIKeyAuthenticator)(nil)
