package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/opsbeacon/mcp-opsbeacon/pkg/config"
	"github.com/opsbeacon/mcp-opsbeacon/pkg/middleware"
)

// MultiAuthenticator tries each authenticator in order and returns the first
// success. All failures are combined into one error.
type MultiAuthenticator struct {
	authenticators []middleware.Authenticator
}

// NewMultiAuthenticator creates an authenticator chain.
func NewMultiAuthenticator(authenticators ...middleware.Authenticator) *MultiAuthenticator {
	return &MultiAuthenticator{authenticators: authenticators}
}

// Authenticate tries each configured method in order.
func (m *MultiAuthenticator) Authenticate(ctx context.Context) (*middleware.UserInfo, error) {
	var errs []error
	for _, a := range m.authenticators {
		userInfo, err := a.Authenticate(ctx)
		if err == nil {
			return userInfo, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("no authentication methods configured")
	}
	return nil, errors.Join(errs...)
}

// FromConfig builds the inbound authenticator for the HTTP transport. When
// auth is not required it returns a NoopAuthenticator.
func FromConfig(cfg config.AuthConfig) (middleware.Authenticator, error) {
	if !cfg.Required {
		return &middleware.NoopAuthenticator{}, nil
	}

	var methods []middleware.Authenticator
	if len(cfg.APIKeys) > 0 {
		methods = append(methods, NewAPIKeyAuthenticator(cfg.APIKeys))
	}
	if cfg.JWT.SigningKey != "" {
		jwtAuth, err := NewJWTAuthenticator(cfg.JWT)
		if err != nil {
			return nil, err
		}
		methods = append(methods, jwtAuth)
	}
	if len(methods) == 0 {
		return nil, fmt.Errorf("auth is required but no api_keys or jwt signing key are configured")
	}
	return NewMultiAuthenticator(methods...), nil
}

// Verify interface compliance.
var _ middleware.Authenticator = (*MultiAuthenticator)(nil)
