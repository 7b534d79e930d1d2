package auth

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/opsbeacon/mcp-opsbeacon/pkg/config"
	"github.com/opsbeacon/mcp-opsbeacon/pkg/middleware"
)

// JWTAuthenticator validates HMAC-signed bearer tokens.
type JWTAuthenticator struct {
	key      []byte
	issuer   string
	audience string
}

// NewJWTAuthenticator creates an authenticator from a base64-encoded HMAC
// signing key and optional issuer/audience constraints.
func NewJWTAuthenticator(cfg config.JWTConfig) (*JWTAuthenticator, error) {
	if cfg.SigningKey == "" {
		return nil, fmt.Errorf("jwt signing key is required")
	}
	key, err := base64.StdEncoding.DecodeString(cfg.SigningKey)
	if err != nil {
		return nil, fmt.Errorf("decoding jwt signing key: %w", err)
	}
	return &JWTAuthenticator{
		key:      key,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}, nil
}

// Authenticate validates the bearer token found in the context.
func (a *JWTAuthenticator) Authenticate(ctx context.Context) (*middleware.UserInfo, error) {
	tokenString := GetToken(ctx)
	if tokenString == "" {
		return nil, fmt.Errorf("no bearer token found in request")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	if a.audience != "" {
		opts = append(opts, jwt.WithAudience(a.audience))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return a.key, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	return &middleware.UserInfo{
		UserID:   sub,
		Roles:    extractRoles(claims),
		AuthType: "jwt",
	}, nil
}

// extractRoles reads the "roles" claim when present.
func extractRoles(claims jwt.MapClaims) []string {
	raw, ok := claims["roles"].([]any)
	if !ok {
		return nil
	}
	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}

// Verify interface compliance.
var _ middleware.Authenticator = (*JWTAuthenticator)(nil)
