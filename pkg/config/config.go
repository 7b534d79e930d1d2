// Package config loads and validates the server configuration.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables recognized when no config file (or no explicit
// value) is provided.
const (
	// EnvToken holds the Opsbeacon API bearer token. Required.
	EnvToken = "OPSBEACON_TOKEN"

	// EnvAPIURL overrides the upstream API base URL. Optional.
	EnvAPIURL = "OPSBEACON_API_URL"
)

// DefaultAPIURL is the Opsbeacon workspace API used when no override is set.
const DefaultAPIURL = "https://api.console-dev.opsbeacon.com"

// Config holds the complete server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Auth     AuthConfig     `yaml:"auth"`
	Audit    AuditConfig    `yaml:"audit"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Name      string `yaml:"name"`
	Version   string `yaml:"version"`
	Transport string `yaml:"transport"` // "stdio", "http"
	Address   string `yaml:"address"`
}

// UpstreamConfig configures the Opsbeacon API connection.
type UpstreamConfig struct {
	URL     string        `yaml:"url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// AuthConfig configures inbound authentication for the HTTP transport.
// It has no effect on the stdio transport, where the process boundary is
// the trust boundary.
type AuthConfig struct {
	Required bool        `yaml:"required"`
	APIKeys  []APIKeyDef `yaml:"api_keys"`
	JWT      JWTConfig   `yaml:"jwt"`
}

// APIKeyDef defines a static inbound API key.
type APIKeyDef struct {
	Key   string   `yaml:"key"`
	Name  string   `yaml:"name"`
	Roles []string `yaml:"roles"`
}

// JWTConfig configures HMAC-signed JWT validation for inbound bearer tokens.
type JWTConfig struct {
	// SigningKey is the base64-encoded HMAC key. Empty disables JWT auth.
	SigningKey string `yaml:"signing_key"`
	Issuer     string `yaml:"issuer"`
	Audience   string `yaml:"audience"`
}

// AuditConfig configures audit logging of tool calls.
type AuditConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads a YAML config file, expands ${VAR} references against the
// process environment, and applies environment fallbacks and defaults.
// The path comes from command line arguments, controlled by the operator.
func Load(path string) (*Config, error) {
	// #nosec G304 -- path is from CLI args, controlled by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv builds a configuration from environment variables alone.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable. A missing upstream
// token is a fatal configuration error: the server must not come up and
// discover the problem on the first tool call.
func (c *Config) Validate() error {
	if c.Upstream.Token == "" {
		return fmt.Errorf("upstream token is required: set %s or upstream.token in the config file", EnvToken)
	}
	if c.Upstream.URL == "" {
		return fmt.Errorf("upstream URL is required")
	}
	switch c.Server.Transport {
	case "stdio", "http":
	default:
		return fmt.Errorf("unknown transport: %s", c.Server.Transport)
	}
	return nil
}

// expandEnvVars expands ${VAR} patterns in the string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

// applyEnv fills unset fields from the process environment.
func applyEnv(cfg *Config) {
	if cfg.Upstream.Token == "" {
		cfg.Upstream.Token = os.Getenv(EnvToken)
	}
	if cfg.Upstream.URL == "" {
		cfg.Upstream.URL = os.Getenv(EnvAPIURL)
	}
}

// applyDefaults applies default values to the config.
func applyDefaults(cfg *Config) {
	if cfg.Server.Name == "" {
		cfg.Server.Name = "mcp-opsbeacon"
	}
	if cfg.Server.Version == "" {
		cfg.Server.Version = "dev"
	}
	if cfg.Server.Transport == "" {
		cfg.Server.Transport = "stdio"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Upstream.URL == "" {
		cfg.Upstream.URL = DefaultAPIURL
	}
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = 30 * time.Second
	}
}
