// Package config provides configuration loading and defaults for the
// storefront-mcp server.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jamesprial/storefront-mcp/internal/storefront"
)

// Environment variables recognised by ApplyEnvOverrides and the server.
const (
	EnvConfigPath  = "STOREFRONT_MCP_CONFIG_PATH"
	EnvAuthToken   = "STOREFRONT_MCP_AUTH_TOKEN"
	EnvLogLevel    = "STOREFRONT_MCP_LOG_LEVEL"
	EnvShopDomain  = "SHOPIFY_SHOP_DOMAIN"
	EnvAccessToken = "SHOPIFY_STOREFRONT_ACCESS_TOKEN"
	EnvAPIVersion  = "SHOPIFY_STOREFRONT_API_VERSION"
)

// ResourceFilter holds allowlist and denylist glob patterns.
type ResourceFilter struct {
	Allowlist []string `yaml:"allowlist"`
	Denylist  []string `yaml:"denylist"`
}

// SafetyConfig groups the handle filter and confirmation settings.
type SafetyConfig struct {
	Handles ResourceFilter `yaml:"handles"`
	// ConfirmCart makes storefront_create_cart ask for a confirmation token.
	ConfirmCart bool `yaml:"confirm_cart"`
}

// AuditConfig controls audit logging behaviour.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	LogPath string `yaml:"log_path"`
}

// ServerConfig holds network and authentication settings.
type ServerConfig struct {
	Port      int    `yaml:"port"`
	AuthToken string `yaml:"auth_token"`
	// AllowedOrigins lists CORS origins for the HTTP API.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorefrontConfig holds the Shopify Storefront API connection details.
type StorefrontConfig struct {
	ShopDomain  string `yaml:"shop_domain"`
	AccessToken string `yaml:"access_token"`
	APIVersion  string `yaml:"api_version"`
	// Timeout is the HTTP request timeout in seconds. Zero disables it.
	Timeout int `yaml:"timeout"`
	// PartialData keeps data returned alongside API errors.
	PartialData bool `yaml:"partial_data"`
}

// RequestTimeout returns Timeout as a duration.
func (s StorefrontConfig) RequestTimeout() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the top-level configuration structure for the storefront-mcp
// server.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storefront StorefrontConfig `yaml:"storefront"`
	Log        LogConfig        `yaml:"log"`
	Audit      AuditConfig      `yaml:"audit"`
	Safety     SafetyConfig     `yaml:"safety"`
}

// LoadConfig reads a YAML configuration file from path on top of
// DefaultConfig. Keys absent from the file keep their default values. On
// error, nil is returned for the config pointer.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a new Config populated with default values.
// Each call returns a distinct instance.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		Storefront: StorefrontConfig{
			APIVersion: storefront.DefaultAPIVersion,
			Timeout:    30,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Audit: AuditConfig{
			Enabled: false,
			LogPath: "/config/audit.log",
		},
		Safety: SafetyConfig{
			ConfirmCart: true,
		},
	}
}

// LoadDotEnv loads environment variables from the given .env files (".env"
// when none are given). Variables already set in the environment win. A
// missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnvOverrides updates cfg in place with values from environment
// variables. Empty variables are ignored.
//   - STOREFRONT_MCP_AUTH_TOKEN overrides cfg.Server.AuthToken
//   - STOREFRONT_MCP_LOG_LEVEL overrides cfg.Log.Level
//   - SHOPIFY_SHOP_DOMAIN overrides cfg.Storefront.ShopDomain
//   - SHOPIFY_STOREFRONT_ACCESS_TOKEN overrides cfg.Storefront.AccessToken
//   - SHOPIFY_STOREFRONT_API_VERSION overrides cfg.Storefront.APIVersion
func ApplyEnvOverrides(cfg *Config) {
	overrides := []struct {
		env    string
		target *string
	}{
		{EnvAuthToken, &cfg.Server.AuthToken},
		{EnvLogLevel, &cfg.Log.Level},
		{EnvShopDomain, &cfg.Storefront.ShopDomain},
		{EnvAccessToken, &cfg.Storefront.AccessToken},
		{EnvAPIVersion, &cfg.Storefront.APIVersion},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.target = v
		}
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Storefront.ShopDomain == "" {
		errs = append(errs, fmt.Errorf("storefront.shop_domain is required (or set %s)", EnvShopDomain))
	}
	if c.Storefront.AccessToken == "" {
		errs = append(errs, fmt.Errorf("storefront.access_token is required (or set %s)", EnvAccessToken))
	}
	if c.Storefront.Timeout < 0 {
		errs = append(errs, errors.New("storefront.timeout must not be negative"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	return errors.Join(errs...)
}

// EnsureAuthToken generates a random auth token and sets it on cfg if
// cfg.Server.AuthToken is empty. It returns the token (existing or generated)
// and any error encountered during generation.
func EnsureAuthToken(cfg *Config) (string, error) {
	if cfg.Server.AuthToken != "" {
		return cfg.Server.AuthToken, nil
	}
	token, err := GenerateRandomToken()
	if err != nil {
		return "", fmt.Errorf("generate auth token: %w", err)
	}
	cfg.Server.AuthToken = token
	return token, nil
}

// GenerateRandomToken returns a 32-character hex-encoded cryptographically
// random token string.
func GenerateRandomToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand.Read: %w", err)
	}
	return hex.EncodeToString(b), nil
}
