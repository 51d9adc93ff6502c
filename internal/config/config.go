// Package config loads client configuration from an optional .env file and
// CAREERFLOW_* environment variables, with working defaults for everything.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultAPIBaseURL is used when no backend URL is configured.
const DefaultAPIBaseURL = "https://careerflow-nbvo.onrender.com"

// Config holds all client settings.
type Config struct {
	// APIBaseURL is the prep backend root.
	APIBaseURL string `mapstructure:"api_base_url"`

	// IdentityBaseURL is the identity provider's accounts endpoint root.
	IdentityBaseURL string `mapstructure:"identity_base_url"`

	// IdentityAPIKey is the provider API key appended to every call.
	IdentityAPIKey string `mapstructure:"identity_api_key"`

	// RequestTimeout bounds every HTTP request. Zero disables the bound.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// MaxRPS rate-limits outgoing requests (0 = unlimited).
	MaxRPS float64 `mapstructure:"max_rps"`

	// CacheTTL is how long company payloads and AI answers are cached.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	// DataDir holds the history database and the cached session token.
	DataDir string `mapstructure:"data_dir"`

	// RevertDelay is how long a profile-update success flag is shown.
	RevertDelay time.Duration `mapstructure:"revert_delay"`
}

// HistoryPath is the SQLite history database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// TokenPath is the cached session token location.
func (c *Config) TokenPath() string {
	return filepath.Join(c.DataDir, "session.json")
}

// Load reads configuration. A .env file in the working directory is applied
// first (only effective locally; ignored when absent).
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CAREERFLOW")
	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_base_url", DefaultAPIBaseURL)
	v.SetDefault("identity_base_url", "https://identitytoolkit.googleapis.com/v1")
	v.SetDefault("identity_api_key", "")
	v.SetDefault("request_timeout", "30s")
	v.SetDefault("max_rps", 0.0)
	v.SetDefault("cache_ttl", "10m")
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("revert_delay", "3s")

	// viper only honors AutomaticEnv for keys it knows about.
	for _, key := range []string{
		"api_base_url", "identity_base_url", "identity_api_key",
		"request_timeout", "max_rps", "cache_ttl", "data_dir", "revert_delay",
	} {
		_ = v.BindEnv(key)
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".careerflow"
	}
	return filepath.Join(home, ".careerflow")
}
