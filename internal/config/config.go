package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API  APIConfig
	Auth AuthConfig
	UI   UIConfig
}

// APIConfig holds backend connection settings.
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// AuthConfig holds login settings. The token env var takes precedence
// over email/password when set, skipping the login round trip.
type AuthConfig struct {
	Email    string
	Password string
	TokenEnv string `mapstructure:"token_env"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	NotifySeconds int `mapstructure:"notify_seconds"`
}

// Load reads configuration from file and env. Env var overrides use prefix TAVOLA_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout_seconds", 15)
	v.SetDefault("auth.email", "")
	v.SetDefault("auth.password", "")
	v.SetDefault("auth.token_env", "TAVOLA_TOKEN")
	v.SetDefault("ui.notify_seconds", 4)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("TAVOLA_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "tavola"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("TAVOLA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Token resolves the session token from the configured env var, if any.
func (a AuthConfig) Token() string {
	if a.TokenEnv == "" {
		return ""
	}
	return os.Getenv(a.TokenEnv)
}

// Path returns the config file location, honoring the TAVOLA_CONFIG override.
func Path() string {
	if p := os.Getenv("TAVOLA_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "tavola", "config.toml")
}

// Save writes the provided config to disk, creating the config directory if
// needed. The password is stored in plain text; encourage users to prefer the
// token env var.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.timeout_seconds", cfg.API.TimeoutSeconds)
	v.Set("auth.email", cfg.Auth.Email)
	v.Set("auth.password", cfg.Auth.Password)
	v.Set("auth.token_env", cfg.Auth.TokenEnv)
	v.Set("ui.notify_seconds", cfg.UI.NotifySeconds)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
