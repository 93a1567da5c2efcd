// Package config loads badgectl configuration from a YAML file, the
// environment and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/NicolasHaas/badgeboard/pkg/api"
	"github.com/NicolasHaas/badgeboard/pkg/logging"
)

// EnvPrefix prefixes every environment override, e.g. BADGEBOARD_SERVER_BASE_URL.
const EnvPrefix = "BADGEBOARD"

// Config holds all configuration for badgectl.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Storage  StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Realtime RealtimeConfig `mapstructure:"realtime" yaml:"realtime"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`

	// Source is the file the config was read from, empty when none was found.
	Source string `mapstructure:"-" yaml:"-"`
}

// ServerConfig locates the badge server.
type ServerConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	WSURL   string        `mapstructure:"ws_url" yaml:"ws_url,omitempty"` // derived from base_url when empty
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// StorageConfig controls where client state is persisted.
type StorageConfig struct {
	Dir  string `mapstructure:"dir" yaml:"dir"`
	Seal bool   `mapstructure:"seal" yaml:"seal"` // encrypt the stored session at rest
}

// RealtimeConfig controls the realtime channel.
type RealtimeConfig struct {
	Reconnect      bool          `mapstructure:"reconnect" yaml:"reconnect"`
	BackoffInitial time.Duration `mapstructure:"backoff_initial" yaml:"backoff_initial"`
	BackoffMax     time.Duration `mapstructure:"backoff_max" yaml:"backoff_max"`
}

// LogConfig mirrors logging.Options.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// Load reads configuration. When path is empty, config.yaml is searched in
// ".", $XDG_CONFIG_HOME/badgeboard and ~/.config/badgeboard; a missing file is
// not an error. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, dir := range searchPaths() {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.Source = v.ConfigFileUsed()
	cfg.Storage.Dir = expandHome(cfg.Storage.Dir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	cfg.Storage.Dir = expandHome(cfg.Storage.Dir)
	return &cfg
}

// setDefaults configures default values for all settings.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.ws_url", "")
	v.SetDefault("server.timeout", "30s")

	// Storage defaults
	v.SetDefault("storage.dir", "~/.config/badgeboard")
	v.SetDefault("storage.seal", false)

	// Realtime defaults
	v.SetDefault("realtime.reconnect", false)
	v.SetDefault("realtime.backoff_initial", "1s")
	v.SetDefault("realtime.backoff_max", "30s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("metrics.addr", "") // disabled
}

func searchPaths() []string {
	paths := []string{"."}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "badgeboard"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "badgeboard"))
	}
	return paths
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: server.base_url %q must be an http(s) URL", c.Server.BaseURL)
	}
	if c.Server.WSURL != "" {
		u, err := url.Parse(c.Server.WSURL)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
			return fmt.Errorf("config: server.ws_url %q must be a ws(s) URL", c.Server.WSURL)
		}
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("config: server.timeout must not be negative")
	}
	if c.Realtime.BackoffInitial <= 0 || c.Realtime.BackoffMax < c.Realtime.BackoffInitial {
		return fmt.Errorf("config: realtime backoff must satisfy 0 < backoff_initial <= backoff_max")
	}
	if c.Storage.Dir == "" {
		return fmt.Errorf("config: storage.dir must not be empty")
	}
	if err := logging.Validate(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := logging.ValidateFormat(c.Log.Format); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// WebSocketURL returns server.ws_url, or the URL derived from base_url.
func (c *Config) WebSocketURL() (string, error) {
	if c.Server.WSURL != "" {
		return c.Server.WSURL, nil
	}
	return api.WebSocketURL(c.Server.BaseURL)
}

// LoggingOptions converts the log section for logging.Setup.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{Level: c.Log.Level, Format: c.Log.Format}
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Save writes cfg to path as YAML, creating the directory if needed.
func Save(path string, cfg *Config) error {
	data, err := cfg.YAML()
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
