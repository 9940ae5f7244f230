package tdworkflow

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables read by LoadConfigFromEnv.
const (
	EnvAPIKey   = "TD_API_KEY"
	EnvSite     = "TDWORKFLOW_SITE"
	EnvEndpoint = "TDWORKFLOW_ENDPOINT"
	EnvLogLevel = "TDWORKFLOW_LOG_LEVEL"
)

// Config holds client settings loaded from the environment or a YAML file.
type Config struct {
	APIKey    string `yaml:"apikey"`
	Site      string `yaml:"site"`
	Endpoint  string `yaml:"endpoint"`
	UserAgent string `yaml:"user_agent"`

	// LogLevel is one of "debug", "info", "warn" or "error". Default: info.
	LogLevel string `yaml:"log_level"`
}

// LoadConfigFromEnv reads the client settings from TD_API_KEY,
// TDWORKFLOW_SITE, TDWORKFLOW_ENDPOINT and TDWORKFLOW_LOG_LEVEL.
func LoadConfigFromEnv() Config {
	return Config{
		APIKey:   strings.TrimSpace(os.Getenv(EnvAPIKey)),
		Site:     strings.TrimSpace(os.Getenv(EnvSite)),
		Endpoint: strings.TrimSpace(os.Getenv(EnvEndpoint)),
		LogLevel: strings.TrimSpace(os.Getenv(EnvLogLevel)),
	}
}

// LoadConfigFile reads client settings from a YAML file:
//
//	apikey: 1/abcdef
//	site: jp
//	log_level: debug
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("tdworkflow: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("tdworkflow: parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Merge returns c overlaid with the non-empty fields of other.
func (c Config) Merge(other Config) Config {
	if other.APIKey != "" {
		c.APIKey = other.APIKey
	}
	if other.Site != "" {
		c.Site = other.Site
	}
	if other.Endpoint != "" {
		c.Endpoint = other.Endpoint
	}
	if other.UserAgent != "" {
		c.UserAgent = other.UserAgent
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	return c
}

// Options converts the configuration into client options. A non-empty
// LogLevel installs a JSON logger on stderr at that level.
func (c Config) Options() []ClientOption {
	var opts []ClientOption
	if c.LogLevel != "" {
		opts = append(opts, WithLogger(c.Logger(os.Stderr)))
	}
	if c.Site != "" {
		opts = append(opts, WithSite(c.Site))
	}
	if c.Endpoint != "" {
		opts = append(opts, WithEndpoint(c.Endpoint))
	}
	if c.UserAgent != "" {
		opts = append(opts, WithUserAgent(c.UserAgent))
	}
	return opts
}

// Logger returns a JSON slog.Logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(c.LogLevel),
	}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewClientFromConfig creates a client from cfg. Options passed in opts are
// applied after the ones derived from cfg and win on conflict.
func NewClientFromConfig(cfg Config, opts ...ClientOption) (*Client, error) {
	return NewClient(cfg.APIKey, append(cfg.Options(), opts...)...)
}
