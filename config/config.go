// Package config loads client configuration from defaults, an optional YAML
// file and environment variables, in increasing order of priority.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// RELAY_CLIENT_RETRY_MAXATTEMPTS=5.
const EnvPrefix = "RELAY_"

// Config is the root configuration tree.
type Config struct {
	Log    LogConfig    `koanf:"log"`
	Client ClientConfig `koanf:"client"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal"`
	Pretty bool   `koanf:"pretty"`
}

// ClientConfig controls request execution behavior.
type ClientConfig struct {
	Timeout      time.Duration `koanf:"timeout" validate:"min=0"`
	MaxRedirects int           `koanf:"maxredirects" validate:"min=0"`
	Retry        RetryConfig   `koanf:"retry"`
	Cookies      CookieConfig  `koanf:"cookies"`
}

// RetryConfig controls the retry policy. MaxAttempts of zero disables retry.
type RetryConfig struct {
	MaxAttempts  int           `koanf:"maxattempts" validate:"min=0"`
	InitialDelay time.Duration `koanf:"initialdelay" validate:"min=0"`
	MaxDelay     time.Duration `koanf:"maxdelay" validate:"min=0"`
	MaxElapsed   time.Duration `koanf:"maxelapsed" validate:"min=0"`
}

// CookieConfig controls the shared cookie store.
type CookieConfig struct {
	Enabled         bool `koanf:"enabled"`
	MatchDomainOnly bool `koanf:"matchdomainonly"`
	SkipExpiryCheck bool `koanf:"skipexpirycheck"`
	IgnoreSecure    bool `koanf:"ignoresecure"`
}

func defaults() map[string]any {
	return map[string]any{
		"log.level":  "info",
		"log.pretty": false,

		"client.timeout":      "30s",
		"client.maxredirects": 10,

		"client.retry.maxattempts":  0,
		"client.retry.initialdelay": "500ms",
		"client.retry.maxdelay":     "30s",
		"client.retry.maxelapsed":   "0s",

		"client.cookies.enabled":         true,
		"client.cookies.matchdomainonly": false,
		"client.cookies.skipexpirycheck": false,
		"client.cookies.ignoresecure":    false,
	}
}

// Load builds a Config from defaults, the YAML file at path (optional; pass
// an empty path to skip) and RELAY_* environment variables. A named file
// that cannot be read is an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.TrimPrefix(key, EnvPrefix)
			return strings.ReplaceAll(strings.ToLower(key), "_", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return unmarshal(k)
}

// LoadBytes builds a Config from defaults overlaid with the given YAML
// document. Environment variables are not consulted.
func LoadBytes(data []byte) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return unmarshal(k)
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks field constraints declared on the configuration structs.
func (c *Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}
