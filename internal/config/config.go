// Package config loads service configuration by layering defaults, an
// optional YAML file and environment variables.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config contains process configuration.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataDir holds the sqlite database.
	DataDir string `koanf:"data_dir"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// GitHubToken authenticates outbound GitHub API calls. A sync run
	// is rejected up front when it is empty.
	GitHubToken string `koanf:"github_token"`

	// CronSecret is the shared bearer secret for the sync trigger.
	CronSecret string `koanf:"cron_secret"`

	// SyncTimeout bounds one full sync batch.
	SyncTimeout time.Duration `koanf:"sync_timeout"`

	// LeaderboardCacheTTL bounds staleness of the cached board.
	LeaderboardCacheTTL time.Duration `koanf:"leaderboard_cache_ttl"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Addr:                ":8080",
		DataDir:             "./data",
		LogLevel:            "info",
		SyncTimeout:         5 * time.Minute,
		LeaderboardCacheTTL: 5 * time.Minute,
	}
}

// Load builds a Config by layering, low to high precedence:
//  1. defaults (New)
//  2. YAML file if EXECMETER_CONFIG is set
//  3. env vars with prefix EXECMETER_ (EXECMETER_ADDR, ...)
//  4. bare GITHUB_TOKEN / CRON_SECRET, honored for deploy parity
func Load() (*Config, error) {
	cfg := *New()

	k := koanf.New(".")

	if path := os.Getenv("EXECMETER_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	envProvider := env.Provider("EXECMETER_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "execmeter_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if v := os.Getenv("GITHUB_TOKEN"); v != "" && cfg.GitHubToken == "" {
		cfg.GitHubToken = v
	}
	if v := os.Getenv("CRON_SECRET"); v != "" && cfg.CronSecret == "" {
		cfg.CronSecret = v
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.SyncTimeout <= 0 {
		return nil, errors.New("sync_timeout must be positive")
	}

	return &cfg, nil
}
