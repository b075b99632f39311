package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.SyncTimeout)
	assert.Equal(t, 5*time.Minute, cfg.LeaderboardCacheTTL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("EXECMETER_ADDR", ":9090")
	t.Setenv("EXECMETER_LOG_LEVEL", "debug")
	t.Setenv("EXECMETER_SYNC_TIMEOUT", "2m")
	t.Setenv("EXECMETER_GITHUB_TOKEN", "ghp_xyz")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2*time.Minute, cfg.SyncTimeout)
	assert.Equal(t, "ghp_xyz", cfg.GitHubToken)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":7070\"\ndata_dir: /var/lib/execmeter\n"), 0644))
	t.Setenv("EXECMETER_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, "/var/lib/execmeter", cfg.DataDir)
}

func TestLoadEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":7070\"\n"), 0644))
	t.Setenv("EXECMETER_CONFIG", path)
	t.Setenv("EXECMETER_ADDR", ":9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
}

func TestLoadBareSecretFallbacks(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_bare")
	t.Setenv("CRON_SECRET", "hunter2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ghp_bare", cfg.GitHubToken)
	assert.Equal(t, "hunter2", cfg.CronSecret)
}

func TestLoadPrefixedSecretBeatsBare(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_bare")
	t.Setenv("EXECMETER_GITHUB_TOKEN", "ghp_prefixed")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ghp_prefixed", cfg.GitHubToken)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	t.Setenv("EXECMETER_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	t.Setenv("EXECMETER_SYNC_TIMEOUT", "-1s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync_timeout")
}
