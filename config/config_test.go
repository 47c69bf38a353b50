package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krisalay/expiring-cache/config"
	"github.com/krisalay/expiring-cache/eviction"
	"github.com/krisalay/expiring-cache/expiration"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "llmcache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Cache.MaxSize)
	assert.Equal(t, 15*time.Second, cfg.Cache.TTL)
	assert.Equal(t, eviction.LRU, cfg.Cache.EvictionPolicy)
	assert.Equal(t, expiration.AfterWrite, cfg.Cache.Expiry)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, 300*time.Millisecond, cfg.LLM.MinLatency)
	assert.Equal(t, 500*time.Millisecond, cfg.LLM.MaxLatency)
	assert.Equal(t, uint32(5), cfg.Breaker.ConsecutiveFailures)
	assert.Equal(t, "@every 30s", cfg.Janitor.CleanupSpec)
	assert.Equal(t, "info", cfg.Log.Level)

	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
cache:
  max_size: 100
  ttl: 1m
  eviction_policy: FIFO
  expiry: access
server:
  port: "9090"
llm:
  failure_rate: 0.25
`)
	t.Setenv("LLMCACHE_CACHE_MAX_SIZE", "42")
	t.Setenv("LLMCACHE_SERVER_MODE", "debug")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 42, cfg.Cache.MaxSize)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, eviction.FIFO, cfg.Cache.EvictionPolicy)
	assert.Equal(t, expiration.AfterAccess, cfg.Cache.Expiry)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.InDelta(t, 0.25, cfg.LLM.FailureRate, 1e-9)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := config.Load("")
	require.NoError(t, err)

	cfg.Cache.MaxSize = 0
	cfg.Cache.TTL = 0
	cfg.Cache.EvictionPolicy = "LFU"
	cfg.Server.Mode = "turbo"
	cfg.LLM.FailureRate = 2

	err = cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalid)
	assert.ErrorIs(t, err, expiration.ErrInvalidTTL)

	msg := err.Error()
	for _, want := range []string{"max_size", "eviction policy", "server.mode", "failure_rate"} {
		assert.Contains(t, msg, want)
	}
}
