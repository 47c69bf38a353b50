// Package config loads the server settings from defaults, an optional YAML
// file and LLMCACHE_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/krisalay/expiring-cache/eviction"
	"github.com/krisalay/expiring-cache/expiration"
	"github.com/krisalay/expiring-cache/llm"
	"github.com/krisalay/expiring-cache/logger"
)

// EnvPrefix is prepended to every environment override, e.g. LLMCACHE_CACHE_TTL.
const EnvPrefix = "LLMCACHE"

// ErrInvalid is wrapped by every error Validate returns.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Cache   CacheConfig         `mapstructure:"cache"`
	Server  ServerConfig        `mapstructure:"server"`
	LLM     llm.SimulatorConfig `mapstructure:"llm"`
	Breaker llm.BreakerConfig   `mapstructure:"breaker"`
	Janitor JanitorConfig       `mapstructure:"janitor"`
	Log     logger.Config       `mapstructure:"log"`
}

type CacheConfig struct {
	MaxSize        int                 `mapstructure:"max_size"`
	TTL            time.Duration       `mapstructure:"ttl"`
	EvictionPolicy eviction.PolicyType `mapstructure:"eviction_policy"`
	Expiry         expiration.Mode     `mapstructure:"expiry"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release, test
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// JanitorConfig holds cron specs for the maintenance jobs. Empty disables a job.
type JanitorConfig struct {
	CleanupSpec string `mapstructure:"cleanup_spec"`
	StatsSpec   string `mapstructure:"stats_spec"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("cache.max_size", 3)
	v.SetDefault("cache.ttl", "15s")
	v.SetDefault("cache.eviction_policy", string(eviction.LRU))
	v.SetDefault("cache.expiry", string(expiration.AfterWrite))

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.request_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "5s")

	sim := llm.DefaultSimulatorConfig()
	v.SetDefault("llm.min_latency", sim.MinLatency.String())
	v.SetDefault("llm.max_latency", sim.MaxLatency.String())
	v.SetDefault("llm.failure_rate", sim.FailureRate)
	v.SetDefault("llm.rate_limit", sim.RateLimit)
	v.SetDefault("llm.burst", sim.Burst)
	v.SetDefault("llm.max_concurrent", sim.MaxConcurrent)

	br := llm.DefaultBreakerConfig()
	v.SetDefault("breaker.name", br.Name)
	v.SetDefault("breaker.max_requests", br.MaxRequests)
	v.SetDefault("breaker.interval", br.Interval.String())
	v.SetDefault("breaker.timeout", br.Timeout.String())
	v.SetDefault("breaker.consecutive_failures", br.ConsecutiveFailures)

	v.SetDefault("janitor.cleanup_spec", "@every 30s")
	v.SetDefault("janitor.stats_spec", "@every 1m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

/*
Load reads the configuration.

With an empty path it looks for llmcache.yaml in ./config and the working
directory and carries on with defaults when there is none. An explicit path
must exist.
*/
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("llmcache")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Cache.MaxSize <= 0 {
		add("cache.max_size must be positive, got %d", c.Cache.MaxSize)
	}
	if _, err := expiration.NewStrategy(c.Cache.Expiry, c.Cache.TTL); err != nil {
		errs = append(errs, fmt.Errorf("%w: cache: %w", ErrInvalid, err))
	}
	if _, err := eviction.NewEvictionPolicy[string](c.Cache.EvictionPolicy); err != nil {
		errs = append(errs, fmt.Errorf("%w: cache: %w", ErrInvalid, err))
	}

	if c.Server.Port == "" {
		add("server.port is empty")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		add("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}

	if c.LLM.MinLatency < 0 || c.LLM.MaxLatency < c.LLM.MinLatency {
		add("llm latency range [%s, %s) is invalid", c.LLM.MinLatency, c.LLM.MaxLatency)
	}
	if c.LLM.FailureRate < 0 || c.LLM.FailureRate > 1 {
		add("llm.failure_rate must be within [0, 1], got %g", c.LLM.FailureRate)
	}
	if c.LLM.RateLimit < 0 || c.LLM.MaxConcurrent < 0 {
		add("llm.rate_limit and llm.max_concurrent must not be negative")
	}

	return errors.Join(errs...)
}
