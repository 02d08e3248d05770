package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BEAUTYDEN_SERVER_PORT.
const EnvPrefix = "beautyden"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Upstream   UpstreamConfig   `mapstructure:"upstream"`
	Encryption EncryptionConfig `mapstructure:"encryption"`
	Session    SessionConfig    `mapstructure:"session"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Events     EventsConfig     `mapstructure:"events"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Refresh    RefreshConfig    `mapstructure:"refresh"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Security   SecurityConfig   `mapstructure:"security"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

type UpstreamConfig struct {
	ContentBaseURL  string        `mapstructure:"content_base_url"`
	CustomerBaseURL string        `mapstructure:"customer_base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
}

// EncryptionConfig holds the AES key and fallback IV shared with the backend.
type EncryptionConfig struct {
	Key string `mapstructure:"key"`
	IV  string `mapstructure:"iv"`
}

type SessionConfig struct {
	Secret      string        `mapstructure:"secret"`
	Issuer      string        `mapstructure:"issuer"`
	TTL         time.Duration `mapstructure:"ttl"`
	Storage     string        `mapstructure:"storage"`
	LockStripes int           `mapstructure:"lock_stripes"`
}

type RedisConfig struct {
	URL          string `mapstructure:"url"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	MaxRetries   int    `mapstructure:"max_retries"`
	KeyPrefix    string `mapstructure:"key_prefix"`
}

type EventsConfig struct {
	Driver string `mapstructure:"driver"`
}

type CacheConfig struct {
	ContentTTL time.Duration `mapstructure:"content_ttl"`
	TeamTTL    time.Duration `mapstructure:"team_ttl"`
}

type RefreshConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `mapstructure:"prometheus_enabled"`
	MetricsPath       string `mapstructure:"metrics_path"`
	Namespace         string `mapstructure:"namespace"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Secrets are read only from the environment and win over the file.
type Secrets struct {
	EncryptionKey string `envconfig:"ENCRYPTION_KEY"`
	EncryptionIV  string `envconfig:"ENCRYPTION_IV"`
	SessionSecret string `envconfig:"SESSION_SECRET"`
	RedisURL      string `envconfig:"REDIS_URL"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 25*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("upstream.content_base_url", "")
	v.SetDefault("upstream.customer_base_url", "")
	v.SetDefault("upstream.timeout", 10*time.Second)
	v.SetDefault("upstream.max_retries", 2)
	v.SetDefault("upstream.breaker_failures", 5)
	v.SetDefault("upstream.breaker_timeout", 30*time.Second)

	v.SetDefault("encryption.key", "")
	v.SetDefault("encryption.iv", "")

	v.SetDefault("session.secret", "")
	v.SetDefault("session.issuer", "beautyden")
	v.SetDefault("session.ttl", 30*24*time.Hour)
	v.SetDefault("session.storage", "memory")
	v.SetDefault("session.lock_stripes", 1024)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.key_prefix", "beautyden:")

	v.SetDefault("events.driver", "memory")

	v.SetDefault("cache.content_ttl", 10*time.Minute)
	v.SetDefault("cache.team_ttl", 5*time.Minute)

	v.SetDefault("refresh.enabled", true)
	v.SetDefault("refresh.schedule", "@every 10m")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("security.allowed_origins", []string{"*"})
	v.SetDefault("security.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("security.allowed_headers", []string{"Origin", "Content-Type", "Accept", "X-Request-ID", "X-Session-Token"})

	v.SetDefault("monitoring.prometheus_enabled", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")
	v.SetDefault("monitoring.namespace", "beautyden")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// LoadConfig reads config.yml from path (or ./ and ./config when path is
// empty), applies BEAUTYDEN_* overrides and overlays secrets.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Without an explicit path a missing file is fine: env and defaults suffice.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var secrets Secrets
	if err := envconfig.Process(EnvPrefix, &secrets); err != nil {
		return nil, fmt.Errorf("failed to read secrets: %w", err)
	}
	config.applySecrets(secrets)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applySecrets(s Secrets) {
	if s.EncryptionKey != "" {
		c.Encryption.Key = s.EncryptionKey
	}
	if s.EncryptionIV != "" {
		c.Encryption.IV = s.EncryptionIV
	}
	if s.SessionSecret != "" {
		c.Session.Secret = s.SessionSecret
	}
	if s.RedisURL != "" {
		c.Redis.URL = s.RedisURL
	}
}

// Validate checks the settings the gateway cannot start without.
func (c *Config) Validate() error {
	if c.Upstream.ContentBaseURL == "" {
		return fmt.Errorf("upstream.content_base_url is required")
	}
	if c.Upstream.CustomerBaseURL == "" {
		c.Upstream.CustomerBaseURL = c.Upstream.ContentBaseURL
	}
	if c.Encryption.Key == "" {
		return fmt.Errorf("encryption key is required")
	}
	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("session secret must be at least 32 characters")
	}
	switch c.Session.Storage {
	case "memory":
	case "redis":
		if c.Redis.URL == "" {
			return fmt.Errorf("redis.url is required for redis session storage")
		}
	default:
		return fmt.Errorf("unknown session storage %q", c.Session.Storage)
	}
	switch c.Events.Driver {
	case "memory":
	case "redis":
		if c.Redis.URL == "" {
			return fmt.Errorf("redis.url is required for redis events")
		}
	default:
		return fmt.Errorf("unknown events driver %q", c.Events.Driver)
	}
	return nil
}
