package config

import (
	"time"

	"github.com/vietddude/catalog/internal/infra/api"
	redisclient "github.com/vietddude/catalog/internal/infra/redis"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Env     string             `yaml:"env"` // dev, staging, prod; dev must be set explicitly
	Server  ServerConfig       `yaml:"server"`
	API     APIConfig          `yaml:"api"`
	Auth    AuthConfig         `yaml:"auth"`
	Redis   redisclient.Config `yaml:"redis"`
	Retry   api.RetryConfig    `yaml:"retry"`
	Cache   CacheConfig        `yaml:"cache"`
	Logging LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// APIConfig holds settings for the upstream API.
type APIConfig struct {
	BaseURL  string        `yaml:"base_url"`
	HostName string        `yaml:"host_name"`
	Timeout  time.Duration `yaml:"timeout"`
}

// AuthConfig holds credential settings.
type AuthConfig struct {
	DevToken   string `yaml:"dev_token"`   // only used when env is dev
	SessionKey string `yaml:"session_key"` // redis key of the session token
}

// CacheConfig holds query cache settings.
type CacheConfig struct {
	TTL          time.Duration `yaml:"ttl"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"` // bounds a shared fetch and its retries
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text (colored)
}
