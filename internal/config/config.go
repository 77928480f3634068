package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	AllowedOrigin     string        `mapstructure:"allowed_origin" yaml:"allowed_origin"`

	DirectoryURL  string        `mapstructure:"directory_url" yaml:"directory_url"`
	LookupTimeout time.Duration `mapstructure:"lookup_timeout" yaml:"lookup_timeout"`

	TokenSecret   string `mapstructure:"token_secret" yaml:"token_secret"`
	TokenIssuer   string `mapstructure:"token_issuer" yaml:"token_issuer"`
	TokenAudience string `mapstructure:"token_audience" yaml:"token_audience"`

	RedisAddr string `mapstructure:"redis_addr" yaml:"redis_addr"`
	QueueKey  string `mapstructure:"queue_key" yaml:"queue_key"`

	PublishRateLimit int `mapstructure:"publish_rate_limit" yaml:"publish_rate_limit"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":4000",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		AllowedOrigin:     "http://localhost:3000",
		DirectoryURL:      "http://localhost:2000",
		LookupTimeout:     5 * time.Second,
		RedisAddr:         "localhost:6379",
		QueueKey:          "node:message",
		PublishRateLimit:  120,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.AllowedOrigin != "" {
		c.AllowedOrigin = other.AllowedOrigin
	}
	if other.DirectoryURL != "" {
		c.DirectoryURL = other.DirectoryURL
	}
	if other.LookupTimeout != 0 {
		c.LookupTimeout = other.LookupTimeout
	}
	if other.TokenSecret != "" {
		c.TokenSecret = other.TokenSecret
	}
	if other.TokenIssuer != "" {
		c.TokenIssuer = other.TokenIssuer
	}
	if other.TokenAudience != "" {
		c.TokenAudience = other.TokenAudience
	}
	if other.RedisAddr != "" {
		c.RedisAddr = other.RedisAddr
	}
	if other.QueueKey != "" {
		c.QueueKey = other.QueueKey
	}
	if other.PublishRateLimit != 0 {
		c.PublishRateLimit = other.PublishRateLimit
	}
}
