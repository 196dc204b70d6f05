package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the YAML configuration file layout. Zero values leave the
// corresponding setting untouched.
type File struct {
	Server    ServerFile    `yaml:"server"`
	Database  DatabaseFile  `yaml:"database"`
	Redis     URLFile       `yaml:"redis"`
	RabbitMQ  URLFile       `yaml:"rabbitmq"`
	Session   SessionFile   `yaml:"session"`
	RateLimit RateLimitFile `yaml:"rate_limit"`
}

// ServerFile holds HTTP server settings
type ServerFile struct {
	Port         int           `yaml:"port"`
	Debug        bool          `yaml:"debug"`
	LogLevel     string        `yaml:"log_level"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// TrustedProxies are CIDRs or addresses of reverse proxies
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// DatabaseFile holds credential store settings
type DatabaseFile struct {
	Driver     string `yaml:"driver"`
	URL        string `yaml:"url"`
	SQLitePath string `yaml:"sqlite_path"`
}

// URLFile holds a single connection URL
type URLFile struct {
	URL string `yaml:"url"`
}

// SessionFile holds session lifetimes. The secret is only read from the
// environment.
type SessionFile struct {
	TTL             time.Duration `yaml:"ttl"`
	TokenTTL        time.Duration `yaml:"token_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// RateLimitFile holds login throttling settings
type RateLimitFile struct {
	PerMinute int `yaml:"per_minute"`
}

// LoadFile reads a YAML configuration file
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &f, nil
}

func (f *File) apply(cfg *Config) {
	setInt(&cfg.Port, f.Server.Port)
	cfg.Debug = cfg.Debug || f.Server.Debug
	setString(&cfg.LogLevel, f.Server.LogLevel)
	setDuration(&cfg.ReadTimeout, f.Server.ReadTimeout)
	setDuration(&cfg.WriteTimeout, f.Server.WriteTimeout)
	if len(f.Server.TrustedProxies) > 0 {
		cfg.TrustedProxies = f.Server.TrustedProxies
	}

	setString(&cfg.DatabaseDriver, f.Database.Driver)
	setString(&cfg.DatabaseURL, f.Database.URL)
	setString(&cfg.SQLitePath, f.Database.SQLitePath)
	setString(&cfg.RedisURL, f.Redis.URL)
	setString(&cfg.RabbitMQURL, f.RabbitMQ.URL)

	setDuration(&cfg.SessionTTL, f.Session.TTL)
	setDuration(&cfg.TokenTTL, f.Session.TokenTTL)
	setDuration(&cfg.SessionCleanupInterval, f.Session.CleanupInterval)
	setInt(&cfg.RateLimitPerMinute, f.RateLimit.PerMinute)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
