package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config defines the reservation service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"RESERVE_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"RESERVE_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"RESERVE_REDIS_ADDR"`
		Password string `yaml:"password" env:"RESERVE_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"RESERVE_REDIS_DB"`
		TTL      int    `yaml:"ttlSeconds" env:"RESERVE_REDIS_TTL"`
	} `yaml:"redis"`
	Business struct {
		Timezone           string `yaml:"timezone" env:"BUSINESS_TIMEZONE"`
		LockTimeoutSeconds int    `yaml:"lockTimeoutSeconds" env:"RESERVE_LOCK_TIMEOUT"`
	} `yaml:"business"`
	Resources struct {
		Seed []string `yaml:"seed" env:"RESERVE_SEED_RESOURCES"`
	} `yaml:"resources"`
	Admin struct {
		Email        string `yaml:"email" env:"ADMIN_EMAIL"`
		PasswordHash string `yaml:"passwordHash" env:"ADMIN_PASSWORD_HASH"`
		JWTSecret    string `yaml:"jwtSecret" env:"ADMIN_JWT_SECRET"`
		TokenTTL     int    `yaml:"tokenTtlSeconds" env:"ADMIN_TOKEN_TTL"`
	} `yaml:"admin"`
}

// Load reads configuration and validates required fields.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.TTL = 3600
	cfg.Business.Timezone = "Asia/Seoul"
	cfg.Business.LockTimeoutSeconds = 3
	cfg.Admin.TokenTTL = 3600

	if err := load(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if strings.TrimSpace(cfg.Business.Timezone) == "" {
		return nil, errors.New("config: business timezone required")
	}
	if strings.TrimSpace(cfg.Admin.JWTSecret) == "" {
		return nil, errors.New("config: admin jwt secret required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// LockTimeout bounds how long a blocked creation waits for the resource lock.
func (c *Config) LockTimeout() time.Duration {
	if c.Business.LockTimeoutSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.Business.LockTimeoutSeconds) * time.Second
}

// ActiveCacheTTL returns the redis cache ttl as duration.
func (c *Config) ActiveCacheTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return time.Hour
	}
	return time.Duration(c.Redis.TTL) * time.Second
}

// AdminTokenTTL returns the admin token lifetime.
func (c *Config) AdminTokenTTL() time.Duration {
	if c.Admin.TokenTTL <= 0 {
		return time.Hour
	}
	return time.Duration(c.Admin.TokenTTL) * time.Second
}
