// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Once loaded, configuration is read-only and passed to components through their
constructors.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/crudkit/internal/platform/constants"
	"github.com/taibuivan/crudkit/internal/platform/database"
	"github.com/taibuivan/crudkit/internal/platform/middleware"
	"github.com/taibuivan/crudkit/internal/platform/postgres"
	"github.com/taibuivan/crudkit/internal/platform/sec"
)

// # Configuration Schema

// Config holds all runtime configuration for the Crudkit API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational database. The driver is detected from the URL when empty.
	DatabaseDriver string `env:"DATABASE_DRIVER"`
	DatabaseURL    string `env:"DATABASE_URL,required"`

	// Postgres pool tuning. Zero keeps the pool defaults.
	DatabaseMaxConns         int32         `env:"DATABASE_MAX_CONNS"`
	DatabaseMinConns         int32         `env:"DATABASE_MIN_CONNS"`
	DatabaseStatementTimeout time.Duration `env:"DATABASE_STATEMENT_TIMEOUT"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`
	AutoMigrate   bool   `env:"AUTO_MIGRATE"   envDefault:"true"`

	// Key-Value Cache (Redis). Empty disables the permission cache.
	RedisURL           string        `env:"REDIS_URL"`
	PermissionCacheTTL time.Duration `env:"PERMISSION_CACHE_TTL" envDefault:"5m"`

	// Token signing. RSA key files win over the shared secret when both exist.
	JWTPrivKeyPath string        `env:"JWT_PRIVATE_KEY_PATH"`
	JWTPubKeyPath  string        `env:"JWT_PUBLIC_KEY_PATH"`
	JWTSecret      string        `env:"JWT_SECRET"`
	JWTIssuers     []string      `env:"JWT_ISSUERS"    envSeparator:"," envDefault:"crudkit"`
	JWTAudiences   []string      `env:"JWT_AUDIENCES"  envSeparator:"," envDefault:"crudkit-api"`
	JWTExpiration  time.Duration `env:"JWT_EXPIRATION" envDefault:"1h"`

	// Password hashing
	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`

	// Bootstrap administrator, used by the seed command
	AdminPassword string `env:"ADMIN_PASSWORD"`
	AdminEmail    string `env:"ADMIN_EMAIL"`

	// Cross-Origin Resource Sharing
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	// Per-IP rate limiting
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"100"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"150"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(environment map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environment})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}

	// Fails if any field marked with 'required' is missing.
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.DatabaseDriver == "" {
		cfg.DatabaseDriver = database.DetectDriver(cfg.DatabaseURL)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case database.DriverPostgres, database.DriverSQLite:
	default:
		return fmt.Errorf("config: unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	if c.JWTSecret == "" && (c.JWTPrivKeyPath == "" || c.JWTPubKeyPath == "") {
		return fmt.Errorf("config: set JWT_SECRET or both JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH")
	}

	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("config: BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}

	return nil
}

// # Projections

// Signing projects the token settings.
func (c *Config) Signing() sec.SigningConfig {
	return sec.SigningConfig{
		PrivateKeyPath: c.JWTPrivKeyPath,
		PublicKeyPath:  c.JWTPubKeyPath,
		Secret:         c.JWTSecret,
		Issuers:        trimAll(c.JWTIssuers),
		Audiences:      trimAll(c.JWTAudiences),
		Expiration:     c.JWTExpiration,
	}
}

// Database projects the connection settings.
func (c *Config) Database() database.Options {
	return database.Options{
		Driver: c.DatabaseDriver,
		DSN:    c.DatabaseURL,
		Debug:  c.Debug,
		Pool: postgres.PoolOptions{
			MaxConns:         c.DatabaseMaxConns,
			MinConns:         c.DatabaseMinConns,
			StatementTimeout: c.DatabaseStatementTimeout,
		},
	}
}

// RateLimit projects the limiter settings.
func (c *Config) RateLimit() middleware.RateLimitConfig {
	cfg := middleware.DefaultRateLimitConfig()
	if c.RateLimitRPS > 0 {
		cfg.RPS = c.RateLimitRPS
	}
	if c.RateLimitBurst > 0 {
		cfg.Burst = c.RateLimitBurst
	}
	return cfg
}

// CacheTTL returns the permission cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	if c.PermissionCacheTTL <= 0 {
		return constants.DefaultPermissionCacheTTL
	}
	return c.PermissionCacheTTL
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}
