// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles SDK-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local `.env` file is
loaded first (via 'joho/godotenv') so development setups need no exported shell
variables.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (API client, cache, token store) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This keeps the embedded SDK Twelve-Factor compliant by storing config in the env
of the host application.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Configuration Schema

// Config holds all runtime configuration for the Joury client SDK.
type Config struct {

	// Backend API target
	BaseURL     string `env:"JOURY_BASE_URL"     envDefault:"http://localhost:8000"`
	APIVersion  string `env:"JOURY_API_VERSION"  envDefault:"v1"`
	Environment string `env:"JOURY_ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"JOURY_DEBUG"        envDefault:"false"`

	// Networking behavior. The resource timeout (total transfer budget) is
	// always twice the per-request timeout, see [Config.ResourceTimeout].
	RequestTimeout    time.Duration `env:"JOURY_REQUEST_TIMEOUT"      envDefault:"30s"`
	MaxRetryAttempts  int           `env:"JOURY_MAX_RETRY_ATTEMPTS"   envDefault:"3"`
	RetryDelay        time.Duration `env:"JOURY_RETRY_DELAY"          envDefault:"1s"`
	RequestsPerSecond float64       `env:"JOURY_REQUESTS_PER_SECOND"  envDefault:"0"`

	// Local storage locations. Empty values fall back to the OS-standard
	// per-user directories resolved by the composition root.
	CacheDir string `env:"JOURY_CACHE_DIR"`
	TokenDir string `env:"JOURY_TOKEN_DIR"`

	// Optional Redis-backed persistent cache tier. When set, the disk tier
	// is replaced entirely (intended for server-side embeddings of the SDK).
	RedisURL string `env:"JOURY_REDIS_URL"`

	// Google federated sign-in
	GoogleClientID     string `env:"JOURY_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"JOURY_GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"JOURY_GOOGLE_REDIRECT_URL" envDefault:"com.joury.app://auth/callback"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
//
// A `.env` file in the working directory is merged in first; its absence is
// not an error.
func Load() (*Config, error) {

	// Best-effort: development convenience only, never required.
	_ = godotenv.Load()

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// APIBaseURL composes the versioned API root, e.g. "http://localhost:8000/api/v1".
func (c *Config) APIBaseURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/api/" + c.APIVersion
}

// ResourceTimeout is the total transfer budget for a single attempt,
// fixed at double the per-request timeout.
func (c *Config) ResourceTimeout() time.Duration {
	return c.RequestTimeout * 2
}

// IsDevelopment reports whether the SDK is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the SDK is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
