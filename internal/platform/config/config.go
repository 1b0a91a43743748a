// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a
strongly-typed Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: once loaded, configuration is read-only.
  - DI-friendly: passed to core components (DB, Redis) via constructors.
  - Zero hidden state: no global variables are used to store config.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the API server and jobs.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis) for session tokens
	RedisURL string `env:"REDIS_URL,required"`

	// SessionSecret signs the HS256 session tokens issued after CAS login.
	SessionSecret string `env:"SESSION_SECRET,required"`

	// FrontServer is the public frontend the API redirects back to.
	FrontServer string `env:"FRONT_SERVER" envDefault:"https://film.su.hkust.edu.hk"`

	// SocietyEmail is the From/CC address on lending reminders and notices.
	SocietyEmail string `env:"SOCIETY_EMAIL" envDefault:"su_film@ust.hk"`

	// MemberMailDomain is appended to an ITSC to form a member address.
	MemberMailDomain string `env:"MEMBER_MAIL_DOMAIN" envDefault:"ust.hk"`

	// CASServer is the university CAS endpoint used to validate login
	// tickets.
	CASServer string `env:"CAS_SERVER" envDefault:"https://cas.ust.hk"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigin reports whether a CORS origin may call the API. The
// frontend origin is always allowed; EXTRA_ORIGINS adds more as a
// comma-separated list.
func (c *Config) AllowedOrigin(origin string) bool {
	if origin == c.FrontServer {
		return true
	}
	for _, extra := range strings.Split(c.ExtraOrigins, ",") {
		if extra != "" && origin == strings.TrimSpace(extra) {
			return true
		}
	}
	return false
}
