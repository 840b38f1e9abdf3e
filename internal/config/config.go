// Copyright 2026 The RuleGate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Session       SessionConfig
	Provider      ProviderConfig
	Observability ObservabilityConfig
	RateLimit     RateLimitConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database configuration. The database is only
// dialed when SESSION_STORAGE=postgres or audit persistence is enabled.
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConns        int
	ConnMaxLifetime time.Duration
}

// SessionConfig holds session management configuration. Storage selects
// the backing store for session records: "memory" or "postgres".
type SessionConfig struct {
	Storage      string
	Lifetime     time.Duration
	PersistAudit bool
}

// ProviderConfig holds the delegated identity provider configuration.
// Leaving Domain or ClientID empty, or setting ForceLocal or
// AutomationMode, keeps the service in local mode.
type ProviderConfig struct {
	Domain         string
	ClientID       string
	Audience       string
	RolesClaim     string
	CallbackURL    string
	ForceLocal     bool
	AutomationMode bool
}

// ObservabilityConfig holds logging and tracing configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string
	OTELEnabled    bool
	ServiceName    string
	ServiceVersion string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  parseDuration("SERVER_READ_TIMEOUT", "15s"),
			WriteTimeout: parseDuration("SERVER_WRITE_TIMEOUT", "15s"),
			IdleTimeout:  parseDuration("SERVER_IDLE_TIMEOUT", "60s"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "rulegate"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "rulegate"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxConns:        parseInt("DB_MAX_CONNS", 25),
			ConnMaxLifetime: parseDuration("DB_CONN_MAX_LIFETIME", "5m"),
		},
		Session: SessionConfig{
			Storage:      getEnv("SESSION_STORAGE", "memory"),
			Lifetime:     parseDuration("SESSION_LIFETIME", "8h"),
			PersistAudit: parseBool("AUDIT_PERSIST", false),
		},
		Provider: ProviderConfig{
			Domain:         getEnv("PROVIDER_DOMAIN", ""),
			ClientID:       getEnv("PROVIDER_CLIENT_ID", ""),
			Audience:       getEnv("PROVIDER_AUDIENCE", ""),
			RolesClaim:     getEnv("PROVIDER_ROLES_CLAIM", "https://rulegate.dev/roles"),
			CallbackURL:    getEnv("PROVIDER_CALLBACK_URL", ""),
			ForceLocal:     parseBool("PROVIDER_FORCE_LOCAL", false),
			AutomationMode: parseBool("AUTOMATION_MODE", false),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			OTELEnabled:    parseBool("OTEL_ENABLED", false),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "rulegate"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "0.1.0"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: float64(parseInt("RATELIMIT_RPS", 10)),
			Burst:             parseInt("RATELIMIT_BURST", 20),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Session.Storage {
	case "memory", "postgres":
	default:
		return fmt.Errorf("SESSION_STORAGE must be memory or postgres, got %q", c.Session.Storage)
	}
	if c.Session.Storage == "postgres" && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required when SESSION_STORAGE=postgres")
	}
	if c.Session.Lifetime <= 0 {
		return fmt.Errorf("SESSION_LIFETIME must be positive")
	}
	return nil
}

// NeedsDatabase reports whether the configuration requires a database
// connection at startup.
func (c *Config) NeedsDatabase() bool {
	return c.Session.Storage == "postgres" || c.Session.PersistAudit
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func parseBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func parseDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	d, err := time.ParseDuration(value)
	if err != nil {
		// Fallback to default
		d, _ = time.ParseDuration(defaultValue)
	}
	return d
}
