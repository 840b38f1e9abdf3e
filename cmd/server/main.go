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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rulegate/rulegate/internal/audit"
	"github.com/rulegate/rulegate/internal/authz"
	"github.com/rulegate/rulegate/internal/config"
	"github.com/rulegate/rulegate/internal/identity"
	"github.com/rulegate/rulegate/internal/observability/logger"
	"github.com/rulegate/rulegate/internal/observability/metrics"
	"github.com/rulegate/rulegate/internal/observability/tracing"
	"github.com/rulegate/rulegate/internal/provider"
	"github.com/rulegate/rulegate/internal/session"
	"github.com/rulegate/rulegate/internal/store/postgres"
	transportHTTP "github.com/rulegate/rulegate/internal/transport/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting rulegate authorization service")

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx := context.Background()

	// Initialize tracer
	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	}
	defer tracer.Shutdown(ctx)

	// Initialize meter
	meter, err := metrics.New(ctx, metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
	}

	// Initialize database when a durable backend is configured
	var db *postgres.DB
	if cfg.NeedsDatabase() {
		db, err = postgres.New(ctx, postgres.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.Database,
			SSLMode:  cfg.Database.SSLMode,
			MaxConns: cfg.Database.MaxConns,
		})
		if err != nil {
			slog.Error("failed to connect to database", logger.Error(err))
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("connected to database")
	}

	// Session storage backend
	var storage session.Storage
	if cfg.Session.Storage == "postgres" {
		storage = postgres.NewSessionStorage(db)
	} else {
		storage = session.NewMemoryStorage()
	}
	sessions := session.NewStore(storage, cfg.Session.Lifetime)
	activeRole := session.NewActiveRole(storage)

	// Audit logging, optionally persisted
	var auditLogger audit.Logger = audit.NewSlogLogger()
	if cfg.Session.PersistAudit && db != nil {
		auditLogger = audit.NewPersistentLogger(postgres.NewAuditRepository(db))
	}

	// Delegated identity provider client. Disabled configuration keeps
	// the resolver in local mode.
	providerClient := provider.NewClient(provider.Config{
		Domain:         cfg.Provider.Domain,
		ClientID:       cfg.Provider.ClientID,
		Audience:       cfg.Provider.Audience,
		RolesClaim:     cfg.Provider.RolesClaim,
		CallbackURL:    cfg.Provider.CallbackURL,
		ForceLocal:     cfg.Provider.ForceLocal,
		AutomationMode: cfg.Provider.AutomationMode,
	}, nil)

	resolver := identity.NewResolver(providerClient, sessions, activeRole, auditLogger)
	engine := authz.NewEngine(resolver, providerClient, sessions, auditLogger)

	// Rate Limiter
	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	// Initialize HTTP handler and router
	handler := transportHTTP.NewHandler(resolver, engine, activeRole, auditLogger, meter)
	router := transportHTTP.NewRouter(handler, rateLimiter)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"))
		slog.Info(fmt.Sprintf("listening on %s", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", logger.Error(err))
	}

	slog.Info("server stopped")
}

func runMigrate(cfg *config.Config) error {
	ctx := context.Background()
	db, err := postgres.New(ctx, postgres.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Database,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Println("Applying initial schema...")
	if err := db.Migrate(ctx, postgres.InitialSchema); err != nil {
		return err
	}
	fmt.Println("Migration successful.")
	return nil
}
