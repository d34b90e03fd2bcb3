// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/taibuivan/crudkit/internal/api"
	"github.com/taibuivan/crudkit/internal/platform/apperr"
	"github.com/taibuivan/crudkit/internal/platform/constants"
	"github.com/taibuivan/crudkit/internal/platform/database"
	"github.com/taibuivan/crudkit/internal/platform/metrics"
	redisstore "github.com/taibuivan/crudkit/internal/platform/redis"
	"github.com/taibuivan/crudkit/internal/platform/sec"
	"github.com/taibuivan/crudkit/internal/users/account"
	"github.com/taibuivan/crudkit/internal/users/auth"
	"github.com/taibuivan/crudkit/internal/users/role"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

/*
runServe starts the API.

Startup Sequence:
 1. Configuration, logger and database.
 2. Migrations when AUTO_MIGRATE is on.
 3. Redis, when REDIS_URL is set.
 4. Token service, hasher and metrics registry.
 5. Domain wiring and the HTTP server with graceful shutdown.
*/
func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// ── 1. Core ─────────────────────────────────────────────────────────────
	a, err := start(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	log := a.log

	// ── 2. Migrations ───────────────────────────────────────────────────────
	if a.cfg.AutoMigrate {
		if err := a.migrateUp(ctx); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// ── 3. Redis ────────────────────────────────────────────────────────────
	var (
		cache      auth.PermissionCache
		checkRedis api.HealthCheck
	)
	if a.cfg.RedisURL != "" {
		startupCtx, cancel := context.WithTimeout(ctx, constants.StartupTimeout)
		client, err := redisstore.NewClient(startupCtx, a.cfg.RedisURL, log)
		cancel()
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer closeRedis(log, client)

		cache = auth.NewPermissionCache(client, a.cfg.CacheTTL())
		checkRedis = func(ctx context.Context) error { return redisstore.Ping(ctx, client) }
	} else {
		log.Warn("permission_cache_disabled")
	}

	// ── 4. Security & Metrics ───────────────────────────────────────────────
	tokens, err := sec.NewTokenService(a.cfg.Signing())
	if err != nil {
		if apperr.HasCode(err, apperr.CodeConfiguration) {
			log.Error("token_service_misconfigured", slog.Any("cause", errors.Unwrap(err)))
		}
		return fmt.Errorf("initialize token service: %w", err)
	}
	log.Info("token_service_ready", slog.String("algorithm", tokens.Algorithm()))

	hasher := sec.NewBcryptHasher(a.cfg.BcryptCost)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := metrics.Register(registry); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	// ── 5. Domain Wiring ────────────────────────────────────────────────────
	authService := auth.NewService(auth.NewAccountStore(a.db, log), cache, hasher, tokens, log)
	accountService := account.NewService(a.db, hasher, log)
	roleService := role.NewService(a.db, authService, log)

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return database.Ping(ctx, a.db) },
		CheckCache:    checkRedis,
	}, log)

	server := api.NewServer(a.cfg, log, tokens, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Metrics:   registry,
		Auth:      auth.NewHandler(authService),
		Users:     account.NewHandler(accountService),
		Roles:     role.NewHandler(roleService),
	})

	// ── 6. Graceful Shutdown ────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server_stopped")
	return nil
}

func closeRedis(log *slog.Logger, client *goredis.Client) {
	if err := client.Close(); err != nil {
		log.Error("redis_close_failed", slog.Any("error", err))
	}
}
