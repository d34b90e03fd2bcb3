// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Crudkit HTTP API.
//
// # Commands
//
//   - serve: run the HTTP server (default when no command is given).
//   - migrate up|down: apply or revert the SQL migrations.
//   - seed: create the administrator role and account when absent.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"github.com/taibuivan/crudkit/internal/platform/config"
	"github.com/taibuivan/crudkit/internal/platform/constants"
	"github.com/taibuivan/crudkit/internal/platform/database"
	"github.com/taibuivan/crudkit/internal/platform/logging"
	"github.com/taibuivan/crudkit/internal/platform/migration"
	"github.com/taibuivan/crudkit/internal/users/identity"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "api",
		Short:         "Crudkit HTTP API",
		Long:          "Crudkit serves the account, role and login API backed by the audited repository.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(newServeCommand(), newMigrateCommand(), newSeedCommand())
	return root
}

// # Shared Startup

// app holds what every command needs: configuration, the logger and the database.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	db     *bun.DB
	closer func()
}

// start loads configuration, builds the logger and opens the database.
func start(ctx context.Context) (*app, error) {

	// ── 1. Configuration ────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// ── 2. Logger ───────────────────────────────────────────────────────────
	log := logging.New(os.Stdout, cfg.Debug)
	slog.SetDefault(log)

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("driver", cfg.DatabaseDriver),
	)

	// ── 3. Database ─────────────────────────────────────────────────────────
	startupCtx, cancel := context.WithTimeout(ctx, constants.StartupTimeout)
	defer cancel()

	db, closer, err := database.Open(startupCtx, cfg.Database(), log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &app{cfg: cfg, log: log, db: db, closer: closer}, nil
}

// migrateUp brings the schema up to date. Postgres runs the SQL migrations;
// sqlite creates the tables from the models.
func (a *app) migrateUp(ctx context.Context) error {
	if a.cfg.DatabaseDriver == database.DriverSQLite {
		return database.CreateSchema(ctx, a.db, identity.Models()...)
	}
	return migration.RunUp(a.cfg.DatabaseURL, a.cfg.MigrationPath, a.log)
}

func (a *app) close() {
	a.closer()
}
