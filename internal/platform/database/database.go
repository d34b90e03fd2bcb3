// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package database opens the bun handle used by every repository.

Drivers:

  - postgres: a pgx pool (see package postgres) exposed to database/sql through
    pgx's stdlib adapter, with the bun pgdialect.
  - sqlite: modernc.org/sqlite with the bun sqlitedialect. Used for local runs
    and tests; the schema is created from the bun models.
*/
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	// registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"

	pgstore "github.com/taibuivan/crudkit/internal/platform/postgres"
)

// Driver names accepted by [Open].
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options selects the driver and the connection string.
type Options struct {
	Driver string
	DSN    string
	Debug  bool
	Pool   pgstore.PoolOptions
}

// DetectDriver infers the driver from a DSN when none is configured.
func DetectDriver(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

/*
Open connects to the configured database and returns a ready bun handle.

The returned close function releases the handle and, for postgres, the pgx pool
behind it.
*/
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*bun.DB, func(), error) {
	driver := opts.Driver
	if driver == "" {
		driver = DetectDriver(opts.DSN)
	}

	var (
		db      *bun.DB
		release = func() {}
		err     error
	)

	switch driver {
	case DriverPostgres:
		var pool *pgxpool.Pool
		pool, err = pgstore.NewPool(ctx, opts.DSN, opts.Pool, logger)
		if err == nil {
			db = bun.NewDB(stdlib.OpenDBFromPool(pool), pgdialect.New())
			release = pool.Close
		}
	case DriverSQLite:
		db, err = OpenSQLite(ctx, opts.DSN)
	default:
		return nil, nil, fmt.Errorf("database: unsupported driver %q", driver)
	}
	if err != nil {
		return nil, nil, err
	}

	db.AddQueryHook(NewQueryLogger(logger, opts.Debug))

	closeAll := func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("database_close_failed", slog.Any("error", cerr))
		}
		release()
	}

	return db, closeAll, nil
}

// OpenSQLite opens a modernc sqlite database. Use "file::memory:?cache=shared"
// for an in-memory database.
func OpenSQLite(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("database: failed to open sqlite: %w", err)
	}

	// single writer connection
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("database: failed to enable foreign keys: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("database: ping failed: %w", err)
	}

	return db, nil
}

// Ping verifies the handle is reachable.
func Ping(ctx context.Context, db *bun.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database: ping failed: %w", err)
	}
	return nil
}

/*
CreateSchema creates a table for each model if absent. Used for sqlite where
the SQL migrations do not apply.

Relation constraints are left to the migrations: audit columns may reference
the system actor (id 0), which has no row.
*/
func CreateSchema(ctx context.Context, db bun.IDB, models ...any) error {
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("database: create table for %T: %w", model, err)
		}
	}
	return nil
}
