// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/uptrace/bun"

	"github.com/taibuivan/crudkit/internal/platform/logging"
)

/*
UnitOfWork scopes repositories to one optional transaction.

Usage:

	uow := repository.NewUnitOfWork(db, logger)
	defer uow.Dispose()

	if err := uow.BeginTransaction(ctx); err != nil { ... }
	accounts := repository.NewAudited[identity.Account](uow.DB(), logger)
	...
	return uow.Commit()

Repositories built from [UnitOfWork.DB] share the transaction while one is open
and fall back to the pool otherwise.
*/
type UnitOfWork struct {
	mu       sync.Mutex
	db       *bun.DB
	tx       *bun.Tx
	logger   *slog.Logger
	disposed bool
}

// NewUnitOfWork returns a unit of work over the shared pool.
func NewUnitOfWork(db *bun.DB, logger *slog.Logger) *UnitOfWork {
	return &UnitOfWork{db: db, logger: logger}
}

// BeginTransaction opens a transaction. Only one may be open at a time.
func (u *UnitOfWork) BeginTransaction(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.disposed {
		return ErrDisposed
	}
	if u.tx != nil {
		return ErrTransactionActive
	}

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin_transaction_failed: %w", err)
	}

	u.tx = &tx
	return nil
}

// DB returns the open transaction, or the pool when none is open.
func (u *UnitOfWork) DB() bun.IDB {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.tx != nil {
		return u.tx
	}
	return u.db
}

// Commit commits the open transaction.
func (u *UnitOfWork) Commit() error {
	return u.finish(func(tx *bun.Tx) error { return tx.Commit() }, "commit_failed")
}

// Rollback discards the open transaction.
func (u *UnitOfWork) Rollback() error {
	return u.finish(func(tx *bun.Tx) error { return tx.Rollback() }, "rollback_failed")
}

// Dispose rolls back any open transaction. Safe to call more than once.
func (u *UnitOfWork) Dispose() {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.disposed {
		return
	}
	u.disposed = true

	if u.tx == nil {
		return
	}

	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) && u.logger != nil {
		u.logger.Warn("unit_of_work_dispose_rollback_failed", slog.Any("error", err))
	}
	u.tx = nil
}

func (u *UnitOfWork) finish(end func(*bun.Tx) error, failure string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.disposed {
		return ErrDisposed
	}
	if u.tx == nil {
		return ErrNoTransaction
	}

	tx := u.tx
	u.tx = nil

	if err := end(tx); err != nil {
		return fmt.Errorf("%s: %w", failure, err)
	}
	return nil
}

// RunInTransaction runs fn inside a new unit of work transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func RunInTransaction(ctx context.Context, db *bun.DB, logger *slog.Logger, fn func(ctx context.Context, tx bun.IDB) error) error {
	uow := NewUnitOfWork(db, logger)
	defer uow.Dispose()

	if err := uow.BeginTransaction(ctx); err != nil {
		return err
	}

	if err := fn(ctx, uow.DB()); err != nil {
		if logger != nil {
			logger.DebugContext(ctx, "unit_of_work_rolled_back", slog.Any("error", err))
		}
		return err
	}

	if err := uow.Commit(); err != nil {
		logging.Fatal(ctx, logger, "unit_of_work_commit_failed", err)
		return err
	}
	return nil
}
