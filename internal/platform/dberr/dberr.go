// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/taibuivan/crudkit/internal/platform/apperr"
	"github.com/taibuivan/crudkit/internal/platform/entity"
	"github.com/taibuivan/crudkit/internal/platform/repository"
)

/*
Classify inspects a storage error and converts it into an [apperr.AppError].

Mapping:
  - [sql.ErrNoRows]: ResourceNotFound for resource
  - unique or foreign key violation (Postgres or SQLite): Conflict
  - [repository.ErrConcurrencyConflict]: ConcurrencyConflict
  - [entity.ErrInvalidTransition]: Conflict
  - an expired or cancelled context: Timeout
  - an error that already is an AppError: unchanged
  - anything else: DatabaseError
*/
func Classify(err error, resource string) error {
	if err == nil {
		return nil
	}

	if apperr.IsAppError(err) {
		return err
	}

	if timeout := apperr.FromContext(err); timeout != nil {
		return timeout
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return apperr.NotFound(resource).WithCause(err)
	case errors.Is(err, repository.ErrConcurrencyConflict):
		return apperr.Concurrency(err)
	case errors.Is(err, entity.ErrInvalidTransition):
		return apperr.Conflict("The record cannot be changed in its current state").WithCause(err)
	case IsUniqueViolation(err):
		return apperr.Conflict(resource + " already exists").WithCause(err)
	case isForeignKeyViolation(err):
		return apperr.Conflict(resource + " references a record that does not exist").WithCause(err)
	}

	return apperr.Database(err)
}

/*
FromResult converts a failed repository write into an [apperr.AppError].

A succeeded result yields nil. A persistence failure keeps the client-safe
message of the result instead of the generic database message.
*/
func FromResult(result repository.OperationResult, resource string) error {
	if result.Succeeded {
		return nil
	}

	classified := Classify(result.Err, resource)
	if appError := apperr.As(classified); appError != nil && appError.Code == apperr.CodeDatabase {
		appError.Message = result.Message
	}
	return classified
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.ForeignKeyViolation
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}

	return false
}
