// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package repository

import (
	"errors"
)

// # Errors

var (
	// ErrConcurrencyConflict reports that a guarded write matched no row: the
	// record was changed or removed since it was read.
	ErrConcurrencyConflict = errors.New("repository: concurrency conflict")

	// ErrNoTransaction is returned by Commit and Rollback when no transaction is open.
	ErrNoTransaction = errors.New("repository: no active transaction")

	// ErrTransactionActive is returned by BeginTransaction when one is already open.
	ErrTransactionActive = errors.New("repository: transaction already active")

	// ErrDisposed is returned by a [UnitOfWork] used after Dispose.
	ErrDisposed = errors.New("repository: unit of work disposed")
)

// operation names the write being performed in messages, logs and metrics.
type operation string

const (
	opCreate operation = "creating"
	opUpdate operation = "updating"
	opDelete operation = "deleting"
)

// Messages returned to callers. Persistence details stay in the logs.
const (
	msgCreated  = "The record was created successfully."
	msgUpdated  = "The record was updated successfully."
	msgDeleted  = "The record was deleted successfully."
	msgConflict = "The record was modified or deleted by another user. Reload it and try again."
)

func failureMessage(op operation) string {
	return "An error occurred while " + string(op) + " the record. Please try again or contact the administrator."
}

// # Result

// OperationResult is the outcome of a repository write.
//
// Err keeps the real cause (possibly wrapping [ErrConcurrencyConflict]);
// Message is safe to show to a client.
type OperationResult struct {
	Succeeded bool
	Message   string
	Err       error
}

// IsConcurrencyConflict reports whether the write lost a row-version race.
func (r OperationResult) IsConcurrencyConflict() bool {
	return errors.Is(r.Err, ErrConcurrencyConflict)
}

func succeeded(message string) OperationResult {
	return OperationResult{Succeeded: true, Message: message}
}

func failed(message string, err error) OperationResult {
	return OperationResult{Message: message, Err: err}
}
