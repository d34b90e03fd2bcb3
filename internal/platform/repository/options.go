// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package repository

import (
	"context"

	"github.com/uptrace/bun"
)

// QueryFunc narrows or reshapes a select query. Predicates, includes and
// ordering are all expressed as QueryFuncs.
type QueryFunc func(*bun.SelectQuery) *bun.SelectQuery

// All is the predicate that matches every row.
func All(q *bun.SelectQuery) *bun.SelectQuery { return q }

// ByID matches the row with the given primary key.
func ByID(id int64) QueryFunc {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.id = ?", id)
	}
}

// # Error Handling

// ErrorHandlingOption governs what a query does when the fetch fails.
type ErrorHandlingOption uint8

const (
	// Throw returns the error to the caller.
	Throw ErrorHandlingOption = iota
	// None logs at FATAL and returns the zero value.
	None
	// ReturnDefault logs at FATAL and returns the zero value.
	ReturnDefault
	// ReturnEmpty logs at FATAL and returns an empty, non-nil result.
	ReturnEmpty
)

func (o ErrorHandlingOption) String() string {
	switch o {
	case None:
		return "None"
	case ReturnDefault:
		return "ReturnDefault"
	case ReturnEmpty:
		return "ReturnEmpty"
	default:
		return "Throw"
	}
}

// # Query Options

// explicitLoader is the untyped view of a [Loader] used by query options.
type explicitLoader interface {
	ApplyIncludes(q *bun.SelectQuery) *bun.SelectQuery
	loadModel(ctx context.Context, db bun.IDB, model any) error
}

type queryOptions struct {
	loader     explicitLoader
	noTracking bool
	onError    ErrorHandlingOption
}

// QueryOption customizes a single read.
type QueryOption func(*queryOptions)

// WithLoader applies the loader's includes before execution and its explicit
// paths after materialization.
func WithLoader[T any](loader *Loader[T]) QueryOption {
	return func(o *queryOptions) {
		if loader != nil {
			o.loader = loader
		}
	}
}

// NoTracking leaves materialized entities detached (state New).
func NoTracking() QueryOption {
	return func(o *queryOptions) { o.noTracking = true }
}

// OnError selects the failure policy of the read.
func OnError(option ErrorHandlingOption) QueryOption {
	return func(o *queryOptions) { o.onError = option }
}

func collectOptions(opts []QueryOption) queryOptions {
	var o queryOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
