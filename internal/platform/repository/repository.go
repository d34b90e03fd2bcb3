// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package repository provides generic data access over bun models.

Tiers:

  - [Repository]: plain reads and tracked writes. Sees every row.
  - [AuditedRepository]: hides soft-deleted rows from every read and stamps
    audit metadata, row versions and soft deletes on every write.

Repositories are request-scoped values over a [bun.IDB], which is either the
shared pool or the transaction of a [UnitOfWork].

Writes never return an error directly. They return an [OperationResult] whose
Err carries the cause; persistence failures are logged at FATAL and the
message is safe for clients.
*/
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/uptrace/bun"

	"github.com/taibuivan/crudkit/internal/platform/ctxutil"
	"github.com/taibuivan/crudkit/internal/platform/entity"
	"github.com/taibuivan/crudkit/internal/platform/logging"
	"github.com/taibuivan/crudkit/internal/platform/metrics"
	"github.com/taibuivan/crudkit/pkg/pagination"
)

// Model is satisfied by pointers to tracked bun models.
type Model[T any] interface {
	*T
	entity.Tracked
}

// Repository is the base tier. It applies no soft-delete filter.
type Repository[T any, P Model[T]] struct {
	db     bun.IDB
	logger *slog.Logger
	scope  QueryFunc
	name   string
	now    func() time.Time
}

// New builds a base repository over db. A nil logger falls back to the
// request-scoped logger.
func New[T any, P Model[T]](db bun.IDB, logger *slog.Logger) *Repository[T, P] {
	return &Repository[T, P]{
		db:     db,
		logger: logger,
		name:   reflect.TypeOf((*T)(nil)).Elem().Name(),
		now:    time.Now,
	}
}

// DB returns the handle the repository runs on.
func (r *Repository[T, P]) DB() bun.IDB { return r.db }

// # Queries

// GetBareQuery returns an unexecuted select over T with the tier's scope applied.
func (r *Repository[T, P]) GetBareQuery() *bun.SelectQuery {
	return r.scoped(r.db.NewSelect().Model((*T)(nil)))
}

// QueryBy returns an unexecuted, composable select filtered by predicate.
func (r *Repository[T, P]) QueryBy(predicate QueryFunc) *bun.SelectQuery {
	return apply(r.GetBareQuery(), predicate)
}

// FindBy returns the first match or nil when nothing matches.
func (r *Repository[T, P]) FindBy(ctx context.Context, predicate QueryFunc, opts ...QueryOption) (P, error) {
	o := collectOptions(opts)

	item := P(new(T))
	query := r.prepare(r.db.NewSelect().Model(item), predicate, o).Limit(1)

	if err := query.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return recoverQuery[P](ctx, r, o, "find", err, nil)
	}

	if err := r.materialize(ctx, o, item); err != nil {
		return recoverQuery[P](ctx, r, o, "find", err, nil)
	}

	return item, nil
}

// ListBy returns every match. The result is never nil on success.
func (r *Repository[T, P]) ListBy(ctx context.Context, predicate QueryFunc, opts ...QueryOption) ([]P, error) {
	o := collectOptions(opts)

	items := make([]P, 0)
	query := r.prepare(r.db.NewSelect().Model(&items), predicate, o)

	if err := query.Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return recoverQuery(ctx, r, o, "list", err, []P{})
	}

	if err := r.materialize(ctx, o, items...); err != nil {
		return recoverQuery(ctx, r, o, "list", err, []P{})
	}

	return items, nil
}

// CountBy counts the matches.
func (r *Repository[T, P]) CountBy(ctx context.Context, predicate QueryFunc, opts ...QueryOption) (int, error) {
	o := collectOptions(opts)

	count, err := r.QueryBy(predicate).Count(ctx)
	if err != nil {
		return recoverQuery(ctx, r, o, "count", err, 0)
	}
	return count, nil
}

// Exists reports whether any row matches.
func (r *Repository[T, P]) Exists(ctx context.Context, predicate QueryFunc, opts ...QueryOption) (bool, error) {
	o := collectOptions(opts)

	exists, err := r.QueryBy(predicate).Exists(ctx)
	if err != nil {
		return recoverQuery(ctx, r, o, "exists", err, false)
	}
	return exists, nil
}

/*
PagedList returns one page of matches.

Clamping: a page below 1 becomes 1, a size above 250 becomes 250 and a size
below 1 becomes the default size. Rows are ordered by the predicate's ordering
first and by id as the tiebreaker.
*/
func (r *Repository[T, P]) PagedList(ctx context.Context, predicate QueryFunc, pageNumber, pageSize int, opts ...QueryOption) (*pagination.Page[P], error) {
	o := collectOptions(opts)
	params := pagination.Clamp(pageNumber, pageSize)
	empty := pagination.NewPage[P](nil, 0, params)

	total, err := r.QueryBy(predicate).Count(ctx)
	if err != nil {
		return recoverQuery(ctx, r, o, "count", err, empty)
	}

	items := make([]P, 0, params.Limit)
	query := r.prepare(r.db.NewSelect().Model(&items), predicate, o).
		Order("?TableAlias.id ASC").
		Limit(params.Limit).
		Offset(params.Offset())

	if err := query.Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return recoverQuery(ctx, r, o, "page", err, empty)
	}

	if err := r.materialize(ctx, o, items...); err != nil {
		return recoverQuery(ctx, r, o, "page", err, empty)
	}

	return pagination.NewPage(items, total, params), nil
}

// LoadExplicits loads one navigation chain on e.
func (r *Repository[T, P]) LoadExplicits(ctx context.Context, e P, path ...string) error {
	if e == nil {
		return nil
	}
	return LoadPath(ctx, r.db, e, path...)
}

// LoadExplicitsAll loads one navigation chain on every entity.
func (r *Repository[T, P]) LoadExplicitsAll(ctx context.Context, es []P, path ...string) error {
	for _, e := range es {
		if err := r.LoadExplicits(ctx, e, path...); err != nil {
			return err
		}
	}
	return nil
}

// # Tracked Writes

// Insert adds e. Legal only for a New entity.
func (r *Repository[T, P]) Insert(ctx context.Context, e P) OperationResult {
	return r.write(ctx, e, writePlan{
		op:     opCreate,
		target: entity.StateAdded,
		settle: true,
		exec: func(ctx context.Context) (sql.Result, error) {
			return r.db.NewInsert().Model(e).Exec(ctx)
		},
	})
}

// Update saves every column of e by primary key. Zero affected rows is a conflict.
func (r *Repository[T, P]) Update(ctx context.Context, e P) OperationResult {
	return r.write(ctx, e, writePlan{
		op:      opUpdate,
		target:  entity.StateModified,
		settle:  true,
		guarded: true,
		exec: func(ctx context.Context) (sql.Result, error) {
			return r.db.NewUpdate().Model(e).WherePK().Exec(ctx)
		},
	})
}

// Delete removes e by primary key. Zero affected rows is a conflict.
func (r *Repository[T, P]) Delete(ctx context.Context, e P) OperationResult {
	return r.write(ctx, e, writePlan{
		op:      opDelete,
		target:  entity.StateHardDeleted,
		guarded: true,
		exec: func(ctx context.Context) (sql.Result, error) {
			return r.db.NewDelete().Model(e).WherePK().Exec(ctx)
		},
	})
}

// # Internals

// writePlan describes one tracked write.
type writePlan struct {
	op      operation
	target  entity.State
	settle  bool
	guarded bool
	// prepare mutates the entity before execution and returns its undo.
	prepare func() (undo func())
	exec    func(ctx context.Context) (sql.Result, error)
}

/*
write runs a tracked write.

# Flow
 1. Transition to the target state. A rejected transition writes nothing.
 2. Prepare (audit stamps, row version) and execute.
 3. A guarded write that touches no row is a concurrency conflict.
 4. On failure the state and any prepared fields are rolled back.
 5. On success inserts and updates settle to Unchanged.
*/
func (r *Repository[T, P]) write(ctx context.Context, e P, plan writePlan) OperationResult {
	if e == nil {
		panic(fmt.Sprintf("repository: nil %s passed to a write", r.name))
	}

	// ── 1. Lifecycle ──────────────────────────────────────────────────────
	previous := e.State()
	if err := e.Transition(plan.target); err != nil {
		return failed(fmt.Sprintf("The record cannot be %s in its current state.", pastTense(plan.op)), err)
	}

	// ── 2. Persistence ────────────────────────────────────────────────────
	undo := func() {}
	if plan.prepare != nil {
		undo = plan.prepare()
	}

	result, err := plan.exec(ctx)
	if err == nil && plan.guarded {
		err = requireAffected(result)
	}

	// ── 3. Outcome ────────────────────────────────────────────────────────
	if err != nil {
		e.Restore(previous)
		undo()
		return r.fail(ctx, plan.op, err)
	}

	if plan.settle {
		_ = e.Transition(entity.StateUnchanged)
	}

	return succeeded(successMessage(plan.op))
}

func (r *Repository[T, P]) fail(ctx context.Context, op operation, err error) OperationResult {
	logger := r.log(ctx)

	if errors.Is(err, ErrConcurrencyConflict) {
		metrics.RepositoryFailures.WithLabelValues(r.name, string(op), "conflict").Inc()
		logger.WarnContext(ctx, "repository_concurrency_conflict",
			slog.String("entity", r.name),
			slog.String("operation", string(op)),
		)
		return failed(msgConflict, err)
	}

	metrics.RepositoryFailures.WithLabelValues(r.name, string(op), "error").Inc()
	logging.Fatal(ctx, logger, "repository_write_failed", err,
		slog.String("entity", r.name),
		slog.String("operation", string(op)),
	)
	return failed(failureMessage(op), err)
}

func (r *Repository[T, P]) log(ctx context.Context) *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return ctxutil.GetLogger(ctx)
}

func (r *Repository[T, P]) scoped(q *bun.SelectQuery) *bun.SelectQuery {
	if r.scope != nil {
		q = r.scope(q)
	}
	return q
}

// prepare applies, in order: includes, the tier scope, the predicate.
func (r *Repository[T, P]) prepare(q *bun.SelectQuery, predicate QueryFunc, o queryOptions) *bun.SelectQuery {
	if o.loader != nil {
		q = o.loader.ApplyIncludes(q)
	}
	return apply(r.scoped(q), predicate)
}

// materialize runs explicit loads and attaches the entities unless detached.
func (r *Repository[T, P]) materialize(ctx context.Context, o queryOptions, items ...P) error {
	for _, item := range items {
		if o.loader != nil {
			if err := o.loader.loadModel(ctx, r.db, (*T)(item)); err != nil {
				return err
			}
		}
		if !o.noTracking {
			item.Attach()
		}
	}
	return nil
}

func apply(q *bun.SelectQuery, predicate QueryFunc) *bun.SelectQuery {
	if predicate == nil {
		return q
	}
	return predicate(q)
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: no row matched the version read", ErrConcurrencyConflict)
	}
	return nil
}

// recoverQuery applies the read's [ErrorHandlingOption] to err.
func recoverQuery[R any, T any, P Model[T]](ctx context.Context, r *Repository[T, P], o queryOptions, action string, err error, empty R) (R, error) {
	var zero R

	if o.onError == Throw {
		return zero, fmt.Errorf("repository: %s %s: %w", action, r.name, err)
	}

	logging.Fatal(ctx, r.log(ctx), "repository_query_failed", err,
		slog.String("entity", r.name),
		slog.String("action", action),
		slog.String("policy", o.onError.String()),
	)

	if o.onError == ReturnEmpty {
		return empty, nil
	}
	return zero, nil
}

func successMessage(op operation) string {
	switch op {
	case opCreate:
		return msgCreated
	case opUpdate:
		return msgUpdated
	default:
		return msgDeleted
	}
}

func pastTense(op operation) string {
	switch op {
	case opCreate:
		return "created"
	case opUpdate:
		return "updated"
	default:
		return "deleted"
	}
}
