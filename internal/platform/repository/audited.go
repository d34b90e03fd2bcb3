// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/taibuivan/crudkit/internal/platform/ctxutil"
	"github.com/taibuivan/crudkit/internal/platform/entity"
)

// AuditedModel is satisfied by pointers to tracked bun models embedding [entity.Audit].
type AuditedModel[T any] interface {
	*T
	entity.Audited
}

/*
AuditedRepository is the audited tier.

Every read excludes soft-deleted rows. Every write stamps audit metadata with
the acting account from the request context and regenerates the row version.
Updates and deletes are guarded by the row version that was read.
*/
type AuditedRepository[T any, P AuditedModel[T]] struct {
	*Repository[T, P]
}

// NewAudited builds an audited repository over db.
func NewAudited[T any, P AuditedModel[T]](db bun.IDB, logger *slog.Logger) *AuditedRepository[T, P] {
	base := New[T, P](db, logger)
	base.scope = notDeleted
	return &AuditedRepository[T, P]{Repository: base}
}

// Bypass returns the base tier over the same handle, without the soft-delete filter.
func (r *AuditedRepository[T, P]) Bypass() *Repository[T, P] {
	return New[T, P](r.db, r.logger)
}

func notDeleted(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Where("?TableAlias.is_deleted = ?", false)
}

// # Audited Writes

// Insert stamps the creation audit (unless already stamped), issues a row
// version and inserts e.
func (r *AuditedRepository[T, P]) Insert(ctx context.Context, e P) OperationResult {
	actor := ctxutil.ActorID(ctx)

	return r.write(ctx, e, writePlan{
		op:     opCreate,
		target: entity.StateAdded,
		settle: true,
		prepare: func() func() {
			undo := snapshot(e)
			if !e.AuditMetadata().IsStamped() {
				e.AuditMetadata().StampCreated(actor, r.now())
			}
			e.AuditMetadata().Regenerate()
			return undo
		},
		exec: func(ctx context.Context) (sql.Result, error) {
			return r.db.NewInsert().Model(e).Exec(ctx)
		},
	})
}

// Update stamps the modification audit and saves e, guarded by its row version.
func (r *AuditedRepository[T, P]) Update(ctx context.Context, e P) OperationResult {
	actor := ctxutil.ActorID(ctx)
	var expected string

	return r.write(ctx, e, writePlan{
		op:      opUpdate,
		target:  entity.StateModified,
		settle:  true,
		guarded: true,
		prepare: func() func() {
			undo := snapshot(e)
			e.AuditMetadata().StampModified(actor, r.now())
			expected = e.AuditMetadata().Regenerate()
			return undo
		},
		exec: func(ctx context.Context) (sql.Result, error) {
			return r.guardedUpdate(ctx, e, expected)
		},
	})
}

// SoftDelete flags e as deleted, guarded by its row version. Legal only from
// Unchanged or Modified.
func (r *AuditedRepository[T, P]) SoftDelete(ctx context.Context, e P) OperationResult {
	actor := ctxutil.ActorID(ctx)
	var expected string

	return r.write(ctx, e, writePlan{
		op:      opDelete,
		target:  entity.StateSoftDeleted,
		guarded: true,
		prepare: func() func() {
			undo := snapshot(e)
			e.AuditMetadata().MarkDeleted(actor, r.now())
			expected = e.AuditMetadata().Regenerate()
			return undo
		},
		exec: func(ctx context.Context) (sql.Result, error) {
			return r.guardedUpdate(ctx, e, expected)
		},
	})
}

// Delete removes the row of e, guarded by its row version.
func (r *AuditedRepository[T, P]) Delete(ctx context.Context, e P) OperationResult {
	return r.write(ctx, e, writePlan{
		op:      opDelete,
		target:  entity.StateHardDeleted,
		guarded: true,
		exec: func(ctx context.Context) (sql.Result, error) {
			return r.db.NewDelete().
				Model(e).
				WherePK().
				Where("row_version = ?", e.AuditMetadata().RowVersion).
				Exec(ctx)
		},
	})
}

func (r *AuditedRepository[T, P]) guardedUpdate(ctx context.Context, e P, expected string) (sql.Result, error) {
	return r.db.NewUpdate().
		Model(e).
		WherePK().
		Where("row_version = ?", expected).
		Exec(ctx)
}

// snapshot captures the audit block and returns the function restoring it.
func snapshot[P entity.HasAuditMetadata](e P) func() {
	saved := *e.AuditMetadata()
	return func() { *e.AuditMetadata() = saved }
}
