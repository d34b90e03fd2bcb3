// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package database

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/taibuivan/crudkit/internal/platform/ctxutil"
)

// QueryLogger is a [bun.QueryHook] that logs statements through slog.
//
// Failed queries are logged at WARN. Successful ones are logged at DEBUG when
// verbose is on. sql.ErrNoRows is not treated as a failure.
type QueryLogger struct {
	logger  *slog.Logger
	verbose bool
}

var _ bun.QueryHook = (*QueryLogger)(nil)

// NewQueryLogger builds the hook. A nil logger falls back to the request logger.
func NewQueryLogger(logger *slog.Logger, verbose bool) *QueryLogger {
	return &QueryLogger{logger: logger, verbose: verbose}
}

// BeforeQuery implements [bun.QueryHook].
func (h *QueryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

// AfterQuery implements [bun.QueryHook].
func (h *QueryLogger) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	logger := h.logger
	if logger == nil {
		logger = ctxutil.GetLogger(ctx)
	}

	elapsed := time.Since(event.StartTime)

	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		logger.WarnContext(ctx, "db_query_failed",
			slog.String("operation", event.Operation()),
			slog.String("query", event.Query),
			slog.Duration("elapsed", elapsed),
			slog.Any("error", event.Err),
		)
		return
	}

	if h.verbose {
		logger.DebugContext(ctx, "db_query",
			slog.String("operation", event.Operation()),
			slog.String("query", event.Query),
			slog.Duration("elapsed", elapsed),
		)
	}
}
