// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package logging builds the structured JSON logger shared by every layer.

Levels:

  - The standard slog levels (DEBUG, INFO, WARN, ERROR).
  - [LevelFatal]: failures that lose a write or crash a request. The process
    keeps running; the level exists so that operators can alert on it.
*/
package logging

import (
	"context"
	"io"
	"log/slog"

	"github.com/taibuivan/crudkit/internal/platform/constants"
)

// LevelFatal sits above [slog.LevelError].
const LevelFatal = slog.Level(12)

// New builds the root JSON logger tagged with the application name.
func New(out io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevel,
	})

	return slog.New(handler).With(slog.String(constants.FieldApp, constants.AppName))
}

// replaceLevel renders [LevelFatal] as "FATAL" instead of "ERROR+4".
func replaceLevel(_ []string, attr slog.Attr) slog.Attr {
	if attr.Key != slog.LevelKey {
		return attr
	}

	if level, ok := attr.Value.Any().(slog.Level); ok && level >= LevelFatal {
		attr.Value = slog.StringValue("FATAL")
	}

	return attr
}

// Fatal logs err at [LevelFatal] with any extra attributes.
func Fatal(ctx context.Context, logger *slog.Logger, msg string, err error, attrs ...slog.Attr) {
	if logger == nil {
		logger = slog.Default()
	}

	all := make([]slog.Attr, 0, len(attrs)+1)
	all = append(all, slog.Any("error", err))
	all = append(all, attrs...)

	logger.LogAttrs(ctx, LevelFatal, msg, all...)
}
