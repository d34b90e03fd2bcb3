// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/crudkit/internal/platform/permission"
	"github.com/taibuivan/crudkit/internal/platform/sec"
)

// contextKey is unexported so no other package can read or overwrite these values.
type contextKey int

const (
	requestIDKey contextKey = iota
	loggerKey
	identityKey
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerKey).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// WithIdentity returns a new context carrying the validated principal.
func WithIdentity(ctx context.Context, identity *sec.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity retrieves the validated principal, or nil for anonymous requests.
func GetIdentity(ctx context.Context) *sec.Identity {
	identity, ok := ctx.Value(identityKey).(*sec.Identity)
	if !ok {
		return nil
	}
	return identity
}

/*
CurrentIdentity returns the principal of the current request with defaults applied.

Defaults:
  - AccountType: User
  - AccountID: 0
  - Permissions: empty map
*/
func CurrentIdentity(ctx context.Context) sec.Identity {
	current := sec.Identity{AccountType: sec.AccountTypeUser, Permissions: permission.Map{}}

	identity := GetIdentity(ctx)
	if identity == nil {
		return current
	}

	current = *identity
	if current.AccountType == 0 {
		current.AccountType = sec.AccountTypeUser
	}
	if current.Permissions == nil {
		current.Permissions = permission.Map{}
	}
	return current
}

// ActorID returns the account id recorded in audit metadata (0 for anonymous work).
func ActorID(ctx context.Context) int64 {
	if identity := GetIdentity(ctx); identity != nil {
		return identity.AccountID
	}
	return 0
}
