// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/crudkit/internal/platform/ctxutil"
	"github.com/taibuivan/crudkit/internal/platform/permission"
	"github.com/taibuivan/crudkit/internal/platform/sec"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "test-request-id"

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRequestID(ctx, requestID)
	assert.Equal(t, requestID, ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// 1. Initially should return the default logger
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_Identity verifies the principal can be stored and read back.
*/
func TestContext_Identity(t *testing.T) {
	ctx := context.Background()
	identity := &sec.Identity{
		AccountType: sec.AccountTypeClient,
		AccountID:   12,
		Permissions: permission.Map{permission.ResourceReport: permission.Read},
	}

	// 1. Initially should be nil
	assert.Nil(t, ctxutil.GetIdentity(ctx))
	assert.Equal(t, int64(0), ctxutil.ActorID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithIdentity(ctx, identity)
	assert.Same(t, identity, ctxutil.GetIdentity(ctx))
	assert.Equal(t, int64(12), ctxutil.ActorID(ctx))
}

/*
TestContext_CurrentIdentityDefaults verifies fallbacks for anonymous and partial principals.
*/
func TestContext_CurrentIdentityDefaults(t *testing.T) {
	anonymous := ctxutil.CurrentIdentity(context.Background())
	assert.Equal(t, sec.AccountTypeUser, anonymous.AccountType)
	assert.Equal(t, int64(0), anonymous.AccountID)
	assert.NotNil(t, anonymous.Permissions)
	assert.Empty(t, anonymous.Permissions)

	partial := ctxutil.CurrentIdentity(ctxutil.WithIdentity(context.Background(), &sec.Identity{AccountID: 3}))
	assert.Equal(t, sec.AccountTypeUser, partial.AccountType)
	assert.Equal(t, int64(3), partial.AccountID)
	assert.NotNil(t, partial.Permissions)
}
