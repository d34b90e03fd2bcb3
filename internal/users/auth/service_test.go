// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/taibuivan/crudkit/internal/platform/apperr"
	"github.com/taibuivan/crudkit/internal/platform/permission"
	"github.com/taibuivan/crudkit/internal/platform/sec"
	"github.com/taibuivan/crudkit/internal/users/auth"
	"github.com/taibuivan/crudkit/internal/users/identity"
	"github.com/taibuivan/crudkit/internal/users/identity/identitytest"
)

const testSecret = "a-test-secret-that-is-long-enough-for-hs256"

type fixture struct {
	db      *bun.DB
	redis   *miniredis.Miniredis
	cache   *auth.RedisPermissionCache
	tokens  *sec.TokenService
	service *auth.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := identitytest.OpenDB(t)

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := auth.NewPermissionCache(client, time.Minute)

	tokens, err := sec.NewTokenService(sec.SigningConfig{
		Secret:     testSecret,
		Issuers:    []string{"crudkit"},
		Audiences:  []string{"crudkit-api"},
		Expiration: time.Hour,
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	service := auth.NewService(auth.NewAccountStore(db, logger), cache, identitytest.Hasher(), tokens, logger)

	return &fixture{db: db, redis: server, cache: cache, tokens: tokens, service: service}
}

/*
TestLoginUser_Permissions verifies the token carries the OR of every role's claims.
*/
func TestLoginUser_Permissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	editor := identitytest.SeedRole(t, f.db, "Editor", permission.Map{permission.ResourceProduct: permission.Read | permission.Update})
	auditor := identitytest.SeedRole(t, f.db, "Auditor", permission.Map{
		permission.ResourceProduct: permission.Read,
		permission.ResourceReport:  permission.Read,
	})
	account := identitytest.SeedUser(t, f.db, identitytest.User{Username: "jane", Password: "correct-horse"})
	identitytest.Assign(t, f.db, account, editor, auditor)

	result, err := f.service.LoginUser(ctx, "Jane", "correct-horse")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Empty(t, result.RefreshToken)
	assert.Equal(t, map[string]string{"Product": "Read|Update", "Report": "Read"}, result.Permissions)

	principal, ok := f.tokens.ValidateToken(result.AccessToken)
	require.True(t, ok)
	assert.Equal(t, account.ID, principal.AccountID)
	assert.Equal(t, "jane", principal.Username)
	assert.Equal(t, sec.AccountTypeUser, principal.AccountType)
	assert.Equal(t, permission.Read|permission.Update, principal.Granted(permission.ResourceProduct))
	assert.Equal(t, permission.None, principal.Granted(permission.ResourceUser))

	assert.True(t, f.redis.Exists(auth.PermissionKey(account.ID)), "permissions are cached after login")
}

/*
TestLoginUser_Rejections verifies every rejection is an AuthenticationFailed error.
*/
func TestLoginUser_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	identitytest.SeedUser(t, f.db, identitytest.User{Username: "active", Password: "secret-pass"})
	identitytest.SeedUser(t, f.db, identitytest.User{Username: "locked", Password: "secret-pass", Status: identity.StatusLocked})

	tests := []struct {
		name     string
		username string
		password string
		message  string
	}{
		{"unknown user", "nobody", "secret-pass", "Invalid login credentials"},
		{"wrong password", "active", "wrong-pass", "Invalid login credentials"},
		{"locked account", "locked", "secret-pass", "Your account has been Locked. Please contact the administrator."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.service.LoginUser(ctx, tt.username, tt.password)
			require.Error(t, err)
			assert.Nil(t, result)

			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, apperr.CodeAuthenticationFailed, appError.Code)
			assert.Equal(t, tt.message, appError.Message)
		})
	}
}

/*
TestLoginClient verifies client key login and its rejections.
*/
func TestLoginClient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reporting := identitytest.SeedRole(t, f.db, "Reporting", permission.Map{permission.ResourceReport: permission.Full})
	client := identitytest.SeedClient(t, f.db, "Nightly Export", "key-123", identity.StatusActive)
	identitytest.Assign(t, f.db, client, reporting)
	identitytest.SeedClient(t, f.db, "Retired", "key-old", identity.StatusExpired)

	result, err := f.service.LoginClient(ctx, "key-123")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Report": "Read|Create|Update|Delete"}, result.Permissions)

	principal, ok := f.tokens.ValidateToken(result.AccessToken)
	require.True(t, ok)
	assert.True(t, principal.IsClient())
	assert.Equal(t, "Nightly Export", principal.ClientName)
	assert.Equal(t, sec.ClientTypeService, principal.ClientType)

	_, err = f.service.LoginClient(ctx, "key-unknown")
	assert.Equal(t, auth.MessageInvalidClientKey, apperr.As(err).Message)

	_, err = f.service.LoginClient(ctx, "key-old")
	assert.Equal(t, "Your account has been Expired. Please contact the administrator.", apperr.As(err).Message)
}

/*
TestLoginExternal verifies the federated login stub.
*/
func TestLoginExternal(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.LoginExternal(context.Background())
	assert.True(t, apperr.HasCode(err, apperr.CodeServiceUnavailable))
}

/*
TestResolvePermissions_Cache verifies cache hits, invalidation and cache outages.
*/
func TestResolvePermissions_Cache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	viewer := identitytest.SeedRole(t, f.db, "Viewer", permission.Map{permission.ResourceOrder: permission.Read})
	account := identitytest.SeedUser(t, f.db, identitytest.User{Username: "sam", Password: "secret-pass"})
	identitytest.Assign(t, f.db, account, viewer)

	// ── Miss: loaded from the role graph and written back
	permissions, err := f.service.ResolvePermissions(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, permission.Read, permissions[permission.ResourceOrder])

	cached, found, err := f.cache.Get(ctx, account.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, permissions, cached)

	// ── Hit: the cached map wins over the database
	require.NoError(t, f.cache.Set(ctx, account.ID, permission.Map{permission.ResourceOrder: permission.Full}))
	permissions, err = f.service.ResolvePermissions(ctx, &identity.Account{Base: account.Base})
	require.NoError(t, err)
	assert.Equal(t, permission.Full, permissions[permission.ResourceOrder])

	// ── Invalidation
	require.NoError(t, f.service.InvalidatePermissions(ctx, account.ID))
	_, found, err = f.cache.Get(ctx, account.ID)
	require.NoError(t, err)
	assert.False(t, found)

	// ── Outage: falls back to the database
	f.redis.Close()
	fresh := &identity.Account{Base: account.Base}
	permissions, err = f.service.ResolvePermissions(ctx, fresh)
	require.NoError(t, err)
	assert.Equal(t, permission.Read, permissions[permission.ResourceOrder])
}

/*
TestResolvePermissions_WithoutCache verifies a nil cache disables caching.
*/
func TestResolvePermissions_WithoutCache(t *testing.T) {
	db := identitytest.OpenDB(t)
	ctx := context.Background()

	admin := identitytest.SeedRole(t, db, "Admin", permission.Map{permission.ResourceUser: permission.Full})
	account := identitytest.SeedUser(t, db, identitytest.User{Username: "root", Password: "secret-pass"})
	identitytest.Assign(t, db, account, admin)

	service := auth.NewService(auth.NewAccountStore(db, nil), nil, identitytest.Hasher(), nil, nil)

	permissions, err := service.ResolvePermissions(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, permission.Full, permissions[permission.ResourceUser])
	assert.NoError(t, service.InvalidatePermissions(ctx, account.ID))
}
