// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/crudkit/internal/platform/apperr"
	"github.com/taibuivan/crudkit/internal/platform/permission"
	"github.com/taibuivan/crudkit/internal/users/auth"
	"github.com/taibuivan/crudkit/internal/users/identity"
	"github.com/taibuivan/crudkit/internal/users/identity/identitytest"
	"github.com/taibuivan/crudkit/internal/users/role"
)

var discard = slog.New(slog.NewJSONHandler(io.Discard, nil))

/*
TestCreateRole verifies claims are parsed, merged per resource and persisted.
*/
func TestCreateRole(t *testing.T) {
	db := identitytest.OpenDB(t)
	service := role.NewService(db, nil, discard)
	ctx := context.Background()

	created, err := service.CreateRole(ctx, role.CreateRoleInput{
		Name:        " Catalog Editor ",
		Description: "Maintains products",
		Claims: []role.ClaimInput{
			{Resource: "Product", Permission: "Read|Update"},
			{Resource: "Product", Permission: "Create"},
			{Resource: "Report", Permission: "Full"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Catalog Editor", created.Name)
	assert.Equal(t, "catalog-editor", created.Code)
	assert.Equal(t, map[string]string{
		"Product": "Read|Create|Update",
		"Report":  "Read|Create|Update|Delete",
	}, created.Permissions)

	roles, err := service.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, created.ID, roles[0].ID)
	assert.Equal(t, created.Permissions, roles[0].Permissions)
}

/*
TestCreateRole_Validation verifies names and claims are checked before writing.
*/
func TestCreateRole_Validation(t *testing.T) {
	db := identitytest.OpenDB(t)
	service := role.NewService(db, nil, discard)
	identitytest.SeedRole(t, db, "Auditor", permission.Map{permission.ResourceReport: permission.Read})

	tests := []struct {
		name  string
		input role.CreateRoleInput
		field string
		code  string
	}{
		{"missing name", role.CreateRoleInput{Name: "  "}, role.FieldName, "Required"},
		{"taken code", role.CreateRoleInput{Name: "AUDITOR"}, role.FieldName, "Duplicate"},
		{"no slug", role.CreateRoleInput{Name: "!!!"}, role.FieldName, "Invalid"},
		{"unknown resource", role.CreateRoleInput{Name: "X", Claims: []role.ClaimInput{{Resource: "Invoice", Permission: "Read"}}}, role.FieldClaims, "Invalid"},
		{"unknown flag", role.CreateRoleInput{Name: "Y", Claims: []role.ClaimInput{{Resource: "Order", Permission: "Approve"}}}, role.FieldClaims, "Invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateRole(context.Background(), tt.input)

			appError := apperr.As(err)
			require.NotNil(t, appError, "got %v", err)
			assert.Equal(t, apperr.CodeValidation, appError.Code)
			require.NotEmpty(t, appError.Details)
			assert.Equal(t, tt.field, appError.Details[0].Field)
			assert.Equal(t, tt.code, appError.Details[0].Code)
		})
	}
}

/*
TestAssignRole verifies an assignment grants permissions on the next
resolution even when a stale map was cached.
*/
func TestAssignRole(t *testing.T) {
	db := identitytest.OpenDB(t)
	ctx := context.Background()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	authService := auth.NewService(
		auth.NewAccountStore(db, discard),
		auth.NewPermissionCache(client, time.Minute),
		identitytest.Hasher(), nil, discard,
	)
	service := role.NewService(db, authService, discard)

	account := identitytest.SeedUser(t, db, identitytest.User{Username: "jane", Password: "secret-pass"})
	editor := identitytest.SeedRole(t, db, "Editor", permission.Map{permission.ResourceProduct: permission.Read | permission.Update})

	before, err := authService.ResolvePermissions(ctx, account)
	require.NoError(t, err)
	assert.Empty(t, before)
	require.True(t, server.Exists(auth.PermissionKey(account.ID)))

	require.NoError(t, service.AssignRole(ctx, editor.ID, account.ID))
	assert.False(t, server.Exists(auth.PermissionKey(account.ID)), "assignment drops the cached map")

	after, err := authService.ResolvePermissions(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, permission.Read|permission.Update, after[permission.ResourceProduct])

	err = service.AssignRole(ctx, editor.ID, account.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict), "got %v", err)
}

/*
TestAssignRole_Missing verifies both ends of the link must exist and be live.
*/
func TestAssignRole_Missing(t *testing.T) {
	db := identitytest.OpenDB(t)
	service := role.NewService(db, nil, discard)

	account := identitytest.SeedUser(t, db, identitytest.User{Username: "jane", Password: "secret-pass"})
	editor := identitytest.SeedRole(t, db, "Editor", permission.Map{permission.ResourceProduct: permission.Read})

	tests := []struct {
		name      string
		roleID    int64
		accountID int64
	}{
		{"missing role", 999, account.ID},
		{"missing account", editor.ID, 999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.AssignRole(context.Background(), tt.roleID, tt.accountID)
			assert.True(t, apperr.HasCode(err, apperr.CodeResourceNotFound), "got %v", err)
		})
	}
}

type failingInvalidator struct{ calls int }

func (f *failingInvalidator) InvalidatePermissions(context.Context, int64) error {
	f.calls++
	return errors.New("cache offline")
}

/*
TestAssignRole_CacheFailure verifies a cache outage does not fail the assignment.
*/
func TestAssignRole_CacheFailure(t *testing.T) {
	db := identitytest.OpenDB(t)
	invalidator := &failingInvalidator{}
	service := role.NewService(db, invalidator, discard)

	account := identitytest.SeedUser(t, db, identitytest.User{Username: "jane", Password: "secret-pass", Status: identity.StatusActive})
	editor := identitytest.SeedRole(t, db, "Editor", permission.Map{permission.ResourceProduct: permission.Read})

	require.NoError(t, service.AssignRole(context.Background(), editor.ID, account.ID))
	assert.Equal(t, 1, invalidator.calls)
}
