// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/crudkit/internal/platform/database"
	"github.com/taibuivan/crudkit/internal/platform/entity"
	"github.com/taibuivan/crudkit/internal/platform/permission"
	"github.com/taibuivan/crudkit/internal/platform/sec"
	"github.com/taibuivan/crudkit/internal/users/identity"
)

/*
TestNewAccount verifies that exactly one profile matching the type is created.
*/
func TestNewAccount(t *testing.T) {
	tests := []struct {
		accountType sec.AccountType
		want        sec.AccountType
	}{
		{sec.AccountTypeUser, sec.AccountTypeUser},
		{sec.AccountTypeClient, sec.AccountTypeClient},
		{sec.AccountTypeExternalUser, sec.AccountTypeExternalUser},
	}

	for _, tt := range tests {
		t.Run(tt.accountType.String(), func(t *testing.T) {
			account := identity.NewAccount(7, tt.accountType)

			require.NotNil(t, account.Profile())
			assert.Equal(t, tt.want, account.Profile().Kind())
			assert.Equal(t, identity.StatusActive, account.Status)
			assert.Equal(t, entity.StateNew, account.State())

			populated := 0
			for _, present := range []bool{account.UserProfile != nil, account.ClientProfile != nil, account.ExternalUserProfile != nil} {
				if present {
					populated++
				}
			}
			assert.Equal(t, 1, populated)

			assert.True(t, account.IsStamped())
			assert.Equal(t, int64(7), account.CreatedByID)
			assert.Equal(t, int64(7), account.OwnerID)
			assert.Nil(t, account.ModifiedDate)
		})
	}
}

/*
TestAccount_LinkProfile verifies the profile receives the account id.
*/
func TestAccount_LinkProfile(t *testing.T) {
	account := identity.NewAccount(0, sec.AccountTypeClient)
	account.ID = 42
	account.LinkProfile()

	assert.Equal(t, int64(42), account.ClientProfile.AccountID)
}

/*
TestAccountStatus verifies names, parsing and the login rejection message.
*/
func TestAccountStatus(t *testing.T) {
	tests := []struct {
		status  identity.AccountStatus
		name    string
		message string
	}{
		{identity.StatusActive, "Active", "Your account has been Active. Please contact the administrator."},
		{identity.StatusSuspended, "Suspended", "Your account has been Suspended. Please contact the administrator."},
		{identity.StatusLocked, "Locked", "Your account has been Locked. Please contact the administrator."},
		{identity.StatusDeleted, "Deleted", "Your account has been Deleted. Please contact the administrator."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.status.String())
			assert.Equal(t, tt.message, tt.status.Message())

			parsed, ok := identity.ParseAccountStatus(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.status, parsed)
		})
	}

	_, ok := identity.ParseAccountStatus("Archived")
	assert.False(t, ok)
}

/*
TestAuthProvider verifies the provider names round-trip.
*/
func TestAuthProvider(t *testing.T) {
	for _, name := range []string{"Own", "Google", "Facebook", "Twitter", "GitHub", "AzureAD", "WinAD"} {
		provider, ok := identity.ParseAuthProvider(name)
		require.True(t, ok, name)
		assert.Equal(t, name, provider.String())
	}
	assert.Equal(t, identity.ProviderOwn, identity.AuthProvider(0))
}

/*
TestRole_AddClaim verifies duplicate resources are ORed into one claim.
*/
func TestRole_AddClaim(t *testing.T) {
	role := identity.NewRole(1, "  Content Editor ", "Edits content")

	assert.Equal(t, "Content Editor", role.Name)
	assert.Equal(t, "content-editor", role.Code)

	role.AddClaim(permission.ResourceProduct, permission.Read)
	role.AddClaim(permission.ResourceProduct, permission.Update)
	role.AddClaim(permission.ResourceOrder, permission.Read)

	require.Len(t, role.Claims, 2)
	assert.Equal(t, permission.Read|permission.Update, role.Permissions()[permission.ResourceProduct])
	assert.Equal(t, permission.Read, role.Permissions()[permission.ResourceOrder])
}

/*
TestAccount_Permissions verifies the fold across every role of an account.
*/
func TestAccount_Permissions(t *testing.T) {
	editor := identity.NewRole(1, "Editor", "")
	editor.AddClaim(permission.ResourceProduct, permission.Read|permission.Update)

	auditor := identity.NewRole(1, "Auditor", "")
	auditor.AddClaim(permission.ResourceProduct, permission.Read)
	auditor.AddClaim(permission.ResourceReport, permission.Read)

	account := identity.NewAccount(1, sec.AccountTypeUser)
	account.Roles = []*identity.AccountRole{
		{Role: editor},
		{Role: auditor},
		{Role: nil},
	}

	perms := account.Permissions()
	assert.Equal(t, permission.Read|permission.Update, perms[permission.ResourceProduct])
	assert.Equal(t, permission.Read, perms[permission.ResourceReport])
	assert.Equal(t, permission.None, perms[permission.ResourceUser])
	assert.ElementsMatch(t, []string{"Editor", "Auditor"}, account.RoleNames())
}

/*
TestModels_Schema verifies every model creates cleanly and enum columns round-trip.
*/
func TestModels_Schema(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.CreateSchema(ctx, db, identity.Models()...))

	role := identity.NewRole(0, "Reader", "")
	role.RowVersion = "v1"
	_, err = db.NewInsert().Model(role).Exec(ctx)
	require.NoError(t, err)

	claim := role.AddClaim(permission.ResourceProduct, permission.Full)
	role.LinkClaims()
	_, err = db.NewInsert().Model(claim).Exec(ctx)
	require.NoError(t, err)

	var loaded identity.Role
	require.NoError(t, db.NewSelect().Model(&loaded).Relation("Claims").Where("rl.id = ?", role.ID).Scan(ctx))

	require.Len(t, loaded.Claims, 1)
	assert.Equal(t, permission.ResourceProduct, loaded.Claims[0].Resource)
	assert.Equal(t, permission.Full, loaded.Claims[0].Permission)
}
