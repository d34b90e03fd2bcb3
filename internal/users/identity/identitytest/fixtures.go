// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package identitytest seeds identity data into an in-memory database for tests.
package identitytest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/taibuivan/crudkit/internal/platform/database"
	"github.com/taibuivan/crudkit/internal/platform/permission"
	"github.com/taibuivan/crudkit/internal/platform/repository"
	"github.com/taibuivan/crudkit/internal/platform/sec"
	"github.com/taibuivan/crudkit/internal/users/identity"
)

// HashCost is the bcrypt cost used by fixtures. It is the bcrypt minimum.
const HashCost = 4

// Hasher returns the fast hasher fixtures hash passwords with.
func Hasher() *sec.BcryptHasher {
	return sec.NewBcryptHasher(HashCost)
}

// OpenDB returns an in-memory sqlite database with the identity schema.
func OpenDB(t *testing.T) *bun.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.CreateSchema(ctx, db, identity.Models()...))
	return db
}

// User describes a user account to seed.
type User struct {
	Username string
	Password string
	Email    string
	Status   identity.AccountStatus
}

// SeedUser inserts a user account with its profile.
func SeedUser(t *testing.T, db bun.IDB, user User) *identity.Account {
	t.Helper()
	ctx := context.Background()

	hash, err := Hasher().Hash(nil, user.Password)
	require.NoError(t, err)

	email := user.Email
	if email == "" {
		email = user.Username + "@example.com"
	}

	account := identity.NewAccount(0, sec.AccountTypeUser)
	account.Status = user.Status
	account.UserProfile.Create(user.Username, identity.UserDetails{
		Firstname: "Test",
		Surname:   user.Username,
		Email:     email,
	})
	account.UserProfile.SetPassword(hash)

	insertAccount(t, ctx, db, account)
	return account
}

// SeedClient inserts a client account with its profile.
func SeedClient(t *testing.T, db bun.IDB, name, clientKey string, status identity.AccountStatus) *identity.Account {
	t.Helper()

	account := identity.NewAccount(0, sec.AccountTypeClient)
	account.Status = status
	account.ClientProfile.ClientName = name
	account.ClientProfile.ClientKey = clientKey
	account.ClientProfile.ClientType = sec.ClientTypeService

	insertAccount(t, context.Background(), db, account)
	return account
}

// SeedRole inserts a role with the given claims.
func SeedRole(t *testing.T, db bun.IDB, name string, claims permission.Map) *identity.Role {
	t.Helper()
	ctx := context.Background()

	role := identity.NewRole(0, name, "")
	for _, resource := range claims.SortedResources() {
		role.AddClaim(resource, claims[resource])
	}

	result := repository.NewAudited[identity.Role](db, nil).Insert(ctx, role)
	require.True(t, result.Succeeded, result.Message)

	role.LinkClaims()
	claimRepository := repository.New[identity.RoleClaim](db, nil)
	for _, claim := range role.Claims {
		result := claimRepository.Insert(ctx, claim)
		require.True(t, result.Succeeded, result.Message)
	}
	return role
}

// Assign links account to each role.
func Assign(t *testing.T, db bun.IDB, account *identity.Account, roles ...*identity.Role) {
	t.Helper()

	links := repository.New[identity.AccountRole](db, nil)
	for _, role := range roles {
		result := links.Insert(context.Background(), identity.NewAccountRole(account.ID, role.ID))
		require.True(t, result.Succeeded, result.Message)
	}
}

func insertAccount(t *testing.T, ctx context.Context, db bun.IDB, account *identity.Account) {
	t.Helper()

	profile := account.Profile()

	result := repository.NewAudited[identity.Account](db, nil).Insert(ctx, account)
	require.True(t, result.Succeeded, result.Message)

	account.LinkProfile()
	switch typed := profile.(type) {
	case *identity.UserProfile:
		result = repository.New[identity.UserProfile](db, nil).Insert(ctx, typed)
	case *identity.ClientProfile:
		result = repository.New[identity.ClientProfile](db, nil).Insert(ctx, typed)
	case *identity.ExternalUserProfile:
		result = repository.New[identity.ExternalUserProfile](db, nil).Insert(ctx, typed)
	}
	require.True(t, result.Succeeded, result.Message)
}
