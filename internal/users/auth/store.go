// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"

	"github.com/taibuivan/crudkit/internal/platform/permission"
	"github.com/taibuivan/crudkit/internal/users/identity"
)

// # Account Lookup

// AccountStore resolves principals for login.
type AccountStore interface {

	/*
		FindUserByUsername returns the user account with the given login name,
		with its UserProfile loaded.

		Returns:
		  - *identity.Account: nil when no user account matches
		  - error: Database retrieval failures
	*/
	FindUserByUsername(context context.Context, username string) (*identity.Account, error)

	/*
		FindClientByKey returns the client account with the given client key,
		with its ClientProfile loaded.

		Returns:
		  - *identity.Account: nil when no client account matches
		  - error: Database retrieval failures
	*/
	FindClientByKey(context context.Context, clientKey string) (*identity.Account, error)

	// LoadRoles loads Roles -> Role -> Claims on account.
	LoadRoles(context context.Context, account *identity.Account) error
}

// # Permission Cache

// PermissionCache stores the aggregated permission map per account.
type PermissionCache interface {

	// Get returns the cached map and whether it was present.
	Get(context context.Context, accountID int64) (permission.Map, bool, error)

	// Set stores the map for the configured lifetime.
	Set(context context.Context, accountID int64, permissions permission.Map) error

	// Invalidate drops the entry of accountID. Missing entries are not an error.
	Invalidate(context context.Context, accountID int64) error
}
