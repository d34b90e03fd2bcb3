// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/taibuivan/crudkit/internal/platform/repository"
	"github.com/taibuivan/crudkit/internal/platform/sec"
	"github.com/taibuivan/crudkit/internal/users/identity"
	"github.com/taibuivan/crudkit/pkg/slug"
)

// BunAccountStore implements [AccountStore] over the audited account repository.
// Soft-deleted accounts never authenticate.
type BunAccountStore struct {
	accounts *repository.AuditedRepository[identity.Account, *identity.Account]
}

// NewAccountStore creates a store over db.
func NewAccountStore(db bun.IDB, logger *slog.Logger) *BunAccountStore {
	return &BunAccountStore{accounts: repository.NewAudited[identity.Account](db, logger)}
}

// FindUserByUsername implements [AccountStore]. Usernames are compared folded.
func (store *BunAccountStore) FindUserByUsername(context context.Context, username string) (*identity.Account, error) {
	loader := repository.NewLoader[identity.Account]().Include("UserProfile")

	account, err := store.accounts.FindBy(context, func(query *bun.SelectQuery) *bun.SelectQuery {
		return query.
			Where("?TableAlias.account_type = ?", sec.AccountTypeUser).
			Where("user_profile.username = ?", slug.Fold(username))
	}, repository.WithLoader(loader))
	if err != nil {
		return nil, fmt.Errorf("find_user_failed: %w", err)
	}

	if account == nil || account.UserProfile == nil {
		return nil, nil
	}
	return account, nil
}

// FindClientByKey implements [AccountStore].
func (store *BunAccountStore) FindClientByKey(context context.Context, clientKey string) (*identity.Account, error) {
	loader := repository.NewLoader[identity.Account]().Include("ClientProfile")

	account, err := store.accounts.FindBy(context, func(query *bun.SelectQuery) *bun.SelectQuery {
		return query.
			Where("?TableAlias.account_type = ?", sec.AccountTypeClient).
			Where("client_profile.client_key = ?", clientKey)
	}, repository.WithLoader(loader))
	if err != nil {
		return nil, fmt.Errorf("find_client_failed: %w", err)
	}

	if account == nil || account.ClientProfile == nil {
		return nil, nil
	}
	return account, nil
}

// LoadRoles implements [AccountStore].
func (store *BunAccountStore) LoadRoles(context context.Context, account *identity.Account) error {
	if err := store.accounts.LoadExplicits(context, account, "Roles", "Role", "Claims"); err != nil {
		return fmt.Errorf("load_roles_failed: %w", err)
	}
	return nil
}
