// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package bootstrap seeds the data a fresh installation needs before anyone can
log in: the administrator role, holding Full on every resource, and the
administrator account linked to it.

Seeding is idempotent. Rows that already exist are reused, so running it on
every deployment is safe.
*/
package bootstrap

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/uptrace/bun"

	"github.com/taibuivan/crudkit/internal/platform/apperr"
	"github.com/taibuivan/crudkit/internal/platform/constants"
	"github.com/taibuivan/crudkit/internal/platform/dberr"
	"github.com/taibuivan/crudkit/internal/platform/permission"
	"github.com/taibuivan/crudkit/internal/platform/repository"
	"github.com/taibuivan/crudkit/internal/platform/sec"
	"github.com/taibuivan/crudkit/internal/users/identity"
)

const minPasswordLength = 8

// Administrator describes the account to seed.
type Administrator struct {
	Password string
	Email    string
}

// Result reports what the seed did.
type Result struct {
	AccountID      int64
	RoleID         int64
	AccountCreated bool
	RoleCreated    bool
	RoleRestored   bool
	Linked         bool
}

type roleOutcome int

const (
	roleReused roleOutcome = iota
	roleCreated
	roleRestored
)

// Seeder writes the bootstrap data.
type Seeder struct {
	db     *bun.DB
	hasher sec.Hasher
	logger *slog.Logger
}

// NewSeeder constructs a new [Seeder].
func NewSeeder(db *bun.DB, hasher sec.Hasher, logger *slog.Logger) *Seeder {
	return &Seeder{db: db, hasher: hasher, logger: logger}
}

/*
Seed ensures the administrator role and account exist and are linked.

The password is only used when the account has to be created. All writes run
in one transaction and are stamped with the system actor (id 0).
*/
func (seeder *Seeder) Seed(context stdctx.Context, admin Administrator) (*Result, error) {
	result := &Result{}

	err := repository.RunInTransaction(context, seeder.db, seeder.logger, func(context stdctx.Context, tx bun.IDB) error {

		// ── 1. Role ─────────────────────────────────────────────────────────
		role, outcome, err := seeder.ensureRole(context, tx)
		if err != nil {
			return err
		}
		result.RoleID = role.ID
		result.RoleCreated = outcome == roleCreated
		result.RoleRestored = outcome == roleRestored

		// ── 2. Account ──────────────────────────────────────────────────────
		accountID, created, err := seeder.ensureAccount(context, tx, admin)
		if err != nil {
			return err
		}
		result.AccountID, result.AccountCreated = accountID, created

		// ── 3. Link ─────────────────────────────────────────────────────────
		result.Linked, err = seeder.ensureLink(context, tx, accountID, role.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	seeder.logger.InfoContext(context, "bootstrap_seeded",
		slog.Int64("account_id", result.AccountID),
		slog.Int64("role_id", result.RoleID),
		slog.Bool("account_created", result.AccountCreated),
		slog.Bool("role_created", result.RoleCreated),
		slog.Bool("role_restored", result.RoleRestored),
		slog.Bool("linked", result.Linked),
	)
	return result, nil
}

/*
ensureRole returns the administrator role, creating it when missing.

The lookup includes soft-deleted rows, which still hold the unique code. A
soft-deleted role is restored in place and its claims are reset to Full on
every resource.
*/
func (seeder *Seeder) ensureRole(context stdctx.Context, tx bun.IDB) (*identity.Role, roleOutcome, error) {
	roles := repository.NewAudited[identity.Role](tx, seeder.logger)

	existing, err := roles.Bypass().FindBy(context, func(query *bun.SelectQuery) *bun.SelectQuery {
		return query.Where("?TableAlias.code = ?", identity.RoleCode(constants.AdminRoleName))
	})
	if err != nil {
		return nil, roleReused, fmt.Errorf("find_admin_role_failed: %w", err)
	}

	switch {
	case existing == nil:
		role := identity.NewRole(0, constants.AdminRoleName, "Full access to every resource")
		if err := dberr.FromResult(roles.Insert(context, role), "Role"); err != nil {
			return nil, roleReused, err
		}
		return role, roleCreated, seeder.grantFull(context, tx, role)

	case existing.IsDeleted:
		existing.IsDeleted = false
		if err := dberr.FromResult(roles.Update(context, existing), "Role"); err != nil {
			return nil, roleReused, err
		}
		if _, err := tx.NewDelete().
			Model((*identity.RoleClaim)(nil)).
			Where("role_id = ?", existing.ID).
			Exec(context); err != nil {
			return nil, roleReused, fmt.Errorf("reset_admin_claims_failed: %w", err)
		}
		return existing, roleRestored, seeder.grantFull(context, tx, existing)

	default:
		return existing, roleReused, nil
	}
}

// grantFull inserts one Full claim per resource for role.
func (seeder *Seeder) grantFull(context stdctx.Context, tx bun.IDB, role *identity.Role) error {
	role.Claims = nil
	for _, resource := range permission.Resources() {
		role.AddClaim(resource, permission.Full)
	}
	role.LinkClaims()

	claims := repository.New[identity.RoleClaim](tx, seeder.logger)
	for _, claim := range role.Claims {
		if err := dberr.FromResult(claims.Insert(context, claim), "Role"); err != nil {
			return err
		}
	}
	return nil
}

func (seeder *Seeder) ensureAccount(context stdctx.Context, tx bun.IDB, admin Administrator) (int64, bool, error) {
	profiles := repository.New[identity.UserProfile](tx, seeder.logger)

	existing, err := profiles.FindBy(context, func(query *bun.SelectQuery) *bun.SelectQuery {
		return query.Where("?TableAlias.username = ?", constants.AdminUsername)
	}, repository.NoTracking())
	if err != nil {
		return 0, false, fmt.Errorf("find_admin_account_failed: %w", err)
	}
	if existing != nil {
		return existing.AccountID, false, nil
	}

	if utf8.RuneCountInString(admin.Password) < minPasswordLength {
		return 0, false, apperr.InvalidInput(fmt.Sprintf("The administrator password needs at least %d characters", minPasswordLength))
	}

	account := identity.NewAccount(0, sec.AccountTypeUser)
	hash, err := seeder.hasher.Hash(account, admin.Password)
	if err != nil {
		return 0, false, fmt.Errorf("hash_admin_password_failed: %w", err)
	}

	email := admin.Email
	if email == "" {
		email = constants.AdminUsername + "@localhost"
	}

	account.UserProfile.Create(constants.AdminUsername, identity.UserDetails{
		Firstname: "System",
		Surname:   "Administrator",
		Email:     email,
	})
	account.UserProfile.SetPassword(hash)

	if err := dberr.FromResult(repository.NewAudited[identity.Account](tx, seeder.logger).Insert(context, account), "Account"); err != nil {
		return 0, false, err
	}

	account.LinkProfile()
	if err := dberr.FromResult(profiles.Insert(context, account.UserProfile), "Account"); err != nil {
		return 0, false, err
	}

	return account.ID, true, nil
}

func (seeder *Seeder) ensureLink(context stdctx.Context, tx bun.IDB, accountID, roleID int64) (bool, error) {
	links := repository.New[identity.AccountRole](tx, seeder.logger)

	linked, err := links.Exists(context, func(query *bun.SelectQuery) *bun.SelectQuery {
		return query.
			Where("?TableAlias.account_id = ?", accountID).
			Where("?TableAlias.role_id = ?", roleID)
	})
	if err != nil {
		return false, fmt.Errorf("check_admin_link_failed: %w", err)
	}
	if linked {
		return false, nil
	}

	if err := dberr.FromResult(links.Insert(context, identity.NewAccountRole(accountID, roleID)), "Role"); err != nil {
		return false, err
	}
	return true, nil
}
