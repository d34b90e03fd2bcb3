// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account manages user accounts: listing, detail views, creation,
updates and soft deletion.

Every operation runs through the audited repository, so soft-deleted accounts
are invisible, writes are stamped with the acting account and updates are
guarded by the row version the client read.
*/
package account

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/uptrace/bun"

	"github.com/taibuivan/crudkit/internal/platform/apperr"
	"github.com/taibuivan/crudkit/internal/platform/ctxutil"
	"github.com/taibuivan/crudkit/internal/platform/dberr"
	"github.com/taibuivan/crudkit/internal/platform/repository"
	"github.com/taibuivan/crudkit/internal/platform/sec"
	"github.com/taibuivan/crudkit/internal/platform/validate"
	"github.com/taibuivan/crudkit/internal/users/identity"
	"github.com/taibuivan/crudkit/pkg/pagination"
	"github.com/taibuivan/crudkit/pkg/pointer"
	"github.com/taibuivan/crudkit/pkg/slug"
)

// # Service Layer

// Service orchestrates the user management use cases.
type Service struct {
	db     *bun.DB
	hasher sec.Hasher
	logger *slog.Logger
}

// NewService constructs a new [Service].
func NewService(db *bun.DB, hasher sec.Hasher, logger *slog.Logger) *Service {
	return &Service{db: db, hasher: hasher, logger: logger}
}

func (service *Service) accounts(db bun.IDB) *repository.AuditedRepository[identity.Account, *identity.Account] {
	return repository.NewAudited[identity.Account](db, service.logger)
}

func (service *Service) profiles(db bun.IDB) *repository.Repository[identity.UserProfile, *identity.UserProfile] {
	return repository.New[identity.UserProfile](db, service.logger)
}

// # Queries

/*
GetUsers returns one page of user accounts ordered by id.

Parameters:
  - context: context.Context
  - filter: ListFilter (page, optional statuses)

Returns:
  - *pagination.Page[UserSummary]: never nil on success
  - error: Database retrieval failures
*/
func (service *Service) GetUsers(context stdctx.Context, filter ListFilter) (*pagination.Page[UserSummary], error) {
	loader := repository.NewLoader[identity.Account]().Include("UserProfile")

	page, err := service.accounts(service.db).PagedList(context, filter.predicate, filter.Page.Page, filter.Page.Limit,
		repository.WithLoader(loader),
		repository.NoTracking(),
	)
	if err != nil {
		return nil, dberr.Classify(fmt.Errorf("get_users_failed: %w", err), resourceUser)
	}

	return pagination.Map(page, toSummary), nil
}

// GetUserDetails returns one page of user accounts with the audit trail of
// each resolved, as [Service.GetUserDetailByID] does for a single account.
func (service *Service) GetUserDetails(context stdctx.Context, filter ListFilter) (*pagination.Page[UserDetail], error) {
	page, err := service.accounts(service.db).PagedList(context, filter.predicate, filter.Page.Page, filter.Page.Limit,
		repository.WithLoader(detailLoader()),
		repository.NoTracking(),
	)
	if err != nil {
		return nil, dberr.Classify(fmt.Errorf("get_user_details_failed: %w", err), resourceUser)
	}

	return pagination.Map(page, toDetail), nil
}

// GetUserByID returns the summary of one user account.
func (service *Service) GetUserByID(context stdctx.Context, id int64) (*UserSummary, error) {
	loader := repository.NewLoader[identity.Account]().Include("UserProfile")

	account, err := service.findUser(context, service.db, id, loader, repository.NoTracking())
	if err != nil {
		return nil, err
	}

	summary := toSummary(account)
	return &summary, nil
}

/*
GetUserDetailByID returns a user account with its audit trail resolved.

The creator, last modifier and owner are loaded explicitly, each with its
user profile, so their usernames can be shown.
*/
func (service *Service) GetUserDetailByID(context stdctx.Context, id int64) (*UserDetail, error) {
	account, err := service.findUser(context, service.db, id, detailLoader(), repository.NoTracking())
	if err != nil {
		return nil, err
	}

	detail := toDetail(account)
	return &detail, nil
}

// detailLoader resolves the creator, last modifier and owner with their profiles.
func detailLoader() *repository.Loader[identity.Account] {
	return repository.NewLoader[identity.Account]().
		Include("UserProfile").
		Explicit("CreatedBy", "UserProfile").
		Explicit("ModifiedBy", "UserProfile").
		Explicit("Owner", "UserProfile")
}

// # Commands

/*
AddUser creates an active user account with its profile in one transaction.

Validation:
  - Username is required, unique after NFKC case folding and has no spaces.
  - Password has at least 8 characters and equals ConfirmPassword.
  - Firstname, Surname and a valid Email are required.

Returns:
  - *UserSummary: the created account
  - error: ValidationError, Conflict (duplicate username) or DatabaseError
*/
func (service *Service) AddUser(context stdctx.Context, input AddUserInput) (*UserSummary, error) {

	// ── 1. Validation ───────────────────────────────────────────────────────
	if err := service.validateNewUser(context, input); err != nil {
		return nil, err
	}

	// ── 2. Credentials ──────────────────────────────────────────────────────
	account := identity.NewAccount(ctxutil.ActorID(context), sec.AccountTypeUser)

	hash, err := service.hasher.Hash(account, input.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("hash_password_failed: %w", err))
	}

	account.UserProfile.Create(input.Username, identity.UserDetails{
		Firstname: input.Firstname,
		Surname:   input.Surname,
		Email:     input.Email,
		ContactNo: input.ContactNo,
		Website:   input.Website,
	})
	account.UserProfile.SetPassword(hash)

	// ── 3. Persistence ──────────────────────────────────────────────────────
	err = repository.RunInTransaction(context, service.db, service.logger, func(context stdctx.Context, tx bun.IDB) error {
		if err := dberr.FromResult(service.accounts(tx).Insert(context, account), resourceUser); err != nil {
			return err
		}

		account.LinkProfile()
		return dberr.FromResult(service.profiles(tx).Insert(context, account.UserProfile), resourceUser)
	})
	if err != nil {
		return nil, dberr.Classify(err, resourceUser)
	}

	service.logger.InfoContext(context, "user_created",
		slog.Int64("account_id", account.ID),
		slog.String("username", account.UserProfile.Username),
	)

	summary := toSummary(account)
	return &summary, nil
}

/*
UpdateUser changes the status and profile fields of a user account.

Both rows are written in one transaction. The account update is guarded by
input.RowVersion: if the account changed since the client read it, the call
fails with ConcurrencyConflict and nothing is written.
*/
func (service *Service) UpdateUser(context stdctx.Context, id int64, input UpdateUserInput) (*UserSummary, error) {

	// ── 1. Validation ───────────────────────────────────────────────────────
	status, err := validateUpdate(input)
	if err != nil {
		return nil, err
	}

	// ── 2. Load ─────────────────────────────────────────────────────────────
	loader := repository.NewLoader[identity.Account]().Include("UserProfile")

	account, err := service.findUser(context, service.db, id, loader)
	if err != nil {
		return nil, err
	}

	// joined profiles are materialized detached
	profile := account.UserProfile
	profile.Attach()

	// ── 3. Apply ────────────────────────────────────────────────────────────
	statusChanged := pointer.Changed(status, account.Status)
	account.RowVersion = input.RowVersion
	if status != nil {
		account.UpdateStatus(*status)
	}
	profile.Update(input.apply(profile))

	// ── 4. Persistence ──────────────────────────────────────────────────────
	err = repository.RunInTransaction(context, service.db, service.logger, func(context stdctx.Context, tx bun.IDB) error {
		if err := dberr.FromResult(service.accounts(tx).Update(context, account), resourceUser); err != nil {
			return err
		}
		return dberr.FromResult(service.profiles(tx).Update(context, profile), resourceUser)
	})
	if err != nil {
		return nil, dberr.Classify(err, resourceUser)
	}

	service.logger.InfoContext(context, "user_updated",
		slog.Int64("account_id", account.ID),
		slog.Bool("status_changed", statusChanged),
	)

	summary := toSummary(account)
	return &summary, nil
}

/*
DeleteUser soft-deletes a user account.

When rowVersion is not empty the delete is guarded by it; otherwise the
version just read is used.
*/
func (service *Service) DeleteUser(context stdctx.Context, id int64, rowVersion string) error {
	account, err := service.findUser(context, service.db, id, nil)
	if err != nil {
		return err
	}

	if rowVersion != "" {
		account.RowVersion = rowVersion
	}

	if err := dberr.FromResult(service.accounts(service.db).SoftDelete(context, account), resourceUser); err != nil {
		return err
	}

	service.logger.InfoContext(context, "user_deleted", slog.Int64("account_id", id))
	return nil
}

// # Helpers

// findUser loads one live user account or fails with ResourceNotFound.
func (service *Service) findUser(context stdctx.Context, db bun.IDB, id int64, loader *repository.Loader[identity.Account], opts ...repository.QueryOption) (*identity.Account, error) {
	predicate := func(query *bun.SelectQuery) *bun.SelectQuery {
		return userAccounts(repository.ByID(id)(query))
	}

	account, err := service.accounts(db).FindBy(context, predicate, append(opts, repository.WithLoader(loader))...)
	if err != nil {
		return nil, dberr.Classify(fmt.Errorf("find_user_failed: %w", err), resourceUser)
	}
	if account == nil || account.UserProfile == nil && loader != nil {
		return nil, apperr.NotFound(resourceUser)
	}

	return account, nil
}

func (service *Service) validateNewUser(context stdctx.Context, input AddUserInput) error {
	username := slug.Fold(input.Username)

	validator := validate.For(resourceUser).
		Required(FieldUsername, username).
		MaxLen(FieldUsername, username, 50).
		Custom(FieldUsername, validate.CodeInvalid, strings.ContainsAny(username, " \t\r\n"), "Username cannot contain spaces").
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8).
		Equal(FieldConfirmPassword, input.ConfirmPassword, input.Password, "Passwords do not match").
		Required(FieldFirstname, input.Firstname).
		MaxLen(FieldFirstname, input.Firstname, 100).
		Required(FieldSurname, input.Surname).
		MaxLen(FieldSurname, input.Surname, 100).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email)

	if validator.HasErrors() {
		return validator.Err()
	}

	taken, err := service.profiles(service.db).Exists(context, func(query *bun.SelectQuery) *bun.SelectQuery {
		return query.Where("?TableAlias.username = ?", username)
	})
	if err != nil {
		return dberr.Classify(fmt.Errorf("check_username_failed: %w", err), resourceUser)
	}

	return validator.
		Custom(FieldUsername, validate.CodeDuplicate, taken, "Username is already in use").
		Err()
}

func validateUpdate(input UpdateUserInput) (*identity.AccountStatus, error) {
	validator := validate.For(resourceUser).Required(FieldRowVersion, input.RowVersion)

	var status *identity.AccountStatus
	if input.Status != nil {
		parsed, ok := identity.ParseAccountStatus(*input.Status)
		validator.Custom(FieldStatus, validate.CodeOneOf, !ok, "Unknown account status")
		status = &parsed
	}

	if input.Firstname != nil {
		validator.Required(FieldFirstname, *input.Firstname).MaxLen(FieldFirstname, *input.Firstname, 100)
	}
	if input.Surname != nil {
		validator.Required(FieldSurname, *input.Surname).MaxLen(FieldSurname, *input.Surname, 100)
	}
	if input.Email != nil {
		validator.Required(FieldEmail, *input.Email).Email(FieldEmail, *input.Email)
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}
	return status, nil
}

func userAccounts(query *bun.SelectQuery) *bun.SelectQuery {
	return query.Where("?TableAlias.account_type = ?", sec.AccountTypeUser)
}
