// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package role manages roles: creating them with their claims, listing them and
assigning them to accounts.

An assignment changes the effective permissions of the account, so the cached
permission map of that account is dropped after every assignment.
*/
package role

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/uptrace/bun"

	"github.com/taibuivan/crudkit/internal/platform/apperr"
	"github.com/taibuivan/crudkit/internal/platform/ctxutil"
	"github.com/taibuivan/crudkit/internal/platform/dberr"
	"github.com/taibuivan/crudkit/internal/platform/permission"
	"github.com/taibuivan/crudkit/internal/platform/repository"
	"github.com/taibuivan/crudkit/internal/platform/validate"
	"github.com/taibuivan/crudkit/internal/users/identity"
	"github.com/taibuivan/crudkit/pkg/slice"
)

// PermissionInvalidator drops the cached permission map of an account.
type PermissionInvalidator interface {
	InvalidatePermissions(context stdctx.Context, accountID int64) error
}

// # Service Layer

// Service orchestrates the role management use cases.
type Service struct {
	db          *bun.DB
	invalidator PermissionInvalidator
	logger      *slog.Logger
}

// NewService constructs a new [Service]. invalidator may be nil when no
// permission cache is configured.
func NewService(db *bun.DB, invalidator PermissionInvalidator, logger *slog.Logger) *Service {
	return &Service{db: db, invalidator: invalidator, logger: logger}
}

func (service *Service) roles(db bun.IDB) *repository.AuditedRepository[identity.Role, *identity.Role] {
	return repository.NewAudited[identity.Role](db, service.logger)
}

// ListRoles returns every live role with its claims, ordered by id.
func (service *Service) ListRoles(context stdctx.Context) ([]RoleSummary, error) {
	loader := repository.NewLoader[identity.Role]().Include("Claims")

	roles, err := service.roles(service.db).ListBy(context, func(query *bun.SelectQuery) *bun.SelectQuery {
		return query.Order("?TableAlias.id ASC")
	}, repository.WithLoader(loader), repository.NoTracking())
	if err != nil {
		return nil, dberr.Classify(fmt.Errorf("list_roles_failed: %w", err), resourceRole)
	}

	return slice.Map(roles, toSummary), nil
}

/*
CreateRole creates a role and its claims in one transaction.

Validation:
  - Name is required and its code must not be taken, deleted roles included.
  - Every claim names a known resource and at least one known flag. Claims on
    the same resource are ORed into one.
*/
func (service *Service) CreateRole(context stdctx.Context, input CreateRoleInput) (*RoleSummary, error) {

	// ── 1. Validation ───────────────────────────────────────────────────────
	claims, err := service.validateNewRole(context, input)
	if err != nil {
		return nil, err
	}

	// ── 2. Build ────────────────────────────────────────────────────────────
	role := identity.NewRole(ctxutil.ActorID(context), input.Name, input.Description)
	for _, resource := range claims.SortedResources() {
		role.AddClaim(resource, claims[resource])
	}

	// ── 3. Persistence ──────────────────────────────────────────────────────
	err = repository.RunInTransaction(context, service.db, service.logger, func(context stdctx.Context, tx bun.IDB) error {
		if err := dberr.FromResult(service.roles(tx).Insert(context, role), resourceRole); err != nil {
			return err
		}

		role.LinkClaims()
		claimRepository := repository.New[identity.RoleClaim](tx, service.logger)
		for _, claim := range role.Claims {
			if err := dberr.FromResult(claimRepository.Insert(context, claim), resourceRole); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, dberr.Classify(err, resourceRole)
	}

	service.logger.InfoContext(context, "role_created",
		slog.Int64("role_id", role.ID),
		slog.String("code", role.Code),
	)

	summary := toSummary(role)
	return &summary, nil
}

/*
AssignRole links an account to a role.

Returns:
  - error: ResourceNotFound for a missing role or account, Conflict when the
    account already holds the role
*/
func (service *Service) AssignRole(context stdctx.Context, roleID, accountID int64) error {

	// ── 1. Both ends must exist ─────────────────────────────────────────────
	role, err := service.roles(service.db).FindBy(context, repository.ByID(roleID), repository.NoTracking())
	if err != nil {
		return dberr.Classify(fmt.Errorf("find_role_failed: %w", err), resourceRole)
	}
	if role == nil {
		return apperr.NotFound(resourceRole)
	}

	accounts := repository.NewAudited[identity.Account](service.db, service.logger)
	found, err := accounts.Exists(context, repository.ByID(accountID))
	if err != nil {
		return dberr.Classify(fmt.Errorf("find_account_failed: %w", err), "Account")
	}
	if !found {
		return apperr.NotFound("Account")
	}

	// ── 2. Link ─────────────────────────────────────────────────────────────
	links := repository.New[identity.AccountRole](service.db, service.logger)
	assigned, err := links.Exists(context, func(query *bun.SelectQuery) *bun.SelectQuery {
		return query.
			Where("?TableAlias.account_id = ?", accountID).
			Where("?TableAlias.role_id = ?", roleID)
	})
	if err != nil {
		return dberr.Classify(fmt.Errorf("check_assignment_failed: %w", err), resourceRole)
	}
	if assigned {
		return apperr.Conflict("The account already holds role " + role.Name)
	}

	if err := dberr.FromResult(links.Insert(context, identity.NewAccountRole(accountID, roleID)), resourceRole); err != nil {
		return err
	}

	// ── 3. Cache ────────────────────────────────────────────────────────────
	if service.invalidator != nil {
		if err := service.invalidator.InvalidatePermissions(context, accountID); err != nil {
			service.logger.WarnContext(context, "permission_cache_invalidate_failed",
				slog.Int64("account_id", accountID),
				slog.Any("error", err),
			)
		}
	}

	service.logger.InfoContext(context, "role_assigned",
		slog.Int64("role_id", roleID),
		slog.Int64("account_id", accountID),
	)
	return nil
}

func (service *Service) validateNewRole(context stdctx.Context, input CreateRoleInput) (permission.Map, error) {
	name := strings.TrimSpace(input.Name)
	claims, invalid := parseClaims(input.Claims)

	validator := validate.For(resourceRole).
		Required(FieldName, name).
		MaxLen(FieldName, name, 100).
		Custom(FieldName, validate.CodeInvalid, name != "" && identity.RoleCode(name) == "", "The name needs at least one letter or digit").
		MaxLen(FieldDescription, input.Description, 500).
		Custom(FieldClaims, validate.CodeInvalid, len(invalid) > 0, "Unknown claims: "+strings.Join(invalid, ", "))

	if validator.HasErrors() {
		return nil, validator.Err()
	}

	taken, err := service.roles(service.db).Bypass().Exists(context, func(query *bun.SelectQuery) *bun.SelectQuery {
		return query.Where("?TableAlias.code = ?", identity.RoleCode(name))
	})
	if err != nil {
		return nil, dberr.Classify(fmt.Errorf("check_role_code_failed: %w", err), resourceRole)
	}

	err = validator.
		Custom(FieldName, validate.CodeDuplicate, taken, "A role with this name already exists").
		Err()
	return claims, err
}
