// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth issues access tokens to users and machine clients.

Architecture:

  - Service: Orchestrates login (credential check, status check, permission
    aggregation, token issuance).
  - AccountStore: Resolves accounts and their role graph through the audited
    repository.
  - PermissionCache: Optional Redis cache of aggregated permission maps,
    invalidated whenever the roles of an account change.

Tokens carry the effective permission map, so authorization on later requests
needs no database access.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/crudkit/internal/platform/apperr"
	"github.com/taibuivan/crudkit/internal/platform/ctxutil"
	"github.com/taibuivan/crudkit/internal/platform/metrics"
	"github.com/taibuivan/crudkit/internal/platform/permission"
	"github.com/taibuivan/crudkit/internal/platform/sec"
	"github.com/taibuivan/crudkit/internal/users/identity"
)

// # Contracts & Types

// TokenIssuer signs access tokens. Implemented by [sec.TokenService].
type TokenIssuer interface {
	GenerateToken(identity sec.Identity) (string, error)
}

// LoginResult is the response of every successful login.
type LoginResult struct {
	Success      bool              `json:"success"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
	Permissions  map[string]string `json:"permissions"`
}

// Service implements the login use cases.
type Service struct {
	store  AccountStore
	cache  PermissionCache
	hasher sec.Hasher
	tokens TokenIssuer
	logger *slog.Logger
}

// NewService constructs a [Service]. cache may be nil, which disables caching.
func NewService(store AccountStore, cache PermissionCache, hasher sec.Hasher, tokens TokenIssuer, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// # Login Flows

/*
LoginUser authenticates a user by username and password.

Flow:
 1. Resolve the user account (username compared folded).
 2. Reject non-active accounts with the status message.
 3. Verify the password.
 4. Resolve the effective permissions and issue the token.

Returns:
  - *LoginResult: the signed token and the display form of the permissions
  - error: apperr.AuthenticationFailed on any rejection
*/
func (service *Service) LoginUser(context context.Context, username, password string) (*LoginResult, error) {

	// ── 1. Lookup ───────────────────────────────────────────────────────────
	account, err := service.store.FindUserByUsername(context, username)
	if err != nil {
		return nil, service.loginError(kindUser, err)
	}
	if account == nil {
		return nil, service.reject(kindUser, apperr.AuthenticationFailed(""))
	}

	// ── 2. Status ───────────────────────────────────────────────────────────
	if !account.IsActive() {
		return nil, service.reject(kindUser, apperr.AuthenticationFailed(account.Status.Message()))
	}

	// ── 3. Credentials ──────────────────────────────────────────────────────
	if !service.hasher.Verify(account, account.UserProfile.PasswordHash, password) {
		return nil, service.reject(kindUser, apperr.AuthenticationFailed(""))
	}

	// ── 4. Token ────────────────────────────────────────────────────────────
	permissions, err := service.ResolvePermissions(context, account)
	if err != nil {
		return nil, service.loginError(kindUser, err)
	}

	return service.issue(context, kindUser, sec.Identity{
		AccountType: sec.AccountTypeUser,
		AccountID:   account.ID,
		Username:    account.UserProfile.Username,
		Email:       account.UserProfile.Email,
		Permissions: permissions,
	})
}

/*
LoginClient authenticates a machine client by its client key.

Returns:
  - error: apperr.AuthenticationFailed("Invalid Client Key") for an unknown key
*/
func (service *Service) LoginClient(context context.Context, clientKey string) (*LoginResult, error) {
	account, err := service.store.FindClientByKey(context, clientKey)
	if err != nil {
		return nil, service.loginError(kindClient, err)
	}
	if account == nil {
		return nil, service.reject(kindClient, apperr.AuthenticationFailed(MessageInvalidClientKey))
	}

	if !account.IsActive() {
		return nil, service.reject(kindClient, apperr.AuthenticationFailed(account.Status.Message()))
	}

	permissions, err := service.ResolvePermissions(context, account)
	if err != nil {
		return nil, service.loginError(kindClient, err)
	}

	return service.issue(context, kindClient, sec.Identity{
		AccountType: sec.AccountTypeClient,
		AccountID:   account.ID,
		ClientType:  account.ClientProfile.ClientType,
		ClientName:  account.ClientProfile.ClientName,
		Permissions: permissions,
	})
}

// LoginExternal is reserved for federated login and is not available.
func (service *Service) LoginExternal(_ context.Context) (*LoginResult, error) {
	metrics.LoginAttempts.WithLabelValues(kindExternal, outcomeRejected).Inc()
	return nil, apperr.ServiceUnavailable(MessageExternalUnsupported)
}

// # Permissions

/*
ResolvePermissions returns the effective permission map of account.

The cache is consulted first. On a miss the role graph is loaded and folded,
then written back. Cache failures are logged and never fail the call.
*/
func (service *Service) ResolvePermissions(context context.Context, account *identity.Account) (permission.Map, error) {
	logger := service.log(context)

	if service.cache != nil {
		cached, found, err := service.cache.Get(context, account.ID)
		switch {
		case err != nil:
			metrics.PermissionCacheLookups.WithLabelValues(outcomeError).Inc()
			logger.WarnContext(context, "permission_cache_read_failed", slog.Int64("account_id", account.ID), slog.Any("error", err))
		case found:
			metrics.PermissionCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.PermissionCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	if err := service.store.LoadRoles(context, account); err != nil {
		return nil, err
	}
	permissions := account.Permissions()
	logger.DebugContext(context, "permissions_resolved",
		slog.Int64("account_id", account.ID),
		slog.Any("roles", account.RoleNames()),
		slog.Int("resources", len(permissions)),
	)

	if service.cache != nil {
		if err := service.cache.Set(context, account.ID, permissions); err != nil {
			logger.WarnContext(context, "permission_cache_write_failed", slog.Int64("account_id", account.ID), slog.Any("error", err))
		}
	}

	return permissions, nil
}

// InvalidatePermissions drops the cached map of accountID.
func (service *Service) InvalidatePermissions(context context.Context, accountID int64) error {
	if service.cache == nil {
		return nil
	}
	if err := service.cache.Invalidate(context, accountID); err != nil {
		return fmt.Errorf("invalidate_permissions_failed: %w", err)
	}
	return nil
}

// # Helpers

func (service *Service) issue(context context.Context, kind string, principal sec.Identity) (*LoginResult, error) {
	token, err := service.tokens.GenerateToken(principal)
	if err != nil {
		return nil, service.loginError(kind, fmt.Errorf("issue_token_failed: %w", err))
	}

	metrics.LoginAttempts.WithLabelValues(kind, outcomeSuccess).Inc()
	service.log(context).InfoContext(context, "login_succeeded",
		slog.String("kind", kind),
		slog.Int64("account_id", principal.AccountID),
	)

	return &LoginResult{
		Success:      true,
		AccessToken:  token,
		RefreshToken: "",
		Permissions:  principal.Permissions.DisplayMap(),
	}, nil
}

func (service *Service) reject(kind string, err *apperr.AppError) error {
	metrics.LoginAttempts.WithLabelValues(kind, outcomeRejected).Inc()
	return err
}

func (service *Service) loginError(kind string, err error) error {
	metrics.LoginAttempts.WithLabelValues(kind, outcomeError).Inc()
	if apperr.IsAppError(err) {
		return err
	}
	return apperr.Internal(fmt.Errorf("login_failed: %w", err))
}

func (service *Service) log(context context.Context) *slog.Logger {
	if service.logger != nil {
		return service.logger
	}
	return ctxutil.GetLogger(context)
}
