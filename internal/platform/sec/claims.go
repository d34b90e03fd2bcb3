// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"github.com/taibuivan/crudkit/internal/platform/permission"
)

// # Claim Namespaces

// Claim URIs are namespaced per principal kind so that services consuming the
// token can tell user and client identities apart without extra lookups.
const (
	UserClaimNamespace   = "http://schemas.example.com/identity/user/claims/"
	ClientClaimNamespace = "http://schemas.example.com/identity/client/claims/"

	UserClaimAccountType = UserClaimNamespace + "type"
	UserClaimUserID      = UserClaimNamespace + "uid"
	UserClaimUsername    = UserClaimNamespace + "username"
	UserClaimEmail       = UserClaimNamespace + "email"
	UserClaimRoles       = UserClaimNamespace + "roles"
	UserClaimPermissions = UserClaimNamespace + "permissions"

	ClientClaimAccountType = ClientClaimNamespace + "type"
	ClientClaimClientType  = ClientClaimNamespace + "clienttype"
	ClientClaimClientID    = ClientClaimNamespace + "cid"
	ClientClaimName        = ClientClaimNamespace + "name"
	ClientClaimRoles       = ClientClaimNamespace + "roles"
	ClientClaimPermissions = ClientClaimNamespace + "permissions"
)

// # Authenticated Principal

// Identity is the authenticated principal carried by an access token.
type Identity struct {
	// TokenID is the unique token id (jti).
	TokenID string `json:"tokenId,omitempty"`

	AccountType AccountType `json:"accountType"`
	AccountID   int64       `json:"accountId"`

	// User principals
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`

	// Client principals
	ClientType ClientType `json:"clientType,omitempty"`
	ClientName string     `json:"clientName,omitempty"`

	// Permissions is the effective resource -> bitmask map. Never nil once decoded.
	Permissions permission.Map `json:"permissions"`

	// HasPermissionClaim is false when the token carried no permission claim at all.
	// Such a principal is authenticated but fails every resource check.
	HasPermissionClaim bool `json:"-"`
}

// IsClient reports whether the identity uses the client claim namespace.
func (i *Identity) IsClient() bool {
	return i.AccountType == AccountTypeClient
}

// Granted returns the permission flags held on resource (None when absent).
func (i *Identity) Granted(resource permission.Resource) permission.Type {
	if i == nil || i.Permissions == nil {
		return permission.None
	}
	return i.Permissions[resource]
}

// rawClaims mirrors both claim namespaces. Fields stay untyped so that a value
// of the wrong shape degrades to a default instead of failing the whole token.
type rawClaims struct {
	TokenID any `mapstructure:"jti"`

	UserAccountType any `mapstructure:"http://schemas.example.com/identity/user/claims/type"`
	UserID          any `mapstructure:"http://schemas.example.com/identity/user/claims/uid"`
	Username        any `mapstructure:"http://schemas.example.com/identity/user/claims/username"`
	Email           any `mapstructure:"http://schemas.example.com/identity/user/claims/email"`
	UserPermissions any `mapstructure:"http://schemas.example.com/identity/user/claims/permissions"`

	ClientAccountType any `mapstructure:"http://schemas.example.com/identity/client/claims/type"`
	ClientType        any `mapstructure:"http://schemas.example.com/identity/client/claims/clienttype"`
	ClientID          any `mapstructure:"http://schemas.example.com/identity/client/claims/cid"`
	ClientName        any `mapstructure:"http://schemas.example.com/identity/client/claims/name"`
	ClientPermissions any `mapstructure:"http://schemas.example.com/identity/client/claims/permissions"`
}
