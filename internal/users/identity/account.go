// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package identity defines the persisted identity model: accounts, their
profiles, roles and the claims roles grant.

# Aggregates

  - [Account] owns exactly one profile, chosen by its [sec.AccountType], and
    its [AccountRole] links. Both are removed with the account by the storage
    cascade.
  - [Role] owns its [RoleClaim] rows, one per resource.

Every audited model carries CreatedBy, ModifiedBy and Owner navigations to the
acting accounts, so detail views can resolve who touched a record.
*/
package identity

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/taibuivan/crudkit/internal/platform/entity"
	"github.com/taibuivan/crudkit/internal/platform/permission"
	"github.com/taibuivan/crudkit/internal/platform/sec"
	"github.com/taibuivan/crudkit/pkg/slice"
)

// # Account

// Account is the identity root shared by users, clients and external users.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`

	entity.Base
	entity.Audit

	AccountType sec.AccountType `bun:"account_type,notnull,type:smallint" json:"accountType"`
	Status      AccountStatus   `bun:"status,notnull,type:smallint" json:"status"`

	CreatedBy  *Account `bun:"rel:belongs-to,join:created_by_id=id" json:"-"`
	ModifiedBy *Account `bun:"rel:belongs-to,join:modified_by_id=id" json:"-"`
	Owner      *Account `bun:"rel:belongs-to,join:owner_id=id" json:"-"`

	UserProfile         *UserProfile         `bun:"rel:has-one,join:id=account_id" json:"userProfile,omitempty"`
	ClientProfile       *ClientProfile       `bun:"rel:has-one,join:id=account_id" json:"clientProfile,omitempty"`
	ExternalUserProfile *ExternalUserProfile `bun:"rel:has-one,join:id=account_id" json:"externalUserProfile,omitempty"`

	Roles []*AccountRole `bun:"rel:has-many,join:id=account_id" json:"-"`
}

/*
NewAccount creates an active account of the given type with the creation audit
applied for currentID.

Exactly one profile is populated, matching accountType. The profile is not yet
linked; call [Account.LinkProfile] once the account has an id.
*/
func NewAccount(currentID int64, accountType sec.AccountType) *Account {
	account := &Account{AccountType: accountType, Status: StatusActive}
	account.StampCreated(currentID, time.Now())

	switch accountType {
	case sec.AccountTypeUser:
		account.UserProfile = &UserProfile{}
	case sec.AccountTypeClient:
		account.ClientProfile = &ClientProfile{}
	case sec.AccountTypeExternalUser:
		account.ExternalUserProfile = &ExternalUserProfile{}
	}

	return account
}

// Profile returns the populated profile, or nil when none is loaded.
func (a *Account) Profile() Profile {
	switch {
	case a.UserProfile != nil:
		return a.UserProfile
	case a.ClientProfile != nil:
		return a.ClientProfile
	case a.ExternalUserProfile != nil:
		return a.ExternalUserProfile
	}
	return nil
}

// LinkProfile copies the account id onto the populated profile.
func (a *Account) LinkProfile() {
	if profile := a.Profile(); profile != nil {
		profile.linkAccount(a.ID)
	}
}

// UpdateStatus changes the status and reports whether it differed.
func (a *Account) UpdateStatus(status AccountStatus) bool {
	if a.Status == status {
		return false
	}
	a.Status = status
	return true
}

// IsActive reports whether the account may authenticate.
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// DisplayName is the username, client name or provider email of the account.
func (a *Account) DisplayName() string {
	if profile := a.Profile(); profile != nil {
		return profile.DisplayName()
	}
	return ""
}

/*
Permissions folds the claims of every loaded role with a bitwise OR.

Roles and their claims must be loaded first (Roles -> Role -> Claims).
Unloaded links and soft-deleted roles contribute nothing.
*/
func (a *Account) Permissions() permission.Map {
	result := permission.Map{}
	for _, role := range a.activeRoles() {
		result.Merge(role.Permissions())
	}
	return result
}

// RoleNames lists the names of the loaded roles that are still active.
func (a *Account) RoleNames() []string {
	return slice.Map(a.activeRoles(), func(role *Role) string { return role.Name })
}

func (a *Account) activeRoles() []*Role {
	links := slice.Filter(a.Roles, func(link *AccountRole) bool {
		return link != nil && link.Role != nil && !link.Role.IsDeleted
	})
	return slice.Map(links, func(link *AccountRole) *Role { return link.Role })
}

// # Account Role

// AccountRole links an account to a role. The pair is unique.
type AccountRole struct {
	bun.BaseModel `bun:"table:account_roles,alias:ar"`

	entity.Base

	AccountID int64 `bun:"account_id,notnull,unique:account_role" json:"accountId"`
	RoleID    int64 `bun:"role_id,notnull,unique:account_role" json:"roleId"`

	Account *Account `bun:"rel:belongs-to,join:account_id=id" json:"-"`
	Role    *Role    `bun:"rel:belongs-to,join:role_id=id" json:"role,omitempty"`
}

// NewAccountRole links accountID to roleID.
func NewAccountRole(accountID, roleID int64) *AccountRole {
	return &AccountRole{AccountID: accountID, RoleID: roleID}
}
