// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/taibuivan/crudkit/internal/platform/entity"
	"github.com/taibuivan/crudkit/internal/platform/permission"
	"github.com/taibuivan/crudkit/pkg/slug"
)

// # Role

// Role is a named bundle of claims. Its code is the slug of the name and is unique.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:rl"`

	entity.Base
	entity.Audit

	Name        string `bun:"name,notnull" json:"name"`
	Code        string `bun:"code,notnull,unique" json:"code"`
	Description string `bun:"description" json:"description,omitempty"`

	CreatedBy  *Account `bun:"rel:belongs-to,join:created_by_id=id" json:"-"`
	ModifiedBy *Account `bun:"rel:belongs-to,join:modified_by_id=id" json:"-"`
	Owner      *Account `bun:"rel:belongs-to,join:owner_id=id" json:"-"`

	Claims   []*RoleClaim   `bun:"rel:has-many,join:id=role_id" json:"claims"`
	Accounts []*AccountRole `bun:"rel:has-many,join:id=role_id" json:"-"`
}

// NewRole creates a role with the creation audit applied for currentID.
func NewRole(currentID int64, name, description string) *Role {
	role := &Role{
		Name:        strings.TrimSpace(name),
		Code:        RoleCode(name),
		Description: strings.TrimSpace(description),
	}
	role.StampCreated(currentID, time.Now())
	return role
}

// RoleCode is the normalized, unique code of a role name.
func RoleCode(name string) string {
	return slug.From(name)
}

// AddClaim grants perm on resource. A second claim on the same resource is ORed
// into the first, so a role holds at most one claim per resource.
func (r *Role) AddClaim(resource permission.Resource, perm permission.Type) *RoleClaim {
	for _, claim := range r.Claims {
		if claim.Resource == resource {
			claim.Permission |= perm
			return claim
		}
	}

	claim := &RoleClaim{RoleID: r.ID, Resource: resource, Permission: perm}
	r.Claims = append(r.Claims, claim)
	return claim
}

// LinkClaims copies the role id onto every claim.
func (r *Role) LinkClaims() {
	for _, claim := range r.Claims {
		claim.RoleID = r.ID
	}
}

// Permissions folds the loaded claims into a map.
func (r *Role) Permissions() permission.Map {
	result := permission.Map{}
	for _, claim := range r.Claims {
		if claim != nil {
			result.Grant(claim.Resource, claim.Permission)
		}
	}
	return result
}

// # Role Claim

// RoleClaim grants a permission bitmask on one resource. (role, resource) is unique.
type RoleClaim struct {
	bun.BaseModel `bun:"table:role_claims,alias:rc"`

	entity.Base

	RoleID     int64               `bun:"role_id,notnull,unique:role_resource" json:"roleId"`
	Resource   permission.Resource `bun:"resource,notnull,type:smallint,unique:role_resource" json:"resource"`
	Permission permission.Type     `bun:"permission,notnull,type:smallint" json:"permission"`

	Role *Role `bun:"rel:belongs-to,join:role_id=id" json:"-"`
}
