// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package authz decides whether a principal may perform an operation on a resource.

The decision is a pure function of (identity, resource, required flags), so it
can be evaluated and tested without any transport. The HTTP adapter lives in
middleware.RequirePermission.
*/
package authz

import (
	"github.com/taibuivan/crudkit/internal/platform/permission"
	"github.com/taibuivan/crudkit/internal/platform/sec"
)

// Decision is the outcome of an authorization check.
type Decision uint8

const (
	Allow Decision = iota
	Unauthorized
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthorized:
		return "unauthorized"
	default:
		return "forbidden"
	}
}

// Requirement is the permission an operation declares on one resource.
type Requirement struct {
	Resource permission.Resource
	Required permission.Type
}

/*
Authorize checks identity against the required flags on resource.

# Flow
 1. No identity: [Unauthorized].
 2. Identity without a permission claim: [Forbidden].
 3. Missing entry or any required bit absent: [Forbidden].
 4. Otherwise [Allow].
*/
func Authorize(identity *sec.Identity, resource permission.Resource, required permission.Type) Decision {
	if identity == nil {
		return Unauthorized
	}

	if !identity.HasPermissionClaim {
		return Forbidden
	}

	granted, ok := identity.Permissions[resource]
	if !ok || !granted.Has(required) {
		return Forbidden
	}

	return Allow
}

// Check evaluates a [Requirement].
func (r Requirement) Check(identity *sec.Identity) Decision {
	return Authorize(identity, r.Resource, r.Required)
}
