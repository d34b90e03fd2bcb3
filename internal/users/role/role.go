// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role

import (
	"github.com/taibuivan/crudkit/internal/platform/permission"
	"github.com/taibuivan/crudkit/internal/users/identity"
)

// resourceRole names roles in error messages and validation details.
const resourceRole = "Role"

// # Field Identifiers

const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldClaims      = "claims"
)

// # Models

// ClaimInput grants Permission ("Read|Update", "Full") on Resource ("Product").
type ClaimInput struct {
	Resource   string `json:"resource"`
	Permission string `json:"permission"`
}

// CreateRoleInput is the payload of a new role.
type CreateRoleInput struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Claims      []ClaimInput `json:"claims"`
}

// RoleSummary is the list view of a role with its claims in display form.
type RoleSummary struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Code        string            `json:"code"`
	Description string            `json:"description,omitempty"`
	Permissions map[string]string `json:"permissions"`
	RowVersion  string            `json:"rowVersion"`
}

func toSummary(role *identity.Role) RoleSummary {
	return RoleSummary{
		ID:          role.ID,
		Name:        role.Name,
		Code:        role.Code,
		Description: role.Description,
		Permissions: role.Permissions().DisplayMap(),
		RowVersion:  role.RowVersion,
	}
}

// parseClaims resolves the claim inputs into a map. Duplicate resources are
// ORed together. The second return lists the inputs that could not be parsed.
func parseClaims(claims []ClaimInput) (permission.Map, []string) {
	result := permission.Map{}
	var invalid []string

	for _, claim := range claims {
		resource, ok := permission.ParseResource(claim.Resource)
		perm := permission.ParseFromString(claim.Permission, permission.DefaultSeparator)
		if !ok || perm == permission.None {
			invalid = append(invalid, claim.Resource+":"+claim.Permission)
			continue
		}
		result.Grant(resource, perm)
	}

	return result, invalid
}
