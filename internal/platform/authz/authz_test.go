// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/crudkit/internal/platform/authz"
	"github.com/taibuivan/crudkit/internal/platform/permission"
	"github.com/taibuivan/crudkit/internal/platform/sec"
)

/*
TestAuthorize walks each branch of the decision function.
*/
func TestAuthorize(t *testing.T) {
	reader := &sec.Identity{
		AccountID:          1,
		HasPermissionClaim: true,
		Permissions:        permission.Map{permission.ResourceUser: permission.Read | permission.Update},
	}

	noClaim := &sec.Identity{AccountID: 2, Permissions: permission.Map{}}

	tests := []struct {
		name     string
		identity *sec.Identity
		resource permission.Resource
		required permission.Type
		want     authz.Decision
	}{
		{"read_allowed", reader, permission.ResourceUser, permission.Read, authz.Allow},
		{"both_granted_bits", reader, permission.ResourceUser, permission.Read | permission.Update, authz.Allow},
		{"delete_forbidden", reader, permission.ResourceUser, permission.Delete, authz.Forbidden},
		{"partial_match_forbidden", reader, permission.ResourceUser, permission.Read | permission.Create, authz.Forbidden},
		{"resource_absent", reader, permission.ResourceOrder, permission.Read, authz.Forbidden},
		{"no_permission_claim", noClaim, permission.ResourceUser, permission.Read, authz.Forbidden},
		{"anonymous", nil, permission.ResourceUser, permission.Read, authz.Unauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, authz.Authorize(tt.identity, tt.resource, tt.required))
		})
	}
}

/*
TestRequirement_Check verifies the declarative form delegates to Authorize.
*/
func TestRequirement_Check(t *testing.T) {
	requirement := authz.Requirement{Resource: permission.ResourceProduct, Required: permission.Read | permission.Update}
	admin := &sec.Identity{
		HasPermissionClaim: true,
		Permissions:        permission.Map{permission.ResourceProduct: permission.Full},
	}

	assert.Equal(t, authz.Allow, requirement.Check(admin))
	assert.Equal(t, authz.Unauthorized, requirement.Check(nil))
	assert.Equal(t, "forbidden", authz.Forbidden.String())
}
