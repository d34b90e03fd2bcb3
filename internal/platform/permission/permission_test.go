// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package permission_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/crudkit/internal/platform/permission"
)

/*
TestDisplayString_RoundTrip checks every subset of the single flags survives
rendering and parsing.
*/
func TestDisplayString_RoundTrip(t *testing.T) {
	flags := []permission.Type{permission.Read, permission.Create, permission.Update, permission.Delete}

	for mask := 0; mask < 1<<len(flags); mask++ {
		var subset []permission.Type
		for i, f := range flags {
			if mask&(1<<i) != 0 {
				subset = append(subset, f)
			}
		}

		perm := permission.Aggregate(subset...)
		text := permission.ToDisplayString(perm, "|")
		assert.Equal(t, perm, permission.ParseFromString(text, "|"), "subset %04b rendered as %q", mask, text)
	}
}

/*
TestToDisplayString covers ordering, the composite flag and custom separators.
*/
func TestToDisplayString(t *testing.T) {
	tests := []struct {
		name string
		perm permission.Type
		sep  string
		want string
	}{
		{"none", permission.None, "|", ""},
		{"read_update", permission.Update | permission.Read, "|", "Read|Update"},
		{"full_decomposes", permission.Full, "|", "Read|Create|Update|Delete"},
		{"custom_separator", permission.Read | permission.Delete, ", ", "Read, Delete"},
		{"default_separator", permission.Create, "", "Create"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, permission.ToDisplayString(tt.perm, tt.sep))
		})
	}
}

/*
TestParseFromString verifies unknown tokens and blank input are tolerated.
*/
func TestParseFromString(t *testing.T) {
	tests := []struct {
		name string
		text string
		want permission.Type
	}{
		{"empty", "", permission.None},
		{"whitespace", "   ", permission.None},
		{"unknown_only", "Execute", permission.None},
		{"unknown_mixed", "Read|Execute|Delete", permission.Read | permission.Delete},
		{"padded_tokens", " Read | Update ", permission.Read | permission.Update},
		{"full", "Full", permission.Full},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, permission.ParseFromString(tt.text, "|"))
		})
	}
}

/*
TestAggregate checks the OR fold laws.
*/
func TestAggregate(t *testing.T) {
	assert.Equal(t, permission.None, permission.Aggregate())

	roleA := permission.Read | permission.Create
	roleB := permission.Update | permission.Delete
	assert.Equal(t, permission.Full, permission.Aggregate(roleA, roleB))
	assert.Equal(t, permission.Aggregate(roleA, roleB), permission.Aggregate(roleB, roleA))
	assert.Equal(t, roleA, permission.Aggregate(roleA, roleA, roleA))
}

/*
TestType_Has verifies that partial permission is not enough.
*/
func TestType_Has(t *testing.T) {
	granted := permission.Read | permission.Update

	assert.True(t, granted.Has(permission.Read))
	assert.True(t, granted.Has(permission.Read|permission.Update))
	assert.False(t, granted.Has(permission.Read|permission.Create))
	assert.False(t, granted.Has(permission.Delete))
	assert.True(t, granted.Has(permission.None))
}

/*
TestMap_ClaimRoundTrip verifies the JSON claim encoding.
*/
func TestMap_ClaimRoundTrip(t *testing.T) {
	perms := permission.Map{
		permission.ResourceUser:    permission.Read,
		permission.ResourceProduct: permission.Full,
	}

	claim, err := perms.MarshalClaim()
	require.NoError(t, err)
	assert.JSONEq(t, `{"User":1,"Product":15}`, claim)

	parsed, err := permission.ParseClaim(claim)
	require.NoError(t, err)
	assert.Equal(t, perms, parsed)
}

/*
TestParseClaim_SkipsUnknownResources drops entries for resources that do not exist.
*/
func TestParseClaim_SkipsUnknownResources(t *testing.T) {
	parsed, err := permission.ParseClaim(`{"User":5,"Spaceship":15}`)
	require.NoError(t, err)
	assert.Equal(t, permission.Map{permission.ResourceUser: permission.Read | permission.Update}, parsed)

	_, err = permission.ParseClaim(`not json`)
	assert.Error(t, err)
}

/*
TestMap_Merge verifies role claims merge idempotently.
*/
func TestMap_Merge(t *testing.T) {
	m := permission.Map{permission.ResourceOrder: permission.Read}
	m.Merge(permission.Map{permission.ResourceOrder: permission.Update, permission.ResourceReport: permission.Read})
	m.Merge(permission.Map{permission.ResourceOrder: permission.Update})

	assert.Equal(t, permission.Read|permission.Update, m[permission.ResourceOrder])
	assert.Equal(t, permission.Read, m[permission.ResourceReport])
	assert.Equal(t, map[string]string{"Order": "Read|Update", "Report": "Read"}, m.DisplayMap())
}
