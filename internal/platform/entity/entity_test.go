// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/crudkit/internal/platform/entity"
)

/*
TestTransition_Table walks the complete lifecycle table.
*/
func TestTransition_Table(t *testing.T) {
	tests := []struct {
		name    string
		from    entity.State
		to      entity.State
		allowed bool
	}{
		{"new_to_added", entity.StateNew, entity.StateAdded, true},
		{"new_to_modified", entity.StateNew, entity.StateModified, false},
		{"new_to_soft_deleted", entity.StateNew, entity.StateSoftDeleted, false},
		{"new_to_hard_deleted", entity.StateNew, entity.StateHardDeleted, true},
		{"added_to_added", entity.StateAdded, entity.StateAdded, false},
		{"added_to_unchanged", entity.StateAdded, entity.StateUnchanged, true},
		{"added_to_modified", entity.StateAdded, entity.StateModified, true},
		{"added_to_soft_deleted", entity.StateAdded, entity.StateSoftDeleted, false},
		{"unchanged_to_modified", entity.StateUnchanged, entity.StateModified, true},
		{"unchanged_to_soft_deleted", entity.StateUnchanged, entity.StateSoftDeleted, true},
		{"modified_to_unchanged", entity.StateModified, entity.StateUnchanged, true},
		{"modified_to_modified", entity.StateModified, entity.StateModified, true},
		{"modified_to_hard_deleted", entity.StateModified, entity.StateHardDeleted, true},
		{"soft_deleted_to_unchanged", entity.StateSoftDeleted, entity.StateUnchanged, false},
		{"soft_deleted_to_hard_deleted", entity.StateSoftDeleted, entity.StateHardDeleted, false},
		{"hard_deleted_to_added", entity.StateHardDeleted, entity.StateAdded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, entity.CanTransition(tt.from, tt.to))
		})
	}
}

/*
TestBase_RejectedTransitionKeepsState verifies rejections are observable and harmless.
*/
func TestBase_RejectedTransitionKeepsState(t *testing.T) {
	var b entity.Base

	// 1. New -> Modified skips Added
	err := b.Transition(entity.StateModified)
	require.ErrorIs(t, err, entity.ErrInvalidTransition)
	assert.Equal(t, entity.StateNew, b.State())

	// 2. Added -> Added is not a self-loop
	require.NoError(t, b.Transition(entity.StateAdded))
	assert.ErrorIs(t, b.Transition(entity.StateAdded), entity.ErrInvalidTransition)
	assert.Equal(t, entity.StateAdded, b.State())

	// 3. SoftDeleted is terminal
	require.NoError(t, b.Transition(entity.StateUnchanged))
	require.NoError(t, b.Transition(entity.StateSoftDeleted))
	for _, target := range []entity.State{entity.StateUnchanged, entity.StateModified, entity.StateHardDeleted, entity.StateAdded} {
		assert.ErrorIs(t, b.Transition(target), entity.ErrInvalidTransition)
	}
	assert.Equal(t, entity.StateSoftDeleted, b.State())
	assert.True(t, b.State().IsTerminal())
}

/*
TestBase_AttachAndRestore covers the non-transition helpers used by repositories.
*/
func TestBase_AttachAndRestore(t *testing.T) {
	var b entity.Base
	b.Attach()
	assert.Equal(t, entity.StateUnchanged, b.State())

	require.NoError(t, b.Transition(entity.StateModified))
	b.Restore(entity.StateUnchanged)
	assert.Equal(t, entity.StateUnchanged, b.State())
}

/*
TestAudit_Stamps verifies creation, modification and soft-delete metadata.
*/
func TestAudit_Stamps(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	var a entity.Audit

	assert.False(t, a.IsStamped())
	a.StampCreated(7, now)
	assert.True(t, a.IsStamped())
	assert.Equal(t, int64(7), a.CreatedByID)
	assert.Equal(t, int64(7), a.OwnerID)
	assert.Nil(t, a.ModifiedDate)
	assert.Nil(t, a.ModifiedByID)

	// Owner is never reassigned by later stamps
	a.OwnerID = 3
	a.MarkDeleted(9, now.Add(time.Hour))
	assert.True(t, a.IsDeleted)
	require.NotNil(t, a.ModifiedByID)
	assert.Equal(t, int64(9), *a.ModifiedByID)
	assert.Equal(t, int64(3), a.OwnerID)
}

/*
TestAudit_Regenerate verifies each write receives a fresh token.
*/
func TestAudit_Regenerate(t *testing.T) {
	var a entity.Audit
	first := a.Regenerate()
	assert.Empty(t, first)

	issued := a.RowVersion
	previous := a.Regenerate()
	assert.Equal(t, issued, previous)
	assert.NotEqual(t, issued, a.RowVersion)
}
