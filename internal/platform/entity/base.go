// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package entity

import (
	"fmt"
	"time"

	"github.com/taibuivan/crudkit/pkg/uuid"
)

// # Capabilities

// Identifiable is implemented by every model with a numeric primary key.
type Identifiable interface {
	GetID() int64
}

// Tracked is implemented by models that carry a lifecycle [State].
type Tracked interface {
	Identifiable
	State() State
	Transition(to State) error
	Attach()
	Restore(previous State)
}

// HasAuditMetadata is implemented by models that embed [Audit].
type HasAuditMetadata interface {
	AuditMetadata() *Audit
}

// Audited is the capability set required by the audited repository.
type Audited interface {
	Tracked
	HasAuditMetadata
}

// # Base Record

// Base holds the primary key and the tracking state. The state is never persisted.
type Base struct {
	ID    int64 `bun:"id,pk,autoincrement" json:"id"`
	state State
}

// GetID returns the primary key.
func (b *Base) GetID() int64 { return b.ID }

// State returns the current lifecycle state.
func (b *Base) State() State { return b.state }

/*
Transition moves the entity to the target state.

Returns:
  - nil when the move is in the transition table
  - [ErrInvalidTransition] otherwise, with the state left untouched
*/
func (b *Base) Transition(to State) error {
	if !CanTransition(b.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.state, to)
	}
	b.state = to
	return nil
}

// Attach marks a record materialized from storage as Unchanged.
// It bypasses the transition table because loading is not a lifecycle event.
func (b *Base) Attach() { b.state = StateUnchanged }

// Restore rolls the state back after a failed write.
func (b *Base) Restore(previous State) { b.state = previous }

// # Audit Metadata

// Audit is the audit trail and concurrency token embedded in audited models.
type Audit struct {
	CreatedDate  time.Time  `bun:"created_date,notnull" json:"createdDate"`
	CreatedByID  int64      `bun:"created_by_id,notnull" json:"createdById"`
	ModifiedDate *time.Time `bun:"modified_date" json:"modifiedDate,omitempty"`
	ModifiedByID *int64     `bun:"modified_by_id" json:"modifiedById,omitempty"`
	OwnerID      int64      `bun:"owner_id,notnull" json:"ownerId"`
	IsDeleted    bool       `bun:"is_deleted,notnull,default:false" json:"-"`
	RowVersion   string     `bun:"row_version,notnull" json:"rowVersion"`
}

// AuditMetadata exposes the embedded audit block.
func (a *Audit) AuditMetadata() *Audit { return a }

// IsStamped reports whether the creation audit has been applied.
func (a *Audit) IsStamped() bool { return !a.CreatedDate.IsZero() }

// StampCreated records the creator. The owner defaults to the creator.
func (a *Audit) StampCreated(actorID int64, now time.Time) {
	a.CreatedDate = now.UTC()
	a.CreatedByID = actorID
	if a.OwnerID == 0 {
		a.OwnerID = actorID
	}
}

// StampModified records the last modifier.
func (a *Audit) StampModified(actorID int64, now time.Time) {
	modified := now.UTC()
	a.ModifiedDate = &modified
	a.ModifiedByID = &actorID
}

// MarkDeleted flags the record as soft-deleted and applies the update audit.
func (a *Audit) MarkDeleted(actorID int64, now time.Time) {
	a.IsDeleted = true
	a.StampModified(actorID, now)
}

// Regenerate issues a fresh concurrency token and returns the previous one.
func (a *Audit) Regenerate() string {
	previous := a.RowVersion
	a.RowVersion = uuid.New()
	return previous
}
