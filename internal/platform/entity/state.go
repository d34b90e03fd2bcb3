// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package entity provides the building blocks shared by every persisted model.

Building blocks:

  - [Base]: primary key plus the in-memory tracking state.
  - [Audit]: creation, modification, ownership and soft-delete metadata plus the
    optimistic concurrency token.
  - [State]: the lifecycle state machine driven by the repository.

Models embed these structs instead of inheriting from a base class, and expose
their capabilities through the small interfaces declared in this package.
*/
package entity

import (
	"errors"
	"fmt"
)

// # Tracking States

// State is the lifecycle position of an entity within a unit of work.
type State uint8

const (
	StateNew State = iota
	StateUnchanged
	StateAdded
	StateModified
	StateSoftDeleted
	StateHardDeleted
)

// ErrInvalidTransition is returned when a state change is not in the transition table.
var ErrInvalidTransition = errors.New("entity: invalid state transition")

func (s State) String() string {
	switch s {
	case StateNew:
		return "New"
	case StateUnchanged:
		return "Unchanged"
	case StateAdded:
		return "Added"
	case StateModified:
		return "Modified"
	case StateSoftDeleted:
		return "SoftDeleted"
	case StateHardDeleted:
		return "HardDeleted"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// IsTerminal reports whether no transition can leave s.
func (s State) IsTerminal() bool {
	return s == StateSoftDeleted || s == StateHardDeleted
}

// transitions is the full table of legal moves. Anything absent is rejected.
var transitions = map[State][]State{
	StateNew:       {StateAdded, StateHardDeleted},
	StateAdded:     {StateUnchanged, StateModified, StateHardDeleted},
	StateUnchanged: {StateUnchanged, StateModified, StateSoftDeleted, StateHardDeleted},
	StateModified:  {StateUnchanged, StateModified, StateSoftDeleted, StateHardDeleted},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to State) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
