// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides time-ordered unique identifiers.

It wraps github.com/google/uuid to generate Version 7 values. They are used for
token ids (jti), row-version concurrency tokens and request correlation ids.
*/
package uuid

import "github.com/google/uuid"

// # Generators

// New generates a new UUIDv7 string.
func New() string {
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}

	return id.String()
}

// NewRandom generates a random (v4) UUID string for values that must not leak ordering.
func NewRandom() string {
	return uuid.NewString()
}
