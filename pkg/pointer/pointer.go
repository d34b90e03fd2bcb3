// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pointer holds helpers for the optional fields of partial-update
// payloads, where nil means "leave unchanged".
package pointer

// To returns a pointer to a copy of value.
func To[T any](value T) *T {
	return &value
}

// Fallback returns *optional, or current when optional is nil.
func Fallback[T any](optional *T, current T) T {
	if optional == nil {
		return current
	}
	return *optional
}

// Changed reports whether optional is set and differs from current.
func Changed[T comparable](optional *T, current T) bool {
	return optional != nil && *optional != current
}
