// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slice holds generic projections the standard [slices] package lacks.
package slice

// Map projects every element. A nil input yields an empty, non-nil slice so
// JSON responses render [] rather than null.
func Map[T, U any](input []T, project func(T) U) []U {
	result := make([]U, 0, len(input))
	for _, item := range input {
		result = append(result, project(item))
	}
	return result
}

// Filter keeps the elements for which keep returns true.
func Filter[T any](input []T, keep func(T) bool) []T {
	result := make([]T, 0, len(input))
	for _, item := range input {
		if keep(item) {
			result = append(result, item)
		}
	}
	return result
}
