// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package query parses list-style URL query parameters.
package query

import "strings"

// StringSlice splits a comma-separated value into trimmed, non-empty entries.
//
//	StringSlice("Active, Locked,,") // ["Active", "Locked"]
func StringSlice(raw string) []string {
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if value := strings.TrimSpace(part); value != "" {
			values = append(values, value)
		}
	}
	return values
}

/*
Enums parses a comma-separated list of enum names with parse.

Unknown names are returned in rejected, in input order, so the caller can
report every bad entry at once.
*/
func Enums[T any](raw string, parse func(string) (T, bool)) (accepted []T, rejected []string) {
	for _, name := range StringSlice(raw) {
		value, ok := parse(name)
		if !ok {
			rejected = append(rejected, name)
			continue
		}
		accepted = append(accepted, value)
	}
	return accepted, rejected
}
