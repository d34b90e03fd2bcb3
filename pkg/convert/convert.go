// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package convert provides quick type-conversion utilities.

It wraps standards like [strconv] to provide fault-tolerant conversions
(e.g., returning a default instead of an error when parsing fails). This is
useful in API handler contexts parsing query parameters and token claims.

Do not use the fault-tolerant helpers if distinguishing between malformed data
and zero values is important in your domain logic.
*/
package convert

import (
	"fmt"
	"math"
	"strconv"
)

// ToIntD converts a string to an int, returning the provided default if parsing fails or string is empty.
func ToIntD(str string, def int) int {
	if str == "" {
		return def
	}

	if v, err := strconv.Atoi(str); err == nil {
		return v
	}

	return def
}

// ToInt64 converts a decimal string to an int64, silencing parsing errors.
// It returns 0 if the string is empty or cannot be parsed.
func ToInt64(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// # Database Scanning

/*
ScanUint8 converts a value read from a database column into a uint8.

Drivers report integers as int64 (pgx, sqlite) or, for some column types, as
their decimal text. Anything outside 0..255 is an error.
*/
func ScanUint8(src any) (uint8, error) {
	var n int64

	switch value := src.(type) {
	case nil:
		return 0, nil
	case int64:
		n = value
	case int32:
		n = int64(value)
	case int:
		n = int64(value)
	case []byte:
		parsed, err := strconv.ParseInt(string(value), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("convert: cannot scan %q as uint8: %w", value, err)
		}
		n = parsed
	case string:
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("convert: cannot scan %q as uint8: %w", value, err)
		}
		n = parsed
	default:
		return 0, fmt.Errorf("convert: cannot scan %T as uint8", src)
	}

	if n < 0 || n > math.MaxUint8 {
		return 0, fmt.Errorf("convert: %d overflows uint8", n)
	}
	return uint8(n), nil
}
