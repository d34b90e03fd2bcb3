// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package permission defines the resource × permission bitmask model used by
role claims, access tokens, and the authorization filter.

Model:

  - [Type]: a bit-flag set over Read, Create, Update and Delete.
  - [Resource]: a closed enumeration of protected resource kinds.
  - [Map]: the effective permissions of a principal, one [Type] per [Resource].

Effective permissions are always computed with a bitwise OR fold, so merging
the claims of several roles is associative, commutative and idempotent.
*/
package permission

import (
	"database/sql/driver"
	"strings"

	"github.com/taibuivan/crudkit/pkg/convert"
)

// # Permission Flags

// Type is a bit-flag set of operations allowed on a resource.
type Type uint8

const (
	None   Type = 0
	Read   Type = 1 << 0
	Create Type = 1 << 1
	Update Type = 1 << 2
	Delete Type = 1 << 3

	// Full is the composite of every single flag.
	Full = Read | Create | Update | Delete
)

// DefaultSeparator joins flag names in display strings.
const DefaultSeparator = "|"

// namedFlags lists the single flags in declaration order. None and Full are not listed.
var namedFlags = []struct {
	flag Type
	name string
}{
	{Read, "Read"},
	{Create, "Create"},
	{Update, "Update"},
	{Delete, "Delete"},
}

// Aggregate folds the given flags with a bitwise OR, starting from [None].
func Aggregate(perms ...Type) Type {
	result := None
	for _, p := range perms {
		result |= p
	}
	return result
}

// Has reports whether every bit of required is present in p.
func (p Type) Has(required Type) bool {
	return p&required == required
}

// String implements fmt.Stringer using the default separator.
func (p Type) String() string {
	if p == None {
		return "None"
	}
	return ToDisplayString(p, DefaultSeparator)
}

// Value stores the flags as their numeric bitmask.
func (p Type) Value() (driver.Value, error) {
	return int64(p), nil
}

// Scan reads a numeric bitmask.
func (p *Type) Scan(src any) error {
	mask, err := convert.ScanUint8(src)
	if err != nil {
		return err
	}
	*p = Type(mask) & Full
	return nil
}

/*
ToDisplayString renders p as the named single flags it contains.

Flags are emitted in declaration order and joined by sep ("|" when empty).
[None] renders as an empty string and [Full] decomposes into its parts.

Example:

	ToDisplayString(Read|Update, "|") // "Read|Update"
*/
func ToDisplayString(p Type, sep string) string {
	if sep == "" {
		sep = DefaultSeparator
	}

	names := make([]string, 0, len(namedFlags))
	for _, nf := range namedFlags {
		if p&nf.flag == nf.flag {
			names = append(names, nf.name)
		}
	}

	return strings.Join(names, sep)
}

/*
ParseFromString is the inverse of [ToDisplayString].

Unknown tokens are skipped and blank input yields [None]. The composite name
"Full" is accepted as well.
*/
func ParseFromString(text, sep string) Type {
	if sep == "" {
		sep = DefaultSeparator
	}

	if strings.TrimSpace(text) == "" {
		return None
	}

	result := None
	for _, token := range strings.Split(text, sep) {
		if flag, ok := lookupFlag(strings.TrimSpace(token)); ok {
			result |= flag
		}
	}

	return result
}

func lookupFlag(name string) (Type, bool) {
	if name == "Full" {
		return Full, true
	}
	for _, nf := range namedFlags {
		if nf.name == name {
			return nf.flag, true
		}
	}
	return None, false
}
