// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package permission

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/taibuivan/crudkit/pkg/convert"
)

// # Protected Resources

// Resource identifies a category of domain objects guarded by permissions.
//
// The set is closed: new kinds are added here and nowhere else.
type Resource uint8

const (
	ResourceUser Resource = iota + 1
	ResourceProduct
	ResourceOrder
	ResourceReport
	ResourceClient
	ResourceRole
)

var resourceNames = map[Resource]string{
	ResourceUser:    "User",
	ResourceProduct: "Product",
	ResourceOrder:   "Order",
	ResourceReport:  "Report",
	ResourceClient:  "Client",
	ResourceRole:    "Role",
}

// Resources returns every known resource in declaration order.
func Resources() []Resource {
	return []Resource{ResourceUser, ResourceProduct, ResourceOrder, ResourceReport, ResourceClient, ResourceRole}
}

func (r Resource) String() string {
	if name, ok := resourceNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Resource(%d)", uint8(r))
}

// ParseResource resolves a resource by its exact name.
func ParseResource(name string) (Resource, bool) {
	for r, n := range resourceNames {
		if n == name {
			return r, true
		}
	}
	return 0, false
}

// MarshalText encodes the resource as its name, so it can key JSON objects.
func (r Resource) MarshalText() ([]byte, error) {
	name, ok := resourceNames[r]
	if !ok {
		return nil, fmt.Errorf("permission: unknown resource %d", uint8(r))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a resource name.
func (r *Resource) UnmarshalText(text []byte) error {
	parsed, ok := ParseResource(string(text))
	if !ok {
		return fmt.Errorf("permission: unknown resource %q", string(text))
	}
	*r = parsed
	return nil
}

// Value stores the resource as its numeric code.
func (r Resource) Value() (driver.Value, error) {
	return int64(r), nil
}

// Scan reads a numeric resource code.
func (r *Resource) Scan(src any) error {
	code, err := convert.ScanUint8(src)
	if err != nil {
		return err
	}
	*r = Resource(code)
	return nil
}

// # Permission Map

// Map holds the effective permission flags of a principal per resource.
type Map map[Resource]Type

// Grant ORs perm into the entry for resource.
func (m Map) Grant(resource Resource, perm Type) {
	m[resource] |= perm
}

// Merge ORs every entry of other into m.
func (m Map) Merge(other Map) {
	for resource, perm := range other {
		m[resource] |= perm
	}
}

// DisplayMap renders each entry with [ToDisplayString], keyed by resource name.
func (m Map) DisplayMap() map[string]string {
	out := make(map[string]string, len(m))
	for resource, perm := range m {
		out[resource.String()] = ToDisplayString(perm, DefaultSeparator)
	}
	return out
}

/*
MarshalClaim serializes the map into the single-string token claim format,
a JSON object of resource name to integer bitmask.

Example:

	{"Product":15,"User":1}
*/
func (m Map) MarshalClaim() (string, error) {
	raw := make(map[string]uint8, len(m))
	for resource, perm := range m {
		name, ok := resourceNames[resource]
		if !ok {
			return "", fmt.Errorf("permission: unknown resource %d", uint8(resource))
		}
		raw[name] = uint8(perm)
	}

	// encoding/json sorts map keys, which keeps tokens deterministic.
	data, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("permission: marshal claim: %w", err)
	}
	return string(data), nil
}

// ParseClaim decodes a claim produced by [Map.MarshalClaim].
// Entries naming unknown resources are dropped.
func ParseClaim(claim string) (Map, error) {
	var raw map[string]uint8
	if err := json.Unmarshal([]byte(claim), &raw); err != nil {
		return nil, fmt.Errorf("permission: parse claim: %w", err)
	}

	result := make(Map, len(raw))
	for name, perm := range raw {
		if resource, ok := ParseResource(name); ok {
			result[resource] |= Type(perm)
		}
	}
	return result, nil
}

// SortedResources returns the keys of m in declaration order.
func (m Map) SortedResources() []Resource {
	keys := make([]Resource, 0, len(m))
	for resource := range m {
		keys = append(keys, resource)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
