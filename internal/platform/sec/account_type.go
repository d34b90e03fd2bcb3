// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/taibuivan/crudkit/pkg/convert"
)

// # Account Types

// AccountType discriminates which profile an account carries and which claim
// namespace its tokens use.
type AccountType uint8

const (
	// Interactive user authenticated with username and password
	AccountTypeUser AccountType = iota + 1

	// Machine client authenticated with a client key
	AccountTypeClient

	// User federated from an external identity provider
	AccountTypeExternalUser
)

var accountTypeNames = map[AccountType]string{
	AccountTypeUser:         "User",
	AccountTypeClient:       "Client",
	AccountTypeExternalUser: "ExternalUser",
}

func (t AccountType) String() string {
	if name, ok := accountTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("AccountType(%d)", uint8(t))
}

// ParseAccountType resolves an account type by name (case-insensitive).
func ParseAccountType(name string) (AccountType, bool) {
	for t, n := range accountTypeNames {
		if strings.EqualFold(n, name) {
			return t, true
		}
	}
	return 0, false
}

// MarshalText encodes the account type as its name.
func (t AccountType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes an account type name.
func (t *AccountType) UnmarshalText(text []byte) error {
	parsed, ok := ParseAccountType(string(text))
	if !ok {
		return fmt.Errorf("sec: unknown account type %q", string(text))
	}
	*t = parsed
	return nil
}

// Value stores the account type as its numeric code.
func (t AccountType) Value() (driver.Value, error) {
	return int64(t), nil
}

// Scan reads a numeric account type code.
func (t *AccountType) Scan(src any) error {
	code, err := convert.ScanUint8(src)
	if err != nil {
		return err
	}
	*t = AccountType(code)
	return nil
}

// # Client Types

// ClientType classifies machine clients.
type ClientType uint8

const (
	ClientTypeService ClientType = iota + 1
	ClientTypeApplication
	ClientTypeIntegration
)

var clientTypeNames = map[ClientType]string{
	ClientTypeService:     "Service",
	ClientTypeApplication: "Application",
	ClientTypeIntegration: "Integration",
}

func (t ClientType) String() string {
	if name, ok := clientTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ClientType(%d)", uint8(t))
}

// ParseClientType resolves a client type by name (case-insensitive).
func ParseClientType(name string) (ClientType, bool) {
	for t, n := range clientTypeNames {
		if strings.EqualFold(n, name) {
			return t, true
		}
	}
	return 0, false
}

// MarshalText encodes the client type as its name.
func (t ClientType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a client type name.
func (t *ClientType) UnmarshalText(text []byte) error {
	parsed, ok := ParseClientType(string(text))
	if !ok {
		return fmt.Errorf("sec: unknown client type %q", string(text))
	}
	*t = parsed
	return nil
}

// Value stores the client type as its numeric code.
func (t ClientType) Value() (driver.Value, error) {
	return int64(t), nil
}

// Scan reads a numeric client type code.
func (t *ClientType) Scan(src any) error {
	code, err := convert.ScanUint8(src)
	if err != nil {
		return err
	}
	*t = ClientType(code)
	return nil
}
