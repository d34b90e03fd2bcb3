// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/taibuivan/crudkit/pkg/convert"
)

// # Account Status

// AccountStatus is the lifecycle status of an account. Only Active accounts can log in.
type AccountStatus uint8

const (
	StatusActive AccountStatus = iota
	StatusSuspended
	StatusPending
	StatusBanned
	StatusExpired
	StatusLocked
	StatusDeleted
)

var statusNames = []string{"Active", "Suspended", "Pending", "Banned", "Expired", "Locked", "Deleted"}

func (s AccountStatus) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("AccountStatus(%d)", uint8(s))
}

// ParseAccountStatus resolves a status by name (case-insensitive).
func ParseAccountStatus(name string) (AccountStatus, bool) {
	for i, n := range statusNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return AccountStatus(i), true
		}
	}
	return 0, false
}

// Message is the login rejection shown to a non-active account.
func (s AccountStatus) Message() string {
	return fmt.Sprintf("Your account has been %s. Please contact the administrator.", s)
}

// MarshalText encodes the status as its name.
func (s AccountStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *AccountStatus) UnmarshalText(text []byte) error {
	parsed, ok := ParseAccountStatus(string(text))
	if !ok {
		return fmt.Errorf("identity: unknown account status %q", text)
	}
	*s = parsed
	return nil
}

// Value stores the status as its ordinal.
func (s AccountStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

// Scan reads the ordinal back.
func (s *AccountStatus) Scan(src any) error {
	n, err := convert.ScanUint8(src)
	if err != nil {
		return err
	}
	*s = AccountStatus(n)
	return nil
}

// # Auth Provider

// AuthProvider identifies who vouches for an external user.
type AuthProvider uint8

const (
	ProviderOwn AuthProvider = iota
	ProviderGoogle
	ProviderFacebook
	ProviderTwitter
	ProviderGitHub
	ProviderAzureAD
	ProviderWinAD
)

var providerNames = []string{"Own", "Google", "Facebook", "Twitter", "GitHub", "AzureAD", "WinAD"}

func (p AuthProvider) String() string {
	if int(p) < len(providerNames) {
		return providerNames[p]
	}
	return fmt.Sprintf("AuthProvider(%d)", uint8(p))
}

// ParseAuthProvider resolves a provider by name (case-insensitive).
func ParseAuthProvider(name string) (AuthProvider, bool) {
	for i, n := range providerNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return AuthProvider(i), true
		}
	}
	return 0, false
}

func (p AuthProvider) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *AuthProvider) UnmarshalText(text []byte) error {
	parsed, ok := ParseAuthProvider(string(text))
	if !ok {
		return fmt.Errorf("identity: unknown auth provider %q", text)
	}
	*p = parsed
	return nil
}

func (p AuthProvider) Value() (driver.Value, error) {
	return int64(p), nil
}

func (p *AuthProvider) Scan(src any) error {
	n, err := convert.ScanUint8(src)
	if err != nil {
		return err
	}
	*p = AuthProvider(n)
	return nil
}
