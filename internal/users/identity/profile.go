// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"strings"

	"github.com/uptrace/bun"

	"github.com/taibuivan/crudkit/internal/platform/entity"
	"github.com/taibuivan/crudkit/internal/platform/sec"
	"github.com/taibuivan/crudkit/pkg/slug"
)

// # Profiles

// Profile is the 1:1 detail record of an account. An account holds exactly one.
type Profile interface {
	entity.Tracked

	// Kind is the account type the profile belongs to.
	Kind() sec.AccountType

	// DisplayName is the human-facing name of the principal.
	DisplayName() string

	linkAccount(accountID int64)
}

// UserProfile holds the credentials and contact details of an interactive user.
type UserProfile struct {
	bun.BaseModel `bun:"table:user_profiles,alias:up"`

	entity.Base

	AccountID    int64  `bun:"account_id,notnull,unique" json:"accountId"`
	Username     string `bun:"username,notnull,unique" json:"username"`
	PasswordHash string `bun:"password_hash,notnull" json:"-"`
	Firstname    string `bun:"firstname,notnull" json:"firstname"`
	Surname      string `bun:"surname,notnull" json:"surname"`
	Email        string `bun:"email,notnull" json:"email"`
	ContactNo    string `bun:"contact_no" json:"contactNo,omitempty"`
	Website      string `bun:"website" json:"website,omitempty"`
}

// UserDetails are the editable fields of a [UserProfile].
type UserDetails struct {
	Firstname string
	Surname   string
	Email     string
	ContactNo string
	Website   string
}

// Kind implements [Profile].
func (p *UserProfile) Kind() sec.AccountType { return sec.AccountTypeUser }

// DisplayName implements [Profile].
func (p *UserProfile) DisplayName() string { return p.Username }

func (p *UserProfile) linkAccount(accountID int64) { p.AccountID = accountID }

// FullName joins the first name and surname.
func (p *UserProfile) FullName() string {
	return strings.TrimSpace(p.Firstname + " " + p.Surname)
}

// Create sets the login name (stored folded) and the details of a new profile.
func (p *UserProfile) Create(username string, details UserDetails) {
	p.Username = slug.Fold(username)
	p.Update(details)
}

// Update overwrites the editable details.
func (p *UserProfile) Update(details UserDetails) {
	p.Firstname = strings.TrimSpace(details.Firstname)
	p.Surname = strings.TrimSpace(details.Surname)
	p.Email = strings.TrimSpace(details.Email)
	p.ContactNo = strings.TrimSpace(details.ContactNo)
	p.Website = strings.TrimSpace(details.Website)
}

// SetPassword stores an already hashed password.
func (p *UserProfile) SetPassword(hash string) {
	p.PasswordHash = hash
}

// ClientProfile identifies a machine client by its client key.
type ClientProfile struct {
	bun.BaseModel `bun:"table:client_profiles,alias:cp"`

	entity.Base

	AccountID   int64          `bun:"account_id,notnull,unique" json:"accountId"`
	ClientType  sec.ClientType `bun:"client_type,notnull,type:smallint" json:"clientType"`
	ClientName  string         `bun:"client_name,notnull" json:"clientName"`
	Description string         `bun:"description" json:"description,omitempty"`
	ClientKey   string         `bun:"client_key,notnull,unique" json:"-"`
}

// Kind implements [Profile].
func (p *ClientProfile) Kind() sec.AccountType { return sec.AccountTypeClient }

// DisplayName implements [Profile].
func (p *ClientProfile) DisplayName() string { return p.ClientName }

func (p *ClientProfile) linkAccount(accountID int64) { p.AccountID = accountID }

// ExternalUserProfile is a user federated from an external provider.
type ExternalUserProfile struct {
	bun.BaseModel `bun:"table:external_user_profiles,alias:eup"`

	entity.Base

	AccountID      int64        `bun:"account_id,notnull,unique" json:"accountId"`
	AuthProvider   AuthProvider `bun:"auth_provider,notnull,type:smallint" json:"authProvider"`
	Email          string       `bun:"email,notnull" json:"email"`
	ProviderUserID string       `bun:"provider_user_id,notnull" json:"providerUserId"`
	TenantID       string       `bun:"tenant_id" json:"tenantId,omitempty"`
}

// Kind implements [Profile].
func (p *ExternalUserProfile) Kind() sec.AccountType { return sec.AccountTypeExternalUser }

// DisplayName implements [Profile].
func (p *ExternalUserProfile) DisplayName() string { return p.Email }

func (p *ExternalUserProfile) linkAccount(accountID int64) { p.AccountID = accountID }
