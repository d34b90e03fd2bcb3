// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/taibuivan/crudkit/internal/users/identity"
	"github.com/taibuivan/crudkit/pkg/pagination"
	"github.com/taibuivan/crudkit/pkg/pointer"
)

// resourceUser names users in error messages and validation details.
const resourceUser = "User"

// # Field Identifiers

const (
	FieldUsername        = "username"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldFirstname       = "firstname"
	FieldSurname         = "surname"
	FieldEmail           = "email"
	FieldContactNo       = "contactNo"
	FieldWebsite         = "website"
	FieldStatus          = "status"
	FieldRowVersion      = "rowVersion"
)

// # Read Models

// UserSummary is the list and summary view of a user account.
type UserSummary struct {
	ID         int64                  `json:"id"`
	Username   string                 `json:"username"`
	Firstname  string                 `json:"firstname"`
	Surname    string                 `json:"surname"`
	FullName   string                 `json:"fullName"`
	Email      string                 `json:"email"`
	ContactNo  string                 `json:"contactNo,omitempty"`
	Website    string                 `json:"website,omitempty"`
	Status     identity.AccountStatus `json:"status"`
	RowVersion string                 `json:"rowVersion"`
}

// Auditor is an account referenced by audit metadata.
type Auditor struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
}

// UserDetail adds the audit trail to [UserSummary].
type UserDetail struct {
	UserSummary

	CreatedDate  time.Time  `json:"createdDate"`
	CreatedBy    *Auditor   `json:"createdBy,omitempty"`
	ModifiedDate *time.Time `json:"modifiedDate,omitempty"`
	ModifiedBy   *Auditor   `json:"modifiedBy,omitempty"`
	Owner        *Auditor   `json:"owner,omitempty"`
}

// ListFilter narrows [Service.GetUsers].
type ListFilter struct {
	Page pagination.Params

	// Statuses keeps only accounts in one of the statuses. Empty keeps all.
	Statuses []identity.AccountStatus
}

func (filter ListFilter) predicate(query *bun.SelectQuery) *bun.SelectQuery {
	query = userAccounts(query)
	if len(filter.Statuses) > 0 {
		query = query.Where("?TableAlias.status IN (?)", bun.In(filter.Statuses))
	}
	return query
}

// # Write Models

// AddUserInput is the payload of a new user account.
type AddUserInput struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Firstname       string `json:"firstname"`
	Surname         string `json:"surname"`
	Email           string `json:"email"`
	ContactNo       string `json:"contactNo"`
	Website         string `json:"website"`
}

// UpdateUserInput is a partial update. Nil fields are left unchanged.
// RowVersion is the version the client read and is required.
type UpdateUserInput struct {
	Status     *string `json:"status"`
	Firstname  *string `json:"firstname"`
	Surname    *string `json:"surname"`
	Email      *string `json:"email"`
	ContactNo  *string `json:"contactNo"`
	Website    *string `json:"website"`
	RowVersion string  `json:"rowVersion"`
}

// apply merges the provided fields over the current profile details.
func (input UpdateUserInput) apply(profile *identity.UserProfile) identity.UserDetails {
	return identity.UserDetails{
		Firstname: pointer.Fallback(input.Firstname, profile.Firstname),
		Surname:   pointer.Fallback(input.Surname, profile.Surname),
		Email:     pointer.Fallback(input.Email, profile.Email),
		ContactNo: pointer.Fallback(input.ContactNo, profile.ContactNo),
		Website:   pointer.Fallback(input.Website, profile.Website),
	}
}

// # Mapping

func toSummary(account *identity.Account) UserSummary {
	summary := UserSummary{
		ID:         account.ID,
		Status:     account.Status,
		RowVersion: account.RowVersion,
	}

	if profile := account.UserProfile; profile != nil {
		summary.Username = profile.Username
		summary.Firstname = profile.Firstname
		summary.Surname = profile.Surname
		summary.FullName = profile.FullName()
		summary.Email = profile.Email
		summary.ContactNo = profile.ContactNo
		summary.Website = profile.Website
	}

	return summary
}

func toDetail(account *identity.Account) UserDetail {
	return UserDetail{
		UserSummary:  toSummary(account),
		CreatedDate:  account.CreatedDate,
		CreatedBy:    toAuditor(account.CreatedBy),
		ModifiedDate: account.ModifiedDate,
		ModifiedBy:   toAuditor(account.ModifiedBy),
		Owner:        toAuditor(account.Owner),
	}
}

func toAuditor(account *identity.Account) *Auditor {
	if account == nil {
		return nil
	}
	return &Auditor{ID: account.ID, Username: account.DisplayName()}
}
