// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Login Fields

const (
	FieldUsername  = "username"
	FieldPassword  = "password"
	FieldClientKey = "clientKey"
)

// # Login Messages

const (
	// MessageInvalidClientKey rejects an unknown or inactive client key.
	MessageInvalidClientKey = "Invalid Client Key"

	// MessageExternalUnsupported answers the external login endpoint.
	MessageExternalUnsupported = "External login is not supported"
)

// Label values of the login attempt counter.
const (
	kindUser     = "user"
	kindClient   = "client"
	kindExternal = "external"

	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)
