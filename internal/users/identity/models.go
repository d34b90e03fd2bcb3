// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

// Models lists every identity model in creation order, for schema bootstrapping
// of embedded databases and tests.
func Models() []any {
	return []any{
		(*Account)(nil),
		(*UserProfile)(nil),
		(*ClientProfile)(nil),
		(*ExternalUserProfile)(nil),
		(*Role)(nil),
		(*RoleClaim)(nil),
		(*AccountRole)(nil),
	}
}
