// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertToPgx5DSN(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"postgres://u:p@localhost:5432/crudkit", "pgx5://u:p@localhost:5432/crudkit"},
		{"postgresql://localhost/crudkit?sslmode=disable", "pgx5://localhost/crudkit?sslmode=disable"},
		{"pgx5://localhost/crudkit", "pgx5://localhost/crudkit"},
		{"file:crudkit.db", "file:crudkit.db"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, convertToPgx5DSN(tt.input))
		})
	}
}
