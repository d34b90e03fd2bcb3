// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/crudkit/pkg/pagination"
)

/*
TestClamp verifies page and size normalization.
*/
func TestClamp(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		want       pagination.Params
	}{
		{"in_range", 3, 50, pagination.Params{Page: 3, Limit: 50}},
		{"page_zero", 0, 10, pagination.Params{Page: 1, Limit: 10}},
		{"page_negative", -4, 10, pagination.Params{Page: 1, Limit: 10}},
		{"size_above_max", 1, 1000, pagination.Params{Page: 1, Limit: 250}},
		{"size_at_max", 1, 250, pagination.Params{Page: 1, Limit: 250}},
		{"size_zero", 2, 0, pagination.Params{Page: 2, Limit: pagination.DefaultLimit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pagination.Clamp(tt.page, tt.size))
		})
	}
}

/*
TestNewPage verifies the derived navigation fields.
*/
func TestNewPage(t *testing.T) {
	page := pagination.NewPage([]int{4, 5, 6}, 7, pagination.Params{Page: 2, Limit: 3})

	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasPrevious)
	assert.True(t, page.HasNext)

	last := pagination.NewPage([]int{7}, 7, pagination.Params{Page: 3, Limit: 3})
	assert.False(t, last.HasNext)

	empty := pagination.NewPage[int](nil, 0, pagination.Params{Page: 1, Limit: 20})
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasPrevious)
	assert.False(t, empty.HasNext)

	labels := pagination.Map(page, func(n int) string { return string(rune('a' + n)) })
	assert.Equal(t, []string{"e", "f", "g"}, labels.Items)
	assert.Equal(t, page.TotalCount, labels.TotalCount)
}

/*
TestFromRequest verifies query parsing falls back to defaults.
*/
func TestFromRequest(t *testing.T) {
	request := httptest.NewRequest("GET", "/users?page=abc&limit=900", nil)
	assert.Equal(t, pagination.Params{Page: 1, Limit: 250}, pagination.FromRequest(request))

	request = httptest.NewRequest("GET", "/users?page=4&limit=10", nil)
	params := pagination.FromRequest(request)
	assert.Equal(t, 30, params.Offset())
}
