// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for paged queries.
//
// # Overview
//
// It standardizes how page-based navigation is requested via query parameters,
// how page numbers and sizes are clamped before they reach the database, and how
// a page of results is delivered in the API response envelope.
package pagination

import (
	"net/http"

	"github.com/taibuivan/crudkit/pkg/convert"
)

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 20
	// MaxLimit is the upper bound for items per page.
	MaxLimit = 250
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1
)

// Params holds the parsed page and limit from a request's query string.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the SQL OFFSET value derived from [Page] and [Limit].
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Clamp normalizes a requested page and size.
//
// A page below 1 becomes 1, a size above [MaxLimit] becomes [MaxLimit] and a
// size below 1 becomes [DefaultLimit].
func Clamp(page, size int) Params {
	if page < 1 {
		page = DefaultPage
	}

	switch {
	case size > MaxLimit:
		size = MaxLimit
	case size < 1:
		size = DefaultLimit
	}

	return Params{Page: page, Limit: size}
}

// # Page

// Page is one page of a paged query together with its navigation metadata.
type Page[T any] struct {
	Items       []T  `json:"items"`
	TotalCount  int  `json:"totalCount"`
	PageNumber  int  `json:"pageNumber"`
	PageSize    int  `json:"pageSize"`
	TotalPages  int  `json:"totalPages"`
	HasPrevious bool `json:"hasPrevious"`
	HasNext     bool `json:"hasNext"`
}

// NewPage builds a [Page] from already clamped params.
func NewPage[T any](items []T, total int, params Params) *Page[T] {
	if items == nil {
		items = []T{}
	}

	totalPages := 0
	if params.Limit > 0 {
		totalPages = (total + params.Limit - 1) / params.Limit
	}

	return &Page[T]{
		Items:       items,
		TotalCount:  total,
		PageNumber:  params.Page,
		PageSize:    params.Limit,
		TotalPages:  totalPages,
		HasPrevious: params.Page > 1,
		HasNext:     params.Page < totalPages,
	}
}

// Map converts the items of a page while keeping its metadata.
func Map[T, R any](page *Page[T], convert func(T) R) *Page[R] {
	items := make([]R, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, convert(item))
	}

	return &Page[R]{
		Items:       items,
		TotalCount:  page.TotalCount,
		PageNumber:  page.PageNumber,
		PageSize:    page.PageSize,
		TotalPages:  page.TotalPages,
		HasPrevious: page.HasPrevious,
		HasNext:     page.HasNext,
	}
}

// FromRequest parses "page" and "limit" query parameters from an HTTP request
// and clamps them with [Clamp].
func FromRequest(r *http.Request) Params {
	query := r.URL.Query()

	page := convert.ToIntD(query.Get("page"), DefaultPage)
	limit := convert.ToIntD(query.Get("limit"), DefaultLimit)

	return Clamp(page, limit)
}
