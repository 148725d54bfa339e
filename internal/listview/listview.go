// Package listview filters, sorts and paginates collections for list screens.
package listview

import (
	"slices"
	"strings"
	"time"
)

// Pagination defaults
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Query describes what a list screen asks for
type Query struct {
	Search     string
	Filters    map[string][]string // category -> allowed values; empty sets are ignored
	SortByDate bool                // newest first
	Page       int
	Limit      int
}

// Definition tells the view how to read a record type
type Definition[T any] struct {
	// Search returns the fields matched against the search string
	Search func(T) []string
	// Categories maps category names to the record's value in that category
	Categories map[string]func(T) string
	// Date is used for date-descending sort; records without one sort last
	Date func(T) time.Time
}

// Matches reports whether any field contains search, ignoring case.
// An empty search matches everything. Whitespace is part of the search text.
func Matches(fields []string, search string) bool {
	needle := strings.ToLower(search)
	if needle == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// Filter keeps the records matching the search text and every non-empty
// category filter. Unknown categories are ignored. Order is preserved unless
// the query asks for date sort.
func (d Definition[T]) Filter(items []T, q Query) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if d.Search != nil && !Matches(d.Search(item), q.Search) {
			continue
		}
		if !d.inCategories(item, q.Filters) {
			continue
		}
		out = append(out, item)
	}
	if q.SortByDate && d.Date != nil {
		slices.SortStableFunc(out, func(a, b T) int {
			return d.Date(b).Compare(d.Date(a))
		})
	}
	return out
}

func (d Definition[T]) inCategories(item T, filters map[string][]string) bool {
	for name, allowed := range filters {
		if len(allowed) == 0 {
			continue
		}
		value, ok := d.Categories[name]
		if !ok {
			continue
		}
		if !slices.Contains(allowed, value(item)) {
			return false
		}
	}
	return true
}

// Pagination mirrors the paging block returned by list endpoints
type Pagination struct {
	CurrentPage int `json:"current_page"`
	Limit       int `json:"limit"`
	Total       int `json:"total"`
	TotalPages  int `json:"total_pages"`
}

// Page is one page of filtered results
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// Apply filters items and cuts out the requested page
func (d Definition[T]) Apply(items []T, q Query) Page[T] {
	filtered := d.Filter(items, q)
	page, limit := q.Page, q.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}
	// pages past the end are empty; compare before multiplying so huge pages cannot overflow
	start := len(filtered)
	if page-1 <= len(filtered)/limit {
		start = min((page-1)*limit, len(filtered))
	}
	end := min(start+limit, len(filtered))
	return Page[T]{
		Items: filtered[start:end],
		Pagination: Pagination{
			CurrentPage: page,
			Limit:       limit,
			Total:       len(filtered),
			TotalPages:  (len(filtered) + limit - 1) / limit,
		},
	}
}
