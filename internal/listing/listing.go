// Package listing filters and pages entity lists for dashboard tables.
package listing

import "strings"

// DefaultPageSize matches the dashboard tables.
const DefaultPageSize = 5

// All is the enum filter value that disables the filter.
const All = "all"

type Predicate[T any] func(T) bool

// Contains matches when field(item) contains query, ignoring case. An empty
// query matches everything.
func Contains[T any](field func(T) string, query string) Predicate[T] {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	return func(item T) bool {
		return strings.Contains(strings.ToLower(field(item)), q)
	}
}

// Equals matches when field(item) is exactly want. An empty want or All
// matches everything.
func Equals[T any, E ~string](field func(T) E, want E) Predicate[T] {
	if want == "" || string(want) == All {
		return nil
	}
	return func(item T) bool {
		return field(item) == want
	}
}

// AnyOf matches when at least one of preds matches. Disabled (nil)
// predicates are ignored; if all are disabled it matches everything.
func AnyOf[T any](preds ...Predicate[T]) Predicate[T] {
	live := compact(preds)
	if len(live) == 0 {
		return nil
	}
	return func(item T) bool {
		for _, p := range live {
			if p(item) {
				return true
			}
		}
		return false
	}
}

func compact[T any](preds []Predicate[T]) []Predicate[T] {
	out := make([]Predicate[T], 0, len(preds))
	for _, p := range preds {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Filter keeps the items matching every predicate, in their original order.
// The input slice is not modified.
func Filter[T any](items []T, preds ...Predicate[T]) []T {
	live := compact(preds)
	out := make([]T, 0, len(items))
next:
	for _, it := range items {
		for _, p := range live {
			if !p(it) {
				continue next
			}
		}
		out = append(out, it)
	}
	return out
}

type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	Size       int `json:"size"`
	TotalPages int `json:"totalPages"`
	Total      int `json:"total"`
}

// Paginate returns the 1-based page p of items with n items per page. p is
// clamped to [1, TotalPages]. An empty list has zero pages and page 0. A
// non-positive n puts everything on one page.
func Paginate[T any](items []T, n, p int) Page[T] {
	total := len(items)
	if total == 0 {
		return Page[T]{Items: []T{}, Size: n}
	}
	if n <= 0 {
		n = total
	}
	pages := (total + n - 1) / n
	if p < 1 {
		p = 1
	}
	if p > pages {
		p = pages
	}
	start := (p - 1) * n
	end := min(start+n, total)
	return Page[T]{
		Items:      append([]T(nil), items[start:end]...),
		Page:       p,
		Size:       n,
		TotalPages: pages,
		Total:      total,
	}
}
