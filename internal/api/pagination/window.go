// Package pagination slices ordered collections into offset/limit pages.
package pagination

import "fmt"

// DefaultLimit applies when a request does not specify a page size.
const DefaultLimit = 20

// MaxLimit caps the page size a caller may request.
const MaxLimit = 200

// Page is one window over an ordered collection. Total always reflects the
// full collection size before slicing.
type Page[T any] struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Items  []T `json:"items"`
}

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Window slices items into a page. A limit of zero yields an empty items
// list with Total intact; negative limit or offset is rejected.
func Window[T any](items []T, limit, offset int) (Page[T], error) {
	if limit < 0 {
		return Page[T]{}, ValidationError{Field: "limit", Message: "must not be negative"}
	}
	if offset < 0 {
		return Page[T]{}, ValidationError{Field: "offset", Message: "must not be negative"}
	}

	page := Page[T]{
		Total:  len(items),
		Limit:  limit,
		Offset: offset,
		Items:  []T{},
	}
	if offset >= len(items) || limit == 0 {
		return page, nil
	}

	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	page.Items = append(page.Items, items[offset:end]...)
	return page, nil
}
