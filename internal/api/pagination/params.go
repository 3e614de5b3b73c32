package pagination

import (
	"net/url"
	"strconv"
	"strings"
)

// ParseParams reads limit and offset query parameters, applying the default
// and cap. Missing values are fine; malformed or negative values are not.
func ParseParams(values url.Values) (limit, offset int, err error) {
	limit = DefaultLimit

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, ValidationError{Field: "limit", Message: "must be a number"}
		}
		if limit < 0 {
			return 0, 0, ValidationError{Field: "limit", Message: "must not be negative"}
		}
		if limit > MaxLimit {
			limit = MaxLimit
		}
	}

	if raw := strings.TrimSpace(values.Get("offset")); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, ValidationError{Field: "offset", Message: "must be a number"}
		}
		if offset < 0 {
			return 0, 0, ValidationError{Field: "offset", Message: "must not be negative"}
		}
	}

	return limit, offset, nil
}
