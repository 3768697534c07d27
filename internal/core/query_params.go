// internal/core/query_params.go
package core

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Pagination defaults and bounds for list endpoints.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	DefaultSort  = "-createdAt"
)

// ReservedParams contains query parameter names reserved for pagination,
// sorting and relation expansion. These are never treated as column filters.
var ReservedParams = map[string]bool{
	"page":     true,
	"limit":    true,
	"sort":     true,
	"populate": true,
}

// Pagination holds parsed list-query options.
type Pagination struct {
	Page     int
	Limit    int
	Sort     string   // column name, '-' prefix for descending
	Populate []string // relation names to expand
}

// Offset returns the row offset for the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePagination extracts pagination options from query parameters.
// Out-of-range or unparseable page/limit values clamp to defaults rather than
// failing the request. An invalid sort column is an error because the value
// ends up inside an ORDER BY clause.
func ParsePagination(queryParams url.Values) (Pagination, error) {
	p := Pagination{
		Page:  DefaultPage,
		Limit: DefaultLimit,
		Sort:  DefaultSort,
	}

	if pageStr := queryParams.Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page >= 1 {
			p.Page = page
		}
	}

	if limitStr := queryParams.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			switch {
			case limit < 1:
				p.Limit = DefaultLimit
			case limit > MaxLimit:
				p.Limit = MaxLimit
			default:
				p.Limit = limit
			}
		}
	}

	if sort := queryParams.Get("sort"); sort != "" {
		column := strings.TrimPrefix(sort, "-")
		if !IsValidIdentifier(column) {
			return p, fmt.Errorf("invalid 'sort' parameter: '%s' is not a valid column name", column)
		}
		p.Sort = sort
	}

	if populateStr := queryParams.Get("populate"); populateStr != "" {
		for _, rel := range strings.Split(populateStr, ",") {
			rel = strings.TrimSpace(rel)
			if rel != "" {
				p.Populate = append(p.Populate, rel)
			}
		}
	}

	return p, nil
}

// OrderClause renders the sort spec as a SQL ORDER BY fragment.
func (p Pagination) OrderClause() string {
	column := p.Sort
	direction := "ASC"
	if strings.HasPrefix(column, "-") {
		column = column[1:]
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s", column, direction)
}

// IsReservedParam checks if a query parameter name is reserved for pagination.
func IsReservedParam(key string) bool {
	return ReservedParams[strings.ToLower(key)]
}
