// internal/core/filter.go
package core

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrUnknownColumn      = errors.New("unknown filter column")
	ErrInvalidFilterValue = errors.New("invalid filter value")
)

// rangeOps maps filter-key suffixes to SQL comparison operators.
var rangeOps = map[string]string{
	"gte": ">=",
	"lte": "<=",
	"gt":  ">",
	"lt":  "<",
}

// Filter is a derived WHERE clause ready for parameter binding.
type Filter struct {
	Where []string
	Args  []any
}

// Empty reports whether no conditions were derived.
func (f *Filter) Empty() bool {
	return f == nil || len(f.Where) == 0
}

// Clause renders the conditions as a SQL fragment without the WHERE keyword.
func (f *Filter) Clause() string {
	if f.Empty() {
		return ""
	}
	return strings.Join(f.Where, " AND ")
}

// BuildFilter derives a Filter from query parameters:
//   - a key suffixed _gte|_lte|_gt|_lt becomes a range comparison on the
//     prefix column,
//   - the key 'search' becomes a LIKE disjunction over the searchable columns,
//   - any other key becomes an equality comparison.
//
// Reserved pagination keys are skipped. Keys are processed in sorted order so
// the generated SQL is deterministic.
func BuildFilter(queryParams url.Values, columns map[string]ColumnType, searchable []string) (*Filter, error) {
	filter := &Filter{}

	keys := make([]string, 0, len(queryParams))
	for key := range queryParams {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := queryParams.Get(key)
		if value == "" || IsReservedParam(key) {
			continue
		}

		if key == "search" {
			if len(searchable) == 0 {
				continue
			}
			likes := make([]string, 0, len(searchable))
			for _, column := range searchable {
				likes = append(likes, fmt.Sprintf("%s LIKE ?", column))
				filter.Args = append(filter.Args, "%"+value+"%")
			}
			filter.Where = append(filter.Where, "("+strings.Join(likes, " OR ")+")")
			continue
		}

		column := key
		op := "="
		if idx := strings.LastIndex(key, "_"); idx > 0 {
			if sqlOp, ok := rangeOps[key[idx+1:]]; ok {
				column = key[:idx]
				op = sqlOp
			}
		}

		colType, ok := columns[column]
		if !ok || !IsValidIdentifier(column) {
			return nil, fmt.Errorf("%w: '%s'", ErrUnknownColumn, column)
		}

		arg, err := coerceFilterValue(value, colType)
		if err != nil {
			return nil, fmt.Errorf("%w for column '%s': %v", ErrInvalidFilterValue, column, err)
		}

		filter.Where = append(filter.Where, fmt.Sprintf("%s %s ?", column, op))
		filter.Args = append(filter.Args, arg)
	}

	return filter, nil
}

// coerceFilterValue converts a raw query value to the column's storage type so
// sqlite comparisons behave (TEXT '5' never equals INTEGER 5).
func coerceFilterValue(value string, colType ColumnType) (any, error) {
	switch colType {
	case ColumnInteger:
		return strconv.ParseInt(value, 10, 64)
	case ColumnReal:
		return strconv.ParseFloat(value, 64)
	case ColumnBoolean:
		switch strings.ToLower(value) {
		case "true", "1":
			return 1, nil
		case "false", "0":
			return 0, nil
		}
		return nil, fmt.Errorf("expected boolean, got '%s'", value)
	default:
		return value, nil
	}
}
