// internal/storage/entity_repo.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mtofleet/fleet-backend/internal/core"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so repo operations can take
// part in a caller-owned transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// systemColumns are maintained by the storage layer and ignored when present
// in an incoming payload.
var systemColumns = map[string]bool{
	"id":        true,
	"createdAt": true,
	"updatedAt": true,
	"deletedAt": true,
}

// EntitySpec declares the shape the generic CRUD layer works against for one
// entity: its table, column types, required/searchable/hidden columns and the
// reference columns that can be expanded via populate.
type EntitySpec struct {
	Table      string
	Name       string
	Columns    map[string]core.ColumnType
	Required   []string
	Searchable []string
	Hidden     []string
	Relations  map[string]string // reference column -> related table
}

// Record is a single persisted entity row.
type Record = map[string]any

// BulkFailure reports one failed item of a bulk insert.
type BulkFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// EntityRepo implements generic CRUD over one entity table. All SQL is
// assembled from the spec's whitelisted column names, never from raw input.
type EntityRepo struct {
	db   *sql.DB
	spec EntitySpec

	// resolve maps a related table name to its repo, for populate.
	// Wired by the Store after all repos exist.
	resolve func(table string) *EntityRepo
}

// NewEntityRepo creates a repo for one entity spec.
func NewEntityRepo(db *sql.DB, spec EntitySpec) *EntityRepo {
	return &EntityRepo{db: db, spec: spec}
}

// Spec returns the entity spec the repo was built with.
func (r *EntityRepo) Spec() EntitySpec { return r.spec }

// --- Payload validation ---

// validatePayload checks every key of an incoming payload against the column
// spec: unknown columns and incompatible types are per-field failures. System
// columns are silently dropped. Returns the sanitized payload.
func (r *EntityRepo) validatePayload(data Record, requireAll bool) (Record, error) {
	var fieldErrs []FieldError
	clean := Record{}

	for key, val := range data {
		if systemColumns[key] || !core.IsValidIdentifier(key) {
			continue
		}
		colType, exists := r.spec.Columns[key]
		if !exists {
			fieldErrs = append(fieldErrs, FieldError{Field: key, Message: "unknown field"})
			continue
		}
		if !valueMatchesType(val, colType) {
			fieldErrs = append(fieldErrs, FieldError{
				Field:   key,
				Message: fmt.Sprintf("expected value compatible with %s", colType),
			})
			continue
		}
		if b, ok := val.(bool); ok {
			// sqlite stores booleans as integers
			if b {
				val = 1
			} else {
				val = 0
			}
		}
		clean[key] = val
	}

	if requireAll {
		for _, required := range r.spec.Required {
			if v, ok := clean[required]; !ok || v == nil {
				fieldErrs = append(fieldErrs, FieldError{Field: required, Message: "is required"})
			}
		}
	}

	if len(fieldErrs) > 0 {
		sort.Slice(fieldErrs, func(i, j int) bool { return fieldErrs[i].Field < fieldErrs[j].Field })
		return nil, &ValidationError{Fields: fieldErrs}
	}
	return clean, nil
}

// valueMatchesType mirrors how JSON decoding presents values: numbers arrive
// as float64, so integer columns accept whole floats.
func valueMatchesType(val any, colType core.ColumnType) bool {
	if val == nil {
		return true
	}
	switch colType {
	case core.ColumnInteger:
		switch v := val.(type) {
		case float64:
			return math.Floor(v) == v
		case int, int64:
			return true
		}
	case core.ColumnReal:
		switch val.(type) {
		case float64, int, int64:
			return true
		}
	case core.ColumnText:
		_, ok := val.(string)
		return ok
	case core.ColumnBoolean:
		switch v := val.(type) {
		case bool:
			return true
		case float64:
			return v == 0 || v == 1
		}
	}
	return false
}

// --- CRUD operations ---

// Insert validates and persists a new record, returning the stored row.
func (r *EntityRepo) Insert(ctx context.Context, data Record) (Record, error) {
	id, err := r.InsertTx(ctx, r.db, data)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// InsertTx persists a new record on the given transaction handle and returns
// its id.
func (r *EntityRepo) InsertTx(ctx context.Context, q DBTX, data Record) (int64, error) {
	clean, err := r.validatePayload(data, true)
	if err != nil {
		return 0, err
	}

	columns := make([]string, 0, len(clean))
	for key := range clean {
		columns = append(columns, key)
	}
	sort.Strings(columns)

	placeholders := make([]string, 0, len(columns))
	values := make([]any, 0, len(columns))
	for _, column := range columns {
		placeholders = append(placeholders, "?")
		values = append(values, clean[column])
	}

	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.spec.Table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	result, err := q.ExecContext(ctx, insertSQL, values...)
	if err != nil {
		customLog.Warnf("Storage: Failed to insert into %s: %v", r.spec.Table, err)
		return 0, mapSqliteError(err)
	}
	return result.LastInsertId()
}

// GetByID returns one record, optionally expanding reference columns.
func (r *EntityRepo) GetByID(ctx context.Context, id int64, populate ...string) (Record, error) {
	record, err := r.getByIDOn(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return r.populateRecord(ctx, record, populate)
}

// GetByIDTx returns one record inside a caller-owned transaction.
func (r *EntityRepo) GetByIDTx(ctx context.Context, q DBTX, id int64) (Record, error) {
	return r.getByIDOn(ctx, q, id)
}

func (r *EntityRepo) getByIDOn(ctx context.Context, q DBTX, id int64) (Record, error) {
	selectSQL := fmt.Sprintf("SELECT * FROM %s WHERE id = ? LIMIT 1", r.spec.Table)
	rows, err := q.QueryContext(ctx, selectSQL, id)
	if err != nil {
		return nil, fmt.Errorf("database error reading %s: %w", r.spec.Table, err)
	}
	defer rows.Close()

	records, err := r.scanRows(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records[0], nil
}

// FindOne returns the first record matching an exact value on one column.
func (r *EntityRepo) FindOne(ctx context.Context, column string, value any, populate ...string) (Record, error) {
	if _, ok := r.spec.Columns[column]; !ok || !core.IsValidIdentifier(column) {
		return nil, fmt.Errorf("%w: '%s'", core.ErrUnknownColumn, column)
	}

	selectSQL := fmt.Sprintf("SELECT * FROM %s WHERE %s = ? LIMIT 1", r.spec.Table, column)
	rows, err := r.db.QueryContext(ctx, selectSQL, value)
	if err != nil {
		return nil, fmt.Errorf("database error reading %s: %w", r.spec.Table, err)
	}
	defer rows.Close()

	records, err := r.scanRows(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return r.populateRecord(ctx, records[0], populate)
}

// List returns one page of records plus the total match count. Pages past the
// end yield an empty slice, never an error.
func (r *EntityRepo) List(ctx context.Context, filter *core.Filter, p core.Pagination) ([]Record, int64, error) {
	sortColumn := strings.TrimPrefix(p.Sort, "-")
	if _, known := r.spec.Columns[sortColumn]; !known && !systemColumns[sortColumn] {
		return nil, 0, fmt.Errorf("%w: '%s' in sort", core.ErrUnknownColumn, sortColumn)
	}

	total, err := r.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT * FROM %s", r.spec.Table)
	args := []any{}
	if !filter.Empty() {
		sb.WriteString(" WHERE " + filter.Clause())
		args = append(args, filter.Args...)
	}
	fmt.Fprintf(&sb, " ORDER BY %s LIMIT ? OFFSET ?", p.OrderClause())
	args = append(args, p.Limit, p.Offset())

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		customLog.Warnf("Storage: List query failed for %s: %v", r.spec.Table, err)
		return nil, 0, fmt.Errorf("database error listing %s: %w", r.spec.Table, err)
	}
	defer rows.Close()

	records, err := r.scanRows(rows)
	if err != nil {
		return nil, 0, err
	}

	for i, record := range records {
		if records[i], err = r.populateRecord(ctx, record, p.Populate); err != nil {
			return nil, 0, err
		}
	}
	return records, total, nil
}

// Count returns the number of records matching the filter without fetching them.
func (r *EntityRepo) Count(ctx context.Context, filter *core.Filter) (int64, error) {
	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s", r.spec.Table)
	args := []any{}
	if !filter.Empty() {
		countSQL += " WHERE " + filter.Clause()
		args = filter.Args
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("database error counting %s: %w", r.spec.Table, err)
	}
	return total, nil
}

// Update applies a partial update and returns the refreshed record.
func (r *EntityRepo) Update(ctx context.Context, id int64, data Record) (Record, error) {
	if err := r.UpdateTx(ctx, r.db, id, data); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// UpdateTx applies a partial update on the given transaction handle.
// The updatedAt timestamp is refreshed on every successful update.
func (r *EntityRepo) UpdateTx(ctx context.Context, q DBTX, id int64, data Record) error {
	clean, err := r.validatePayload(data, false)
	if err != nil {
		return err
	}
	if len(clean) == 0 {
		return &ValidationError{Fields: []FieldError{{Field: "body", Message: "no updatable fields provided"}}}
	}

	columns := make([]string, 0, len(clean))
	for key := range clean {
		columns = append(columns, key)
	}
	sort.Strings(columns)

	setClauses := make([]string, 0, len(columns)+1)
	values := make([]any, 0, len(columns)+1)
	for _, column := range columns {
		setClauses = append(setClauses, column+" = ?")
		values = append(values, clean[column])
	}
	setClauses = append(setClauses, "updatedAt = CURRENT_TIMESTAMP")
	values = append(values, id)

	updateSQL := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", r.spec.Table, strings.Join(setClauses, ", "))
	result, err := q.ExecContext(ctx, updateSQL, values...)
	if err != nil {
		customLog.Warnf("Storage: Failed to update %s id %d: %v", r.spec.Table, id, err)
		return mapSqliteError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("database error updating %s: %w", r.spec.Table, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a record permanently.
func (r *EntityRepo) Delete(ctx context.Context, id int64) error {
	deleteSQL := fmt.Sprintf("DELETE FROM %s WHERE id = ?", r.spec.Table)
	result, err := r.db.ExecContext(ctx, deleteSQL, id)
	if err != nil {
		return mapSqliteError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("database error deleting from %s: %w", r.spec.Table, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete deactivates a record and stamps the deletion time instead of
// removing the row.
func (r *EntityRepo) SoftDelete(ctx context.Context, id int64) error {
	softDeleteSQL := fmt.Sprintf(
		"UPDATE %s SET isActive = 0, deletedAt = CURRENT_TIMESTAMP, updatedAt = CURRENT_TIMESTAMP WHERE id = ?",
		r.spec.Table)
	result, err := r.db.ExecContext(ctx, softDeleteSQL, id)
	if err != nil {
		return mapSqliteError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("database error soft-deleting from %s: %w", r.spec.Table, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// BulkInsert inserts every item it can, continuing past individual failures,
// and reports the created count plus per-index failure reasons.
func (r *EntityRepo) BulkInsert(ctx context.Context, items []Record) (int, []BulkFailure) {
	created := 0
	var failures []BulkFailure
	for i, item := range items {
		if _, err := r.InsertTx(ctx, r.db, item); err != nil {
			failures = append(failures, BulkFailure{Index: i, Error: err.Error()})
			continue
		}
		created++
	}
	return created, failures
}

// --- Row scanning & populate ---

// scanRows converts result rows into records: []byte becomes string, declared
// BOOLEAN columns become bools, hidden columns are dropped.
func (r *EntityRepo) scanRows(rows *sql.Rows) ([]Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns for %s: %w", r.spec.Table, err)
	}

	hidden := map[string]bool{}
	for _, h := range r.spec.Hidden {
		hidden[h] = true
	}

	var records []Record
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", r.spec.Table, err)
		}

		record := Record{}
		for i, column := range columns {
			if hidden[column] {
				continue
			}
			val := values[i]
			if b, ok := val.([]byte); ok {
				val = string(b)
			}
			if r.spec.Columns[column] == core.ColumnBoolean {
				if n, ok := val.(int64); ok {
					val = n != 0
				}
			}
			record[column] = val
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed for %s: %w", r.spec.Table, err)
	}
	return records, nil
}

// populateRecord replaces reference-column values with the related record,
// mirroring how the API's populate query parameter is documented. Unknown
// relation names and dangling references are skipped silently.
func (r *EntityRepo) populateRecord(ctx context.Context, record Record, populate []string) (Record, error) {
	if len(populate) == 0 || r.resolve == nil {
		return record, nil
	}
	for _, relColumn := range populate {
		table, ok := r.spec.Relations[relColumn]
		if !ok {
			continue
		}
		refID, ok := record[relColumn].(int64)
		if !ok {
			continue
		}
		related := r.resolve(table)
		if related == nil {
			continue
		}
		relRecord, err := related.getByIDOn(ctx, related.db, refID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		record[relColumn] = relRecord
	}
	return record, nil
}
