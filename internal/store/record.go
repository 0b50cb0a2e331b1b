package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrNotFound is returned by Get when no record matches the key.
var ErrNotFound = errors.New("store: record not found")

// Record is one row, keyed by column name.
type Record map[string]any

// QueryOpts configures Select with ordering and pagination.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	OrderBy string // column to order by (empty = backend order)
	Desc    bool   // descending order
}

// RecordStore is a generic table/record store. Tables must be declared in
// Tables.
type RecordStore interface {
	// Get returns the record whose key columns equal key.
	Get(ctx context.Context, table string, key Record) (Record, error)

	// Upsert inserts rec, or overwrites the existing row that collides on
	// conflictKey. An empty conflictKey uses the table's key.
	Upsert(ctx context.Context, table string, rec Record, conflictKey ...string) error

	// Insert appends rec and returns its generated id (0 for tables without
	// an auto id).
	Insert(ctx context.Context, table string, rec Record) (int64, error)

	// Select returns records whose columns equal every entry in where.
	Select(ctx context.Context, table string, where Record, opts QueryOpts) ([]Record, error)

	// Close releases backend resources.
	Close() error
}

// String returns the string value of column, or "".
func (r Record) String(column string) string {
	switch v := r[column].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the integer value of column, or 0.
func (r Record) Int(column string) int64 {
	switch v := r[column].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	case []byte:
		n, _ := strconv.ParseInt(string(v), 10, 64)
		return n
	}
	return 0
}

// Float returns the float value of column, or 0.
func (r Record) Float(column string) float64 {
	switch v := r[column].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	case []byte:
		f, _ := strconv.ParseFloat(string(v), 64)
		return f
	}
	return 0
}

// Bool returns the boolean value of column. SQLite stores booleans as
// integers.
func (r Record) Bool(column string) bool {
	switch v := r[column].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	case []byte:
		b, _ := strconv.ParseBool(string(v))
		return b
	}
	return false
}

// timeLayouts are the text forms SQLite drivers use for datetime columns.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Time returns the time value of column, or the zero time.
func (r Record) Time(column string) time.Time {
	var s string
	switch v := r[column].(type) {
	case time.Time:
		return v
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// keyOf extracts the values of columns from rec, failing if any is absent.
func keyOf(table string, rec Record, columns []string) (Record, error) {
	key := make(Record, len(columns))
	for _, c := range columns {
		v, ok := rec[c]
		if !ok {
			return nil, fmt.Errorf("%s: record missing key column %q", table, c)
		}
		key[c] = v
	}
	return key, nil
}
