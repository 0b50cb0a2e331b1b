package store

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"
	"time"
)

// memRecords is an in-process RecordStore for tests and throwaway runs.
type memRecords struct {
	mu     sync.Mutex
	tables map[string]*memTable
}

type memTable struct {
	rows   []Record
	nextID int64
}

func newMemRecords() *memRecords {
	return &memRecords{tables: make(map[string]*memTable)}
}

func (m *memRecords) table(name string) (*Table, *memTable, error) {
	t, err := lookupTable(name)
	if err != nil {
		return nil, nil, err
	}
	mt, ok := m.tables[name]
	if !ok {
		mt = &memTable{}
		m.tables[name] = mt
	}
	return t, mt, nil
}

// normalize fills defaults and checks columns the way the SQL backends do.
func normalize(t *Table, rec Record) (Record, error) {
	cols, vals, err := t.values(rec)
	if err != nil {
		return nil, err
	}
	out := make(Record, len(cols)+1)
	for i, c := range cols {
		out[c] = vals[i]
	}
	return out, nil
}

func (m *memRecords) Get(ctx context.Context, table string, key Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, mt, err := m.table(table)
	if err != nil {
		return nil, err
	}
	if _, err := keyOf(table, key, t.PrimaryKey()); err != nil {
		return nil, err
	}
	for _, r := range mt.rows {
		if matches(r, key) {
			return maps.Clone(r), nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRecords) Upsert(ctx context.Context, table string, rec Record, conflictKey ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, mt, err := m.table(table)
	if err != nil {
		return err
	}
	if len(conflictKey) == 0 {
		conflictKey = t.PrimaryKey()
	}
	row, err := normalize(t, rec)
	if err != nil {
		return err
	}
	key, err := keyOf(table, row, conflictKey)
	if err != nil {
		return err
	}
	for i, r := range mt.rows {
		if matches(r, key) {
			if id, ok := r["id"]; ok {
				row["id"] = id
			}
			mt.rows[i] = row
			return nil
		}
	}
	if t.AutoID {
		mt.nextID++
		row["id"] = mt.nextID
	}
	mt.rows = append(mt.rows, row)
	return nil
}

func (m *memRecords) Insert(ctx context.Context, table string, rec Record) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, mt, err := m.table(table)
	if err != nil {
		return 0, err
	}
	row, err := normalize(t, rec)
	if err != nil {
		return 0, err
	}
	if !t.AutoID {
		key, err := keyOf(table, row, t.PrimaryKey())
		if err != nil {
			return 0, err
		}
		for _, r := range mt.rows {
			if matches(r, key) {
				return 0, fmt.Errorf("insert %s: duplicate key", table)
			}
		}
		mt.rows = append(mt.rows, row)
		return 0, nil
	}
	mt.nextID++
	row["id"] = mt.nextID
	mt.rows = append(mt.rows, row)
	return mt.nextID, nil
}

func (m *memRecords) Select(ctx context.Context, table string, where Record, opts QueryOpts) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, mt, err := m.table(table)
	if err != nil {
		return nil, err
	}
	for k := range where {
		if !t.hasColumn(k) {
			return nil, fmt.Errorf("%s: unknown filter column %q", t.Name, k)
		}
	}
	if opts.OrderBy != "" && !t.hasColumn(opts.OrderBy) {
		return nil, fmt.Errorf("%s: unknown order column %q", t.Name, opts.OrderBy)
	}

	var out []Record
	for _, r := range mt.rows {
		if matches(r, where) {
			out = append(out, maps.Clone(r))
		}
	}
	if opts.OrderBy != "" {
		slices.SortStableFunc(out, func(a, b Record) int {
			c := compareValues(a[opts.OrderBy], b[opts.OrderBy])
			if opts.Desc {
				return -c
			}
			return c
		})
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *memRecords) Close() error { return nil }

func matches(r, where Record) bool {
	for k, want := range where {
		if !equalValues(r[k], want) {
			return false
		}
	}
	return true
}

func equalValues(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if reflect.DeepEqual(a, b) {
		return true
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func compareValues(a, b any) int {
	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y)
		}
	case int:
		if y, ok := b.(int); ok {
			return cmp.Compare(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y)
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
