package store

import (
	"fmt"
	"slices"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// builder renders record operations as SQL for one dialect using ent's
// query builder.
type builder struct {
	dialect string
}

func (b builder) upsert(t *Table, rec Record, conflict []string) (string, []any, error) {
	if len(conflict) == 0 {
		conflict = t.PrimaryKey()
	}
	for _, c := range conflict {
		if !t.hasColumn(c) {
			return "", nil, fmt.Errorf("%s: unknown conflict column %q", t.Name, c)
		}
	}
	cols, vals, err := t.values(rec)
	if err != nil {
		return "", nil, err
	}
	q, args := entsql.Dialect(b.dialect).
		Insert(t.Name).
		Columns(cols...).
		Values(vals...).
		OnConflict(
			entsql.ConflictColumns(conflict...),
			entsql.ResolveWithNewValues(),
		).
		Query()
	return q, args, nil
}

func (b builder) insert(t *Table, rec Record) (string, []any, error) {
	cols, vals, err := t.values(rec)
	if err != nil {
		return "", nil, err
	}
	ins := entsql.Dialect(b.dialect).Insert(t.Name).Columns(cols...).Values(vals...)
	if t.AutoID && b.dialect == dialect.Postgres {
		ins = ins.Returning("id")
	}
	q, args := ins.Query()
	return q, args, nil
}

func (b builder) selectRows(t *Table, where Record, opts QueryOpts) (string, []any, []string, error) {
	d := entsql.Dialect(b.dialect)
	cols := t.ColumnNames()
	sel := d.Select(cols...).From(d.Table(t.Name))

	// Sorted so that equal filters render identical SQL.
	keys := make([]string, 0, len(where))
	for k := range where {
		if !t.hasColumn(k) {
			return "", nil, nil, fmt.Errorf("%s: unknown filter column %q", t.Name, k)
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)
	if len(keys) > 0 {
		preds := make([]*entsql.Predicate, 0, len(keys))
		for _, k := range keys {
			preds = append(preds, entsql.EQ(k, where[k]))
		}
		sel.Where(entsql.And(preds...))
	}

	if opts.OrderBy != "" {
		if !t.hasColumn(opts.OrderBy) {
			return "", nil, nil, fmt.Errorf("%s: unknown order column %q", t.Name, opts.OrderBy)
		}
		if opts.Desc {
			sel.OrderBy(entsql.Desc(opts.OrderBy))
		} else {
			sel.OrderBy(entsql.Asc(opts.OrderBy))
		}
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	q, args := sel.Query()
	return q, args, cols, nil
}

func (t *Table) hasColumn(name string) bool {
	return slices.Contains(t.ColumnNames(), name)
}
