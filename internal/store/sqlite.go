package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// sqlRecords is a RecordStore over database/sql.
type sqlRecords struct {
	db *sql.DB
	b  builder
}

// openSQLite opens the SQLite database at dsn, applies pragmas and migrates
// the schema.
func openSQLite(dsn string) (*sqlRecords, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite has a single writer; one connection keeps pragmas consistent
	// and turns concurrent writes into a queue instead of SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(context.Background(), entsql.OpenDB(dialect.SQLite, db)); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return &sqlRecords{db: db, b: builder{dialect: dialect.SQLite}}, nil
}

// migrate creates or updates every declared table.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, entTables()...)
}

// applyPragmas configures SQLite for a small single-node service.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func (s *sqlRecords) Get(ctx context.Context, table string, key Record) (Record, error) {
	t, err := lookupTable(table)
	if err != nil {
		return nil, err
	}
	if _, err := keyOf(table, key, t.PrimaryKey()); err != nil {
		return nil, err
	}
	recs, err := s.Select(ctx, table, key, QueryOpts{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	return recs[0], nil
}

func (s *sqlRecords) Upsert(ctx context.Context, table string, rec Record, conflictKey ...string) error {
	t, err := lookupTable(table)
	if err != nil {
		return err
	}
	q, args, err := s.b.upsert(t, rec, conflictKey)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

func (s *sqlRecords) Insert(ctx context.Context, table string, rec Record) (int64, error) {
	t, err := lookupTable(table)
	if err != nil {
		return 0, err
	}
	q, args, err := s.b.insert(t, rec)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", table, err)
	}
	if !t.AutoID {
		return 0, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert %s: last insert id: %w", table, err)
	}
	return id, nil
}

func (s *sqlRecords) Select(ctx context.Context, table string, where Record, opts QueryOpts) ([]Record, error) {
	t, err := lookupTable(table)
	if err != nil {
		return nil, err
	}
	q, args, cols, err := s.b.selectRows(t, where, opts)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		rec := make(Record, len(cols))
		for i, c := range cols {
			rec[c] = vals[i]
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	return out, nil
}

func (s *sqlRecords) Close() error {
	return s.db.Close()
}
