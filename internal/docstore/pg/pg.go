// Package pg implements docstore.Store on PostgreSQL. Documents live in a
// single table keyed by (collection, key) with a jsonb payload; key order
// gives the store's natural cursor order.
package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"zonegrid.org/internal/docstore"
)

// Store wraps a pooled database handle.
type Store struct {
	db *sql.DB
}

var _ docstore.Store = (*Store)(nil)

// Open connects to PostgreSQL using the pgx stdlib driver.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing handle. Used by tests.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying handle for readiness probes.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Collection(path string) docstore.Collection {
	return &collection{db: s.db, path: path}
}

type collection struct {
	db   *sql.DB
	path string
}

func (c *collection) Get(ctx context.Context, key string) (docstore.Document, error) {
	var (
		raw     []byte
		updated time.Time
	)
	err := c.db.QueryRowContext(ctx, `
		select fields, updated_at from documents
		where collection = $1 and key = $2
	`, c.path, key).Scan(&raw, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return docstore.Document{}, docstore.ErrNotFound
	}
	if err != nil {
		return docstore.Document{}, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return docstore.Document{}, fmt.Errorf("decode document %s/%s: %w", c.path, key, err)
	}
	return docstore.Document{Key: key, Fields: fields, UpdatedAt: updated}, nil
}

func (c *collection) Put(ctx context.Context, key string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx, `
		insert into documents(collection, key, fields, updated_at)
		values ($1, $2, $3, now())
		on conflict (collection, key) do update
		set fields = excluded.fields, updated_at = now()
	`, c.path, key, raw)
	return err
}

func (c *collection) Update(ctx context.Context, key string, fields map[string]any) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var raw []byte
	err = tx.QueryRowContext(ctx, `
		select fields from documents
		where collection = $1 and key = $2
		for update
	`, c.path, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return docstore.ErrNotFound
	}
	if err != nil {
		return err
	}

	merged := map[string]any{}
	if err := json.Unmarshal(raw, &merged); err != nil {
		return fmt.Errorf("decode document %s/%s: %w", c.path, key, err)
	}
	for k, v := range fields {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	out, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		update documents set fields = $3, updated_at = now()
		where collection = $1 and key = $2
	`, c.path, key, out); err != nil {
		return err
	}
	return tx.Commit()
}

func (c *collection) Query() docstore.Query {
	return &query{col: c, limit: -1}
}

type filter struct {
	field string
	value string
}

type query struct {
	col        *collection
	filters    []filter
	startAfter string
	startAt    string
	limit      int
}

func (q *query) Where(field string, value any) docstore.Query {
	q.filters = append(q.filters, filter{field: field, value: docstore.CanonicalValue(value)})
	return q
}

func (q *query) StartAfter(key string) docstore.Query {
	q.startAfter = key
	return q
}

func (q *query) StartAt(key string) docstore.Query {
	q.startAt = key
	return q
}

func (q *query) Limit(n int) docstore.Query {
	q.limit = n
	return q
}

func (q *query) Documents(ctx context.Context) ([]docstore.Document, error) {
	var sb strings.Builder
	sb.WriteString(`select key, fields, updated_at from documents where collection = $1`)
	args := []any{q.col.path}

	for _, f := range q.filters {
		args = append(args, f.field, f.value)
		fmt.Fprintf(&sb, ` and fields->>$%d = $%d`, len(args)-1, len(args))
	}
	if q.startAfter != "" {
		args = append(args, q.startAfter)
		fmt.Fprintf(&sb, ` and key > $%d`, len(args))
	}
	if q.startAt != "" {
		args = append(args, q.startAt)
		fmt.Fprintf(&sb, ` and key >= $%d`, len(args))
	}
	sb.WriteString(` order by key`)
	if q.limit >= 0 {
		args = append(args, q.limit)
		fmt.Fprintf(&sb, ` limit $%d`, len(args))
	}

	rows, err := q.col.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []docstore.Document
	for rows.Next() {
		var (
			key     string
			raw     []byte
			updated time.Time
		)
		if err := rows.Scan(&key, &raw, &updated); err != nil {
			return nil, err
		}
		fields := map[string]any{}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("decode document %s/%s: %w", q.col.path, key, err)
		}
		out = append(out, docstore.Document{Key: key, Fields: fields, UpdatedAt: updated})
	}
	return out, rows.Err()
}
