// Package mem implements docstore.Store with in-process maps. It backs the
// test suite and serves as the development fallback when no DSN is set.
package mem

import (
	"context"
	"sort"
	"sync"
	"time"

	"zonegrid.org/internal/docstore"
)

// Store is an in-memory document store with in-process concurrency safety.
type Store struct {
	mu   sync.RWMutex
	cols map[string]map[string]record
}

type record struct {
	fields    map[string]any
	updatedAt time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{cols: make(map[string]map[string]record)}
}

// Collection returns a handle for the given partition path. Collections
// materialize lazily on first write.
func (s *Store) Collection(path string) docstore.Collection {
	return &collection{store: s, path: path}
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

type collection struct {
	store *Store
	path  string
}

func (c *collection) Get(ctx context.Context, key string) (docstore.Document, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	col, ok := c.store.cols[c.path]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	rec, ok := col[key]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return docstore.Document{Key: key, Fields: copyFields(rec.fields), UpdatedAt: rec.updatedAt}, nil
}

func (c *collection) Put(ctx context.Context, key string, fields map[string]any) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	col, ok := c.store.cols[c.path]
	if !ok {
		col = make(map[string]record)
		c.store.cols[c.path] = col
	}
	col[key] = record{fields: copyFields(fields), updatedAt: time.Now().UTC()}
	return nil
}

func (c *collection) Update(ctx context.Context, key string, fields map[string]any) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	col, ok := c.store.cols[c.path]
	if !ok {
		return docstore.ErrNotFound
	}
	rec, ok := col[key]
	if !ok {
		return docstore.ErrNotFound
	}
	merged := copyFields(rec.fields)
	for k, v := range fields {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	col[key] = record{fields: merged, updatedAt: time.Now().UTC()}
	return nil
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
	q.col.store.mu.RLock()
	defer q.col.store.mu.RUnlock()

	col := q.col.store.cols[q.col.path]
	keys := make([]string, 0, len(col))
	for k := range col {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []docstore.Document
	for _, k := range keys {
		if q.startAfter != "" && k <= q.startAfter {
			continue
		}
		if q.startAt != "" && k < q.startAt {
			continue
		}
		rec := col[k]
		if !q.matches(rec.fields) {
			continue
		}
		out = append(out, docstore.Document{Key: k, Fields: copyFields(rec.fields), UpdatedAt: rec.updatedAt})
		if q.limit >= 0 && len(out) >= q.limit {
			break
		}
	}
	return out, nil
}

func (q *query) matches(fields map[string]any) bool {
	for _, f := range q.filters {
		v, ok := fields[f.field]
		if !ok || docstore.CanonicalValue(v) != f.value {
			return false
		}
	}
	return true
}

// copyFields isolates callers from stored state, including nested sub-objects.
func copyFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if m, ok := v.(map[string]any); ok {
			out[k] = copyFields(m)
			continue
		}
		out[k] = v
	}
	return out
}
