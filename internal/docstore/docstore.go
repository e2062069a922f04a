// Package docstore defines the keyed, hierarchical collection contract the
// service persists through. Implementations must provide get-by-key, put,
// field-path merge updates, equality filters and key-ordered cursor queries;
// nothing in the service assumes multi-document transactions.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound indicates the requested document key does not exist.
	ErrNotFound = errors.New("docstore: not found")
)

// Document is a stored record addressed by a collection-unique key.
// Keys sort lexicographically; queries return documents in key order.
type Document struct {
	Key       string
	Fields    map[string]any
	UpdatedAt time.Time
}

// Store hands out collections addressed by a slash-separated path,
// e.g. "gabon/GSEZ/phase1".
type Store interface {
	Collection(path string) Collection
	Close() error
}

// Collection is a set of documents under one partition path.
type Collection interface {
	// Get returns the document stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (Document, error)
	// Put creates or fully replaces the document under key.
	Put(ctx context.Context, key string, fields map[string]any) error
	// Update merges the given fields into an existing document. A nil value
	// clears the field. Returns ErrNotFound when the key does not exist.
	// The merge is applied as a single write; partial application is not
	// observable.
	Update(ctx context.Context, key string, fields map[string]any) error
	// Query starts a key-ordered query over the collection.
	Query() Query
}

// Query accumulates filters and returns documents ordered by key ascending.
// Implementations compare Where values by their canonical text form, so
// callers should filter on string-valued fields.
type Query interface {
	Where(field string, value any) Query
	// StartAfter resumes the key range exclusively after key.
	StartAfter(key string) Query
	// StartAt resumes the key range inclusively at key.
	StartAt(key string) Query
	Limit(n int) Query
	Documents(ctx context.Context) ([]Document, error)
}

// CanonicalValue renders a filter value the way implementations compare it.
func CanonicalValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
