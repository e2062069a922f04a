package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"zonegrid.org/internal/docstore"
)

func newStoreWithMock(t *testing.T) (*Store, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewWithDB(db), mock, db
}

func mustJSON(t *testing.T, v map[string]any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func TestGetFound(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	fields := map[string]any{"name": "Plot A-101", "plotStatus": "Available"}
	now := time.Now().UTC()
	mock.ExpectQuery(`(?s)select\s+fields,\s*updated_at\s+from\s+documents\s+where\s+collection\s*=\s*\$1\s+and\s+key\s*=\s*\$2`).
		WithArgs("gabon/GSEZ/phase1", "k1").
		WillReturnRows(sqlmock.NewRows([]string{"fields", "updated_at"}).AddRow(mustJSON(t, fields), now))

	doc, err := store.Collection("gabon/GSEZ/phase1").Get(context.Background(), "k1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if doc.Key != "k1" || doc.Fields["name"] != "Plot A-101" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`select\s+fields,\s*updated_at\s+from\s+documents`).
		WithArgs("gabon/GSEZ/phase1", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Collection("gabon/GSEZ/phase1").Get(context.Background(), "missing")
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutUpserts(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)insert\s+into\s+documents.*on\s+conflict\s*\(collection,\s*key\)\s*do\s+update`).
		WithArgs("zone-master", "gabon_GSEZ", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Collection("zone-master").Put(context.Background(), "gabon_GSEZ", map[string]any{"country": "gabon"})
	if err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateMergesAndClears(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	existing := map[string]any{"plotStatus": "Allocated", "companyName": "Gabon Wood Industries"}

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)select\s+fields\s+from\s+documents.*for\s+update`).
		WithArgs("gabon/GSEZ/phase1", "k1").
		WillReturnRows(sqlmock.NewRows([]string{"fields"}).AddRow(mustJSON(t, existing)))
	mock.ExpectExec(`update\s+documents\s+set\s+fields\s*=\s*\$3`).
		WithArgs("gabon/GSEZ/phase1", "k1", mustJSON(t, map[string]any{"plotStatus": "Available"})).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.Collection("gabon/GSEZ/phase1").Update(context.Background(), "k1", map[string]any{
		"plotStatus":  "Available",
		"companyName": nil,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateMissingDocument(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)select\s+fields\s+from\s+documents.*for\s+update`).
		WithArgs("gabon/GSEZ/phase1", "missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := store.Collection("gabon/GSEZ/phase1").Update(context.Background(), "missing", map[string]any{"a": "1"})
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestQueryBuildsFiltersAndCursor(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"key", "fields", "updated_at"}).
		AddRow("k2", mustJSON(t, map[string]any{"country": "gabon"}), now).
		AddRow("k3", mustJSON(t, map[string]any{"country": "gabon"}), now)

	mock.ExpectQuery(`(?s)select\s+key,\s*fields,\s*updated_at\s+from\s+documents\s+where\s+collection\s*=\s*\$1\s+and\s+fields->>\$2\s*=\s*\$3\s+and\s+key\s*>=\s*\$4\s+order\s+by\s+key\s+limit\s+\$5`).
		WithArgs("zone-master", "country", "gabon", "k2", 3).
		WillReturnRows(rows)

	docs, err := store.Collection("zone-master").Query().
		Where("country", "gabon").
		StartAt("k2").
		Limit(3).
		Documents(context.Background())
	if err != nil {
		t.Fatalf("Documents error: %v", err)
	}
	if len(docs) != 2 || docs[0].Key != "k2" || docs[1].Key != "k3" {
		t.Fatalf("unexpected docs: %+v", docs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestQueryStartAfter(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)select\s+key,\s*fields,\s*updated_at\s+from\s+documents\s+where\s+collection\s*=\s*\$1\s+and\s+key\s*>\s*\$2\s+order\s+by\s+key`).
		WithArgs("zone-master", "k1").
		WillReturnRows(sqlmock.NewRows([]string{"key", "fields", "updated_at"}))

	docs, err := store.Collection("zone-master").Query().
		StartAfter("k1").
		Documents(context.Background())
	if err != nil {
		t.Fatalf("Documents error: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected no docs, got %d", len(docs))
	}
}
