package mem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zonegrid.org/internal/docstore"
)

func TestGetPutRoundTrip(t *testing.T) {
	store := New()
	col := store.Collection("gabon/GSEZ/phase1")
	ctx := context.Background()

	_, err := col.Get(ctx, "missing")
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	require.NoError(t, col.Put(ctx, "k1", map[string]any{"name": "Plot 1", "areaInSqm": 100.0}))

	doc, err := col.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "k1", doc.Key)
	assert.Equal(t, "Plot 1", doc.Fields["name"])
	assert.False(t, doc.UpdatedAt.IsZero())
}

func TestCollectionsAreIsolated(t *testing.T) {
	store := New()
	ctx := context.Background()
	require.NoError(t, store.Collection("a").Put(ctx, "k1", map[string]any{"v": 1}))

	_, err := store.Collection("b").Get(ctx, "k1")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestUpdateMergesAndClears(t *testing.T) {
	store := New()
	col := store.Collection("c")
	ctx := context.Background()

	require.NoError(t, col.Put(ctx, "k1", map[string]any{"a": "1", "b": "2", "c": "3"}))
	require.NoError(t, col.Update(ctx, "k1", map[string]any{"b": "20", "c": nil, "d": "4"}))

	doc, err := col.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "1", doc.Fields["a"])
	assert.Equal(t, "20", doc.Fields["b"])
	assert.NotContains(t, doc.Fields, "c")
	assert.Equal(t, "4", doc.Fields["d"])

	err = col.Update(ctx, "nope", map[string]any{"a": "1"})
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestDocumentsAreCopies(t *testing.T) {
	store := New()
	col := store.Collection("c")
	ctx := context.Background()

	require.NoError(t, col.Put(ctx, "k1", map[string]any{
		"name":    "original",
		"details": map[string]any{"companyName": "original co"},
	}))

	doc, err := col.Get(ctx, "k1")
	require.NoError(t, err)
	doc.Fields["name"] = "mutated"
	doc.Fields["details"].(map[string]any)["companyName"] = "mutated co"

	fresh, err := col.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "original", fresh.Fields["name"])
	assert.Equal(t, "original co", fresh.Fields["details"].(map[string]any)["companyName"])
}

func TestQueryOrderingAndCursors(t *testing.T) {
	store := New()
	col := store.Collection("c")
	ctx := context.Background()
	for _, k := range []string{"k3", "k1", "k5", "k2", "k4"} {
		require.NoError(t, col.Put(ctx, k, map[string]any{"name": k}))
	}

	all, err := col.Query().Documents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, want := range []string{"k1", "k2", "k3", "k4", "k5"} {
		assert.Equal(t, want, all[i].Key)
	}

	after, err := col.Query().StartAfter("k2").Documents(ctx)
	require.NoError(t, err)
	require.Len(t, after, 3)
	assert.Equal(t, "k3", after[0].Key)

	at, err := col.Query().StartAt("k2").Documents(ctx)
	require.NoError(t, err)
	require.Len(t, at, 4)
	assert.Equal(t, "k2", at[0].Key)

	limited, err := col.Query().Limit(2).Documents(ctx)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestQueryEqualityFilter(t *testing.T) {
	store := New()
	col := store.Collection("zone-master")
	ctx := context.Background()
	require.NoError(t, col.Put(ctx, "gabon_GSEZ", map[string]any{"country": "gabon", "phase": 1}))
	require.NoError(t, col.Put(ctx, "benin_GDIZ", map[string]any{"country": "benin", "phase": 1}))
	require.NoError(t, col.Put(ctx, "gabon_XSEZ", map[string]any{"country": "gabon", "phase": 2}))

	gabon, err := col.Query().Where("country", "gabon").Documents(ctx)
	require.NoError(t, err)
	assert.Len(t, gabon, 2)

	both, err := col.Query().Where("country", "gabon").Where("phase", 2).Documents(ctx)
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "gabon_XSEZ", both[0].Key)

	none, err := col.Query().Where("country", "togo").Documents(ctx)
	require.NoError(t, err)
	assert.Empty(t, none)
}
