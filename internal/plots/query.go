package plots

import (
	"context"
	"errors"
	"fmt"

	"zonegrid.org/internal/docstore"
	"zonegrid.org/internal/tenancy"
)

// QueryEngine executes filtered, paginated reads against resolved plot
// partitions.
type QueryEngine struct {
	store    docstore.Store
	topology *tenancy.Topology
}

// NewQueryEngine builds a query engine over the given store and topology.
func NewQueryEngine(store docstore.Store, topology *tenancy.Topology) *QueryEngine {
	return &QueryEngine{store: store, topology: topology}
}

// ListRequest selects a partition and page. ScopeZone is the caller's zone
// pin ("" when unpinned); Cursor is the key returned as NextCursor by a
// previous page.
type ListRequest struct {
	Country   string
	ZoneCode  string
	Phase     int
	Category  string
	Limit     int
	Cursor    string
	ScopeZone string
}

// List returns one page of plots from the partition addressed by the
// request, in stable document-key order.
func (e *QueryEngine) List(ctx context.Context, req ListRequest) ([]Plot, PageInfo, error) {
	if req.Category != "" && !validCategory(req.Category) {
		return nil, PageInfo{}, fmt.Errorf("%w: %q", ErrInvalidCategory, req.Category)
	}
	col, err := e.partition(ctx, req.Country, req.ZoneCode, req.Phase, req.ScopeZone)
	if err != nil {
		return nil, PageInfo{}, err
	}

	limit := clampLimit(req.Limit)
	docs, hasNext, nextCursor, err := fetchPage(ctx, col, limit, req.Cursor)
	if err != nil {
		return nil, PageInfo{}, err
	}

	// Category filtering happens here rather than in the store: partition
	// documents are not uniformly shaped, so the filter runs on the
	// normalized record.
	out := make([]Plot, 0, len(docs))
	for _, doc := range docs {
		p := plotFromDocument(doc, req.Country, req.ZoneCode, req.Phase)
		if req.Category != "" && p.Category != req.Category {
			continue
		}
		out = append(out, p)
	}

	page := PageInfo{
		Limit:         limit,
		TotalReturned: len(out),
		HasNextPage:   hasNext,
	}
	if hasNext {
		page.NextCursor = nextCursor
	}
	return out, page, nil
}

// DetailsRequest selects a zone partition for the detail view.
type DetailsRequest struct {
	Country   string
	ZoneCode  string
	Phase     int
	Limit     int
	Cursor    string
	ScopeZone string
}

// Details returns a page of plots plus inventory counts for the whole
// partition. Counts cover every document, not just the returned page.
func (e *QueryEngine) Details(ctx context.Context, req DetailsRequest) ([]Plot, DetailsMetadata, PageInfo, error) {
	col, err := e.partition(ctx, req.Country, req.ZoneCode, req.Phase, req.ScopeZone)
	if err != nil {
		return nil, DetailsMetadata{}, PageInfo{}, err
	}

	all, err := col.Query().Documents(ctx)
	if err != nil {
		return nil, DetailsMetadata{}, PageInfo{}, err
	}
	meta := DetailsMetadata{Country: req.Country, ZoneCode: req.ZoneCode, TotalPlots: len(all)}
	for _, doc := range all {
		if NormalizeStatus(stringField(flatFields(doc), "plotStatus")) == StatusAvailable {
			meta.AvailablePlots++
		}
	}

	limit := clampLimit(req.Limit)
	docs, hasNext, nextCursor, err := fetchPage(ctx, col, limit, req.Cursor)
	if err != nil {
		return nil, DetailsMetadata{}, PageInfo{}, err
	}
	out := make([]Plot, 0, len(docs))
	for _, doc := range docs {
		out = append(out, plotFromDocument(doc, req.Country, req.ZoneCode, req.Phase))
	}
	page := PageInfo{
		Limit:         limit,
		TotalReturned: len(out),
		HasNextPage:   hasNext,
	}
	if hasNext {
		page.NextCursor = nextCursor
	}
	return out, meta, page, nil
}

// partition validates the tenant pair, enforces the caller's zone pin and
// resolves the collection handle.
func (e *QueryEngine) partition(ctx context.Context, country, zoneCode string, phase int, scopeZone string) (docstore.Collection, error) {
	path, err := e.topology.Resolve(country, zoneCode, phase)
	if err != nil {
		return nil, err
	}
	if err := tenancy.CheckZone(scopeZone, zoneCode); err != nil {
		return nil, err
	}
	return e.store.Collection(path), nil
}

// fetchPage reads limit+1 documents to detect a next page without a second
// round trip. The cursor resumes inclusively at the first record of the
// requested page; a cursor that no longer resolves to a document falls back
// to the beginning of the range.
func fetchPage(ctx context.Context, col docstore.Collection, limit int, cursor string) ([]docstore.Document, bool, string, error) {
	if cursor != "" {
		if _, err := col.Get(ctx, cursor); errors.Is(err, docstore.ErrNotFound) {
			cursor = ""
		} else if err != nil {
			return nil, false, "", err
		}
	}

	q := col.Query().Limit(limit + 1)
	if cursor != "" {
		q = q.StartAt(cursor)
	}
	docs, err := q.Documents(ctx)
	if err != nil {
		return nil, false, "", err
	}

	if len(docs) > limit {
		next := docs[limit].Key
		return docs[:limit], true, next, nil
	}
	return docs, false, "", nil
}

func flatFields(doc docstore.Document) map[string]any {
	if details, ok := doc.Fields["details"].(map[string]any); ok {
		merged := make(map[string]any, len(doc.Fields)+len(details))
		for k, v := range doc.Fields {
			merged[k] = v
		}
		for k, v := range details {
			merged[k] = v
		}
		return merged
	}
	return doc.Fields
}
