package plots

import (
	"context"
	"fmt"

	"zonegrid.org/internal/docstore"
	"zonegrid.org/internal/tenancy"
)

// Mutator executes validated single-document writes inside resolved plot
// partitions. Writes go through the same topology validation and zone-pin
// check as reads. Concurrent writes to the same plot are last-write-wins;
// there is no version field.
type Mutator struct {
	store    docstore.Store
	topology *tenancy.Topology
}

// NewMutator builds a mutation engine over the given store and topology.
func NewMutator(store docstore.Store, topology *tenancy.Topology) *Mutator {
	return &Mutator{store: store, topology: topology}
}

// AllocateRequest updates a plot's status and any explicitly supplied
// business fields. Nil optional fields are left untouched.
type AllocateRequest struct {
	Country   string
	ZoneCode  string
	Phase     int
	PlotName  string
	Status    string
	ScopeZone string

	Category            *string
	AreaInSqm           *float64
	AreaInHa            *float64
	CompanyName         *string
	Sector              *string
	Activity            *string
	InvestmentAmount    *float64
	EmploymentGenerated *int
	AllocatedDate       *string
	ExpiryDate          *string
}

// Allocate overwrites the plot's status and the supplied optional fields,
// returning the post-update record.
func (m *Mutator) Allocate(ctx context.Context, req AllocateRequest) (Plot, error) {
	status, err := canonicalStatus(req.Status, false)
	if err != nil {
		return Plot{}, err
	}
	col, doc, err := m.locate(ctx, req.Country, req.ZoneCode, req.Phase, req.PlotName, req.ScopeZone)
	if err != nil {
		return Plot{}, err
	}

	changes := map[string]any{}
	if req.Category != nil {
		if !validCategory(*req.Category) {
			return Plot{}, fmt.Errorf("%w: %q", ErrInvalidCategory, *req.Category)
		}
		changes["category"] = *req.Category
	}
	if req.AreaInSqm != nil {
		changes["areaInSqm"] = *req.AreaInSqm
	}
	if req.AreaInHa != nil {
		changes["areaInHa"] = *req.AreaInHa
	}
	if req.CompanyName != nil {
		changes["companyName"] = *req.CompanyName
	}
	if req.Sector != nil {
		changes["sector"] = *req.Sector
	}
	if req.Activity != nil {
		changes["activity"] = *req.Activity
	}
	if req.InvestmentAmount != nil {
		changes["investmentAmount"] = *req.InvestmentAmount
	}
	if req.EmploymentGenerated != nil {
		changes["employmentGenerated"] = *req.EmploymentGenerated
	}
	if req.AllocatedDate != nil {
		changes["allocatedDate"] = *req.AllocatedDate
	}
	if req.ExpiryDate != nil {
		changes["expiryDate"] = *req.ExpiryDate
	}

	if err := col.Update(ctx, doc.Key, shapeUpdate(doc, status, changes)); err != nil {
		return Plot{}, err
	}
	return m.reload(ctx, col, doc.Key, req.Country, req.ZoneCode, req.Phase)
}

// ReleaseRequest changes a plot's status. Releasing to Available clears the
// allocation fields in the same write.
type ReleaseRequest struct {
	Country   string
	ZoneCode  string
	Phase     int
	PlotName  string
	Status    string
	ScopeZone string
}

// Release sets the plot status. Available clears companyName, activity,
// investmentAmount, employmentGenerated and both dates atomically; Occupied
// leaves existing allocation fields untouched.
func (m *Mutator) Release(ctx context.Context, req ReleaseRequest) (Plot, error) {
	status, err := canonicalStatus(req.Status, true)
	if err != nil {
		return Plot{}, err
	}
	col, doc, err := m.locate(ctx, req.Country, req.ZoneCode, req.Phase, req.PlotName, req.ScopeZone)
	if err != nil {
		return Plot{}, err
	}

	changes := map[string]any{}
	if status == StatusAvailable {
		// Single merged write: the fields clear together or not at all.
		changes["companyName"] = nil
		changes["activity"] = nil
		changes["investmentAmount"] = nil
		changes["employmentGenerated"] = nil
		changes["allocatedDate"] = nil
		changes["expiryDate"] = nil
	}

	if err := col.Update(ctx, doc.Key, shapeUpdate(doc, status, changes)); err != nil {
		return Plot{}, err
	}
	return m.reload(ctx, col, doc.Key, req.Country, req.ZoneCode, req.Phase)
}

// locate resolves the partition, enforces the zone pin and finds the plot
// document by name: exact match first, then a whitespace-normalized
// case-insensitive fallback.
func (m *Mutator) locate(ctx context.Context, country, zoneCode string, phase int, plotName, scopeZone string) (docstore.Collection, docstore.Document, error) {
	path, err := m.topology.Resolve(country, zoneCode, phase)
	if err != nil {
		return nil, docstore.Document{}, err
	}
	if err := tenancy.CheckZone(scopeZone, zoneCode); err != nil {
		return nil, docstore.Document{}, err
	}
	col := m.store.Collection(path)

	docs, err := col.Query().Documents(ctx)
	if err != nil {
		return nil, docstore.Document{}, err
	}
	for _, doc := range docs {
		if documentName(doc) == plotName {
			return col, doc, nil
		}
	}
	want := normalizeName(plotName)
	for _, doc := range docs {
		if normalizeName(documentName(doc)) == want {
			return col, doc, nil
		}
	}
	return nil, docstore.Document{}, fmt.Errorf("%w: %q", ErrPlotNotFound, plotName)
}

// shapeUpdate routes business-field changes through the document's own
// layout. Documents carrying a "details" sub-object get their changes merged
// into it so a stale nested value never shadows a cleared or rewritten field;
// flat documents take the changes at the top level. Status always lands at
// the top level.
func shapeUpdate(doc docstore.Document, status string, changes map[string]any) map[string]any {
	update := map[string]any{"plotStatus": status}
	details, nested := doc.Fields["details"].(map[string]any)
	if !nested {
		for k, v := range changes {
			update[k] = v
		}
		return update
	}

	merged := make(map[string]any, len(details)+len(changes))
	for k, v := range details {
		merged[k] = v
	}
	for k, v := range changes {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	// A nested status copy would shadow the top-level value in reads.
	if _, ok := merged["plotStatus"]; ok {
		merged["plotStatus"] = status
	}
	update["details"] = merged

	// Clear any flat duplicates of cleared fields.
	for k, v := range changes {
		if v == nil {
			if _, ok := doc.Fields[k]; ok {
				update[k] = nil
			}
		}
	}
	return update
}

func (m *Mutator) reload(ctx context.Context, col docstore.Collection, key, country, zoneCode string, phase int) (Plot, error) {
	doc, err := col.Get(ctx, key)
	if err != nil {
		return Plot{}, err
	}
	return plotFromDocument(doc, country, zoneCode, phase), nil
}

// canonicalStatus validates a requested status. Release accepts only
// Available and Occupied/Allocated; Occupied stores as Allocated.
func canonicalStatus(raw string, release bool) (string, error) {
	switch raw {
	case StatusAvailable:
		return StatusAvailable, nil
	case StatusAllocated, StatusOccupied:
		return StatusAllocated, nil
	case StatusReserved:
		if release {
			return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
		}
		return StatusReserved, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}
