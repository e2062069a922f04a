package plots

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zonegrid.org/internal/docstore"
	"zonegrid.org/internal/docstore/mem"
	"zonegrid.org/internal/tenancy"
)

func newMutator(t *testing.T) (*Mutator, docstore.Store) {
	t.Helper()
	store := mem.New()
	return NewMutator(store, tenancy.Default()), store
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func intPtr(n int) *int         { return &n }

func TestAllocateUpdatesOnlySuppliedFields(t *testing.T) {
	mut, store := newMutator(t)
	ctx := context.Background()
	seedPartition(t, store, gabonPhase1, map[string]map[string]any{
		"k001": {
			"name": "Plot A-101", "plotStatus": "Available",
			"category": "Industrial", "areaInSqm": 25000.0, "sector": "Timber",
		},
	})

	plot, err := mut.Allocate(ctx, AllocateRequest{
		Country: "gabon", ZoneCode: "GSEZ", Phase: 1,
		PlotName: "Plot A-101", Status: StatusAllocated,
		CompanyName:         strPtr("Gabon Wood Industries"),
		InvestmentAmount:    f64Ptr(2500000),
		EmploymentGenerated: intPtr(120),
		AllocatedDate:       strPtr("2025-06-01"),
	})
	require.NoError(t, err)

	assert.Equal(t, StatusAllocated, plot.Status)
	assert.Equal(t, "Gabon Wood Industries", plot.CompanyName)
	require.NotNil(t, plot.InvestmentAmount)
	assert.InDelta(t, 2500000, *plot.InvestmentAmount, 1e-9)
	require.NotNil(t, plot.EmploymentGenerated)
	assert.Equal(t, 120, *plot.EmploymentGenerated)

	// Untouched fields survive.
	assert.Equal(t, "Industrial", plot.Category)
	assert.InDelta(t, 25000, plot.AreaInSqm, 1e-9)
	assert.Equal(t, "Timber", plot.Sector)
}

func TestAllocateAcceptsOccupiedAsAllocated(t *testing.T) {
	mut, store := newMutator(t)
	seedPartition(t, store, gabonPhase1, map[string]map[string]any{
		"k001": {"name": "Plot A-101", "plotStatus": "Available"},
	})

	plot, err := mut.Allocate(context.Background(), AllocateRequest{
		Country: "gabon", ZoneCode: "GSEZ", Phase: 1,
		PlotName: "Plot A-101", Status: StatusOccupied,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusAllocated, plot.Status, "Occupied stores as Allocated")
}

func TestAllocateRejectsBadInput(t *testing.T) {
	mut, store := newMutator(t)
	ctx := context.Background()
	seedPartition(t, store, gabonPhase1, map[string]map[string]any{
		"k001": {"name": "Plot A-101"},
	})

	_, err := mut.Allocate(ctx, AllocateRequest{
		Country: "gabon", ZoneCode: "GSEZ", Phase: 1,
		PlotName: "Plot A-101", Status: "Demolished",
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = mut.Allocate(ctx, AllocateRequest{
		Country: "gabon", ZoneCode: "GSEZ", Phase: 1,
		PlotName: "Plot A-101", Status: StatusAllocated,
		Category: strPtr("Agricultural"),
	})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = mut.Allocate(ctx, AllocateRequest{
		Country: "gabon", ZoneCode: "GSEZ", Phase: 1,
		PlotName: "No Such Plot", Status: StatusAllocated,
	})
	assert.ErrorIs(t, err, ErrPlotNotFound)
}

func TestLocateFallsBackToNormalizedName(t *testing.T) {
	mut, store := newMutator(t)
	seedPartition(t, store, gabonPhase1, map[string]map[string]any{
		"k001": {"name": "Plot  A-101", "plotStatus": "Available"},
	})

	plot, err := mut.Allocate(context.Background(), AllocateRequest{
		Country: "gabon", ZoneCode: "GSEZ", Phase: 1,
		PlotName: "plot a-101", Status: StatusAllocated,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusAllocated, plot.Status)
}

func TestReleaseToAvailableClearsAllocationFields(t *testing.T) {
	mut, store := newMutator(t)
	ctx := context.Background()
	seedPartition(t, store, gabonPhase1, map[string]map[string]any{
		"k001": {
			"name": "Plot A-102", "plotStatus": "Allocated",
			"category": "Industrial", "areaInSqm": 18000.0,
			"companyName": "Gabon Wood Industries", "sector": "Timber",
			"activity": "Veneer production", "investmentAmount": 2500000.0,
			"employmentGenerated": 120, "allocatedDate": "2022-03-15",
			"expiryDate": "2032-03-14",
		},
	})

	plot, err := mut.Release(ctx, ReleaseRequest{
		Country: "gabon", ZoneCode: "GSEZ", Phase: 1,
		PlotName: "Plot A-102", Status: StatusAvailable,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusAvailable, plot.Status)
	assert.Empty(t, plot.CompanyName)
	assert.Empty(t, plot.Activity)
	assert.Nil(t, plot.InvestmentAmount)
	assert.Nil(t, plot.EmploymentGenerated)
	assert.Empty(t, plot.AllocatedDate)
	assert.Empty(t, plot.ExpiryDate)

	// Sector and the physical attributes stay.
	assert.Equal(t, "Timber", plot.Sector)
	assert.Equal(t, "Industrial", plot.Category)
	assert.InDelta(t, 18000, plot.AreaInSqm, 1e-9)

	// The stored document was cleared, not just the returned view.
	doc, err := store.Collection(gabonPhase1).Get(ctx, "k001")
	require.NoError(t, err)
	_, hasCompany := doc.Fields["companyName"]
	assert.False(t, hasCompany)
	_, hasInvestment := doc.Fields["investmentAmount"]
	assert.False(t, hasInvestment)
}

func TestReleaseClearsNestedDetails(t *testing.T) {
	mut, store := newMutator(t)
	ctx := context.Background()
	seedPartition(t, store, gabonPhase1, map[string]map[string]any{
		"k001": {
			"name": "GDIZ-02", "plotStatus": "Allocated",
			"details": map[string]any{
				"companyName": "Benin Textiles SA", "sector": "Textiles",
				"activity": "Cotton spinning", "investmentAmount": 4100000.0,
				"employmentGenerated": 340, "allocatedDate": "2023-01-20",
				"expiryDate": "2033-01-19",
			},
		},
	})

	plot, err := mut.Release(ctx, ReleaseRequest{
		Country: "gabon", ZoneCode: "GSEZ", Phase: 1,
		PlotName: "GDIZ-02", Status: StatusAvailable,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusAvailable, plot.Status)
	assert.Empty(t, plot.CompanyName)
	assert.Nil(t, plot.InvestmentAmount)
	assert.Equal(t, "Textiles", plot.Sector, "sector survives release")

	doc, err := store.Collection(gabonPhase1).Get(ctx, "k001")
	require.NoError(t, err)
	details, ok := doc.Fields["details"].(map[string]any)
	require.True(t, ok)
	_, hasCompany := details["companyName"]
	assert.False(t, hasCompany)
	assert.Equal(t, "Textiles", details["sector"])
}

func TestReleaseToOccupiedKeepsAllocationFields(t *testing.T) {
	mut, store := newMutator(t)
	seedPartition(t, store, gabonPhase1, map[string]map[string]any{
		"k001": {
			"name": "Plot A-102", "plotStatus": "Available",
			"companyName": "Benin Textiles SA", "allocatedDate": "2023-01-20",
		},
	})

	plot, err := mut.Release(context.Background(), ReleaseRequest{
		Country: "gabon", ZoneCode: "GSEZ", Phase: 1,
		PlotName: "Plot A-102", Status: StatusOccupied,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusAllocated, plot.Status)
	assert.Equal(t, "Benin Textiles SA", plot.CompanyName)
	assert.Equal(t, "2023-01-20", plot.AllocatedDate)
}

func TestReleaseRejectsReserved(t *testing.T) {
	mut, store := newMutator(t)
	seedPartition(t, store, gabonPhase1, map[string]map[string]any{
		"k001": {"name": "Plot A-102"},
	})

	_, err := mut.Release(context.Background(), ReleaseRequest{
		Country: "gabon", ZoneCode: "GSEZ", Phase: 1,
		PlotName: "Plot A-102", Status: StatusReserved,
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestMutationsHonorZonePin(t *testing.T) {
	mut, store := newMutator(t)
	ctx := context.Background()
	seedPartition(t, store, "benin/GDIZ/phase1", map[string]map[string]any{
		"k001": {"name": "GDIZ-01", "plotStatus": "Available"},
	})

	_, err := mut.Allocate(ctx, AllocateRequest{
		Country: "benin", ZoneCode: "GDIZ", Phase: 1,
		PlotName: "GDIZ-01", Status: StatusAllocated, ScopeZone: "GSEZ",
	})
	assert.ErrorIs(t, err, tenancy.ErrZoneDenied)

	_, err = mut.Release(ctx, ReleaseRequest{
		Country: "benin", ZoneCode: "GDIZ", Phase: 1,
		PlotName: "GDIZ-01", Status: StatusAvailable, ScopeZone: "GSEZ",
	})
	assert.ErrorIs(t, err, tenancy.ErrZoneDenied)
}
