// Package plots executes the role-aware, partition-scoped reads and writes
// over plot documents. Partition resolution and zone pinning come from
// tenancy; the store shape is isolated behind the adapter in adapter.go.
package plots

import "errors"

var (
	ErrPlotNotFound    = errors.New("plots: plot not found")
	ErrInvalidStatus   = errors.New("plots: invalid plot status")
	ErrInvalidCategory = errors.New("plots: invalid category")
)

// Canonical plot statuses. "Occupied" is accepted on input as a synonym of
// Allocated; documents always store the canonical value.
const (
	StatusAvailable = "Available"
	StatusAllocated = "Allocated"
	StatusOccupied  = "Occupied"
	StatusReserved  = "Reserved"
)

// Plot categories.
const (
	CategoryResidential = "Residential"
	CategoryCommercial  = "Commercial"
	CategoryIndustrial  = "Industrial"
)

// Plot is the canonical public record shape. Allocation fields are optional
// and cleared together when a plot is released to Available.
type Plot struct {
	Name                string   `json:"plotName"`
	Status              string   `json:"plotStatus"`
	Category            string   `json:"category"`
	Phase               int      `json:"phase"`
	AreaInSqm           float64  `json:"areaInSqm"`
	AreaInHa            float64  `json:"areaInHa"`
	ZoneCode            string   `json:"zoneCode"`
	Country             string   `json:"country"`
	CompanyName         string   `json:"companyName,omitempty"`
	Sector              string   `json:"sector,omitempty"`
	Activity            string   `json:"activity,omitempty"`
	InvestmentAmount    *float64 `json:"investmentAmount,omitempty"`
	EmploymentGenerated *int     `json:"employmentGenerated,omitempty"`
	AllocatedDate       string   `json:"allocatedDate,omitempty"`
	ExpiryDate          string   `json:"expiryDate,omitempty"`
}

// Pagination bounds.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// PageInfo is the pagination metadata returned with every page.
type PageInfo struct {
	Limit         int    `json:"limit"`
	TotalReturned int    `json:"totalReturned"`
	HasNextPage   bool   `json:"hasNextPage"`
	NextCursor    string `json:"nextCursor,omitempty"`
}

// DetailsMetadata summarizes a zone's plot inventory.
type DetailsMetadata struct {
	Country        string `json:"country"`
	ZoneCode       string `json:"zoneCode"`
	TotalPlots     int    `json:"totalPlots"`
	AvailablePlots int    `json:"availablePlots"`
}

func clampLimit(n int) int {
	if n <= 0 {
		return DefaultPageLimit
	}
	if n > MaxPageLimit {
		return MaxPageLimit
	}
	return n
}

func validCategory(category string) bool {
	switch category {
	case CategoryResidential, CategoryCommercial, CategoryIndustrial:
		return true
	}
	return false
}
