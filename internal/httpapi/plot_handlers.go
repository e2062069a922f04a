package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"zonegrid.org/internal/audit"
	"zonegrid.org/internal/auth"
	"zonegrid.org/internal/plots"
	"zonegrid.org/internal/tenancy"
)

type plotsPageResponse struct {
	Plots      []plots.Plot   `json:"plots"`
	Pagination plots.PageInfo `json:"pagination"`
}

type plotsDetailResponse struct {
	Metadata plots.DetailsMetadata `json:"metadata"`
	Plots    []plots.Plot          `json:"plots"`
}

func (a *API) handlePlotsAvailable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	claims, err := requireAccess(r.Context(), auth.ResourcePlots, auth.ActionRead)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	q := r.URL.Query()
	phase, err := parsePositiveInt(q.Get("phase"), 1, 1, 99)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "phase "+err.Error())
		return
	}
	limit, err := parsePositiveInt(q.Get("limit"), plots.DefaultPageLimit, 1, plots.MaxPageLimit)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "limit "+err.Error())
		return
	}

	items, page, err := a.queries.List(r.Context(), plots.ListRequest{
		Country:   strings.TrimSpace(q.Get("country")),
		ZoneCode:  strings.TrimSpace(q.Get("zoneCode")),
		Phase:     phase,
		Category:  strings.TrimSpace(q.Get("category")),
		Limit:     limit,
		Cursor:    strings.TrimSpace(q.Get("cursor")),
		ScopeZone: tenancy.EffectiveZone(claims),
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, plotsPageResponse{Plots: items, Pagination: page})
}

func (a *API) handlePlotsDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	claims, err := requireAccess(r.Context(), auth.ResourcePlots, auth.ActionRead)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	q := r.URL.Query()
	phase, err := parsePositiveInt(q.Get("phase"), 1, 1, 99)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "phase "+err.Error())
		return
	}
	limit, err := parsePositiveInt(q.Get("limit"), plots.DefaultPageLimit, 1, plots.MaxPageLimit)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "limit "+err.Error())
		return
	}

	items, meta, page, err := a.queries.Details(r.Context(), plots.DetailsRequest{
		Country:   strings.TrimSpace(q.Get("country")),
		ZoneCode:  strings.TrimSpace(q.Get("zoneCode")),
		Phase:     phase,
		Limit:     limit,
		Cursor:    strings.TrimSpace(q.Get("cursor")),
		ScopeZone: tenancy.EffectiveZone(claims),
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	// Pagination for the detail view travels in headers so the body stays a
	// plain metadata+records document.
	w.Header().Set("X-Pagination-Limit", strconv.Itoa(page.Limit))
	w.Header().Set("X-Pagination-Total-Returned", strconv.Itoa(page.TotalReturned))
	w.Header().Set("X-Pagination-Has-Next", strconv.FormatBool(page.HasNextPage))
	if page.NextCursor != "" {
		w.Header().Set("X-Pagination-Next-Cursor", page.NextCursor)
	}
	writeJSON(w, http.StatusOK, plotsDetailResponse{Metadata: meta, Plots: items})
}

type allocateRequest struct {
	Country    string `json:"country"`
	ZoneCode   string `json:"zoneCode"`
	Phase      int    `json:"phase"`
	PlotName   string `json:"plotName"`
	PlotStatus string `json:"plotStatus"`

	Category            *string  `json:"category,omitempty"`
	AreaInSqm           *float64 `json:"areaInSqm,omitempty"`
	AreaInHa            *float64 `json:"areaInHa,omitempty"`
	CompanyName         *string  `json:"companyName,omitempty"`
	Sector              *string  `json:"sector,omitempty"`
	Activity            *string  `json:"activity,omitempty"`
	InvestmentAmount    *float64 `json:"investmentAmount,omitempty"`
	EmploymentGenerated *int     `json:"employmentGenerated,omitempty"`
	AllocatedDate       *string  `json:"allocatedDate,omitempty"`
	ExpiryDate          *string  `json:"expiryDate,omitempty"`
}

func (a *API) handlePlotAllocate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	claims, err := requireAccess(r.Context(), auth.ResourcePlots, auth.ActionWrite)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	var req allocateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if strings.TrimSpace(req.PlotName) == "" {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "plotName is required")
		return
	}
	if strings.TrimSpace(req.PlotStatus) == "" {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "plotStatus is required")
		return
	}

	plot, err := a.mutator.Allocate(r.Context(), plots.AllocateRequest{
		Country:             strings.TrimSpace(req.Country),
		ZoneCode:            strings.TrimSpace(req.ZoneCode),
		Phase:               req.Phase,
		PlotName:            strings.TrimSpace(req.PlotName),
		Status:              strings.TrimSpace(req.PlotStatus),
		ScopeZone:           tenancy.EffectiveZone(claims),
		Category:            req.Category,
		AreaInSqm:           req.AreaInSqm,
		AreaInHa:            req.AreaInHa,
		CompanyName:         req.CompanyName,
		Sector:              req.Sector,
		Activity:            req.Activity,
		InvestmentAmount:    req.InvestmentAmount,
		EmploymentGenerated: req.EmploymentGenerated,
		AllocatedDate:       req.AllocatedDate,
		ExpiryDate:          req.ExpiryDate,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "plots.allocate", map[string]any{
		"country":   req.Country,
		"zone_code": req.ZoneCode,
		"phase":     req.Phase,
		"plot_name": req.PlotName,
		"status":    plot.Status,
	})

	writeJSON(w, http.StatusOK, plot)
}

type releaseRequest struct {
	Country    string `json:"country"`
	ZoneCode   string `json:"zoneCode"`
	Phase      int    `json:"phase"`
	PlotName   string `json:"plotName"`
	PlotStatus string `json:"plotStatus"`
}

func (a *API) handlePlotRelease(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		methodNotAllowed(w, r, http.MethodPatch)
		return
	}
	claims, err := requireAccess(r.Context(), auth.ResourcePlots, auth.ActionWrite)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	var req releaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if strings.TrimSpace(req.PlotName) == "" {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "plotName is required")
		return
	}

	plot, err := a.mutator.Release(r.Context(), plots.ReleaseRequest{
		Country:   strings.TrimSpace(req.Country),
		ZoneCode:  strings.TrimSpace(req.ZoneCode),
		Phase:     req.Phase,
		PlotName:  strings.TrimSpace(req.PlotName),
		Status:    strings.TrimSpace(req.PlotStatus),
		ScopeZone: tenancy.EffectiveZone(claims),
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "plots.release", map[string]any{
		"country":   req.Country,
		"zone_code": req.ZoneCode,
		"phase":     req.Phase,
		"plot_name": req.PlotName,
		"status":    plot.Status,
	})

	writeJSON(w, http.StatusOK, plot)
}
