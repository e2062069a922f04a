package httpapi

import (
	"net/http"
	"strings"

	"zonegrid.org/internal/audit"
	"zonegrid.org/internal/auth"
	"zonegrid.org/internal/tenancy"
)

type registerZoneRequest struct {
	Country         string `json:"country"`
	ZoneCode        string `json:"zoneCode"`
	Phase           int    `json:"phase"`
	LandArea        string `json:"landArea"`
	ZoneName        string `json:"zoneName,omitempty"`
	ZoneType        string `json:"zoneType,omitempty"`
	EstablishedDate string `json:"establishedDate,omitempty"`
}

func (a *API) handleZones(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.registerZone(w, r)
	case http.MethodGet:
		a.listZones(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *API) registerZone(w http.ResponseWriter, r *http.Request) {
	if _, err := requireAccess(r.Context(), auth.ResourceZones, auth.ActionWrite); err != nil {
		handleDomainError(w, r, err)
		return
	}

	var req registerZoneRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	rec, err := a.zones.Register(r.Context(), tenancy.ZoneRecord{
		Country:         strings.TrimSpace(req.Country),
		ZoneCode:        strings.TrimSpace(req.ZoneCode),
		Phase:           req.Phase,
		LandArea:        strings.TrimSpace(req.LandArea),
		ZoneName:        strings.TrimSpace(req.ZoneName),
		ZoneType:        strings.TrimSpace(req.ZoneType),
		EstablishedDate: strings.TrimSpace(req.EstablishedDate),
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "zones.register", map[string]any{
		"country":   rec.Country,
		"zone_code": rec.ZoneCode,
		"phase":     rec.Phase,
	})

	writeJSON(w, http.StatusCreated, rec)
}

func (a *API) listZones(w http.ResponseWriter, r *http.Request) {
	if _, err := requireAccess(r.Context(), auth.ResourceZones, auth.ActionRead); err != nil {
		handleDomainError(w, r, err)
		return
	}

	zones, err := a.zones.List(r.Context(), r.URL.Query().Get("country"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"zones": zones})
}
