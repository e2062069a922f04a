package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"zonegrid.org/internal/auth"
	"zonegrid.org/internal/plots"
	"zonegrid.org/internal/tenancy"
	"zonegrid.org/internal/users"
)

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "zonegrid-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "zonegrid-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, errCode, msg string) {
	writeErrorDetails(w, r, code, errCode, msg, nil)
}

func writeErrorDetails(w http.ResponseWriter, r *http.Request, code int, errCode, msg string, details any) {
	payload := map[string]any{
		"error":      msg,
		"error_code": errCode,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	if details != nil {
		payload["details"] = details
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func parsePositiveInt(raw string, def, min, max int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("value must be an integer")
	}
	if val < min || val > max {
		return 0, fmt.Errorf("value must be between %d and %d", min, max)
	}
	return val, nil
}

// handleDomainError translates sentinel errors into HTTP responses. Topology
// failures carry the supported country table in the details field.
func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var topoErr *tenancy.TopologyError
	if errors.As(err, &topoErr) {
		code := "INVALID_ZONE_MAPPING"
		if errors.Is(err, tenancy.ErrUnsupportedCountry) {
			code = "UNSUPPORTED_COUNTRY"
		}
		writeErrorDetails(w, r, http.StatusBadRequest, code, err.Error(), map[string]any{
			"supported": topoErr.Supported,
		})
		return
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
	case errors.Is(err, auth.ErrElevationDenied):
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "issuance secret rejected")
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "FORBIDDEN", "permission denied")
	case errors.Is(err, tenancy.ErrZoneDenied):
		writeError(w, r, http.StatusForbidden, "ZONE_FORBIDDEN", "zone outside caller scope")
	case errors.Is(err, tenancy.ErrZoneExists):
		writeError(w, r, http.StatusConflict, "ZONE_EXISTS", err.Error())
	case errors.Is(err, plots.ErrPlotNotFound):
		writeError(w, r, http.StatusNotFound, "PLOT_NOT_FOUND", err.Error())
	case errors.Is(err, plots.ErrInvalidStatus),
		errors.Is(err, plots.ErrInvalidCategory),
		errors.Is(err, auth.ErrInvalidRole),
		errors.Is(err, auth.ErrInvalidZone),
		errors.Is(err, users.ErrInvalidEmail):
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, users.ErrUserExists):
		writeError(w, r, http.StatusConflict, "USER_EXISTS", err.Error())
	case errors.Is(err, users.ErrUserNotFound):
		writeError(w, r, http.StatusNotFound, "USER_NOT_FOUND", err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	}
}
