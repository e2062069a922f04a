// Package httpapi is the HTTP boundary: routing, bearer authentication,
// request middleware and the translation of domain errors into status codes.
// Authorization decisions delegate to auth; no handler re-implements a
// permission check inline.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"

	"zonegrid.org/internal/auth"
	"zonegrid.org/internal/obs"
	"zonegrid.org/internal/plots"
	"zonegrid.org/internal/tenancy"
	"zonegrid.org/internal/users"
)

// ReadyProbe checks backing-store readiness (DB ping when present).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Config carries the wired service dependencies.
type Config struct {
	Tokens  *auth.Service
	Queries *plots.QueryEngine
	Mutator *plots.Mutator
	Zones   *tenancy.Registry
	Users   *users.Directory
	Ready   ReadyProbe
	Version string
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	tokens     *auth.Service
	queries    *plots.QueryEngine
	mutator    *plots.Mutator
	zones      *tenancy.Registry
	users      *users.Directory
	readyProbe ReadyProbe
	version    string
}

func New(cfg Config) *API {
	a := &API{
		mux:        http.NewServeMux(),
		tokens:     cfg.Tokens,
		queries:    cfg.Queries,
		mutator:    cfg.Mutator,
		zones:      cfg.Zones,
		users:      cfg.Users,
		readyProbe: cfg.Ready,
		version:    cfg.Version,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/auth/token", a.handleAuthToken)
	a.mux.HandleFunc("/v1/plots/available", a.handlePlotsAvailable)
	a.mux.HandleFunc("/v1/plots/detail", a.handlePlotsDetail)
	a.mux.HandleFunc("/v1/plots/allocate", a.handlePlotAllocate)
	a.mux.HandleFunc("/v1/plots/release", a.handlePlotRelease)
	a.mux.HandleFunc("/v1/zones", a.handleZones)
	a.mux.HandleFunc("/v1/users", a.handleUsers)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the instrumented, authenticated handler chain. Outer
// middleware (request IDs, logging, limits) is layered in cmd/api.
func (a *API) Handler() http.Handler {
	return obs.Instrument(a.withAuth(a.mux))
}
