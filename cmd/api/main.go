package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zonegrid.org/internal/auth"
	"zonegrid.org/internal/docstore"
	"zonegrid.org/internal/docstore/mem"
	"zonegrid.org/internal/docstore/pg"
	"zonegrid.org/internal/httpapi"
	"zonegrid.org/internal/obs"
	"zonegrid.org/internal/plots"
	"zonegrid.org/internal/tenancy"
	"zonegrid.org/internal/users"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	secret := os.Getenv("ZONEGRID_JWT_SECRET")
	if secret == "" {
		log.Fatal("ZONEGRID_JWT_SECRET is required")
	}

	topology := tenancy.Default()

	authOpts := []auth.Option{
		auth.WithZoneAllowlist(topology.CanonicalZones()...),
	}
	if hash := os.Getenv("ZONEGRID_AUTH_SECRET_HASH"); hash != "" {
		authOpts = append(authOpts, auth.WithElevationHash(hash))
	}
	if raw := os.Getenv("ZONEGRID_TOKEN_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("invalid ZONEGRID_TOKEN_TTL: %v", err)
		}
		authOpts = append(authOpts, auth.WithTTL(ttl))
	}
	tokens, err := auth.NewService(secret, authOpts...)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	// Postgres when a DSN is set, in-memory otherwise (dev mode).
	var (
		store docstore.Store
		ready httpapi.ReadyProbe
	)
	if dsn := os.Getenv("ZONEGRID_PG_DSN"); dsn != "" {
		pgStore, err := pg.Open(dsn)
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
		store = pgStore
		ready = httpapi.ReadyProbe{DB: pgStore.DB()}
	} else {
		log.Println("ZONEGRID_PG_DSN not set, using in-memory store")
		store = mem.New()
	}
	defer func() { _ = store.Close() }()

	api := httpapi.New(httpapi.Config{
		Tokens:  tokens,
		Queries: plots.NewQueryEngine(store, topology),
		Mutator: plots.NewMutator(store, topology),
		Zones:   tenancy.NewRegistry(store),
		Users:   users.NewDirectory(store),
		Ready:   ready,
		Version: version,
	})

	handler := httpapi.RequestID(
		httpapi.LoggingJSON(
			httpapi.SecurityHeaders(
				httpapi.CORS(
					httpapi.MaxBodyBytes(
						httpapi.RateLimit(api.Handler(), 20, 10),
						1<<20,
					),
				),
			),
		),
	)

	addr := os.Getenv("ZONEGRID_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting zonegrid-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
