// Command seed loads demo zone and plot records into the document store.
// Plot creation is out of band for the API, so this is the only writer that
// creates plot documents from scratch.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"zonegrid.org/internal/docstore/pg"
	"zonegrid.org/internal/ids"
	"zonegrid.org/internal/tenancy"
)

type demoPlot struct {
	country  string
	zoneCode string
	phase    int
	fields   map[string]any
}

var demoZones = []tenancy.ZoneRecord{
	{Country: "gabon", ZoneCode: "GSEZ", Phase: 1, LandArea: "1126 ha", ZoneName: "Nkok Special Economic Zone", ZoneType: "SEZ", EstablishedDate: "2010-08-09"},
	{Country: "benin", ZoneCode: "GDIZ", Phase: 1, LandArea: "1640 ha", ZoneName: "Glo-Djigbe Industrial Zone", ZoneType: "Industrial", EstablishedDate: "2020-02-05"},
	{Country: "togo", ZoneCode: "TSEZ", Phase: 1, LandArea: "400 ha", ZoneName: "Adetikope Industrial Platform", ZoneType: "Industrial", EstablishedDate: "2021-06-06"},
}

var demoPlots = []demoPlot{
	{"gabon", "GSEZ", 1, map[string]any{
		"name": "Plot A-101", "plotStatus": "Available", "category": "Industrial",
		"areaInSqm": 25000.0, "zoneCode": "GSEZ", "country": "gabon", "phase": 1,
	}},
	{"gabon", "GSEZ", 1, map[string]any{
		"name": "Plot A-102", "plotStatus": "Occupied", "category": "Industrial",
		"areaInSqm": 18000.0, "zoneCode": "GSEZ", "country": "gabon", "phase": 1,
		"details": map[string]any{
			"companyName": "Gabon Wood Industries", "sector": "Timber",
			"activity": "Veneer production", "investmentAmount": 2500000.0,
			"employmentGenerated": 120, "allocatedDate": "2022-03-15", "expiryDate": "2032-03-14",
		},
	}},
	{"gabon", "GSEZ", 1, map[string]any{
		"name": "Plot B-201", "plotStatus": "", "category": "Commercial",
		"areaInSqm": 9000.0,
	}},
	{"gabon", "GSEZ", 1, map[string]any{
		"name": "Plot B-202", "plotStatus": "Reserved", "category": "Commercial",
		"areaInSqm": 7500.0, "areaInHa": 0.75,
	}},
	{"gabon", "GSEZ", 1, map[string]any{
		"name": "Plot C-301", "plotStatus": "Available", "category": "Residential",
		"areaInSqm": 4000.0,
	}},
	{"benin", "GDIZ", 1, map[string]any{
		"name": "GDIZ-01", "plotStatus": "Available", "category": "Industrial",
		"areaInSqm": 30000.0,
	}},
	{"benin", "GDIZ", 1, map[string]any{
		"name": "GDIZ-02", "plotStatus": "allocated", "category": "Industrial",
		"areaInSqm": 22000.0,
		"details": map[string]any{
			"companyName": "Benin Textiles SA", "sector": "Textiles",
			"activity": "Cotton spinning", "investmentAmount": 4100000.0,
			"employmentGenerated": 340, "allocatedDate": "2023-01-20", "expiryDate": "2033-01-19",
		},
	}},
	{"togo", "TSEZ", 1, map[string]any{
		"name": "PIA-1", "plotStatus": "Available", "category": "Industrial",
		"areaInSqm": 15000.0,
	}},
}

func main() {
	log.SetFlags(0)
	dsn := flag.String("dsn", os.Getenv("ZONEGRID_PG_DSN"), "PostgreSQL DSN")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or ZONEGRID_PG_DSN")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	store, err := pg.Open(*dsn)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	topology := tenancy.Default()
	registry := tenancy.NewRegistry(store)

	for _, zone := range demoZones {
		if _, err := registry.Register(ctx, zone); err != nil {
			if errors.Is(err, tenancy.ErrZoneExists) {
				log.Printf("zone %s_%s already registered, skipping", zone.Country, zone.ZoneCode)
				continue
			}
			log.Fatalf("register zone %s_%s: %v", zone.Country, zone.ZoneCode, err)
		}
		log.Printf("registered zone %s_%s", zone.Country, zone.ZoneCode)
	}

	seeded := 0
	for _, p := range demoPlots {
		path, err := topology.Resolve(p.country, p.zoneCode, p.phase)
		if err != nil {
			log.Fatalf("resolve partition for %v: %v", p.fields["name"], err)
		}
		if err := store.Collection(path).Put(ctx, ids.New(), p.fields); err != nil {
			log.Fatalf("seed plot %v: %v", p.fields["name"], err)
		}
		seeded++
	}
	log.Printf("seeded %d plots across %d zones", seeded, len(demoZones))
}
