// Package tenancy decides which storage partition a request may touch. Two
// independent mechanisms apply: the static country->canonical-zone topology
// table, and the per-role zone pin derived from the caller's claims.
package tenancy

import (
	"fmt"
	"sort"
	"strings"
)

// defaultCanonical maps each supported tenant country (lowercased) to its
// canonical zone code. A caller-supplied (country, zoneCode) pair must match
// this table before any plot partition is addressed.
var defaultCanonical = map[string]string{
	"gabon":    "GSEZ",
	"benin":    "GDIZ",
	"togo":     "TSEZ",
	"roc":      "RSEZ",
	"rwanda":   "BSEZ",
	"drc":      "DSEZ",
	"nigeria":  "LFTZ",
	"tanzania": "TASEZ",
}

// Topology validates country/zone pairs and resolves partition paths.
type Topology struct {
	canonical map[string]string
}

// Default returns the topology backed by the built-in tenant table.
func Default() *Topology {
	return New(defaultCanonical)
}

// New builds a topology from a country->canonicalZone mapping. Keys are
// lowercased; values are kept as-is.
func New(mapping map[string]string) *Topology {
	canonical := make(map[string]string, len(mapping))
	for country, zone := range mapping {
		canonical[strings.ToLower(strings.TrimSpace(country))] = zone
	}
	return &Topology{canonical: canonical}
}

// Validate fails unless country is a supported tenant and zoneCode is its
// canonical zone. This is the tenant-boundary check; it runs before and
// independently of any role-based zone pin.
func (t *Topology) Validate(country, zoneCode string) error {
	key := strings.ToLower(strings.TrimSpace(country))
	canonical, ok := t.canonical[key]
	if !ok {
		return &TopologyError{Err: ErrUnsupportedCountry, Country: country, ZoneCode: zoneCode, Supported: t.Supported()}
	}
	if zoneCode != canonical {
		return &TopologyError{Err: ErrInvalidMapping, Country: country, ZoneCode: zoneCode, Supported: t.Supported()}
	}
	return nil
}

// Resolve validates the pair and returns the partition path for the
// (country, zoneCode, phase) triple, e.g. "gabon/GSEZ/phase1".
func (t *Topology) Resolve(country, zoneCode string, phase int) (string, error) {
	if err := t.Validate(country, zoneCode); err != nil {
		return "", err
	}
	if phase < 1 {
		return "", fmt.Errorf("tenancy: phase must be >= 1, got %d", phase)
	}
	return fmt.Sprintf("%s/%s/phase%d", strings.ToLower(strings.TrimSpace(country)), zoneCode, phase), nil
}

// Supported returns a copy of the country->canonicalZone table.
func (t *Topology) Supported() map[string]string {
	out := make(map[string]string, len(t.canonical))
	for k, v := range t.canonical {
		out[k] = v
	}
	return out
}

// CanonicalZones lists the canonical zone codes, sorted. Used to seed the
// token issuer's zone allow-list.
func (t *Topology) CanonicalZones() []string {
	out := make([]string, 0, len(t.canonical))
	for _, z := range t.canonical {
		out = append(out, z)
	}
	sort.Strings(out)
	return out
}
