package plots

import (
	"strconv"
	"strings"

	"zonegrid.org/internal/docstore"
)

// Stored documents come in two historical shapes: flat fields, and business
// fields nested under a "details" sub-object. This adapter folds both into
// the canonical Plot record so shape variance never reaches the query or
// authorization logic.

func plotFromDocument(doc docstore.Document, country, zoneCode string, phase int) Plot {
	fields := doc.Fields
	if details, ok := fields["details"].(map[string]any); ok {
		merged := make(map[string]any, len(fields)+len(details))
		for k, v := range fields {
			merged[k] = v
		}
		for k, v := range details {
			merged[k] = v
		}
		fields = merged
	}

	p := Plot{
		Name:     firstString(fields, "name", "plotName"),
		Status:   NormalizeStatus(stringField(fields, "plotStatus")),
		Category: NormalizeCategory(stringField(fields, "category")),
		Phase:    intField(fields, "phase"),
		ZoneCode: stringField(fields, "zoneCode"),
		Country:  stringField(fields, "country"),

		CompanyName:   stringField(fields, "companyName"),
		Sector:        stringField(fields, "sector"),
		Activity:      stringField(fields, "activity"),
		AllocatedDate: stringField(fields, "allocatedDate"),
		ExpiryDate:    stringField(fields, "expiryDate"),
	}

	p.AreaInSqm = floatField(fields, "areaInSqm")
	p.AreaInHa = floatField(fields, "areaInHa")
	// 1 ha = 10,000 square meters
	if p.AreaInHa == 0 && p.AreaInSqm > 0 {
		p.AreaInHa = p.AreaInSqm / 10000
	}

	if v, ok := optionalFloat(fields, "investmentAmount"); ok {
		p.InvestmentAmount = &v
	}
	if v, ok := optionalInt(fields, "employmentGenerated"); ok {
		p.EmploymentGenerated = &v
	}

	// Partition context fills gaps in older documents.
	if p.ZoneCode == "" {
		p.ZoneCode = zoneCode
	}
	if p.Country == "" {
		p.Country = country
	}
	if p.Phase == 0 {
		p.Phase = phase
	}
	return p
}

// NormalizeStatus maps stored status variants to the canonical enum.
// Missing or blank status reads as Available.
func NormalizeStatus(raw string) string {
	switch s := strings.ToLower(strings.TrimSpace(raw)); {
	case s == "":
		return StatusAvailable
	case strings.Contains(s, "available"):
		return StatusAvailable
	case strings.Contains(s, "occupied"), strings.Contains(s, "allocated"):
		return StatusAllocated
	case strings.Contains(s, "reserved"):
		return StatusReserved
	default:
		return StatusAvailable
	}
}

// NormalizeCategory maps stored category variants to the canonical enum.
// Unrecognized values pass through unchanged.
func NormalizeCategory(raw string) string {
	switch s := strings.ToLower(strings.TrimSpace(raw)); {
	case strings.Contains(s, "residential"):
		return CategoryResidential
	case strings.Contains(s, "commercial"):
		return CategoryCommercial
	case strings.Contains(s, "industrial"):
		return CategoryIndustrial
	default:
		return strings.TrimSpace(raw)
	}
}

// documentName extracts the plot name from either document shape without
// running the full adapter.
func documentName(doc docstore.Document) string {
	if details, ok := doc.Fields["details"].(map[string]any); ok {
		if name := firstString(details, "name", "plotName"); name != "" {
			return name
		}
	}
	return firstString(doc.Fields, "name", "plotName")
}

// normalizeName collapses whitespace and case for the fallback name match.
func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func firstString(fields map[string]any, names ...string) string {
	for _, n := range names {
		if v := stringField(fields, n); v != "" {
			return v
		}
	}
	return ""
}

func stringField(fields map[string]any, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}

func intField(fields map[string]any, name string) int {
	switch v := fields[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 0
}

func floatField(fields map[string]any, name string) float64 {
	v, _ := optionalFloat(fields, name)
	return v
}

func optionalFloat(fields map[string]any, name string) (float64, bool) {
	switch v := fields[name].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func optionalInt(fields map[string]any, name string) (int, bool) {
	switch v := fields[name].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n, true
		}
	}
	return 0, false
}
