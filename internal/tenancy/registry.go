package tenancy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"zonegrid.org/internal/docstore"
)

// zoneCollection is the master-data collection holding one document per
// registered zone, keyed by "{country}_{zoneCode}".
const zoneCollection = "zone-master"

// ZoneRecord is a create-once entry of zone master data. Country is stored
// lowercased to match the topology table's keying.
type ZoneRecord struct {
	Country         string    `json:"country"`
	ZoneCode        string    `json:"zoneCode"`
	Phase           int       `json:"phase"`
	LandArea        string    `json:"landArea"`
	ZoneName        string    `json:"zoneName,omitempty"`
	ZoneType        string    `json:"zoneType,omitempty"`
	EstablishedDate string    `json:"establishedDate,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Key returns the composite identifier for the record.
func (z ZoneRecord) Key() string {
	return strings.ToLower(z.Country) + "_" + z.ZoneCode
}

// Registry manages zone master data. Entries are append-only: there is no
// update-in-place operation, and re-registration of an existing key fails.
type Registry struct {
	zones docstore.Collection
	now   func() time.Time
}

// NewRegistry builds a registry over the given store.
func NewRegistry(store docstore.Store) *Registry {
	return &Registry{zones: store.Collection(zoneCollection), now: time.Now}
}

// Register stores a new zone record. Fails with ErrZoneExists when the
// composite key is already present; the existence check is a key lookup, not
// a scan.
func (r *Registry) Register(ctx context.Context, rec ZoneRecord) (ZoneRecord, error) {
	rec.Country = strings.ToLower(strings.TrimSpace(rec.Country))
	rec.ZoneCode = strings.TrimSpace(rec.ZoneCode)
	if rec.Country == "" {
		return ZoneRecord{}, errors.New("tenancy: country is required")
	}
	if !isZoneCode(rec.ZoneCode) {
		return ZoneRecord{}, fmt.Errorf("tenancy: zone code %q must be 4-6 uppercase letters", rec.ZoneCode)
	}
	if rec.Phase < 1 {
		return ZoneRecord{}, fmt.Errorf("tenancy: phase must be >= 1, got %d", rec.Phase)
	}
	if strings.TrimSpace(rec.LandArea) == "" {
		return ZoneRecord{}, errors.New("tenancy: landArea is required")
	}

	key := rec.Key()
	if _, err := r.zones.Get(ctx, key); err == nil {
		return ZoneRecord{}, fmt.Errorf("%w: %s", ErrZoneExists, key)
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return ZoneRecord{}, err
	}

	rec.CreatedAt = r.now().UTC()
	if err := r.zones.Put(ctx, key, zoneFields(rec)); err != nil {
		return ZoneRecord{}, err
	}
	return rec, nil
}

// List returns registered zones, optionally filtered by country.
func (r *Registry) List(ctx context.Context, country string) ([]ZoneRecord, error) {
	q := r.zones.Query()
	if strings.TrimSpace(country) != "" {
		q = q.Where("country", strings.ToLower(strings.TrimSpace(country)))
	}
	docs, err := q.Documents(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ZoneRecord, 0, len(docs))
	for _, doc := range docs {
		out = append(out, zoneFromFields(doc))
	}
	return out, nil
}

func isZoneCode(zone string) bool {
	if len(zone) < 4 || len(zone) > 6 {
		return false
	}
	for _, r := range zone {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func zoneFields(rec ZoneRecord) map[string]any {
	fields := map[string]any{
		"country":   rec.Country,
		"zoneCode":  rec.ZoneCode,
		"phase":     rec.Phase,
		"landArea":  rec.LandArea,
		"createdAt": rec.CreatedAt.Format(time.RFC3339),
	}
	if rec.ZoneName != "" {
		fields["zoneName"] = rec.ZoneName
	}
	if rec.ZoneType != "" {
		fields["zoneType"] = rec.ZoneType
	}
	if rec.EstablishedDate != "" {
		fields["establishedDate"] = rec.EstablishedDate
	}
	return fields
}

func zoneFromFields(doc docstore.Document) ZoneRecord {
	rec := ZoneRecord{
		Country:         stringField(doc.Fields, "country"),
		ZoneCode:        stringField(doc.Fields, "zoneCode"),
		Phase:           intField(doc.Fields, "phase"),
		LandArea:        stringField(doc.Fields, "landArea"),
		ZoneName:        stringField(doc.Fields, "zoneName"),
		ZoneType:        stringField(doc.Fields, "zoneType"),
		EstablishedDate: stringField(doc.Fields, "establishedDate"),
	}
	if ts := stringField(doc.Fields, "createdAt"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.CreatedAt = parsed
		}
	}
	return rec
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
	default:
		return 0
	}
}
