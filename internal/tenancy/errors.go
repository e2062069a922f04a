package tenancy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnsupportedCountry = errors.New("tenancy: unsupported country")
	ErrInvalidMapping     = errors.New("tenancy: zone code does not match country")
	ErrZoneDenied         = errors.New("tenancy: zone outside caller scope")
	ErrZoneExists         = errors.New("tenancy: zone already registered")
)

// TopologyError carries the supported country->zone table alongside the
// sentinel so the HTTP layer can include it in bad-request responses.
type TopologyError struct {
	Err       error
	Country   string
	ZoneCode  string
	Supported map[string]string
}

func (e *TopologyError) Error() string {
	countries := make([]string, 0, len(e.Supported))
	for c := range e.Supported {
		countries = append(countries, c)
	}
	sort.Strings(countries)
	return fmt.Sprintf("%v: country=%q zoneCode=%q (supported countries: %s)",
		e.Err, e.Country, e.ZoneCode, strings.Join(countries, ", "))
}

func (e *TopologyError) Unwrap() error { return e.Err }
