package tenancy

import "zonegrid.org/internal/auth"

// EffectiveZone derives the zone restriction for a request: a zone_admin is
// pinned to their assigned zone, every other role queries unpinned. This is
// the sole place the role-to-pin rule lives.
func EffectiveZone(claims *auth.Claims) string {
	if claims != nil && claims.Role == auth.RoleZoneAdmin {
		return claims.Zone
	}
	return ""
}

// CheckZone rejects an operation targeting a zone other than the pin. A
// missing pin allows any zone.
func CheckZone(pin, zoneCode string) error {
	if pin != "" && pin != zoneCode {
		return ErrZoneDenied
	}
	return nil
}
