package auth

// Role identifies a caller's access tier.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleZoneAdmin  Role = "zone_admin"
	RoleNormalUser Role = "normal_user"
)

// Protected resources and actions.
const (
	ResourcePlots = "plots"
	ResourceZones = "zones"
	ResourceUsers = "users"

	ActionRead  = "read"
	ActionWrite = "write"
)

// PermissionSet lists the resources a role may read and write. The set is
// embedded into issued tokens and never recomputed afterwards; a table change
// does not alter tokens already in flight.
type PermissionSet struct {
	Read  []string `json:"read"`
	Write []string `json:"write"`
}

var permissionTable = map[Role]PermissionSet{
	RoleSuperAdmin: {
		Read:  []string{ResourcePlots, ResourceZones, ResourceUsers},
		Write: []string{ResourcePlots, ResourceZones, ResourceUsers},
	},
	RoleZoneAdmin: {
		Read:  []string{ResourcePlots, ResourceZones},
		Write: []string{ResourcePlots, ResourceZones},
	},
	RoleNormalUser: {
		Read:  []string{ResourcePlots, ResourceZones},
		Write: []string{},
	},
}

// ValidRole reports whether role is one of the three defined roles.
func ValidRole(role Role) bool {
	_, ok := permissionTable[role]
	return ok
}

// PermissionsFor returns the permission set for role. Unknown roles get an
// empty set rather than an error.
func PermissionsFor(role Role) PermissionSet {
	set, ok := permissionTable[role]
	if !ok {
		return PermissionSet{Read: []string{}, Write: []string{}}
	}
	out := PermissionSet{
		Read:  make([]string, len(set.Read)),
		Write: make([]string, len(set.Write)),
	}
	copy(out.Read, set.Read)
	copy(out.Write, set.Write)
	return out
}

// Allows reports whether the set grants action on resource.
func (p PermissionSet) Allows(resource, action string) bool {
	var list []string
	switch action {
	case ActionRead:
		list = p.Read
	case ActionWrite:
		list = p.Write
	default:
		return false
	}
	for _, r := range list {
		if r == resource {
			return true
		}
	}
	return false
}
