package auth

// Require is the single authorization checkpoint: it checks that the verified
// claims grant action on resource. Handlers must not re-implement this check.
func Require(claims *Claims, resource, action string) error {
	if claims == nil {
		return ErrInvalidToken
	}
	if !claims.Allows(resource, action) {
		return ErrForbidden
	}
	return nil
}

// RequireRole is the explicit extra predicate for per-resource role
// carve-outs (e.g. only super_admin may manage users), layered on top of
// Require rather than re-checked inline in handlers.
func RequireRole(claims *Claims, role Role) error {
	if claims == nil {
		return ErrInvalidToken
	}
	if claims.Role != role {
		return ErrForbidden
	}
	return nil
}
