package permission

const (
	// RoleUser is the role assumed when a token carries no role claim.
	RoleUser = "user"
	// RoleAdmin unlocks the administrative subtree.
	RoleAdmin = "admin"
)

// IsKnownRole reports whether role is one of the roles issued by the backend.
// Unknown roles are still honored by callers; this only drives warnings.
func IsKnownRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// Contains reports whether role is present in roles.
func Contains(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
