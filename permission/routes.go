package permission

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// RouteTable maps exact paths to the roles allowed to open them.
//
// RouteTable is configured during initialization, frozen, and then read
// concurrently by guards.
type RouteTable struct {
	mu     sync.RWMutex
	routes map[string][]string
	frozen bool
}

// NewRouteTable returns an empty, writable table.
func NewRouteTable() *RouteTable {
	return &RouteTable{
		routes: make(map[string][]string),
	}
}

// DefaultRoutes returns the route permissions shipped with the application.
func DefaultRoutes() map[string][]string {
	return map[string][]string{
		"/protected/dashboard":      {RoleUser, RoleAdmin},
		"/protected/admin":          {RoleAdmin},
		"/protected/admin/users":    {RoleAdmin},
		"/protected/admin/settings": {RoleAdmin},
	}
}

// NewRouteTableFrom registers every entry of routes and freezes the table.
func NewRouteTableFrom(routes map[string][]string) (*RouteTable, error) {
	t := NewRouteTable()

	paths := make([]string, 0, len(routes))
	for path := range routes {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := t.Register(path, routes[path]...); err != nil {
			return nil, err
		}
	}

	t.Freeze()
	return t, nil
}

// Register adds an exact path entry. Registering the same path twice, an
// empty path, or an empty role set is rejected.
func (t *RouteTable) Register(path string, roles ...string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.frozen {
		return errors.New("route table frozen")
	}

	if path == "" || !strings.HasPrefix(path, "/") {
		return errors.New("route path must start with /")
	}

	if _, exists := t.routes[path]; exists {
		return errors.New("route already registered: " + path)
	}

	if len(roles) == 0 {
		return errors.New("route requires at least one role: " + path)
	}

	allowed := make([]string, 0, len(roles))
	for _, role := range roles {
		if role == "" {
			return errors.New("route role empty: " + path)
		}
		if !Contains(allowed, role) {
			allowed = append(allowed, role)
		}
	}

	t.routes[path] = allowed
	return nil
}

// Lookup returns the roles registered for path. The returned slice is a copy.
func (t *RouteTable) Lookup(path string) ([]string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	roles, ok := t.routes[path]
	if !ok {
		return nil, false
	}

	out := make([]string, len(roles))
	copy(out, roles)
	return out, true
}

// Allows reports whether role may open path. Unregistered paths allow every
// role.
func (t *RouteTable) Allows(path, role string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	roles, ok := t.routes[path]
	if !ok {
		return true
	}
	return Contains(roles, role)
}

// Freeze rejects further registrations.
func (t *RouteTable) Freeze() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frozen = true
}

// Count returns the number of registered paths.
func (t *RouteTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.routes)
}
