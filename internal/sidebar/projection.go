// Package sidebar projects roles onto the navigation paths they may see.
//
// The projection is advisory. The API enforces access through rbac.Engine and
// fails closed when a role is missing, while the client-side Guard fails open
// for paths the navigation tree does not know about.
package sidebar

import (
	"sort"

	"github.com/janseva/constituency-admin/internal/rbac"
)

const Wildcard = rbac.SidebarWildcard

// Access is what a role may see: everything, or the listed paths.
type Access struct {
	All   bool
	Paths []string
}

// Allows reports whether path is one of the granted paths or below one.
func (a Access) Allows(path string) bool {
	if a.All {
		return true
	}
	path = cleanPath(path)
	for _, p := range a.Paths {
		if hasPathPrefix(path, p) {
			return true
		}
	}
	return false
}

// AllowedPaths reads a role's sidebar grant. A nil role sees nothing.
func AllowedPaths(role *rbac.Role) Access {
	if role == nil {
		return Access{Paths: []string{}}
	}
	if rbac.IsSuperRole(role) {
		return Access{All: true}
	}
	paths := make([]string, 0, len(role.SidebarAccess))
	for _, p := range role.SidebarAccess {
		if p == Wildcard {
			return Access{All: true}
		}
		paths = append(paths, cleanPath(p))
	}
	return Access{Paths: paths}
}

// Expand resolves a role's grant against the navigation tree into concrete paths.
func Expand(role *rbac.Role, tree []NavItem) []string {
	access := AllowedPaths(role)
	if access.All {
		return Flatten(tree)
	}
	return access.Paths
}

// Map is role name to sidebar paths; wildcard roles map to ["*"].
type Map map[string][]string

func BuildMap(roles []rbac.Role) Map {
	m := make(Map, len(roles))
	for i := range roles {
		access := AllowedPaths(&roles[i])
		if access.All {
			m[roles[i].Name] = []string{Wildcard}
			continue
		}
		m[roles[i].Name] = access.Paths
	}
	return m
}

// Access returns the grant stored for a role name. Unknown roles see nothing.
func (m Map) Access(role string) Access {
	if rbac.IsSuperRoleName(role) {
		return Access{All: true}
	}
	paths, ok := m[role]
	if !ok {
		return Access{Paths: []string{}}
	}
	for _, p := range paths {
		if p == Wildcard {
			return Access{All: true}
		}
	}
	return Access{Paths: paths}
}

// Roles returns the role names in the map, sorted.
func (m Map) Roles() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
