package sidebar

import (
	"sort"

	"github.com/janseva/constituency-admin/internal/rbac"
)

// Viewer is the client's idea of who is looking. Some sessions carry a single
// role, older ones a roles array; both are honoured.
type Viewer struct {
	Role        string
	Roles       []string
	Permissions []string
}

func (v Viewer) roleNames() []string {
	names := make([]string, 0, len(v.Roles)+1)
	if v.Role != "" {
		names = append(names, rbac.NormalizeName(v.Role))
	}
	for _, r := range v.Roles {
		if r = rbac.NormalizeName(r); r != "" {
			names = append(names, r)
		}
	}
	return names
}

type guardEntry struct {
	path        string
	roles       []string
	permissions []string
}

// Guard is the route-transition check the SPA runs. It is UX only: a path the
// navigation tree does not cover is allowed, and the API decides for real.
type Guard struct {
	entries []guardEntry
	access  Map
}

func NewGuard(tree []NavItem, access Map) *Guard {
	g := &Guard{access: access}
	var walk func(items []NavItem)
	walk = func(items []NavItem) {
		for _, item := range items {
			if p := cleanPath(item.Path); p != "" {
				g.entries = append(g.entries, guardEntry{
					path:        p,
					roles:       item.Roles,
					permissions: item.Permissions,
				})
			}
			walk(item.Children)
		}
	}
	walk(tree)
	// longest first so the first hit is the most specific entry
	sort.SliceStable(g.entries, func(i, j int) bool {
		return len(g.entries[i].path) > len(g.entries[j].path)
	})
	return g
}

func (g *Guard) match(path string) (guardEntry, bool) {
	path = cleanPath(path)
	for _, e := range g.entries {
		if hasPathPrefix(path, e.path) {
			return e, true
		}
	}
	return guardEntry{}, false
}

// Allowed reports whether v may open path.
func (g *Guard) Allowed(v Viewer, path string) bool {
	entry, ok := g.match(path)
	if !ok {
		return true
	}

	roles := v.roleNames()
	for _, r := range roles {
		if rbac.IsSuperRoleName(r) {
			return true
		}
	}

	if len(entry.roles) > 0 || len(entry.permissions) > 0 {
		return containsAny(entry.roles, roles) || containsAny(entry.permissions, v.Permissions)
	}

	for _, r := range roles {
		if g.access.Access(r).Allows(entry.path) {
			return true
		}
	}
	return false
}

// Visible filters the tree down to the entries v may open, keeping parents
// of visible children.
func (g *Guard) Visible(v Viewer, tree []NavItem) []NavItem {
	out := make([]NavItem, 0, len(tree))
	for _, item := range tree {
		children := g.Visible(v, item.Children)
		if len(children) > 0 || g.Allowed(v, item.Path) {
			item.Children = children
			out = append(out, item)
		}
	}
	return out
}

func containsAny(allowed, have []string) bool {
	for _, a := range allowed {
		a = rbac.NormalizeName(a)
		for _, h := range have {
			if a == rbac.NormalizeName(h) {
				return true
			}
		}
	}
	return false
}
