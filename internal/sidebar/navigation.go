package sidebar

import "strings"

// NavItem is one entry of the navigation tree. Roles and Permissions, when
// set, restrict the entry to those roles or to holders of any listed permission.
type NavItem struct {
	Title       string    `yaml:"title" json:"title"`
	Path        string    `yaml:"path" json:"path"`
	Icon        string    `yaml:"icon,omitempty" json:"icon,omitempty"`
	Roles       []string  `yaml:"roles,omitempty" json:"roles,omitempty"`
	Permissions []string  `yaml:"permissions,omitempty" json:"permissions,omitempty"`
	Children    []NavItem `yaml:"children,omitempty" json:"children,omitempty"`
}

// Flatten returns every path in the tree, depth first, without duplicates.
func Flatten(tree []NavItem) []string {
	var out []string
	seen := make(map[string]struct{})
	var walk func(items []NavItem)
	walk = func(items []NavItem) {
		for _, item := range items {
			if p := cleanPath(item.Path); p != "" {
				if _, ok := seen[p]; !ok {
					seen[p] = struct{}{}
					out = append(out, p)
				}
			}
			walk(item.Children)
		}
	}
	walk(tree)
	return out
}

func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}

// hasPathPrefix reports whether path equals prefix or sits below it.
func hasPathPrefix(path, prefix string) bool {
	if prefix == "/" {
		return strings.HasPrefix(path, "/")
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
