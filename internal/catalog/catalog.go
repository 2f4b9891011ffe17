// Package catalog holds the seed data every deployment starts from: the
// permission catalog, default roles, samiti types and the navigation tree.
package catalog

import (
	_ "embed"
	"fmt"

	"github.com/janseva/constituency-admin/internal/rbac"
	"github.com/janseva/constituency-admin/internal/sidebar"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type PermissionEntry struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"displayName"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
}

type RoleEntry struct {
	Name          string   `yaml:"name"`
	DisplayName   string   `yaml:"displayName"`
	Description   string   `yaml:"description"`
	Permissions   []string `yaml:"permissions"`
	SidebarAccess []string `yaml:"sidebarAccess"`
	IsSystem      bool     `yaml:"isSystem"`
}

type Catalog struct {
	Permissions    []PermissionEntry `yaml:"permissions"`
	Roles          []RoleEntry       `yaml:"roles"`
	SamitiTypes    []string          `yaml:"samitiTypes"`
	Navigation     []sidebar.NavItem `yaml:"navigation"`
	DefaultSidebar sidebar.Map       `yaml:"defaultSidebar"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// MustDefault panics if the embedded catalog is broken.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) normalize() {
	for i := range c.Permissions {
		p := &c.Permissions[i]
		p.Name = rbac.NormalizeName(p.Name)
		p.Category = rbac.NormalizeName(p.Category)
		if p.DisplayName == "" {
			p.DisplayName = rbac.DisplayNameFor(p.Name)
		}
	}
	for i := range c.Roles {
		r := &c.Roles[i]
		r.Name = rbac.NormalizeName(r.Name)
		if r.DisplayName == "" {
			r.DisplayName = rbac.DisplayNameFor(r.Name)
		}
		for j := range r.Permissions {
			r.Permissions[j] = rbac.NormalizeName(r.Permissions[j])
		}
	}
}

// Validate checks that names are unique, role permissions exist, and every
// samiti capability is in the permission list.
func (c *Catalog) Validate() error {
	known := make(map[string]struct{}, len(c.Permissions))
	for _, p := range c.Permissions {
		if p.Name == "" {
			return fmt.Errorf("%w: catalog permission without a name", rbac.ErrConfiguration)
		}
		if _, dup := known[p.Name]; dup {
			return fmt.Errorf("%w: duplicate catalog permission %q", rbac.ErrConfiguration, p.Name)
		}
		known[p.Name] = struct{}{}
	}

	roles := make(map[string]struct{}, len(c.Roles))
	for _, r := range c.Roles {
		if _, dup := roles[r.Name]; dup {
			return fmt.Errorf("%w: duplicate catalog role %q", rbac.ErrConfiguration, r.Name)
		}
		roles[r.Name] = struct{}{}
		for _, p := range r.Permissions {
			if _, ok := known[p]; !ok {
				return fmt.Errorf("%w: role %q references unknown permission %q", rbac.ErrConfiguration, r.Name, p)
			}
		}
		if _, err := rbac.NormalizeSidebarAccess(r.SidebarAccess); err != nil {
			return fmt.Errorf("role %q: %w", r.Name, err)
		}
	}

	return rbac.ValidateSamitiCatalog(c.SamitiTypes, c.PermissionNames())
}

func (c *Catalog) PermissionNames() []string {
	names := make([]string, len(c.Permissions))
	for i, p := range c.Permissions {
		names[i] = p.Name
	}
	return names
}

// HasSamitiType reports whether slug names a configured samiti type.
func (c *Catalog) HasSamitiType(slug string) bool {
	want := rbac.NormalizeSlug(slug)
	for _, t := range c.SamitiTypes {
		if rbac.NormalizeSlug(t) == want {
			return true
		}
	}
	return false
}

// Role returns the catalog entry for name.
func (c *Catalog) Role(name string) (RoleEntry, bool) {
	name = rbac.NormalizeName(name)
	for _, r := range c.Roles {
		if r.Name == name {
			return r, true
		}
	}
	return RoleEntry{}, false
}
