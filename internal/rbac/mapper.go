package rbac

import (
	"fmt"
	"sort"
	"strings"
)

// Action is the verb half of a derived capability name.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

var Actions = []Action{ActionView, ActionCreate, ActionEdit, ActionDelete}

func (a Action) Valid() bool {
	switch a {
	case ActionView, ActionCreate, ActionEdit, ActionDelete:
		return true
	}
	return false
}

// NormalizeSlug lowercases a resource-type slug and folds every run of
// separators ("-", "_", " ", ".", "/") into a single "_".
func NormalizeSlug(slug string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(slug)) {
		switch r {
		case '-', '_', ' ', '.', '/':
			pendingSep = true
			continue
		}
		if pendingSep && b.Len() > 0 {
			b.WriteByte('_')
		}
		pendingSep = false
		b.WriteRune(r)
	}
	return b.String()
}

// DeriveCapability builds the permission name guarding action on a samiti type,
// e.g. ("view", "ganesh-samiti") -> "view_ganesh_samiti".
func DeriveCapability(action Action, slug string) (string, error) {
	if !action.Valid() {
		return "", fmt.Errorf("%w: unknown action %q", ErrConfiguration, action)
	}
	normalized := NormalizeSlug(slug)
	if normalized == "" {
		return "", fmt.Errorf("%w: no resource type for %s", ErrConfiguration, action)
	}
	return string(action) + "_" + normalized, nil
}

// SamitiCapabilities lists every capability name derived from types, sorted.
func SamitiCapabilities(types []string) ([]string, error) {
	names := make([]string, 0, len(types)*len(Actions))
	for _, t := range types {
		for _, a := range Actions {
			name, err := DeriveCapability(a, t)
			if err != nil {
				return nil, err
			}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// ValidateSamitiCatalog checks at startup that every derived samiti capability
// exists in the permission catalog and that no two types collide.
func ValidateSamitiCatalog(types []string, catalog []string) error {
	seen := make(map[string]string, len(types))
	for _, t := range types {
		n := NormalizeSlug(t)
		if prev, ok := seen[n]; ok {
			return fmt.Errorf("%w: samiti types %q and %q normalize to the same slug", ErrConfiguration, prev, t)
		}
		seen[n] = t
	}

	required, err := SamitiCapabilities(types)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(catalog))
	for _, name := range catalog {
		known[NormalizeName(name)] = struct{}{}
	}

	var missing []string
	for _, name := range required {
		if _, ok := known[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: permission catalog is missing %s", ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}
