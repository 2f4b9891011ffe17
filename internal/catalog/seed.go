package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/janseva/constituency-admin/internal/rbac"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type PermissionUpserter interface {
	FindByName(ctx context.Context, name string) (*rbac.Permission, error)
	Upsert(ctx context.Context, p *rbac.Permission) error
}

type RoleUpserter interface {
	FindByName(ctx context.Context, name string) (*rbac.Role, error)
	Upsert(ctx context.Context, role *rbac.Role) error
}

type SeedResult struct {
	Permissions int
	Roles       int
}

// Seed writes every catalog permission and role keyed by name. Running it
// again updates metadata in place and keeps stored ids, so role references
// held by users survive a reseed.
func (c *Catalog) Seed(ctx context.Context, perms PermissionUpserter, roles RoleUpserter, now time.Time) (*SeedResult, error) {
	now = now.UTC()
	ids := make(map[string]bson.ObjectID, len(c.Permissions))

	for _, entry := range c.Permissions {
		p := &rbac.Permission{
			ID:          bson.NewObjectID(),
			Name:        entry.Name,
			DisplayName: entry.DisplayName,
			Description: entry.Description,
			Category:    entry.Category,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := perms.Upsert(ctx, p); err != nil {
			return nil, fmt.Errorf("seeding permission %q: %w", entry.Name, err)
		}
		stored, err := perms.FindByName(ctx, entry.Name)
		if err != nil {
			return nil, fmt.Errorf("reading back permission %q: %w", entry.Name, err)
		}
		ids[entry.Name] = stored.ID
	}

	for _, entry := range c.Roles {
		permIDs := make([]bson.ObjectID, 0, len(entry.Permissions))
		for _, name := range entry.Permissions {
			id, ok := ids[name]
			if !ok {
				return nil, fmt.Errorf("%w: role %q references unknown permission %q", rbac.ErrConfiguration, entry.Name, name)
			}
			permIDs = append(permIDs, id)
		}
		sidebarAccess, err := rbac.NormalizeSidebarAccess(entry.SidebarAccess)
		if err != nil {
			return nil, fmt.Errorf("role %q: %w", entry.Name, err)
		}

		role := &rbac.Role{
			ID:            bson.NewObjectID(),
			Name:          entry.Name,
			DisplayName:   entry.DisplayName,
			Description:   entry.Description,
			Permissions:   permIDs,
			SidebarAccess: sidebarAccess,
			IsSystem:      entry.IsSystem,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := roles.Upsert(ctx, role); err != nil {
			return nil, fmt.Errorf("seeding role %q: %w", entry.Name, err)
		}
	}

	return &SeedResult{Permissions: len(c.Permissions), Roles: len(c.Roles)}, nil
}
