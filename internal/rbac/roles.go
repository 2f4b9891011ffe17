package rbac

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/janseva/constituency-admin/internal/logging"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// SidebarWildcard grants every sidebar path.
const SidebarWildcard = "*"

// RoleRepository persists roles. Lookups return ErrNotFound for missing
// documents and writes return ErrConflict on a duplicate name.
type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*Role, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*Role, error)
	List(ctx context.Context) ([]Role, error)
	Insert(ctx context.Context, role *Role) error
	Replace(ctx context.Context, role *Role) error
	Delete(ctx context.Context, id bson.ObjectID) error
}

// ChangeNotifier is told after every successful role mutation so derived
// projections can be rebuilt.
type ChangeNotifier interface {
	RolesChanged(ctx context.Context) error
}

type RoleSpec struct {
	Name          string
	DisplayName   string
	Description   string
	Permissions   []bson.ObjectID
	SidebarAccess []string
	IsSystem      bool
}

// RolePatch carries the fields to change; nil means leave as is.
// Permissions and SidebarAccess replace the stored lists wholesale.
type RolePatch struct {
	Name          *string
	DisplayName   *string
	Description   *string
	Permissions   *[]bson.ObjectID
	SidebarAccess *[]string
	IsSystem      *bool
}

type RoleService struct {
	repo     RoleRepository
	notifier ChangeNotifier
	now      func() time.Time
}

func NewRoleService(repo RoleRepository, notifier ChangeNotifier) *RoleService {
	return &RoleService{repo: repo, notifier: notifier, now: time.Now}
}

func (s *RoleService) GetByName(ctx context.Context, name string) (*Role, error) {
	return s.repo.FindByName(ctx, NormalizeName(name))
}

func (s *RoleService) GetByID(ctx context.Context, id bson.ObjectID) (*Role, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *RoleService) ListAll(ctx context.Context) ([]Role, error) {
	return s.repo.List(ctx)
}

func (s *RoleService) Create(ctx context.Context, spec RoleSpec) (*Role, error) {
	name := NormalizeName(spec.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: role name is required", ErrValidation)
	}
	sidebar, err := NormalizeSidebarAccess(spec.SidebarAccess)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return nil, fmt.Errorf("%w: role %q already exists", ErrConflict, name)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("checking role %q: %w", name, err)
	}

	displayName := strings.TrimSpace(spec.DisplayName)
	if displayName == "" {
		displayName = DisplayNameFor(name)
	}
	permissions := spec.Permissions
	if permissions == nil {
		permissions = []bson.ObjectID{}
	}

	now := s.now().UTC()
	role := &Role{
		ID:            bson.NewObjectID(),
		Name:          name,
		DisplayName:   displayName,
		Description:   strings.TrimSpace(spec.Description),
		Permissions:   permissions,
		SidebarAccess: sidebar,
		IsSystem:      spec.IsSystem,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, role); err != nil {
		return nil, fmt.Errorf("creating role %q: %w", name, err)
	}

	logging.Info("role created", "role", role.Name, "role_id", role.ID.Hex())
	s.notify(ctx, "create", role.Name)
	return role, nil
}

func (s *RoleService) Update(ctx context.Context, id bson.ObjectID, patch RolePatch) (*Role, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := NormalizeName(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: role name is required", ErrValidation)
		}
		if name != role.Name {
			if role.IsSystem {
				return nil, fmt.Errorf("%w: cannot rename system role %q", ErrForbidden, role.Name)
			}
			existing, err := s.repo.FindByName(ctx, name)
			switch {
			case err == nil && existing.ID != role.ID:
				return nil, fmt.Errorf("%w: role %q already exists", ErrConflict, name)
			case err != nil && !errors.Is(err, ErrNotFound):
				return nil, fmt.Errorf("checking role %q: %w", name, err)
			}
			role.Name = name
		}
	}
	if patch.IsSystem != nil && *patch.IsSystem != role.IsSystem {
		if role.IsSystem {
			return nil, fmt.Errorf("%w: cannot change isSystem on system role %q", ErrForbidden, role.Name)
		}
		role.IsSystem = *patch.IsSystem
	}
	if patch.DisplayName != nil {
		role.DisplayName = strings.TrimSpace(*patch.DisplayName)
	}
	if patch.Description != nil {
		role.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Permissions != nil {
		role.Permissions = append([]bson.ObjectID{}, (*patch.Permissions)...)
	}
	if patch.SidebarAccess != nil {
		sidebar, err := NormalizeSidebarAccess(*patch.SidebarAccess)
		if err != nil {
			return nil, err
		}
		role.SidebarAccess = sidebar
	}

	role.UpdatedAt = s.now().UTC()
	if err := s.repo.Replace(ctx, role); err != nil {
		return nil, fmt.Errorf("updating role %q: %w", role.Name, err)
	}

	logging.Info("role updated", "role", role.Name, "role_id", role.ID.Hex())
	s.notify(ctx, "update", role.Name)
	return role, nil
}

// Delete removes a non-system role. Users still pointing at it resolve to no
// role and are denied everything.
func (s *RoleService) Delete(ctx context.Context, id bson.ObjectID) error {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return fmt.Errorf("%w: cannot delete system role %q", ErrForbidden, role.Name)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting role %q: %w", role.Name, err)
	}

	logging.Info("role deleted", "role", role.Name, "role_id", role.ID.Hex())
	s.notify(ctx, "delete", role.Name)
	return nil
}

func (s *RoleService) notify(ctx context.Context, op, role string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.RolesChanged(ctx); err != nil {
		logging.Warn("failed to schedule sidebar rebuild", "op", op, "role", role, "error", err)
	}
}

// NormalizeSidebarAccess trims and dedupes paths. Any wildcard collapses the
// list to just the wildcard.
func NormalizeSidebarAccess(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if p == SidebarWildcard {
			return []string{SidebarWildcard}, nil
		}
		if !strings.HasPrefix(p, "/") {
			return nil, fmt.Errorf("%w: sidebar path %q must start with /", ErrValidation, p)
		}
		if len(p) > 1 {
			p = strings.TrimRight(p, "/")
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}
