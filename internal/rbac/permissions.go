package rbac

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/janseva/constituency-admin/internal/logging"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var permissionNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// PermissionRepository persists the permission catalog. An empty category
// lists everything.
type PermissionRepository interface {
	PermissionNamer
	List(ctx context.Context, category string) ([]Permission, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*Permission, error)
	FindByName(ctx context.Context, name string) (*Permission, error)
	Insert(ctx context.Context, permission *Permission) error
	Replace(ctx context.Context, permission *Permission) error
	Delete(ctx context.Context, id bson.ObjectID) error
}

type PermissionSpec struct {
	Name        string
	DisplayName string
	Description string
	Category    string
}

// PermissionPatch changes metadata only; the name is immutable once created.
type PermissionPatch struct {
	DisplayName *string
	Description *string
	Category    *string
}

type PermissionService struct {
	repo PermissionRepository
	now  func() time.Time
}

func NewPermissionService(repo PermissionRepository) *PermissionService {
	return &PermissionService{repo: repo, now: time.Now}
}

func (s *PermissionService) ListAll(ctx context.Context, category string) ([]Permission, error) {
	return s.repo.List(ctx, strings.TrimSpace(category))
}

func (s *PermissionService) Get(ctx context.Context, id bson.ObjectID) (*Permission, error) {
	return s.repo.FindByID(ctx, id)
}

// Names returns every permission name in the catalog.
func (s *PermissionService) Names(ctx context.Context) ([]string, error) {
	perms, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, err
	}
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = p.Name
	}
	return names, nil
}

func (s *PermissionService) Create(ctx context.Context, spec PermissionSpec) (*Permission, error) {
	name := NormalizeName(spec.Name)
	if !permissionNamePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: invalid permission name %q", ErrValidation, spec.Name)
	}

	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return nil, fmt.Errorf("%w: permission %q already exists", ErrConflict, name)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("checking permission %q: %w", name, err)
	}

	displayName := strings.TrimSpace(spec.DisplayName)
	if displayName == "" {
		displayName = DisplayNameFor(name)
	}

	now := s.now().UTC()
	perm := &Permission{
		ID:          bson.NewObjectID(),
		Name:        name,
		DisplayName: displayName,
		Description: strings.TrimSpace(spec.Description),
		Category:    NormalizeName(spec.Category),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, perm); err != nil {
		return nil, fmt.Errorf("creating permission %q: %w", name, err)
	}

	logging.Info("permission created", "permission", perm.Name)
	return perm, nil
}

func (s *PermissionService) UpdateMetadata(ctx context.Context, id bson.ObjectID, patch PermissionPatch) (*Permission, error) {
	perm, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.DisplayName != nil {
		perm.DisplayName = strings.TrimSpace(*patch.DisplayName)
	}
	if patch.Description != nil {
		perm.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Category != nil {
		perm.Category = NormalizeName(*patch.Category)
	}
	perm.UpdatedAt = s.now().UTC()

	if err := s.repo.Replace(ctx, perm); err != nil {
		return nil, fmt.Errorf("updating permission %q: %w", perm.Name, err)
	}
	return perm, nil
}

// Delete removes the permission. Roles keep the dangling reference, which
// simply stops granting anything.
func (s *PermissionService) Delete(ctx context.Context, id bson.ObjectID) error {
	perm, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting permission %q: %w", perm.Name, err)
	}
	logging.Info("permission deleted", "permission", perm.Name)
	return nil
}
