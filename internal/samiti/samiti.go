// Package samiti manages members of the samiti committees. Every samiti type
// shares one member shape and is stored in one collection keyed by type.
package samiti

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/janseva/constituency-admin/internal/logging"
	"github.com/janseva/constituency-admin/internal/rbac"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type Member struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id"`
	SamitiType string        `bson:"samitiType" json:"samitiType"`
	Name       string        `bson:"name" json:"name"`
	Mobile     string        `bson:"mobile,omitempty" json:"mobile,omitempty"`
	Block      string        `bson:"block,omitempty" json:"block,omitempty"`
	Village    string        `bson:"village,omitempty" json:"village,omitempty"`
	Position   string        `bson:"position,omitempty" json:"position,omitempty"`
	CreatedBy  bson.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time     `bson:"updatedAt" json:"updatedAt"`
}

type MemberSpec struct {
	Name     string
	Mobile   string
	Block    string
	Village  string
	Position string
}

// Store persists members. Get, Update and Delete only match within
// samitiType.
type Store interface {
	List(ctx context.Context, samitiType string) ([]Member, error)
	Get(ctx context.Context, samitiType string, id bson.ObjectID) (*Member, error)
	Insert(ctx context.Context, m *Member) error
	Update(ctx context.Context, m *Member) error
	Delete(ctx context.Context, samitiType string, id bson.ObjectID) error
}

type Service struct {
	store Store
	types map[string]string
	now   func() time.Time
}

// NewService accepts only the given samiti types; anything else is not found.
func NewService(store Store, types []string) *Service {
	known := make(map[string]string, len(types))
	for _, t := range types {
		known[rbac.NormalizeSlug(t)] = strings.ToLower(strings.TrimSpace(t))
	}
	return &Service{store: store, types: known, now: time.Now}
}

// Canonical maps any spelling of a configured type to its stored slug.
func (s *Service) Canonical(samitiType string) (string, error) {
	slug, ok := s.types[rbac.NormalizeSlug(samitiType)]
	if !ok {
		return "", fmt.Errorf("%w: unknown samiti type %q", rbac.ErrNotFound, samitiType)
	}
	return slug, nil
}

func (s *Service) Types() []string {
	out := make([]string, 0, len(s.types))
	for _, t := range s.types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (s *Service) List(ctx context.Context, samitiType string) ([]Member, error) {
	slug, err := s.Canonical(samitiType)
	if err != nil {
		return nil, err
	}
	return s.store.List(ctx, slug)
}

func (s *Service) Get(ctx context.Context, samitiType string, id bson.ObjectID) (*Member, error) {
	slug, err := s.Canonical(samitiType)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, slug, id)
}

func (s *Service) Create(ctx context.Context, samitiType string, spec MemberSpec, createdBy bson.ObjectID) (*Member, error) {
	slug, err := s.Canonical(samitiType)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: member name is required", rbac.ErrValidation)
	}

	now := s.now().UTC()
	m := &Member{
		ID:         bson.NewObjectID(),
		SamitiType: slug,
		Name:       name,
		Mobile:     strings.TrimSpace(spec.Mobile),
		Block:      strings.TrimSpace(spec.Block),
		Village:    strings.TrimSpace(spec.Village),
		Position:   strings.TrimSpace(spec.Position),
		CreatedBy:  createdBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Insert(ctx, m); err != nil {
		return nil, fmt.Errorf("creating %s member: %w", slug, err)
	}
	logging.Info("samiti member created", "samiti", slug, "member_id", m.ID.Hex())
	return m, nil
}

// Update replaces the editable fields of a member. A member of another
// samiti type is not found.
func (s *Service) Update(ctx context.Context, samitiType string, id bson.ObjectID, spec MemberSpec) (*Member, error) {
	slug, err := s.Canonical(samitiType)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: member name is required", rbac.ErrValidation)
	}

	m, err := s.store.Get(ctx, slug, id)
	if err != nil {
		return nil, err
	}
	m.Name = name
	m.Mobile = strings.TrimSpace(spec.Mobile)
	m.Block = strings.TrimSpace(spec.Block)
	m.Village = strings.TrimSpace(spec.Village)
	m.Position = strings.TrimSpace(spec.Position)
	m.UpdatedAt = s.now().UTC()

	if err := s.store.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("updating %s member: %w", slug, err)
	}
	logging.Info("samiti member updated", "samiti", slug, "member_id", id.Hex())
	return m, nil
}

func (s *Service) Delete(ctx context.Context, samitiType string, id bson.ObjectID) error {
	slug, err := s.Canonical(samitiType)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, slug, id); err != nil {
		return err
	}
	logging.Info("samiti member deleted", "samiti", slug, "member_id", id.Hex())
	return nil
}
