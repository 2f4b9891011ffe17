package sidebar

import (
	"context"
	"fmt"
	"time"

	"github.com/janseva/constituency-admin/internal/logging"
	"github.com/janseva/constituency-admin/internal/rbac"
	"golang.org/x/sync/singleflight"
)

// Document is the stored projection for one role.
type Document struct {
	Role      string    `bson:"role" json:"role"`
	Paths     []string  `bson:"paths" json:"paths"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Snapshot is the full map handed to clients. Version is the newest
// UpdatedAt in milliseconds so clients can tell when to refetch.
type Snapshot struct {
	Access  Map   `json:"access"`
	Version int64 `json:"version"`
}

type Store interface {
	LoadAll(ctx context.Context) ([]Document, error)
	ReplaceAll(ctx context.Context, docs []Document) error
}

// Cache holds the last snapshot. Get returns nil, nil on a miss. Fill must
// not replace a snapshot of the same or a newer version; Set always does.
type Cache interface {
	Get(ctx context.Context) (*Snapshot, error)
	Fill(ctx context.Context, snap *Snapshot) (bool, error)
	Set(ctx context.Context, snap *Snapshot) error
	Invalidate(ctx context.Context) error
}

// loadTimeout bounds a shared cache fill, which outlives the caller that
// started it.
const loadTimeout = 10 * time.Second

type RoleLister interface {
	List(ctx context.Context) ([]rbac.Role, error)
}

type Service struct {
	roles RoleLister
	store Store
	cache Cache
	group singleflight.Group
	now   func() time.Time
}

// NewService wires the projection. cache may be nil.
func NewService(roles RoleLister, store Store, cache Cache) *Service {
	return &Service{roles: roles, store: store, cache: cache, now: time.Now}
}

// AccessMap returns the role to paths map, from cache when possible. Concurrent
// misses share one load.
func (s *Service) AccessMap(ctx context.Context) (*Snapshot, error) {
	if s.cache != nil {
		snap, err := s.cache.Get(ctx)
		if err != nil {
			logging.Warn("sidebar cache read failed", "error", err)
		} else if snap != nil {
			return snap, nil
		}
	}

	v, err, _ := s.group.Do("access-map", func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return s.load(loadCtx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

func (s *Service) load(ctx context.Context) (*Snapshot, error) {
	docs, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading sidebar access: %w", err)
	}

	var snap *Snapshot
	if len(docs) == 0 {
		// projection never ran; answer from the roles directly
		roles, err := s.roles.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing roles: %w", err)
		}
		snap = snapshotFromRoles(roles)
	} else {
		snap = snapshotFromDocuments(docs)
	}

	if s.cache != nil {
		stored, err := s.cache.Fill(ctx, snap)
		switch {
		case err != nil:
			logging.Warn("sidebar cache write failed", "error", err)
		case !stored:
			logging.Debug("sidebar cache already holds a newer map", "version", snap.Version)
		}
	}
	return snap, nil
}

// Rebuild recomputes every role's projection, stores it and writes the new
// map to the cache, so fills that read the old documents cannot win.
func (s *Service) Rebuild(ctx context.Context) error {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return fmt.Errorf("listing roles: %w", err)
	}

	now := s.now().UTC()
	m := BuildMap(roles)
	docs := make([]Document, 0, len(m))
	for _, name := range m.Roles() {
		docs = append(docs, Document{Role: name, Paths: m[name], UpdatedAt: now})
	}
	if err := s.store.ReplaceAll(ctx, docs); err != nil {
		return fmt.Errorf("storing sidebar access: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, snapshotFromDocuments(docs)); err != nil {
			logging.Warn("sidebar cache refresh failed, dropping it", "error", err)
			if err := s.cache.Invalidate(ctx); err != nil {
				return fmt.Errorf("invalidating sidebar cache: %w", err)
			}
		}
	}
	logging.Info("sidebar access rebuilt", "roles", len(docs))
	return nil
}

func snapshotFromDocuments(docs []Document) *Snapshot {
	snap := &Snapshot{Access: make(Map, len(docs))}
	for _, d := range docs {
		paths := d.Paths
		if paths == nil {
			paths = []string{}
		}
		snap.Access[d.Role] = paths
		if v := d.UpdatedAt.UnixMilli(); v > snap.Version {
			snap.Version = v
		}
	}
	return snap
}

func snapshotFromRoles(roles []rbac.Role) *Snapshot {
	snap := &Snapshot{Access: BuildMap(roles)}
	for _, r := range roles {
		if v := r.UpdatedAt.UnixMilli(); v > snap.Version {
			snap.Version = v
		}
	}
	return snap
}
