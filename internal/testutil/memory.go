package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/janseva/constituency-admin/internal/rbac"
	"github.com/janseva/constituency-admin/internal/samiti"
	"github.com/janseva/constituency-admin/internal/sidebar"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemoryPermissions is an in-memory rbac.PermissionRepository. Set Err to make
// every call fail like an unreachable database.
type MemoryPermissions struct {
	mu    sync.Mutex
	items map[bson.ObjectID]rbac.Permission
	Err   error
}

func NewMemoryPermissions() *MemoryPermissions {
	return &MemoryPermissions{items: make(map[bson.ObjectID]rbac.Permission)}
}

// Add stores a permission with the given name and returns it.
func (m *MemoryPermissions) Add(name, category string) rbac.Permission {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := rbac.Permission{
		ID:          bson.NewObjectID(),
		Name:        name,
		DisplayName: rbac.DisplayNameFor(name),
		Category:    category,
		CreatedAt:   TimeNow(),
		UpdatedAt:   TimeNow(),
	}
	m.items[p.ID] = p
	return p
}

// IDs adds any missing names and returns their ids in order.
func (m *MemoryPermissions) IDs(names ...string) []bson.ObjectID {
	ids := make([]bson.ObjectID, 0, len(names))
	for _, n := range names {
		if p, err := m.FindByName(context.Background(), n); err == nil {
			ids = append(ids, p.ID)
			continue
		}
		ids = append(ids, m.Add(n, "").ID)
	}
	return ids
}

func (m *MemoryPermissions) NamesByIDs(_ context.Context, ids []bson.ObjectID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.items[id]; ok {
			names = append(names, p.Name)
		}
	}
	return names, nil
}

func (m *MemoryPermissions) List(_ context.Context, category string) ([]rbac.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]rbac.Permission, 0, len(m.items))
	for _, p := range m.items {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryPermissions) FindByID(_ context.Context, id bson.ObjectID) (*rbac.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.items[id]
	if !ok {
		return nil, rbac.ErrNotFound
	}
	return &p, nil
}

func (m *MemoryPermissions) FindByName(_ context.Context, name string) (*rbac.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.items {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, rbac.ErrNotFound
}

func (m *MemoryPermissions) Insert(_ context.Context, p *rbac.Permission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, existing := range m.items {
		if existing.Name == p.Name {
			return rbac.ErrConflict
		}
	}
	m.items[p.ID] = *p
	return nil
}

func (m *MemoryPermissions) Replace(_ context.Context, p *rbac.Permission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.items[p.ID]; !ok {
		return rbac.ErrNotFound
	}
	m.items[p.ID] = *p
	return nil
}

// Upsert matches the Mongo repository: keyed by name, keeping the stored id.
func (m *MemoryPermissions) Upsert(_ context.Context, p *rbac.Permission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for id, existing := range m.items {
		if existing.Name == p.Name {
			existing.DisplayName = p.DisplayName
			existing.Description = p.Description
			existing.Category = p.Category
			existing.UpdatedAt = p.UpdatedAt
			m.items[id] = existing
			return nil
		}
	}
	m.items[p.ID] = *p
	return nil
}

func (m *MemoryPermissions) Delete(_ context.Context, id bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.items[id]; !ok {
		return rbac.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

// MemoryRoles is an in-memory rbac.RoleRepository.
type MemoryRoles struct {
	mu    sync.Mutex
	items map[bson.ObjectID]rbac.Role
	Err   error
}

func NewMemoryRoles() *MemoryRoles {
	return &MemoryRoles{items: make(map[bson.ObjectID]rbac.Role)}
}

// Put stores role as is, assigning an id when it has none.
func (m *MemoryRoles) Put(role *rbac.Role) *rbac.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	if role.ID.IsZero() {
		role.ID = bson.NewObjectID()
	}
	m.items[role.ID] = cloneRole(*role)
	return role
}

func (m *MemoryRoles) FindByName(_ context.Context, name string) (*rbac.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, r := range m.items {
		if r.Name == name {
			c := cloneRole(r)
			return &c, nil
		}
	}
	return nil, rbac.ErrNotFound
}

func (m *MemoryRoles) FindByID(_ context.Context, id bson.ObjectID) (*rbac.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	r, ok := m.items[id]
	if !ok {
		return nil, rbac.ErrNotFound
	}
	c := cloneRole(r)
	return &c, nil
}

func (m *MemoryRoles) List(_ context.Context) ([]rbac.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]rbac.Role, 0, len(m.items))
	for _, r := range m.items {
		out = append(out, cloneRole(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryRoles) Insert(_ context.Context, role *rbac.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, r := range m.items {
		if r.Name == role.Name {
			return rbac.ErrConflict
		}
	}
	m.items[role.ID] = cloneRole(*role)
	return nil
}

func (m *MemoryRoles) Replace(_ context.Context, role *rbac.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.items[role.ID]; !ok {
		return rbac.ErrNotFound
	}
	for id, r := range m.items {
		if id != role.ID && r.Name == role.Name {
			return rbac.ErrConflict
		}
	}
	m.items[role.ID] = cloneRole(*role)
	return nil
}

// Upsert matches the Mongo repository: keyed by name, keeping the stored id.
func (m *MemoryRoles) Upsert(_ context.Context, role *rbac.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for id, existing := range m.items {
		if existing.Name == role.Name {
			updated := cloneRole(*role)
			updated.ID = id
			updated.CreatedAt = existing.CreatedAt
			m.items[id] = updated
			return nil
		}
	}
	m.items[role.ID] = cloneRole(*role)
	return nil
}

func (m *MemoryRoles) Delete(_ context.Context, id bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.items[id]; !ok {
		return rbac.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func cloneRole(r rbac.Role) rbac.Role {
	r.Permissions = append([]bson.ObjectID(nil), r.Permissions...)
	r.SidebarAccess = append([]string(nil), r.SidebarAccess...)
	return r
}

// MemoryUsers is an in-memory rbac.UserRepository.
type MemoryUsers struct {
	mu    sync.Mutex
	items map[bson.ObjectID]rbac.User
	Err   error
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{items: make(map[bson.ObjectID]rbac.User)}
}

func (m *MemoryUsers) Put(user *rbac.User) *rbac.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	m.items[user.ID] = *user
	return user
}

func (m *MemoryUsers) FindByID(_ context.Context, id bson.ObjectID) (*rbac.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.items[id]
	if !ok {
		return nil, rbac.ErrNotFound
	}
	return &u, nil
}

func (m *MemoryUsers) FindByEmail(_ context.Context, email string) (*rbac.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.items {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, rbac.ErrNotFound
}

func (m *MemoryUsers) List(_ context.Context) ([]rbac.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]rbac.User, 0, len(m.items))
	for _, u := range m.items {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *MemoryUsers) Insert(_ context.Context, user *rbac.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, u := range m.items {
		if u.Email == user.Email {
			return rbac.ErrConflict
		}
	}
	m.items[user.ID] = *user
	return nil
}

func (m *MemoryUsers) SetRole(_ context.Context, id, roleID bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	u, ok := m.items[id]
	if !ok {
		return rbac.ErrNotFound
	}
	u.RoleID = roleID
	m.items[id] = u
	return nil
}

// MemorySidebar is an in-memory sidebar.Store that counts loads.
type MemorySidebar struct {
	mu    sync.Mutex
	docs  []sidebar.Document
	Loads int
	Err   error
	// AfterLoad runs once LoadAll has copied the documents, before it
	// returns them.
	AfterLoad func()
}

func NewMemorySidebar() *MemorySidebar {
	return &MemorySidebar{}
}

func (m *MemorySidebar) LoadAll(ctx context.Context) ([]sidebar.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.Loads++
	if m.Err != nil {
		m.mu.Unlock()
		return nil, m.Err
	}
	docs := append([]sidebar.Document(nil), m.docs...)
	hook := m.AfterLoad
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return docs, nil
}

func (m *MemorySidebar) ReplaceAll(_ context.Context, docs []sidebar.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.docs = append([]sidebar.Document(nil), docs...)
	return nil
}

// MemorySamiti is an in-memory samiti.Store keeping insertion order.
type MemorySamiti struct {
	mu      sync.Mutex
	members []samiti.Member
}

func NewMemorySamiti() *MemorySamiti {
	return &MemorySamiti{}
}

func (m *MemorySamiti) List(_ context.Context, samitiType string) ([]samiti.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []samiti.Member{}
	for _, mem := range m.members {
		if mem.SamitiType == samitiType {
			out = append(out, mem)
		}
	}
	return out, nil
}

func (m *MemorySamiti) Get(_ context.Context, samitiType string, id bson.ObjectID) (*samiti.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mem := range m.members {
		if mem.ID == id && mem.SamitiType == samitiType {
			return &mem, nil
		}
	}
	return nil, rbac.ErrNotFound
}

func (m *MemorySamiti) Insert(_ context.Context, mem *samiti.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mem.ID.IsZero() {
		mem.ID = bson.NewObjectID()
	}
	m.members = append(m.members, *mem)
	return nil
}

func (m *MemorySamiti) Update(_ context.Context, mem *samiti.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, cur := range m.members {
		if cur.ID == mem.ID && cur.SamitiType == mem.SamitiType {
			m.members[i] = *mem
			return nil
		}
	}
	return rbac.ErrNotFound
}

func (m *MemorySamiti) Delete(_ context.Context, samitiType string, id bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, mem := range m.members {
		if mem.ID == id && mem.SamitiType == samitiType {
			m.members = append(m.members[:i], m.members[i+1:]...)
			return nil
		}
	}
	return rbac.ErrNotFound
}

// Store bundles the in-memory repositories that tests usually need together.
type Store struct {
	Permissions *MemoryPermissions
	Roles       *MemoryRoles
	Users       *MemoryUsers
	Sidebar     *MemorySidebar
	Samiti      *MemorySamiti
}

func NewStore() *Store {
	return &Store{
		Permissions: NewMemoryPermissions(),
		Roles:       NewMemoryRoles(),
		Users:       NewMemoryUsers(),
		Sidebar:     NewMemorySidebar(),
		Samiti:      NewMemorySamiti(),
	}
}
