package testutil

import (
	"testing"

	"github.com/janseva/constituency-admin/internal/rbac"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"
)

// RoleBuilder provides a fluent interface for creating test roles
type RoleBuilder struct {
	store       *Store
	t           *testing.T
	name        string
	permissions []string
	sidebar     []string
	isSystem    bool
}

// NewRole creates a new role builder
func (s *Store) NewRole(t *testing.T, name string) *RoleBuilder {
	return &RoleBuilder{
		store:   s,
		t:       t,
		name:    name,
		sidebar: []string{},
	}
}

// WithPermissions attaches permissions by name, creating any that are missing
func (b *RoleBuilder) WithPermissions(names ...string) *RoleBuilder {
	b.permissions = append(b.permissions, names...)
	return b
}

// WithSidebar sets the sidebar paths
func (b *RoleBuilder) WithSidebar(paths ...string) *RoleBuilder {
	b.sidebar = paths
	return b
}

// System marks the role as a protected system role
func (b *RoleBuilder) System() *RoleBuilder {
	b.isSystem = true
	return b
}

// Create stores the role and returns it
func (b *RoleBuilder) Create() *rbac.Role {
	b.t.Helper()
	ids := b.store.Permissions.IDs(b.permissions...)
	return b.store.Roles.Put(&rbac.Role{
		Name:          b.name,
		DisplayName:   rbac.DisplayNameFor(b.name),
		Permissions:   ids,
		SidebarAccess: b.sidebar,
		IsSystem:      b.isSystem,
		CreatedAt:     TimeNow(),
		UpdatedAt:     TimeNow(),
	})
}

// UserBuilder provides a fluent interface for creating test users
type UserBuilder struct {
	store    *Store
	t        *testing.T
	name     string
	email    string
	password string
	roleID   bson.ObjectID
}

// NewUser creates a new user builder
func (s *Store) NewUser(t *testing.T) *UserBuilder {
	return &UserBuilder{
		store:    s,
		t:        t,
		name:     "Test User",
		email:    "user-" + bson.NewObjectID().Hex() + "@example.com",
		password: "password123",
	}
}

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithRole points the user at role
func (b *UserBuilder) WithRole(role *rbac.Role) *UserBuilder {
	b.roleID = role.ID
	return b
}

// WithRoleID points the user at an arbitrary id, e.g. a deleted role
func (b *UserBuilder) WithRoleID(id bson.ObjectID) *UserBuilder {
	b.roleID = id
	return b
}

// Create stores the user with a low-cost bcrypt hash of its password
func (b *UserBuilder) Create() *rbac.User {
	b.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		b.t.Fatalf("failed to hash password: %v", err)
	}
	return b.store.Users.Put(&rbac.User{
		Name:         b.name,
		Email:        b.email,
		PasswordHash: string(hash),
		RoleID:       b.roleID,
		CreatedAt:    TimeNow(),
		UpdatedAt:    TimeNow(),
	})
}
