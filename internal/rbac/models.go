package rbac

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Permission is an atomic, named capability.
type Permission struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string        `bson:"name" json:"name"`
	DisplayName string        `bson:"displayName" json:"displayName"`
	Description string        `bson:"description,omitempty" json:"description,omitempty"`
	Category    string        `bson:"category" json:"category"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Role bundles permission references with the sidebar paths it may see.
type Role struct {
	ID            bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name          string          `bson:"name" json:"name"`
	DisplayName   string          `bson:"displayName" json:"displayName"`
	Description   string          `bson:"description,omitempty" json:"description,omitempty"`
	Permissions   []bson.ObjectID `bson:"permissions" json:"permissions"`
	SidebarAccess []string        `bson:"sidebarAccess" json:"sidebarAccess"`
	IsSystem      bool            `bson:"isSystem" json:"isSystem"`
	CreatedAt     time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time       `bson:"updatedAt" json:"updatedAt"`
}

type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string        `bson:"name" json:"name"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"passwordHash" json:"-"`
	RoleID       bson.ObjectID `bson:"role,omitempty" json:"role,omitempty"`
	Mobile       string        `bson:"mobile,omitempty" json:"mobile,omitempty"`
	Block        string        `bson:"block,omitempty" json:"block,omitempty"`
	UserType     string        `bson:"userType,omitempty" json:"userType,omitempty"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// RoleRef is the role a user points at, either still an identifier or the loaded document.
type RoleRef struct {
	id   bson.ObjectID
	role *Role
}

func Unresolved(id bson.ObjectID) RoleRef {
	return RoleRef{id: id}
}

func Resolved(role *Role) RoleRef {
	if role == nil {
		return RoleRef{}
	}
	return RoleRef{id: role.ID, role: role}
}

func (r RoleRef) ID() bson.ObjectID {
	return r.id
}

func (r RoleRef) Role() (*Role, bool) {
	return r.role, r.role != nil
}

func (r RoleRef) IsZero() bool {
	return r.id.IsZero() && r.role == nil
}

// RoleRef returns the user's stored role reference, always unresolved.
func (u *User) RoleRef() RoleRef {
	return Unresolved(u.RoleID)
}

// Principal is the authenticated user and their resolved role for one request.
// Role is nil when the reference could not be resolved.
type Principal struct {
	User *User
	Role *Role
}

func NewPrincipal(user *User, ref RoleRef) *Principal {
	role, _ := ref.Role()
	return &Principal{User: user, Role: role}
}

// RoleName returns the principal's role name or "" when unresolved.
func (p *Principal) RoleName() string {
	if p == nil || p.Role == nil {
		return ""
	}
	return p.Role.Name
}

// IsSuperRole reports whether role is the distinguished superadmin role.
func IsSuperRole(role *Role) bool {
	return role != nil && IsSuperRoleName(role.Name)
}

func IsSuperRoleName(name string) bool {
	return name == RoleSuperAdmin
}

// NormalizeName lowercases and trims role and permission names.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DisplayNameFor turns "edit_users" into "Edit Users".
func DisplayNameFor(name string) string {
	words := strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(name))
	return cases.Title(language.English).String(strings.Join(words, " "))
}
