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

type UserRepository interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Insert(ctx context.Context, user *User) error
	SetRole(ctx context.Context, id, roleID bson.ObjectID) error
}

type UserSpec struct {
	Name         string
	Email        string
	PasswordHash string
	RoleID       bson.ObjectID
	Mobile       string
	Block        string
	UserType     string
}

// UserService is the user admin surface. Role assignment checks the role
// exists so users never point at a missing role through this path.
type UserService struct {
	users UserRepository
	roles RoleRepository
	now   func() time.Time
}

func NewUserService(users UserRepository, roles RoleRepository) *UserService {
	return &UserService{users: users, roles: roles, now: time.Now}
}

func (s *UserService) Get(ctx context.Context, id bson.ObjectID) (*User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Create(ctx context.Context, spec UserSpec) (*User, error) {
	email := NormalizeName(spec.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email %q", ErrValidation, spec.Email)
	}
	if spec.PasswordHash == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: user %q already exists", ErrConflict, email)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("checking user %q: %w", email, err)
	}

	if !spec.RoleID.IsZero() {
		if _, err := s.roles.FindByID(ctx, spec.RoleID); err != nil {
			return nil, roleLookupError(spec.RoleID, err)
		}
	}

	now := s.now().UTC()
	user := &User{
		ID:           bson.NewObjectID(),
		Name:         strings.TrimSpace(spec.Name),
		Email:        email,
		PasswordHash: spec.PasswordHash,
		RoleID:       spec.RoleID,
		Mobile:       strings.TrimSpace(spec.Mobile),
		Block:        strings.TrimSpace(spec.Block),
		UserType:     strings.TrimSpace(spec.UserType),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user %q: %w", email, err)
	}

	logging.Info("user created", "user_id", user.ID.Hex(), "role_id", user.RoleID.Hex())
	return user, nil
}

func (s *UserService) AssignRole(ctx context.Context, userID, roleID bson.ObjectID) (*User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		return nil, roleLookupError(roleID, err)
	}
	if err := s.users.SetRole(ctx, userID, role.ID); err != nil {
		return nil, fmt.Errorf("assigning role %q: %w", role.Name, err)
	}

	user.RoleID = role.ID
	logging.Info("role assigned", "user_id", user.ID.Hex(), "role", role.Name)
	return user, nil
}

func roleLookupError(id bson.ObjectID, err error) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: role %s does not exist", ErrValidation, id.Hex())
	}
	return fmt.Errorf("loading role %s: %w", id.Hex(), err)
}
