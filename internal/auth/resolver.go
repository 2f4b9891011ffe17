package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/janseva/constituency-admin/internal/logging"
	"github.com/janseva/constituency-admin/internal/rbac"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	ReasonMissingToken = "missing bearer token"
	ReasonInvalidToken = "invalid or expired token"
	ReasonUserNotFound = "user not found"
)

// AuthError means the caller is not authenticated. It is never a permission
// denial and never an infrastructure failure.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	return e.Reason
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*rbac.User, error)
}

type RoleFinder interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*rbac.Role, error)
}

// Resolver turns a bearer token into the principal for one request.
type Resolver struct {
	tokens TokenValidator
	users  UserFinder
	roles  RoleFinder
}

func NewResolver(tokens TokenValidator, users UserFinder, roles RoleFinder) *Resolver {
	return &Resolver{tokens: tokens, users: users, roles: roles}
}

// Resolve returns the user with their role loaded. A role that no longer
// exists leaves Role nil; store failures are returned as plain errors.
func (r *Resolver) Resolve(ctx context.Context, token string) (*rbac.Principal, error) {
	if token == "" {
		return nil, &AuthError{Reason: ReasonMissingToken}
	}

	claims, err := r.tokens.ValidateToken(ctx, token)
	if err != nil {
		return nil, &AuthError{Reason: ReasonInvalidToken, Err: err}
	}

	user, err := r.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, rbac.ErrNotFound) {
			return nil, &AuthError{Reason: ReasonUserNotFound, Err: err}
		}
		return nil, fmt.Errorf("loading user %s: %w", claims.UserID.Hex(), err)
	}

	ref, err := r.resolveRole(ctx, user.RoleRef())
	if err != nil {
		return nil, err
	}
	return rbac.NewPrincipal(user, ref), nil
}

func (r *Resolver) resolveRole(ctx context.Context, ref rbac.RoleRef) (rbac.RoleRef, error) {
	if _, ok := ref.Role(); ok || ref.ID().IsZero() {
		return ref, nil
	}
	role, err := r.roles.FindByID(ctx, ref.ID())
	if err != nil {
		if errors.Is(err, rbac.ErrNotFound) {
			logging.Warn("user references a missing role", "role_id", ref.ID().Hex())
			return rbac.RoleRef{}, nil
		}
		return rbac.RoleRef{}, fmt.Errorf("loading role %s: %w", ref.ID().Hex(), err)
	}
	return rbac.Resolved(role), nil
}
