package api

import (
	"context"

	"github.com/janseva/constituency-admin/internal/auth"
	"github.com/janseva/constituency-admin/internal/sidebar"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// AuthService defines the token operations behind /api/auth
type AuthService interface {
	Login(ctx context.Context, email, password string) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	RevokeAll(ctx context.Context, userID bson.ObjectID) error
}

// SidebarAccessService serves the role to paths projection
type SidebarAccessService interface {
	AccessMap(ctx context.Context) (*sidebar.Snapshot, error)
}

// HealthChecker is pinged by the readiness probe
type HealthChecker interface {
	Ping(ctx context.Context) error
}
