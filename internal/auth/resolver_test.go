package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/janseva/constituency-admin/internal/auth"
	"github.com/janseva/constituency-admin/internal/rbac"
	"github.com/janseva/constituency-admin/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func newResolver(t *testing.T) (*auth.Resolver, *auth.JWTService, *testutil.Store) {
	t.Helper()
	jwtSvc, err := auth.NewJWTService([]byte("resolver-secret"), "test-issuer", time.Hour)
	require.NoError(t, err)
	store := testutil.NewStore()
	return auth.NewResolver(jwtSvc, store.Users, store.Roles), jwtSvc, store
}

func TestResolver_Resolve(t *testing.T) {
	resolver, jwtSvc, store := newResolver(t)
	role := store.NewRole(t, "editor").WithPermissions(rbac.ViewUsers).Create()
	user := store.NewUser(t).WithRole(role).Create()

	token, err := jwtSvc.GenerateToken(t.Context(), user.ID)
	require.NoError(t, err)

	principal, err := resolver.Resolve(t.Context(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.User.ID)
	require.NotNil(t, principal.Role)
	assert.Equal(t, "editor", principal.Role.Name)
}

func TestResolver_Resolve_AuthErrors(t *testing.T) {
	resolver, jwtSvc, _ := newResolver(t)

	unknown, err := jwtSvc.GenerateToken(t.Context(), bson.NewObjectID())
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		reason string
	}{
		{"missing token", "", auth.ReasonMissingToken},
		{"malformed token", "not-a-jwt", auth.ReasonInvalidToken},
		{"unknown user", unknown, auth.ReasonUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.Resolve(t.Context(), tt.token)
			var authErr *auth.AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.reason, authErr.Reason)
		})
	}
}

func TestResolver_Resolve_MissingRole(t *testing.T) {
	resolver, jwtSvc, store := newResolver(t)
	user := store.NewUser(t).WithRoleID(bson.NewObjectID()).Create()

	token, err := jwtSvc.GenerateToken(t.Context(), user.ID)
	require.NoError(t, err)

	principal, err := resolver.Resolve(t.Context(), token)
	require.NoError(t, err)
	assert.Nil(t, principal.Role)
	assert.Equal(t, "", principal.RoleName())
}

func TestResolver_Resolve_StoreFailure(t *testing.T) {
	resolver, jwtSvc, store := newResolver(t)
	role := store.NewRole(t, "viewer").Create()
	user := store.NewUser(t).WithRole(role).Create()

	token, err := jwtSvc.GenerateToken(t.Context(), user.ID)
	require.NoError(t, err)

	boom := errors.New("connection reset")
	store.Roles.Err = boom

	_, err = resolver.Resolve(t.Context(), token)
	require.ErrorIs(t, err, boom)
	var authErr *auth.AuthError
	assert.False(t, errors.As(err, &authErr), "infrastructure errors must not look like authentication failures")

	store.Roles.Err = nil
	store.Users.Err = boom
	_, err = resolver.Resolve(t.Context(), token)
	require.ErrorIs(t, err, boom)
	assert.False(t, errors.As(err, &authErr))
}
