package api_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/janseva/constituency-admin/internal/api"
	"github.com/janseva/constituency-admin/internal/auth"
	"github.com/janseva/constituency-admin/internal/config"
	"github.com/janseva/constituency-admin/internal/middleware"
	"github.com/janseva/constituency-admin/internal/rbac"
	"github.com/janseva/constituency-admin/internal/samiti"
	"github.com/janseva/constituency-admin/internal/sidebar"
	"github.com/janseva/constituency-admin/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var testNavigation = []sidebar.NavItem{
	{Title: "Dashboard", Path: "/dashboard"},
	{Title: "Users", Path: "/users", Children: []sidebar.NavItem{
		{Title: "Roles", Path: "/users/roles"},
	}},
	{Title: "Samiti", Path: "/samiti"},
}

type apiFixture struct {
	ts      *testutil.TestServer
	store   *testutil.Store
	jwt     *auth.JWTService
	authSvc *auth.AuthService
	pinger  *testutil.FakePinger
	mr      *miniredis.Miniredis
}

// newAPIFixture wires the real services over in-memory repositories and a
// miniredis instance.
func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := testutil.NewStore()
	jwtSvc, err := auth.NewJWTService([]byte("api-test-secret"), "janseva-test", 15*time.Minute)
	require.NoError(t, err)
	authSvc := auth.NewAuthService(client, jwtSvc, store.Users, config.AuthConfig{RefreshExpiry: time.Hour})
	pinger := &testutil.FakePinger{}

	srv := api.NewServer(api.Deps{
		Engine:      rbac.NewEngine(store.Permissions),
		Roles:       rbac.NewRoleService(store.Roles, nil),
		Permissions: rbac.NewPermissionService(store.Permissions),
		Users:       rbac.NewUserService(store.Users, store.Roles),
		Samiti:      samiti.NewService(store.Samiti, []string{"ganesh-samiti", "mahila-samiti"}),
		Sidebar:     sidebar.NewService(store.Roles, store.Sidebar, sidebar.NewRedisCache(client, time.Minute)),
		Auth:        authSvc,
		Resolver:    auth.NewResolver(jwtSvc, store.Users, store.Roles),
		Navigation:  testNavigation,
		Health:      pinger,
	})

	handler, err := api.NewRouter(srv, api.RouterConfig{
		RateLimit: config.RateLimitConfig{LoginRequests: 3, LoginWindow: time.Minute},
		Metrics:   middleware.NewMetrics(),
	})
	require.NoError(t, err)

	return &apiFixture{
		ts:      testutil.NewTestServer(t, handler),
		store:   store,
		jwt:     jwtSvc,
		authSvc: authSvc,
		pinger:  pinger,
		mr:      mr,
	}
}

// userWithRole creates a role holding perms, a user on it, and returns the
// user with a valid access token.
func (f *apiFixture) userWithRole(t *testing.T, roleName string, perms ...string) (*rbac.User, string) {
	t.Helper()
	role := f.store.NewRole(t, roleName).WithPermissions(perms...).Create()
	user := f.store.NewUser(t).WithRole(role).Create()
	return user, f.token(t, user)
}

func (f *apiFixture) token(t *testing.T, user *rbac.User) string {
	t.Helper()
	tok, err := f.jwt.GenerateToken(t.Context(), user.ID)
	require.NoError(t, err)
	return tok
}

func (f *apiFixture) superadmin(t *testing.T) (*rbac.User, string) {
	t.Helper()
	role := f.store.NewRole(t, rbac.RoleSuperAdmin).WithSidebar("*").System().Create()
	user := f.store.NewUser(t).WithRole(role).Create()
	return user, f.token(t, user)
}

func (f *apiFixture) get(t *testing.T, path, token string) *testutil.Response {
	t.Helper()
	return f.ts.AuthenticatedRequest(t, testutil.Request{Method: "GET", Path: path}, token)
}

func (f *apiFixture) send(t *testing.T, method, path, token string, body interface{}) *testutil.Response {
	t.Helper()
	return f.ts.AuthenticatedRequest(t, testutil.Request{Method: method, Path: path, Body: body}, token)
}

func requestWithQuery(path string, kv ...string) testutil.Request {
	q := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		q[kv[i]] = kv[i+1]
	}
	return testutil.Request{Method: "GET", Path: path, QueryParams: q}
}
