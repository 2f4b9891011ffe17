package rbac_test

import (
	"context"
	"errors"
	"testing"

	"github.com/janseva/constituency-admin/internal/rbac"
	"github.com/janseva/constituency-admin/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func ptr[T any](v T) *T { return &v }

func TestRoleService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes the name and notifies", func(t *testing.T) {
		store := testutil.NewStore()
		notifier := testutil.NewMockChangeNotifier(t)
		notifier.ExpectRolesChanged(nil).Once()
		svc := rbac.NewRoleService(store.Roles, notifier)

		role, err := svc.Create(ctx, rbac.RoleSpec{
			Name:          "  Block-Coordinator ",
			Permissions:   store.Permissions.IDs("view_users"),
			SidebarAccess: []string{"/users/", "/users", " /reports"},
		})
		require.NoError(t, err)
		assert.Equal(t, "block-coordinator", role.Name)
		assert.Equal(t, "Block Coordinator", role.DisplayName)
		assert.Equal(t, []string{"/users", "/reports"}, role.SidebarAccess)
		assert.False(t, role.ID.IsZero())

		stored, err := svc.GetByName(ctx, "BLOCK-COORDINATOR")
		require.NoError(t, err)
		assert.Equal(t, role.ID, stored.ID)
		notifier.AssertExpectations(t)
	})

	t.Run("wildcard collapses the sidebar list", func(t *testing.T) {
		store := testutil.NewStore()
		svc := rbac.NewRoleService(store.Roles, nil)

		role, err := svc.Create(ctx, rbac.RoleSpec{Name: "admin", SidebarAccess: []string{"/users", "*", "/roles"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"*"}, role.SidebarAccess)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		store := testutil.NewStore()
		store.NewRole(t, "editor").Create()
		svc := rbac.NewRoleService(store.Roles, nil)

		_, err := svc.Create(ctx, rbac.RoleSpec{Name: "Editor"})
		assert.ErrorIs(t, err, rbac.ErrConflict)
	})

	t.Run("blank name is invalid", func(t *testing.T) {
		svc := rbac.NewRoleService(testutil.NewMemoryRoles(), nil)
		_, err := svc.Create(ctx, rbac.RoleSpec{Name: "   "})
		assert.ErrorIs(t, err, rbac.ErrValidation)
	})

	t.Run("relative sidebar path is invalid", func(t *testing.T) {
		svc := rbac.NewRoleService(testutil.NewMemoryRoles(), nil)
		_, err := svc.Create(ctx, rbac.RoleSpec{Name: "x", SidebarAccess: []string{"users"}})
		assert.ErrorIs(t, err, rbac.ErrValidation)
	})

	t.Run("notifier failure does not fail the mutation", func(t *testing.T) {
		store := testutil.NewStore()
		notifier := testutil.NewMockChangeNotifier(t)
		notifier.ExpectRolesChanged(errors.New("redis down")).Once()
		svc := rbac.NewRoleService(store.Roles, notifier)

		_, err := svc.Create(ctx, rbac.RoleSpec{Name: "viewer"})
		require.NoError(t, err)
		notifier.AssertExpectations(t)
	})
}

func TestRoleService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces lists wholesale", func(t *testing.T) {
		store := testutil.NewStore()
		role := store.NewRole(t, "editor").WithPermissions("view_users", "edit_users").WithSidebar("/users").Create()
		notifier := testutil.NewMockChangeNotifier(t)
		notifier.ExpectRolesChanged(nil).Once()
		svc := rbac.NewRoleService(store.Roles, notifier)

		perms := store.Permissions.IDs("view_reports")
		updated, err := svc.Update(ctx, role.ID, rbac.RolePatch{
			Permissions:   &perms,
			SidebarAccess: ptr([]string{"/reports"}),
			Description:   ptr("reads reports"),
		})
		require.NoError(t, err)
		assert.Equal(t, perms, updated.Permissions)
		assert.Equal(t, []string{"/reports"}, updated.SidebarAccess)
		assert.Equal(t, "reads reports", updated.Description)
		assert.Equal(t, "editor", updated.Name)
		notifier.AssertExpectations(t)
	})

	t.Run("rename onto an existing name conflicts", func(t *testing.T) {
		store := testutil.NewStore()
		store.NewRole(t, "viewer").Create()
		role := store.NewRole(t, "editor").Create()
		svc := rbac.NewRoleService(store.Roles, nil)

		_, err := svc.Update(ctx, role.ID, rbac.RolePatch{Name: ptr("Viewer")})
		assert.ErrorIs(t, err, rbac.ErrConflict)
	})

	t.Run("system role cannot be renamed or unmarked", func(t *testing.T) {
		store := testutil.NewStore()
		role := store.NewRole(t, rbac.RoleSuperAdmin).System().Create()
		svc := rbac.NewRoleService(store.Roles, nil)

		_, err := svc.Update(ctx, role.ID, rbac.RolePatch{Name: ptr("root")})
		assert.ErrorIs(t, err, rbac.ErrForbidden)

		_, err = svc.Update(ctx, role.ID, rbac.RolePatch{IsSystem: ptr(false)})
		assert.ErrorIs(t, err, rbac.ErrForbidden)
	})

	t.Run("system role keeps editable fields editable", func(t *testing.T) {
		store := testutil.NewStore()
		role := store.NewRole(t, rbac.RoleSuperAdmin).System().Create()
		svc := rbac.NewRoleService(store.Roles, nil)

		updated, err := svc.Update(ctx, role.ID, rbac.RolePatch{
			Name:        ptr("SUPERADMIN"),
			IsSystem:    ptr(true),
			DisplayName: ptr("Super Admin"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Super Admin", updated.DisplayName)
		assert.True(t, updated.IsSystem)
	})

	t.Run("unknown role is not found", func(t *testing.T) {
		svc := rbac.NewRoleService(testutil.NewMemoryRoles(), nil)
		_, err := svc.Update(ctx, bson.NewObjectID(), rbac.RolePatch{})
		assert.ErrorIs(t, err, rbac.ErrNotFound)
	})
}

func TestRoleService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("system role is protected", func(t *testing.T) {
		store := testutil.NewStore()
		role := store.NewRole(t, "auditor").System().Create()
		notifier := testutil.NewMockChangeNotifier(t)
		svc := rbac.NewRoleService(store.Roles, notifier)

		err := svc.Delete(ctx, role.ID)
		assert.ErrorIs(t, err, rbac.ErrForbidden)

		_, err = svc.GetByID(ctx, role.ID)
		assert.NoError(t, err)
		notifier.AssertNotCalled(t, "RolesChanged", ctx)
	})

	t.Run("users of a deleted role keep the dangling reference", func(t *testing.T) {
		store := testutil.NewStore()
		role := store.NewRole(t, "volunteer").Create()
		user := store.NewUser(t).WithRole(role).Create()
		notifier := testutil.NewMockChangeNotifier(t)
		notifier.ExpectRolesChanged(nil).Once()
		svc := rbac.NewRoleService(store.Roles, notifier)

		require.NoError(t, svc.Delete(ctx, role.ID))

		stored, err := store.Users.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, role.ID, stored.RoleID)

		_, err = svc.GetByID(ctx, role.ID)
		assert.ErrorIs(t, err, rbac.ErrNotFound)
		notifier.AssertExpectations(t)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		store := testutil.NewStore()
		role := store.NewRole(t, "volunteer").Create()
		boom := errors.New("timeout")
		store.Roles.Err = boom
		svc := rbac.NewRoleService(store.Roles, nil)

		err := svc.Delete(ctx, role.ID)
		assert.ErrorIs(t, err, boom)
	})
}

func TestNormalizeSidebarAccess(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []string
		wantErr bool
	}{
		{name: "nil", in: nil, want: []string{}},
		{name: "ordered dedupe", in: []string{"/b", "/a", "/b/"}, want: []string{"/b", "/a"}},
		{name: "root stays", in: []string{"/"}, want: []string{"/"}},
		{name: "wildcard wins", in: []string{"/a", " * "}, want: []string{"*"}},
		{name: "relative", in: []string{"a"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rbac.NormalizeSidebarAccess(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, rbac.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
