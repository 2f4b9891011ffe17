package rbac_test

import (
	"context"
	"testing"

	"github.com/janseva/constituency-admin/internal/rbac"
	"github.com/janseva/constituency-admin/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionService(t *testing.T) {
	ctx := context.Background()

	t.Run("create derives display name and rejects duplicates", func(t *testing.T) {
		repo := testutil.NewMemoryPermissions()
		svc := rbac.NewPermissionService(repo)

		perm, err := svc.Create(ctx, rbac.PermissionSpec{Name: "View_Reports", Category: "Reports"})
		require.NoError(t, err)
		assert.Equal(t, "view_reports", perm.Name)
		assert.Equal(t, "View Reports", perm.DisplayName)
		assert.Equal(t, "reports", perm.Category)

		_, err = svc.Create(ctx, rbac.PermissionSpec{Name: "view_reports"})
		assert.ErrorIs(t, err, rbac.ErrConflict)
	})

	t.Run("malformed names are invalid", func(t *testing.T) {
		svc := rbac.NewPermissionService(testutil.NewMemoryPermissions())
		for _, name := range []string{"", "1abc", "view users", "view-users"} {
			_, err := svc.Create(ctx, rbac.PermissionSpec{Name: name})
			assert.ErrorIs(t, err, rbac.ErrValidation, name)
		}
	})

	t.Run("list filters by category", func(t *testing.T) {
		repo := testutil.NewMemoryPermissions()
		repo.Add("view_users", rbac.CategoryUsers)
		repo.Add("edit_users", rbac.CategoryUsers)
		repo.Add("view_roles", rbac.CategoryRoles)
		svc := rbac.NewPermissionService(repo)

		all, err := svc.ListAll(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 3)

		users, err := svc.ListAll(ctx, " users ")
		require.NoError(t, err)
		assert.Len(t, users, 2)

		names, err := svc.Names(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"view_users", "edit_users", "view_roles"}, names)
	})

	t.Run("metadata update keeps the name", func(t *testing.T) {
		repo := testutil.NewMemoryPermissions()
		perm := repo.Add("view_users", rbac.CategoryUsers)
		svc := rbac.NewPermissionService(repo)

		updated, err := svc.UpdateMetadata(ctx, perm.ID, rbac.PermissionPatch{
			DisplayName: ptr("See users"),
			Category:    ptr("People"),
		})
		require.NoError(t, err)
		assert.Equal(t, "view_users", updated.Name)
		assert.Equal(t, "See users", updated.DisplayName)
		assert.Equal(t, "people", updated.Category)
	})

	t.Run("delete orphans role references", func(t *testing.T) {
		store := testutil.NewStore()
		role := store.NewRole(t, "viewer").WithPermissions("view_users").Create()
		svc := rbac.NewPermissionService(store.Permissions)

		require.NoError(t, svc.Delete(ctx, role.Permissions[0]))

		stored, err := store.Roles.FindByID(ctx, role.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Permissions, 1)

		_, err = svc.Get(ctx, role.Permissions[0])
		assert.ErrorIs(t, err, rbac.ErrNotFound)
	})
}
