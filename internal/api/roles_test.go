package api_test

import (
	"net/http"
	"testing"

	"github.com/janseva/constituency-admin/internal/api"
	"github.com/janseva/constituency-admin/internal/rbac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestRoles_CreateAndGet(t *testing.T) {
	f := newAPIFixture(t)
	_, token := f.userWithRole(t, "admin", rbac.ManageRoles)
	perm := f.store.Permissions.Add("view_reports", "reports")

	resp := f.send(t, http.MethodPost, "/api/roles", token, map[string]interface{}{
		"name":          " Block_Coordinator ",
		"permissions":   []string{perm.ID.Hex()},
		"sidebarAccess": []string{"/dashboard", " /dashboard "},
	})
	require.Equal(t, http.StatusCreated, resp.Code, string(resp.Raw))

	var role rbac.Role
	resp.DecodeInto(t, &role)
	assert.Equal(t, "block_coordinator", role.Name)
	assert.Equal(t, "Block Coordinator", role.DisplayName)
	assert.Equal(t, []bson.ObjectID{perm.ID}, role.Permissions)
	assert.Equal(t, []string{"/dashboard"}, role.SidebarAccess)

	got := f.get(t, "/api/roles/"+role.ID.Hex(), token)
	assert.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, role.ID.Hex(), got.Body["id"])
}

func TestRoles_CreateDuplicate(t *testing.T) {
	f := newAPIFixture(t)
	_, token := f.userWithRole(t, "admin", rbac.ManageRoles)
	f.store.NewRole(t, "volunteer").Create()

	resp := f.send(t, http.MethodPost, "/api/roles", token, map[string]interface{}{"name": "Volunteer"})

	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, api.CodeConflict, resp.ErrorCode())
	assert.Equal(t, `role "volunteer" already exists`, resp.ErrorMessage())
}

func TestRoles_CreateValidation(t *testing.T) {
	f := newAPIFixture(t)
	_, token := f.userWithRole(t, "admin", rbac.ManageRoles)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing name", map[string]interface{}{"permissions": []string{}}},
		{"bad permission id", map[string]interface{}{"name": "x", "permissions": []string{"nope"}}},
		{"unknown field", map[string]interface{}{"name": "x", "colour": "red"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.send(t, http.MethodPost, "/api/roles", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Equal(t, api.CodeValidationError, resp.ErrorCode())
		})
	}
}

func TestRoles_Update(t *testing.T) {
	f := newAPIFixture(t)
	_, token := f.userWithRole(t, "admin", rbac.ManageRoles)
	role := f.store.NewRole(t, "volunteer").WithSidebar("/dashboard").Create()

	resp := f.send(t, http.MethodPut, "/api/roles/"+role.ID.Hex(), token, map[string]interface{}{
		"description":   "Field volunteers",
		"sidebarAccess": []string{"/samiti"},
	})
	require.Equal(t, http.StatusOK, resp.Code, string(resp.Raw))
	assert.Equal(t, "Field volunteers", resp.Body["description"])
	assert.Equal(t, []interface{}{"/samiti"}, resp.Body["sidebarAccess"])
	assert.Equal(t, "volunteer", resp.Body["name"])
}

func TestRoles_DeleteSystemRoleForbidden(t *testing.T) {
	f := newAPIFixture(t)
	_, token := f.userWithRole(t, "admin", rbac.ManageRoles)
	system := f.store.NewRole(t, "mla").System().Create()

	resp := f.send(t, http.MethodDelete, "/api/roles/"+system.ID.Hex(), token, nil)

	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, api.CodePermissionDenied, resp.ErrorCode())

	_, err := f.store.Roles.FindByID(t.Context(), system.ID)
	assert.NoError(t, err)
}

func TestRoles_Delete(t *testing.T) {
	f := newAPIFixture(t)
	_, token := f.userWithRole(t, "admin", rbac.ManageRoles)
	role := f.store.NewRole(t, "temporary").Create()

	resp := f.send(t, http.MethodDelete, "/api/roles/"+role.ID.Hex(), token, nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	missing := f.send(t, http.MethodDelete, "/api/roles/"+role.ID.Hex(), token, nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestRoles_MalformedID(t *testing.T) {
	f := newAPIFixture(t)
	_, token := f.userWithRole(t, "viewer", rbac.ViewRoles)

	resp := f.get(t, "/api/roles/not-an-id", token)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestPermissions_CRUD(t *testing.T) {
	f := newAPIFixture(t)
	_, token := f.userWithRole(t, "admin", rbac.ManagePermissions, rbac.ViewPermissions)

	created := f.send(t, http.MethodPost, "/api/permissions", token, map[string]string{
		"name":     "export_reports",
		"category": "Reports",
	})
	require.Equal(t, http.StatusCreated, created.Code, string(created.Raw))
	assert.Equal(t, "Export Reports", created.Body["displayName"])
	assert.Equal(t, "reports", created.Body["category"])
	id := created.Body["id"].(string)

	dup := f.send(t, http.MethodPost, "/api/permissions", token, map[string]string{
		"name":     "export_reports",
		"category": "reports",
	})
	assert.Equal(t, http.StatusConflict, dup.Code)

	bad := f.send(t, http.MethodPost, "/api/permissions", token, map[string]string{
		"name":     "Export Reports!",
		"category": "reports",
	})
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	updated := f.send(t, http.MethodPut, "/api/permissions/"+id, token, map[string]string{"description": "CSV export"})
	require.Equal(t, http.StatusOK, updated.Code)
	assert.Equal(t, "CSV export", updated.Body["description"])
	assert.Equal(t, "export_reports", updated.Body["name"])

	list := f.ts.AuthenticatedRequest(t, requestWithQuery("/api/permissions", "category", "reports"), token)
	require.Equal(t, http.StatusOK, list.Code)
	var perms []rbac.Permission
	list.DecodeInto(t, &perms)
	require.Len(t, perms, 1)
	assert.Equal(t, "export_reports", perms[0].Name)

	assert.Equal(t, http.StatusNoContent, f.send(t, http.MethodDelete, "/api/permissions/"+id, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.get(t, "/api/permissions/"+id, token).Code)
}
