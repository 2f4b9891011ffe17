package api_test

import (
	"net/http"
	"testing"

	"github.com/janseva/constituency-admin/internal/samiti"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestSamiti_ListTypes(t *testing.T) {
	f := newAPIFixture(t)
	_, token := f.userWithRole(t, "volunteer")

	resp := f.get(t, "/api/samiti", token)
	require.Equal(t, http.StatusOK, resp.Code)

	var types []string
	resp.DecodeInto(t, &types)
	assert.Equal(t, []string{"ganesh-samiti", "mahila-samiti"}, types)
}

func TestSamiti_MemberLifecycle(t *testing.T) {
	f := newAPIFixture(t)
	user, token := f.userWithRole(t, "ganesh_admin",
		"view_ganesh_samiti", "create_ganesh_samiti", "delete_ganesh_samiti")

	created := f.send(t, http.MethodPost, "/api/samiti/ganesh-samiti", token, map[string]string{
		"name":     " Ravi Kumar ",
		"mobile":   "9876543210",
		"village":  "Rampur",
		"position": "Treasurer",
	})
	require.Equal(t, http.StatusCreated, created.Code, string(created.Raw))

	var member samiti.Member
	created.DecodeInto(t, &member)
	assert.Equal(t, "Ravi Kumar", member.Name)
	assert.Equal(t, "ganesh-samiti", member.SamitiType)
	assert.Equal(t, user.ID, member.CreatedBy)

	list := f.get(t, "/api/samiti/ganesh-samiti", token)
	require.Equal(t, http.StatusOK, list.Code)
	var members []samiti.Member
	list.DecodeInto(t, &members)
	require.Len(t, members, 1)
	assert.Equal(t, "1", list.Header().Get("X-Total-Count"))

	path := "/api/samiti/ganesh-samiti/" + member.ID.Hex()
	assert.Equal(t, http.StatusOK, f.get(t, path, token).Code)
	assert.Equal(t, http.StatusNoContent, f.send(t, http.MethodDelete, path, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.get(t, path, token).Code)
}

func TestSamiti_MembersScopedByType(t *testing.T) {
	f := newAPIFixture(t)
	_, token := f.superadmin(t)

	created := f.send(t, http.MethodPost, "/api/samiti/mahila-samiti", token, map[string]string{"name": "Geeta"})
	require.Equal(t, http.StatusCreated, created.Code)
	id := created.Body["id"].(string)

	resp := f.get(t, "/api/samiti/ganesh-samiti/"+id, token)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	list := f.get(t, "/api/samiti/ganesh-samiti", token)
	var members []samiti.Member
	list.DecodeInto(t, &members)
	assert.Empty(t, members)
}

func TestSamiti_CreateValidation(t *testing.T) {
	f := newAPIFixture(t)
	_, token := f.superadmin(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing name", map[string]string{"mobile": "9876543210"}},
		{"bad mobile", map[string]string{"name": "Ravi", "mobile": "call me"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.send(t, http.MethodPost, "/api/samiti/ganesh-samiti", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
		})
	}
}

func TestSamiti_DeleteUnknownMember(t *testing.T) {
	f := newAPIFixture(t)
	_, token := f.superadmin(t)

	resp := f.send(t, http.MethodDelete, "/api/samiti/ganesh-samiti/"+bson.NewObjectID().Hex(), token, nil)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSamiti_UpdateMember(t *testing.T) {
	f := newAPIFixture(t)
	_, creatorToken := f.userWithRole(t, "ganesh_clerk", "view_ganesh_samiti", "create_ganesh_samiti")
	_, editorToken := f.userWithRole(t, "ganesh_editor", "view_ganesh_samiti", "edit_ganesh_samiti")

	created := f.send(t, http.MethodPost, "/api/samiti/ganesh-samiti", creatorToken, map[string]string{
		"name":     "Ravi",
		"mobile":   "9876543210",
		"position": "Member",
	})
	require.Equal(t, http.StatusCreated, created.Code, string(created.Raw))
	path := "/api/samiti/ganesh-samiti/" + created.Body["id"].(string)
	body := map[string]string{"name": "Ravi Kumar", "position": "Treasurer"}

	denied := f.send(t, http.MethodPut, path, creatorToken, body)
	assert.Equal(t, http.StatusForbidden, denied.Code)
	assert.Equal(t, "missing capability: edit_ganesh_samiti", denied.ErrorMessage())

	resp := f.send(t, http.MethodPut, path, editorToken, body)
	require.Equal(t, http.StatusOK, resp.Code, string(resp.Raw))
	var member samiti.Member
	resp.DecodeInto(t, &member)
	assert.Equal(t, "Ravi Kumar", member.Name)
	assert.Equal(t, "Treasurer", member.Position)
	assert.Empty(t, member.Mobile)

	fetched := f.get(t, path, editorToken)
	require.Equal(t, http.StatusOK, fetched.Code)
	assert.Equal(t, "Ravi Kumar", fetched.Body["name"])

	t.Run("member of another type is not found", func(t *testing.T) {
		_, token := f.superadmin(t)
		other := "/api/samiti/mahila-samiti/" + member.ID.Hex()
		assert.Equal(t, http.StatusNotFound, f.send(t, http.MethodPut, other, token, body).Code)
	})

	t.Run("missing name is rejected", func(t *testing.T) {
		resp := f.send(t, http.MethodPut, path, editorToken, map[string]string{"position": "Treasurer"})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}
