package api

import (
	"net/http"

	"github.com/janseva/constituency-admin/internal/rbac"
)

type createRoleRequest struct {
	Name          string   `json:"name" validate:"required,max=64"`
	DisplayName   string   `json:"displayName" validate:"max=128"`
	Description   string   `json:"description" validate:"max=512"`
	Permissions   []string `json:"permissions" validate:"dive,objectid"`
	SidebarAccess []string `json:"sidebarAccess" validate:"dive,required"`
	IsSystem      bool     `json:"isSystem"`
}

type updateRoleRequest struct {
	Name          *string   `json:"name" validate:"omitempty,min=1,max=64"`
	DisplayName   *string   `json:"displayName" validate:"omitempty,max=128"`
	Description   *string   `json:"description" validate:"omitempty,max=512"`
	Permissions   *[]string `json:"permissions" validate:"omitempty,dive,objectid"`
	SidebarAccess *[]string `json:"sidebarAccess" validate:"omitempty,dive,required"`
	IsSystem      *bool     `json:"isSystem"`
}

func (s *Server) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := s.roles.ListAll(r.Context())
	if err != nil {
		writeError(w, r, "roles", err)
		return
	}
	writeJSON(w, http.StatusOK, roles)
}

func (s *Server) GetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	role, err := s.roles.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "Role", err)
		return
	}
	writeJSON(w, http.StatusOK, role)
}

func (s *Server) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	perms, err := parseObjectIDs(req.Permissions)
	if err != nil {
		ValidationErr(err.Error(), []ErrorDetail{{Field: "permissions", Message: err.Error()}}).Write(w, http.StatusBadRequest)
		return
	}

	role, err := s.roles.Create(r.Context(), rbac.RoleSpec{
		Name:          req.Name,
		DisplayName:   req.DisplayName,
		Description:   req.Description,
		Permissions:   perms,
		SidebarAccess: req.SidebarAccess,
		IsSystem:      req.IsSystem,
	})
	if err != nil {
		writeError(w, r, "Role", err)
		return
	}
	writeJSON(w, http.StatusCreated, role)
}

func (s *Server) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateRoleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	patch := rbac.RolePatch{
		Name:          req.Name,
		DisplayName:   req.DisplayName,
		Description:   req.Description,
		SidebarAccess: req.SidebarAccess,
		IsSystem:      req.IsSystem,
	}
	if req.Permissions != nil {
		perms, err := parseObjectIDs(*req.Permissions)
		if err != nil {
			ValidationErr(err.Error(), []ErrorDetail{{Field: "permissions", Message: err.Error()}}).Write(w, http.StatusBadRequest)
			return
		}
		patch.Permissions = &perms
	}

	role, err := s.roles.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, "Role", err)
		return
	}
	writeJSON(w, http.StatusOK, role)
}

func (s *Server) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.roles.Delete(r.Context(), id); err != nil {
		writeError(w, r, "Role", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
