package api

import (
	"net/http"

	"github.com/janseva/constituency-admin/internal/rbac"
	"github.com/oapi-codegen/runtime"
)

type createPermissionRequest struct {
	Name        string `json:"name" validate:"required,max=64"`
	DisplayName string `json:"displayName" validate:"max=128"`
	Description string `json:"description" validate:"max=512"`
	Category    string `json:"category" validate:"required,max=64"`
}

type updatePermissionRequest struct {
	DisplayName *string `json:"displayName" validate:"omitempty,max=128"`
	Description *string `json:"description" validate:"omitempty,max=512"`
	Category    *string `json:"category" validate:"omitempty,min=1,max=64"`
}

func (s *Server) ListPermissions(w http.ResponseWriter, r *http.Request) {
	var category *string
	if err := runtime.BindQueryParameter("form", true, false, "category", r.URL.Query(), &category); err != nil {
		ValidationErr("Invalid category.", []ErrorDetail{{Field: "category", Message: err.Error()}}).
			Write(w, http.StatusBadRequest)
		return
	}

	filter := ""
	if category != nil {
		filter = *category
	}
	perms, err := s.permissions.ListAll(r.Context(), filter)
	if err != nil {
		writeError(w, r, "permissions", err)
		return
	}
	writeJSON(w, http.StatusOK, perms)
}

func (s *Server) GetPermission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	perm, err := s.permissions.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, "Permission", err)
		return
	}
	writeJSON(w, http.StatusOK, perm)
}

func (s *Server) CreatePermission(w http.ResponseWriter, r *http.Request) {
	var req createPermissionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	perm, err := s.permissions.Create(r.Context(), rbac.PermissionSpec{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		writeError(w, r, "Permission", err)
		return
	}
	writeJSON(w, http.StatusCreated, perm)
}

func (s *Server) UpdatePermission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updatePermissionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	perm, err := s.permissions.UpdateMetadata(r.Context(), id, rbac.PermissionPatch{
		DisplayName: req.DisplayName,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		writeError(w, r, "Permission", err)
		return
	}
	writeJSON(w, http.StatusOK, perm)
}

func (s *Server) DeletePermission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.permissions.Delete(r.Context(), id); err != nil {
		writeError(w, r, "Permission", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
