package api

import (
	"errors"
	"net/http"

	"github.com/janseva/constituency-admin/internal/auth"
	"github.com/janseva/constituency-admin/internal/middleware"
	"github.com/janseva/constituency-admin/internal/rbac"
	"github.com/janseva/constituency-admin/internal/sidebar"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type sidebarView struct {
	All   bool     `json:"all"`
	Paths []string `json:"paths"`
}

type meResponse struct {
	User        *rbac.User  `json:"user"`
	Role        *rbac.Role  `json:"role"`
	Permissions []string    `json:"permissions"`
	Sidebar     sidebarView `json:"sidebar"`
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pair, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			Unauthorized("Invalid email or password.").Write(w, http.StatusUnauthorized)
			return
		}
		logger.Error("Login failed", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) RefreshToken(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pair, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshInvalid) {
			Unauthorized("Invalid or expired refresh token.").Write(w, http.StatusUnauthorized)
			return
		}
		logger.Error("Token refresh failed", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		writeError(w, r, "session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCurrentUser returns what the SPA needs after login: the user, the role,
// effective permissions and the expanded sidebar.
func (s *Server) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		Unauthorized("Authentication required").Write(w, http.StatusUnauthorized)
		return
	}

	perms, err := s.engine.EffectivePermissions(r.Context(), principal.Role)
	if err != nil {
		writeError(w, r, "permissions", err)
		return
	}

	access := sidebar.AllowedPaths(principal.Role)
	view := sidebarView{All: access.All, Paths: sidebar.Expand(principal.Role, s.navigation)}

	writeJSON(w, http.StatusOK, meResponse{
		User:        principal.User,
		Role:        principal.Role,
		Permissions: perms,
		Sidebar:     view,
	})
}
