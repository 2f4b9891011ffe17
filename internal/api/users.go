package api

import (
	"errors"
	"net/http"

	"github.com/janseva/constituency-admin/internal/auth"
	"github.com/janseva/constituency-admin/internal/middleware"
	"github.com/janseva/constituency-admin/internal/rbac"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type createUserRequest struct {
	Name     string `json:"name" validate:"required,max=128"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,objectid"`
	Mobile   string `json:"mobile" validate:"max=15"`
	Block    string `json:"block" validate:"max=64"`
	UserType string `json:"userType" validate:"max=32"`
}

type assignRoleRequest struct {
	Role string `json:"role" validate:"required,objectid"`
}

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := bindPagination(w, r)
	if !ok {
		return
	}

	users, err := s.users.List(r.Context())
	if err != nil {
		writeError(w, r, "users", err)
		return
	}
	writeJSON(w, http.StatusOK, paginate(w, users, limit, offset))
}

func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user, err := s.users.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, "User", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			ValidationErr(err.Error(), []ErrorDetail{{Field: "password", Message: err.Error()}}).Write(w, http.StatusBadRequest)
			return
		}
		writeError(w, r, "User", err)
		return
	}

	roleID, _ := bson.ObjectIDFromHex(req.Role)
	user, err := s.users.Create(r.Context(), rbac.UserSpec{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		RoleID:       roleID,
		Mobile:       req.Mobile,
		Block:        req.Block,
		UserType:     req.UserType,
	})
	if err != nil {
		writeError(w, r, "User", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// AssignUserRole points the user at a new role. Open refresh sessions are
// revoked so the client logs in again and reloads its sidebar.
func (s *Server) AssignUserRole(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req assignRoleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	roleID, _ := bson.ObjectIDFromHex(req.Role)

	user, err := s.users.AssignRole(r.Context(), id, roleID)
	if err != nil {
		writeError(w, r, "User", err)
		return
	}

	if err := s.auth.RevokeAll(r.Context(), user.ID); err != nil {
		logger.Warn("Failed to revoke sessions after role change", "target_user_id", user.ID.Hex(), "error", err)
	}
	writeJSON(w, http.StatusOK, user)
}
