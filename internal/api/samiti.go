package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/janseva/constituency-admin/internal/auth"
	"github.com/janseva/constituency-admin/internal/samiti"
)

// memberRequest is the body of both create and update; update replaces every
// field.
type memberRequest struct {
	Name     string `json:"name" validate:"required,max=128"`
	Mobile   string `json:"mobile" validate:"omitempty,min=7,max=15"`
	Block    string `json:"block" validate:"max=64"`
	Village  string `json:"village" validate:"max=64"`
	Position string `json:"position" validate:"max=64"`
}

func (req memberRequest) spec() samiti.MemberSpec {
	return samiti.MemberSpec{
		Name:     req.Name,
		Mobile:   req.Mobile,
		Block:    req.Block,
		Village:  req.Village,
		Position: req.Position,
	}
}

func (s *Server) ListSamitiTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.samiti.Types())
}

func (s *Server) ListSamitiMembers(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := bindPagination(w, r)
	if !ok {
		return
	}

	members, err := s.samiti.List(r.Context(), chi.URLParam(r, samitiTypeParam))
	if err != nil {
		writeError(w, r, "Samiti", err)
		return
	}
	writeJSON(w, http.StatusOK, paginate(w, members, limit, offset))
}

func (s *Server) GetSamitiMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	member, err := s.samiti.Get(r.Context(), chi.URLParam(r, samitiTypeParam), id)
	if err != nil {
		writeError(w, r, "Member", err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (s *Server) CreateSamitiMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if !decodeBody(w, r, &req) {
		return
	}

	principal, _ := auth.PrincipalFrom(r.Context())
	member, err := s.samiti.Create(r.Context(), chi.URLParam(r, samitiTypeParam), req.spec(), principal.User.ID)
	if err != nil {
		writeError(w, r, "Member", err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

func (s *Server) UpdateSamitiMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req memberRequest
	if !decodeBody(w, r, &req) {
		return
	}

	member, err := s.samiti.Update(r.Context(), chi.URLParam(r, samitiTypeParam), id, req.spec())
	if err != nil {
		writeError(w, r, "Member", err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (s *Server) DeleteSamitiMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.samiti.Delete(r.Context(), chi.URLParam(r, samitiTypeParam), id); err != nil {
		writeError(w, r, "Member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
