package api

import (
	"net/http"
)

// GetSidebarAccess returns the whole role to paths map. Every signed-in user
// may read it; the map grants nothing by itself.
func (s *Server) GetSidebarAccess(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sidebar.AccessMap(r.Context())
	if err != nil {
		writeError(w, r, "sidebar access", err)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) GetNavigation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.navigation)
}
