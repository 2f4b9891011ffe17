package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/janseva/constituency-admin/internal/auth"
	"github.com/janseva/constituency-admin/internal/middleware"
	"github.com/janseva/constituency-admin/internal/rbac"
)

const samitiTypeParam = "samitiType"

// authenticate resolves the bearer token and tags the request logger with the
// caller's id.
func (s *Server) authenticate(next http.Handler) http.Handler {
	annotated := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := auth.PrincipalFrom(r.Context()); ok {
			r = r.WithContext(middleware.WithUserID(r.Context(), p.User.ID.Hex()))
		}
		next.ServeHTTP(w, r)
	})
	return auth.Authenticate(s.resolver, authFailure)(annotated)
}

func authFailure(w http.ResponseWriter, r *http.Request, err error) {
	logger := middleware.GetLoggerFromContext(r.Context())

	var authErr *auth.AuthError
	if errors.As(err, &authErr) {
		logger.Info("authentication failed", "reason", authErr.Reason)
		Unauthorized(authErr.Reason).Write(w, http.StatusUnauthorized)
		return
	}

	logger.Error("resolving principal failed", "error", err)
	InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
}

// require guards a route with a fixed capability requirement.
func (s *Server) require(req rbac.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !s.authorize(w, r, req) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireSamiti derives the capability from the {samitiType} URL parameter,
// e.g. create on /api/samiti/ganesh-samiti needs create_ganesh_samiti.
func (s *Server) requireSamiti(action rbac.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := middleware.GetLoggerFromContext(r.Context())

			raw := chi.URLParam(r, samitiTypeParam)
			if raw == "" {
				logger.Error("samiti guard mounted on a route without {samitiType}", "path", r.URL.Path)
				InternalError("Server misconfiguration.").Write(w, http.StatusInternalServerError)
				return
			}

			// Fail closed before the type lookup: only a principal holding a
			// role can tell unknown types (404) from denied ones (403).
			principal, ok := auth.PrincipalFrom(r.Context())
			if !ok {
				Unauthorized("Authentication required").Write(w, http.StatusUnauthorized)
				return
			}
			if principal.Role == nil {
				PermissionDenied(rbac.ReasonRoleNotFound).Write(w, http.StatusForbidden)
				return
			}

			slug, err := s.samiti.Canonical(raw)
			if err != nil {
				writeError(w, r, "samiti type", err)
				return
			}

			name, err := rbac.DeriveCapability(action, slug)
			if err != nil {
				writeError(w, r, "samiti type", err)
				return
			}

			if !s.authorize(w, r, rbac.Require(name)) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// authorize writes the 401/403/500 response and returns false unless the
// caller satisfies req.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, req rbac.Requirement) bool {
	logger := middleware.GetLoggerFromContext(r.Context())

	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		Unauthorized("Authentication required").Write(w, http.StatusUnauthorized)
		return false
	}

	decision, err := s.engine.Decide(r.Context(), principal, req)
	if err != nil {
		logger.Error("authorization lookup failed",
			"requirement", req.String(),
			"error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return false
	}
	if !decision.Allowed {
		PermissionDenied(decision.Reason).Write(w, http.StatusForbidden)
		return false
	}
	return true
}
