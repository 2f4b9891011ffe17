package api

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	apispec "github.com/janseva/constituency-admin/api"
	"github.com/janseva/constituency-admin/internal/config"
	"github.com/janseva/constituency-admin/internal/middleware"
	"github.com/janseva/constituency-admin/internal/rbac"
	"github.com/janseva/constituency-admin/internal/swagger"
	oapimw "github.com/oapi-codegen/nethttp-middleware"
)

type RouterConfig struct {
	CORS       *config.CORSConfig
	RateLimit  config.RateLimitConfig
	Production bool
	// nil disables /metrics
	Metrics *middleware.Metrics
}

// NewRouter mounts every route with its authorization requirement.
func NewRouter(s *Server, cfg RouterConfig) (http.Handler, error) {
	spec, err := apispec.Load()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestContext)
	r.Use(middleware.LoggingMiddleware)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(middleware.SecurityHeaders(cfg.Production))
	if cfg.CORS != nil {
		r.Use(middleware.NewCORSHandler(cfg.CORS))
	}

	r.Get("/health", s.HealthCheck)
	r.Get("/ready", s.ReadinessCheck)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}
	swagger.Mount(r)

	r.Route("/api", func(r chi.Router) {
		r.Use(oapimw.OapiRequestValidatorWithOptions(spec, &oapimw.Options{
			Options: openapi3filter.Options{
				// authentication is enforced per route group below
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			},
			ErrorHandler:          validationFailure,
			SilenceServersWarning: true,
		}))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.LoginRateLimit(cfg.RateLimit.LoginRequests, cfg.RateLimit.LoginWindow)).
				Post("/login", s.Login)
			r.Post("/refresh", s.RefreshToken)
			r.Post("/logout", s.Logout)
			r.With(s.authenticate).Get("/me", s.GetCurrentUser)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/sidebar-access", s.GetSidebarAccess)
			r.Get("/navigation", s.GetNavigation)

			r.Route("/permissions", func(r chi.Router) {
				r.With(s.require(rbac.Require(rbac.ViewPermissions))).Get("/", s.ListPermissions)
				r.With(s.require(rbac.Require(rbac.ManagePermissions))).Post("/", s.CreatePermission)
				r.With(s.require(rbac.Require(rbac.ViewPermissions))).Get("/{id}", s.GetPermission)
				r.With(s.require(rbac.Require(rbac.ManagePermissions))).Put("/{id}", s.UpdatePermission)
				r.With(s.require(rbac.Require(rbac.ManagePermissions))).Delete("/{id}", s.DeletePermission)
			})

			r.Route("/roles", func(r chi.Router) {
				view := s.require(rbac.AnyOf(rbac.ViewRoles, rbac.ManageRoles))
				manage := s.require(rbac.Require(rbac.ManageRoles))
				r.With(view).Get("/", s.ListRoles)
				r.With(manage).Post("/", s.CreateRole)
				r.With(view).Get("/{id}", s.GetRole)
				r.With(manage).Put("/{id}", s.UpdateRole)
				r.With(manage).Delete("/{id}", s.DeleteRole)
			})

			r.Route("/users", func(r chi.Router) {
				r.With(s.require(rbac.Require(rbac.ViewUsers))).Get("/", s.ListUsers)
				r.With(s.require(rbac.Require(rbac.CreateUsers))).Post("/", s.CreateUser)
				r.With(s.require(rbac.Require(rbac.ViewUsers))).Get("/{id}", s.GetUser)
				r.With(s.require(rbac.AllOf(rbac.EditUsers, rbac.ViewRoles))).Put("/{id}/role", s.AssignUserRole)
			})

			r.Route("/samiti", func(r chi.Router) {
				r.Get("/", s.ListSamitiTypes)
				r.With(s.requireSamiti(rbac.ActionView)).Get("/{samitiType}", s.ListSamitiMembers)
				r.With(s.requireSamiti(rbac.ActionCreate)).Post("/{samitiType}", s.CreateSamitiMember)
				r.With(s.requireSamiti(rbac.ActionView)).Get("/{samitiType}/{id}", s.GetSamitiMember)
				r.With(s.requireSamiti(rbac.ActionEdit)).Put("/{samitiType}/{id}", s.UpdateSamitiMember)
				r.With(s.requireSamiti(rbac.ActionDelete)).Delete("/{samitiType}/{id}", s.DeleteSamitiMember)
			})
		})
	})

	return r, nil
}

func validationFailure(w http.ResponseWriter, message string, statusCode int) {
	switch statusCode {
	case http.StatusNotFound:
		NewError(CodeResourceNotFound, message).Write(w, statusCode)
	case http.StatusMethodNotAllowed:
		NewError(CodeValidationError, message).Write(w, statusCode)
	case http.StatusUnauthorized:
		Unauthorized(message).Write(w, statusCode)
	case http.StatusForbidden:
		PermissionDenied(message).Write(w, statusCode)
	default:
		ValidationErr(message, nil).Write(w, http.StatusBadRequest)
	}
}
