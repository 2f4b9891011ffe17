package api

import (
	"github.com/janseva/constituency-admin/internal/auth"
	"github.com/janseva/constituency-admin/internal/rbac"
	"github.com/janseva/constituency-admin/internal/samiti"
	"github.com/janseva/constituency-admin/internal/sidebar"
)

// Deps lists everything the HTTP layer talks to.
type Deps struct {
	Engine      *rbac.Engine
	Roles       *rbac.RoleService
	Permissions *rbac.PermissionService
	Users       *rbac.UserService
	Samiti      *samiti.Service
	Sidebar     SidebarAccessService
	Auth        AuthService
	Resolver    *auth.Resolver
	Navigation  []sidebar.NavItem
	Health      HealthChecker
}

type Server struct {
	engine      *rbac.Engine
	roles       *rbac.RoleService
	permissions *rbac.PermissionService
	users       *rbac.UserService
	samiti      *samiti.Service
	sidebar     SidebarAccessService
	auth        AuthService
	resolver    *auth.Resolver
	navigation  []sidebar.NavItem
	health      HealthChecker
}

func NewServer(d Deps) *Server {
	nav := d.Navigation
	if nav == nil {
		nav = []sidebar.NavItem{}
	}
	return &Server{
		engine:      d.Engine,
		roles:       d.Roles,
		permissions: d.Permissions,
		users:       d.Users,
		samiti:      d.Samiti,
		sidebar:     d.Sidebar,
		auth:        d.Auth,
		resolver:    d.Resolver,
		navigation:  nav,
		health:      d.Health,
	}
}
