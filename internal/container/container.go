package container

import (
	"context"
	"fmt"
	"net/http"

	"github.com/janseva/constituency-admin/internal/api"
	"github.com/janseva/constituency-admin/internal/auth"
	"github.com/janseva/constituency-admin/internal/catalog"
	"github.com/janseva/constituency-admin/internal/config"
	"github.com/janseva/constituency-admin/internal/database"
	"github.com/janseva/constituency-admin/internal/logging"
	"github.com/janseva/constituency-admin/internal/middleware"
	"github.com/janseva/constituency-admin/internal/queue"
	"github.com/janseva/constituency-admin/internal/rbac"
	"github.com/janseva/constituency-admin/internal/samiti"
	"github.com/janseva/constituency-admin/internal/sidebar"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	Config      *config.Config
	Catalog     *catalog.Catalog
	Database    *database.Database
	Queue       *queue.TaskQueue
	RedisClient *redis.Client
	Engine      *rbac.Engine
	Roles       *rbac.RoleService
	Permissions *rbac.PermissionService
	Users       *rbac.UserService
	Samiti      *samiti.Service
	Sidebar     *sidebar.Service
	AuthService *auth.AuthService
	Resolver    *auth.Resolver
	Metrics     *middleware.Metrics
	Server      *api.Server
	Handler     http.Handler
	Worker      *queue.Worker
}

func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	cat, err := catalog.Default()
	if err != nil {
		return nil, err
	}

	db, err := database.New(ctx, &cfg.Mongo)
	if err != nil {
		return nil, err
	}
	c := &Container{Config: cfg, Catalog: cat, Database: db}

	if err := db.EnsureIndexes(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}

	c.Queue, err = queue.NewQueue(&cfg.Redis)
	if err != nil {
		c.Cleanup()
		return nil, err
	}

	// asynq keeps its own pool; this client holds refresh tokens and the
	// sidebar cache
	c.RedisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	c.Engine = rbac.NewEngine(db.Permissions())
	c.Permissions = rbac.NewPermissionService(db.Permissions())
	c.Roles = rbac.NewRoleService(db.Roles(), c.Queue)
	c.Users = rbac.NewUserService(db.Users(), db.Roles())
	c.Samiti = samiti.NewService(db.SamitiMembers(), cat.SamitiTypes)
	c.Sidebar = sidebar.NewService(db.Roles(), db.SidebarAccess(), sidebar.NewRedisCache(c.RedisClient, cfg.Sidebar.CacheTTL))

	if err := c.checkSamitiPermissions(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}

	jwtService, err := auth.NewJWTService([]byte(cfg.JWT.SigningKey), cfg.JWT.Issuer, cfg.JWT.Expiry)
	if err != nil {
		c.Cleanup()
		return nil, err
	}
	c.AuthService = auth.NewAuthService(c.RedisClient, jwtService, db.Users(), cfg.Auth)
	c.Resolver = auth.NewResolver(jwtService, db.Users(), db.Roles())

	c.Metrics = middleware.NewMetrics()
	c.Server = api.NewServer(api.Deps{
		Engine:      c.Engine,
		Roles:       c.Roles,
		Permissions: c.Permissions,
		Users:       c.Users,
		Samiti:      c.Samiti,
		Sidebar:     c.Sidebar,
		Auth:        c.AuthService,
		Resolver:    c.Resolver,
		Navigation:  cat.Navigation,
		Health:      db,
	})

	c.Handler, err = api.NewRouter(c.Server, api.RouterConfig{
		CORS:       &cfg.CORS,
		RateLimit:  cfg.RateLimit,
		Production: cfg.Server.Production,
		Metrics:    c.Metrics,
	})
	if err != nil {
		c.Cleanup()
		return nil, err
	}

	c.Worker, err = queue.NewWorker(&cfg.Redis, c.Sidebar, cfg.Sidebar.RebuildSchedule)
	if err != nil {
		c.Cleanup()
		return nil, err
	}

	logging.Info("Connected to database", "database", cfg.Mongo.Database)
	return c, nil
}

// checkSamitiPermissions fails when the catalog's samiti types derive
// capability names the catalog does not define. Stored permissions that lag
// behind the catalog only warn, since the seeder may not have run yet.
func (c *Container) checkSamitiPermissions(ctx context.Context) error {
	if err := rbac.ValidateSamitiCatalog(c.Catalog.SamitiTypes, c.Catalog.PermissionNames()); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	stored, err := c.Permissions.Names(ctx)
	if err != nil {
		return fmt.Errorf("loading permission names: %w", err)
	}
	if err := rbac.ValidateSamitiCatalog(c.Catalog.SamitiTypes, stored); err != nil {
		logging.Warn("stored permissions are missing samiti capabilities, run the seeder", "error", err)
	}
	return nil
}

func (c *Container) Cleanup() {
	if c.Worker != nil {
		c.Worker.Close()
		logging.Info("Worker closed")
	}
	if c.Queue != nil {
		_ = c.Queue.Close()
		logging.Info("Queue client closed")
	}
	if c.RedisClient != nil {
		_ = c.RedisClient.Close()
		logging.Info("Redis client closed")
	}
	if c.Database != nil {
		_ = c.Database.Close(context.Background())
		logging.Info("Database connection closed")
	}
}
