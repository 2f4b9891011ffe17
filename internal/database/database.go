package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/janseva/constituency-admin/internal/config"
	"github.com/janseva/constituency-admin/internal/rbac"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	CollectionPermissions   = "permissions"
	CollectionRoles         = "roles"
	CollectionUsers         = "users"
	CollectionSidebarAccess = "sidebar_access"
	CollectionSamitiMembers = "samiti_members"
)

type Database struct {
	client *mongo.Client
	db     *mongo.Database
}

func New(ctx context.Context, cfg *config.MongoConfig) (*Database, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &Database{client: client, db: client.Database(cfg.Database)}, nil
}

func (d *Database) Close(ctx context.Context) error {
	if d.client == nil {
		return nil
	}
	return d.client.Disconnect(ctx)
}

func (d *Database) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

func (d *Database) DB() *mongo.Database {
	return d.db
}

// EnsureIndexes creates the unique indexes the repositories rely on for
// conflict detection. Safe to call on every start.
func (d *Database) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		CollectionPermissions: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
		CollectionRoles: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		CollectionSidebarAccess: {
			{Keys: bson.D{{Key: "role", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionSamitiMembers: {
			{Keys: bson.D{{Key: "samitiType", Value: 1}, {Key: "name", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := d.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("creating indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// Repositories

func (d *Database) Permissions() *PermissionRepository {
	return &PermissionRepository{coll: d.db.Collection(CollectionPermissions)}
}

func (d *Database) Roles() *RoleRepository {
	return &RoleRepository{coll: d.db.Collection(CollectionRoles)}
}

func (d *Database) Users() *UserRepository {
	return &UserRepository{coll: d.db.Collection(CollectionUsers)}
}

func (d *Database) SidebarAccess() *SidebarRepository {
	return &SidebarRepository{coll: d.db.Collection(CollectionSidebarAccess)}
}

func (d *Database) SamitiMembers() *SamitiRepository {
	return &SamitiRepository{coll: d.db.Collection(CollectionSamitiMembers)}
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return rbac.ErrNotFound
	}
	return err
}

func writeError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", rbac.ErrConflict, err)
	}
	return err
}
