package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/janseva/constituency-admin/internal/config"
	"github.com/janseva/constituency-admin/internal/database"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

// TestDatabase wraps a real MongoDB for integration tests
type TestDatabase struct {
	*database.Database
	container *mongodb.MongoDBContainer
}

// NewTestDatabase starts (or reuses) a MongoDB container and connects to it
func NewTestDatabase(t *testing.T) *TestDatabase {
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx,
		"mongo:7",
		testcontainers.WithReuseByName("janseva-test-mongo"),
	)
	require.NoError(t, err, "Failed to start MongoDB container")

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err, "Failed to get connection string")

	db, err := database.New(ctx, &config.MongoConfig{
		URI:            uri,
		Database:       "janseva_test",
		ConnectTimeout: 30 * time.Second,
	})
	require.NoError(t, err, "Failed to connect to MongoDB")
	require.NoError(t, db.EnsureIndexes(ctx), "Failed to create indexes")

	return &TestDatabase{Database: db, container: mongoContainer}
}

// CleanupDatabase empties every collection but keeps the indexes
func (tdb *TestDatabase) CleanupDatabase(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, coll := range []string{
		database.CollectionPermissions,
		database.CollectionRoles,
		database.CollectionUsers,
		database.CollectionSidebarAccess,
		database.CollectionSamitiMembers,
	} {
		if _, err := tdb.DB().Collection(coll).DeleteMany(ctx, map[string]any{}); err != nil {
			t.Logf("WARNING: failed to clean %s: %v", coll, err)
		}
	}
}

func (tdb *TestDatabase) Close() {
	if tdb.Database != nil {
		_ = tdb.Database.Close(context.Background())
	}
}
