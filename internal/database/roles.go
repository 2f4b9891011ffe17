package database

import (
	"context"

	"github.com/janseva/constituency-admin/internal/rbac"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type RoleRepository struct {
	coll *mongo.Collection
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*rbac.Role, error) {
	var role rbac.Role
	if err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&role); err != nil {
		return nil, notFound(err)
	}
	return &role, nil
}

func (r *RoleRepository) FindByID(ctx context.Context, id bson.ObjectID) (*rbac.Role, error) {
	var role rbac.Role
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&role); err != nil {
		return nil, notFound(err)
	}
	return &role, nil
}

func (r *RoleRepository) List(ctx context.Context) ([]rbac.Role, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	roles := []rbac.Role{}
	if err := cur.All(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *RoleRepository) Insert(ctx context.Context, role *rbac.Role) error {
	_, err := r.coll.InsertOne(ctx, role)
	return writeError(err)
}

func (r *RoleRepository) Replace(ctx context.Context, role *rbac.Role) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": role.ID}, role)
	if err != nil {
		return writeError(err)
	}
	if res.MatchedCount == 0 {
		return rbac.ErrNotFound
	}
	return nil
}

func (r *RoleRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return rbac.ErrNotFound
	}
	return nil
}

// Upsert writes role keyed by name, keeping the stored id and createdAt.
func (r *RoleRepository) Upsert(ctx context.Context, role *rbac.Role) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"name": role.Name},
		bson.M{
			"$set": bson.M{
				"displayName":   role.DisplayName,
				"description":   role.Description,
				"permissions":   role.Permissions,
				"sidebarAccess": role.SidebarAccess,
				"isSystem":      role.IsSystem,
				"updatedAt":     role.UpdatedAt,
			},
			"$setOnInsert": bson.M{"_id": role.ID, "createdAt": role.CreatedAt},
		},
		options.UpdateOne().SetUpsert(true),
	)
	return writeError(err)
}
