package database

import (
	"context"

	"github.com/janseva/constituency-admin/internal/rbac"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type PermissionRepository struct {
	coll *mongo.Collection
}

// NamesByIDs keeps the order of ids; ids with no document are skipped.
func (r *PermissionRepository) NamesByIDs(ctx context.Context, ids []bson.ObjectID) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}
	cur, err := r.coll.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"name": 1}),
	)
	if err != nil {
		return nil, err
	}
	var docs []struct {
		ID   bson.ObjectID `bson:"_id"`
		Name string        `bson:"name"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	byID := make(map[bson.ObjectID]string, len(docs))
	for _, d := range docs {
		byID[d.ID] = d.Name
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		}
	}
	return names, nil
}

func (r *PermissionRepository) List(ctx context.Context, category string) ([]rbac.Permission, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	cur, err := r.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	perms := []rbac.Permission{}
	if err := cur.All(ctx, &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *PermissionRepository) FindByID(ctx context.Context, id bson.ObjectID) (*rbac.Permission, error) {
	var p rbac.Permission
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *PermissionRepository) FindByName(ctx context.Context, name string) (*rbac.Permission, error) {
	var p rbac.Permission
	if err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *PermissionRepository) Insert(ctx context.Context, p *rbac.Permission) error {
	_, err := r.coll.InsertOne(ctx, p)
	return writeError(err)
}

func (r *PermissionRepository) Replace(ctx context.Context, p *rbac.Permission) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return writeError(err)
	}
	if res.MatchedCount == 0 {
		return rbac.ErrNotFound
	}
	return nil
}

func (r *PermissionRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return rbac.ErrNotFound
	}
	return nil
}

// Upsert writes p keyed by name, keeping the stored id and createdAt.
func (r *PermissionRepository) Upsert(ctx context.Context, p *rbac.Permission) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"name": p.Name},
		bson.M{
			"$set": bson.M{
				"displayName": p.DisplayName,
				"description": p.Description,
				"category":    p.Category,
				"updatedAt":   p.UpdatedAt,
			},
			"$setOnInsert": bson.M{"_id": p.ID, "createdAt": p.CreatedAt},
		},
		options.UpdateOne().SetUpsert(true),
	)
	return writeError(err)
}
