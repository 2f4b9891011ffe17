package database

import (
	"context"

	"github.com/janseva/constituency-admin/internal/sidebar"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// SidebarRepository stores one projection document per role name.
type SidebarRepository struct {
	coll *mongo.Collection
}

func (r *SidebarRepository) LoadAll(ctx context.Context) ([]sidebar.Document, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "role", Value: 1}}))
	if err != nil {
		return nil, err
	}
	docs := []sidebar.Document{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// ReplaceAll upserts docs and removes roles no longer present. Each write is
// atomic on its own; readers may briefly see a mix of old and new documents.
func (r *SidebarRepository) ReplaceAll(ctx context.Context, docs []sidebar.Document) error {
	roles := make([]string, 0, len(docs))
	for _, d := range docs {
		_, err := r.coll.ReplaceOne(ctx, bson.M{"role": d.Role}, d, options.Replace().SetUpsert(true))
		if err != nil {
			return writeError(err)
		}
		roles = append(roles, d.Role)
	}
	_, err := r.coll.DeleteMany(ctx, bson.M{"role": bson.M{"$nin": roles}})
	return err
}
