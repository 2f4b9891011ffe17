package database

import (
	"context"

	"github.com/janseva/constituency-admin/internal/rbac"
	"github.com/janseva/constituency-admin/internal/samiti"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type SamitiRepository struct {
	coll *mongo.Collection
}

func (r *SamitiRepository) List(ctx context.Context, samitiType string) ([]samiti.Member, error) {
	cur, err := r.coll.Find(ctx,
		bson.M{"samitiType": samitiType},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	members := []samiti.Member{}
	if err := cur.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *SamitiRepository) Get(ctx context.Context, samitiType string, id bson.ObjectID) (*samiti.Member, error) {
	var m samiti.Member
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "samitiType": samitiType}).Decode(&m)
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *SamitiRepository) Insert(ctx context.Context, m *samiti.Member) error {
	_, err := r.coll.InsertOne(ctx, m)
	return writeError(err)
}

func (r *SamitiRepository) Update(ctx context.Context, m *samiti.Member) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": m.ID, "samitiType": m.SamitiType},
		bson.M{"$set": bson.M{
			"name":      m.Name,
			"mobile":    m.Mobile,
			"block":     m.Block,
			"village":   m.Village,
			"position":  m.Position,
			"updatedAt": m.UpdatedAt,
		}})
	if err != nil {
		return writeError(err)
	}
	if res.MatchedCount == 0 {
		return rbac.ErrNotFound
	}
	return nil
}

func (r *SamitiRepository) Delete(ctx context.Context, samitiType string, id bson.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "samitiType": samitiType})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return rbac.ErrNotFound
	}
	return nil
}
