package database

import (
	"context"
	"time"

	"github.com/janseva/constituency-admin/internal/rbac"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type UserRepository struct {
	coll *mongo.Collection
}

func (r *UserRepository) FindByID(ctx context.Context, id bson.ObjectID) (*rbac.User, error) {
	var u rbac.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*rbac.User, error) {
	var u rbac.User
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]rbac.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
	if err != nil {
		return nil, err
	}
	users := []rbac.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Insert(ctx context.Context, u *rbac.User) error {
	_, err := r.coll.InsertOne(ctx, u)
	return writeError(err)
}

func (r *UserRepository) SetRole(ctx context.Context, id, roleID bson.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": roleID, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return rbac.ErrNotFound
	}
	return nil
}
