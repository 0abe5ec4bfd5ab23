package repository

import (
	"context"

	"zapshift-backend/internal/domain/riders"
	"zapshift-backend/internal/domain/users"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoUserRepo struct {
	coll *mongo.Collection
}

func (r *mongoUserRepo) Create(ctx context.Context, user *users.User) error {
	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		return mongoErr(err)
	}
	user.ID = insertedHex(res)
	return nil
}

func (r *mongoUserRepo) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	var user users.User
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, mongoErr(err)
	}
	return &user, nil
}

func (r *mongoUserRepo) List(ctx context.Context) ([]users.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := []users.User{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *mongoUserRepo) UpdateRole(ctx context.Context, email, role string) (UpdateResult, error) {
	res, err := r.coll.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return UpdateResult{}, err
	}
	return UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}

func (r *mongoUserRepo) LinkGoogle(ctx context.Context, email, sub string) error {
	update := bson.M{"$set": bson.M{"googleSub": sub, "authProvider": "google"}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"email": email}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepo) SetPassword(ctx context.Context, email, hash string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"password": hash}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type mongoRiderRepo struct {
	coll *mongo.Collection
}

func (r *mongoRiderRepo) Create(ctx context.Context, rider *riders.Rider) error {
	res, err := r.coll.InsertOne(ctx, rider)
	if err != nil {
		return mongoErr(err)
	}
	rider.ID = insertedHex(res)
	return nil
}

func (r *mongoRiderRepo) FindByID(ctx context.Context, id string) (*riders.Rider, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var rider riders.Rider
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&rider); err != nil {
		return nil, mongoErr(err)
	}
	return &rider, nil
}

func (r *mongoRiderRepo) List(ctx context.Context, status string) ([]riders.Rider, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := []riders.Rider{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *mongoRiderRepo) UpdateStatus(ctx context.Context, id, status string) (UpdateResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return UpdateResult{}, nil
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return UpdateResult{}, err
	}
	return UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}
