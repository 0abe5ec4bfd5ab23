package repository

import (
	"context"

	"zapshift-backend/internal/domain/parcels"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoParcelRepo struct {
	coll *mongo.Collection
}

func (r *mongoParcelRepo) Create(ctx context.Context, parcel *parcels.Parcel) error {
	res, err := r.coll.InsertOne(ctx, parcel)
	if err != nil {
		return mongoErr(err)
	}
	parcel.ID = insertedHex(res)
	return nil
}

func (r *mongoParcelRepo) FindByID(ctx context.Context, id string) (*parcels.Parcel, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var parcel parcels.Parcel
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&parcel); err != nil {
		return nil, mongoErr(err)
	}
	return &parcel, nil
}

func (r *mongoParcelRepo) List(ctx context.Context, senderEmail string) ([]parcels.Parcel, error) {
	filter := bson.M{}
	if senderEmail != "" {
		filter["senderEmail"] = senderEmail
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := []parcels.Parcel{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *mongoParcelRepo) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := objectID(id)
	if err != nil {
		return 0, nil
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *mongoParcelRepo) MarkPaid(ctx context.Context, id, trackingID string, amount float64) (UpdateResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return UpdateResult{}, nil
	}

	filter := bson.M{
		"_id":           oid,
		"paymentStatus": bson.M{"$ne": parcels.PaymentStatusPaid},
	}
	update := bson.M{"$set": bson.M{
		"paymentStatus": parcels.PaymentStatusPaid,
		"trackingId":    trackingID,
		"amount":        amount,
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return UpdateResult{}, err
	}
	return UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}
