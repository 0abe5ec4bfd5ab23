package repository

import (
	"context"
	"errors"

	"zapshift-backend/internal/domain/billing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoPaymentRepo struct {
	coll *mongo.Collection
}

func (r *mongoPaymentRepo) Create(ctx context.Context, payment *billing.Payment) error {
	res, err := r.coll.InsertOne(ctx, payment)
	if err != nil {
		return mongoErr(err)
	}
	payment.ID = insertedHex(res)
	return nil
}

func (r *mongoPaymentRepo) FindByTransactionID(ctx context.Context, transactionID string) (*billing.Payment, error) {
	var payment billing.Payment
	err := r.coll.FindOne(ctx, bson.M{"transactionId": transactionID}).Decode(&payment)
	if err != nil {
		return nil, mongoErr(err)
	}
	return &payment, nil
}

func (r *mongoPaymentRepo) TrackingIDExists(ctx context.Context, trackingID string) (bool, error) {
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err := r.coll.FindOne(ctx, bson.M{"trackingId": trackingID}, opts).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return false, nil
	default:
		return false, err
	}
}

func (r *mongoPaymentRepo) List(ctx context.Context, customerEmail string) ([]billing.Payment, error) {
	filter := bson.M{}
	if customerEmail != "" {
		filter["customerEmail"] = customerEmail
	}

	opts := options.Find().SetSort(bson.D{{Key: "paidAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := []billing.Payment{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}
