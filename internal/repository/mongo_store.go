package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collUsers    = "users"
	collRiders   = "riders"
	collParcels  = "parcels"
	collPayments = "payments"
)

type MongoStore struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool

	users    *mongoUserRepo
	riders   *mongoRiderRepo
	parcels  *mongoParcelRepo
	payments *mongoPaymentRepo
}

// NewMongoStore wires the four collections of db. Multi-document transactions
// need a replica set, so they are opt-in.
func NewMongoStore(client *mongo.Client, db *mongo.Database, transactions bool) *MongoStore {
	return &MongoStore{
		client:       client,
		db:           db,
		transactions: transactions,
		users:        &mongoUserRepo{coll: db.Collection(collUsers)},
		riders:       &mongoRiderRepo{coll: db.Collection(collRiders)},
		parcels:      &mongoParcelRepo{coll: db.Collection(collParcels)},
		payments:     &mongoPaymentRepo{coll: db.Collection(collPayments)},
	}
}

func (s *MongoStore) Users() UserRepository       { return s.users }
func (s *MongoStore) Riders() RiderRepository     { return s.riders }
func (s *MongoStore) Parcels() ParcelRepository   { return s.parcels }
func (s *MongoStore) Payments() PaymentRepository { return s.payments }

func (s *MongoStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if !s.transactions {
		return fn(ctx, s)
	}

	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, s)
	})
	return err
}

func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}

// EnsureIndexes creates the indexes the payment flow relies on. The unique
// transactionId index is what makes concurrent finalization safe.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		collPayments: {
			{Keys: bson.D{{Key: "transactionId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "trackingId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "customerEmail", Value: 1}, {Key: "paidAt", Value: -1}}},
		},
		collUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collParcels: {
			{Keys: bson.D{{Key: "senderEmail", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		collRiders: {
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// objectID converts a public hex id; malformed ids cannot exist, so they are not found.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

func insertedHex(res *mongo.InsertOneResult) string {
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	if s, ok := res.InsertedID.(string); ok {
		return s
	}
	return ""
}

func mongoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}
