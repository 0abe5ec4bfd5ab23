package repository_test

import (
	"context"
	"testing"

	"zapshift-backend/internal/domain/billing"
	"zapshift-backend/internal/domain/parcels"
	"zapshift-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("payment lookup by transaction id", func(mt *mtest.T) {
		store := repository.NewMongoStore(mt.Client, mt.DB, false)
		oid := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "zap.payments", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "amount", Value: 500.0},
			{Key: "transactionId", Value: "TX1"},
			{Key: "trackingId", Value: "ZAP-20250310-AB01FF"},
			{Key: "parcelId", Value: "P1"},
		}))

		p, err := store.Payments().FindByTransactionID(context.Background(), "TX1")
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), p.ID)
		assert.Equal(mt, "ZAP-20250310-AB01FF", p.TrackingID)
		assert.Equal(mt, 500.0, p.Amount)
	})

	mt.Run("payment lookup miss", func(mt *mtest.T) {
		store := repository.NewMongoStore(mt.Client, mt.DB, false)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "zap.payments", mtest.FirstBatch))

		p, err := store.Payments().FindByTransactionID(context.Background(), "TX404")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
		assert.Nil(mt, p)
	})

	mt.Run("duplicate transaction insert", func(mt *mtest.T) {
		store := repository.NewMongoStore(mt.Client, mt.DB, false)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := store.Payments().Create(context.Background(), &billing.Payment{TransactionID: "TX1"})
		assert.ErrorIs(mt, err, repository.ErrDuplicate)
	})

	mt.Run("payment insert assigns id", func(mt *mtest.T) {
		store := repository.NewMongoStore(mt.Client, mt.DB, false)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		p := &billing.Payment{TransactionID: "TX1", TrackingID: "ZAP-20250310-AB01FF"}
		require.NoError(mt, store.Payments().Create(context.Background(), p))
		assert.Len(mt, p.ID, 24)
	})

	mt.Run("tracking id exists", func(mt *mtest.T) {
		store := repository.NewMongoStore(mt.Client, mt.DB, false)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "zap.payments", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
		}))

		exists, err := store.Payments().TrackingIDExists(context.Background(), "ZAP-20250310-AB01FF")
		require.NoError(mt, err)
		assert.True(mt, exists)
	})

	mt.Run("mark paid reports counts", func(mt *mtest.T) {
		store := repository.NewMongoStore(mt.Client, mt.DB, false)
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "n", Value: 1},
			{Key: "nModified", Value: 1},
		})

		res, err := store.Parcels().MarkPaid(context.Background(), primitive.NewObjectID().Hex(), "ZAP-20250310-AB01FF", 500)
		require.NoError(mt, err)
		assert.Equal(mt, repository.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, res)
	})

	mt.Run("malformed parcel id", func(mt *mtest.T) {
		store := repository.NewMongoStore(mt.Client, mt.DB, false)

		p, err := store.Parcels().FindByID(context.Background(), "P1")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
		assert.Nil(mt, p)

		res, err := store.Parcels().MarkPaid(context.Background(), "P1", "ZAP-20250310-AB01FF", 500)
		require.NoError(mt, err)
		assert.Zero(mt, res.MatchedCount)
	})

	mt.Run("rider lookup by id", func(mt *mtest.T) {
		store := repository.NewMongoStore(mt.Client, mt.DB, false)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "zap.riders", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "email", Value: "rae@x.com"},
			{Key: "status", Value: "pending"},
		}))

		rider, err := store.Riders().FindByID(context.Background(), oid.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), rider.ID)
		assert.Equal(mt, "rae@x.com", rider.Email)

		_, err = store.Riders().FindByID(context.Background(), "r1")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("set password on unknown email", func(mt *mtest.T) {
		store := repository.NewMongoStore(mt.Client, mt.DB, false)
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "n", Value: 0},
			{Key: "nModified", Value: 0},
		})

		err := store.Users().SetPassword(context.Background(), "ghost@x.com", "$2a$10$hash")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("parcels listed by sender", func(mt *mtest.T) {
		store := repository.NewMongoStore(mt.Client, mt.DB, false)
		first := mtest.CreateCursorResponse(1, "zap.parcels", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "parcelName", Value: "Box"},
			{Key: "senderEmail", Value: "a@x.com"},
			{Key: "paymentStatus", Value: parcels.PaymentStatusUnpaid},
		})
		end := mtest.CreateCursorResponse(0, "zap.parcels", mtest.NextBatch)
		mt.AddMockResponses(first, end)

		list, err := store.Parcels().List(context.Background(), "a@x.com")
		require.NoError(mt, err)
		require.Len(mt, list, 1)
		assert.Equal(mt, "Box", list[0].ParcelName)
		assert.False(mt, list[0].IsPaid())
	})
}
