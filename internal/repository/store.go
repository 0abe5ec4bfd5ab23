package repository

import (
	"context"
	"errors"

	"zapshift-backend/internal/domain/billing"
	"zapshift-backend/internal/domain/parcels"
	"zapshift-backend/internal/domain/riders"
	"zapshift-backend/internal/domain/users"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// UpdateResult mirrors the matched/modified counts a document store reports.
type UpdateResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// Store is the persistence gateway. The interfaces use plain domain types so the
// Mongo and Postgres adapters can be swapped by configuration.
type Store interface {
	Users() UserRepository
	Riders() RiderRepository
	Parcels() ParcelRepository
	Payments() PaymentRepository

	// InTx runs fn as one unit of work. Repositories reached through tx (and ctx,
	// for Mongo sessions) take part in it; an error from fn rolls everything back
	// when the backend supports transactions.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error

	Close(ctx context.Context) error
}

type UserRepository interface {
	// Create returns ErrDuplicate when the email is already registered.
	Create(ctx context.Context, user *users.User) error
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	List(ctx context.Context) ([]users.User, error)
	UpdateRole(ctx context.Context, email, role string) (UpdateResult, error)
	LinkGoogle(ctx context.Context, email, sub string) error
	// SetPassword stores a bcrypt hash; ErrNotFound when no user has the email.
	SetPassword(ctx context.Context, email, hash string) error
}

type RiderRepository interface {
	Create(ctx context.Context, rider *riders.Rider) error
	FindByID(ctx context.Context, id string) (*riders.Rider, error)
	List(ctx context.Context, status string) ([]riders.Rider, error)
	UpdateStatus(ctx context.Context, id, status string) (UpdateResult, error)
}

type ParcelRepository interface {
	Create(ctx context.Context, parcel *parcels.Parcel) error
	FindByID(ctx context.Context, id string) (*parcels.Parcel, error)
	// List returns parcels newest first; an empty senderEmail lists all.
	List(ctx context.Context, senderEmail string) ([]parcels.Parcel, error)
	Delete(ctx context.Context, id string) (int64, error)
	// MarkPaid moves an unpaid parcel to paid and attaches tracking id and amount.
	// A parcel that is already paid is not matched.
	MarkPaid(ctx context.Context, id, trackingID string, amount float64) (UpdateResult, error)
}

type PaymentRepository interface {
	// Create returns ErrDuplicate when the transaction id (or tracking id) exists.
	Create(ctx context.Context, payment *billing.Payment) error
	FindByTransactionID(ctx context.Context, transactionID string) (*billing.Payment, error)
	TrackingIDExists(ctx context.Context, trackingID string) (bool, error)
	// List returns entries newest paidAt first; an empty customerEmail lists all.
	List(ctx context.Context, customerEmail string) ([]billing.Payment, error)
}
