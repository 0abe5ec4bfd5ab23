package repository

import (
	"context"
	"errors"
	"fmt"

	"zapshift-backend/internal/domain/billing"
	"zapshift-backend/internal/domain/parcels"
	"zapshift-backend/internal/domain/riders"
	"zapshift-backend/internal/domain/users"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStore is the relational adapter. The db should be opened with
// TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Users() UserRepository       { return &gormUserRepo{db: s.db} }
func (s *GormStore) Riders() RiderRepository     { return &gormRiderRepo{db: s.db} }
func (s *GormStore) Parcels() ParcelRepository   { return &gormParcelRepo{db: s.db} }
func (s *GormStore) Payments() PaymentRepository { return &gormPaymentRepo{db: s.db} }

func (s *GormStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &GormStore{db: tx})
	})
}

func (s *GormStore) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate creates or updates the tables for every domain model.
func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(
		&users.User{},
		&riders.Rider{},
		&parcels.Parcel{},
		&billing.Payment{},
	)
}

func gormErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

// validUUID reports whether id can be a primary key; anything else cannot exist.
func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

type gormUserRepo struct{ db *gorm.DB }

func (r *gormUserRepo) Create(ctx context.Context, user *users.User) error {
	ensureID(&user.ID)
	return gormErr(r.db.WithContext(ctx).Create(user).Error)
}

func (r *gormUserRepo) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	var user users.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, gormErr(err)
	}
	return &user, nil
}

func (r *gormUserRepo) List(ctx context.Context) ([]users.User, error) {
	result := []users.User{}
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&result).Error
	return result, err
}

func (r *gormUserRepo) UpdateRole(ctx context.Context, email, role string) (UpdateResult, error) {
	res := r.db.WithContext(ctx).Model(&users.User{}).
		Where("email = ?", email).
		Update("role", role)
	if res.Error != nil {
		return UpdateResult{}, res.Error
	}
	return UpdateResult{MatchedCount: res.RowsAffected, ModifiedCount: res.RowsAffected}, nil
}

func (r *gormUserRepo) LinkGoogle(ctx context.Context, email, sub string) error {
	res := r.db.WithContext(ctx).Model(&users.User{}).
		Where("email = ?", email).
		Updates(map[string]any{"google_sub": sub, "auth_provider": "google"})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormUserRepo) SetPassword(ctx context.Context, email, hash string) error {
	res := r.db.WithContext(ctx).Model(&users.User{}).
		Where("email = ?", email).
		Update("password", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type gormRiderRepo struct{ db *gorm.DB }

func (r *gormRiderRepo) Create(ctx context.Context, rider *riders.Rider) error {
	ensureID(&rider.ID)
	return gormErr(r.db.WithContext(ctx).Create(rider).Error)
}

func (r *gormRiderRepo) FindByID(ctx context.Context, id string) (*riders.Rider, error) {
	if !validUUID(id) {
		return nil, ErrNotFound
	}
	var rider riders.Rider
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rider).Error; err != nil {
		return nil, gormErr(err)
	}
	return &rider, nil
}

func (r *gormRiderRepo) List(ctx context.Context, status string) ([]riders.Rider, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	result := []riders.Rider{}
	err := q.Find(&result).Error
	return result, err
}

func (r *gormRiderRepo) UpdateStatus(ctx context.Context, id, status string) (UpdateResult, error) {
	if !validUUID(id) {
		return UpdateResult{}, nil
	}
	res := r.db.WithContext(ctx).Model(&riders.Rider{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return UpdateResult{}, res.Error
	}
	return UpdateResult{MatchedCount: res.RowsAffected, ModifiedCount: res.RowsAffected}, nil
}

type gormParcelRepo struct{ db *gorm.DB }

func (r *gormParcelRepo) Create(ctx context.Context, parcel *parcels.Parcel) error {
	ensureID(&parcel.ID)
	return gormErr(r.db.WithContext(ctx).Create(parcel).Error)
}

func (r *gormParcelRepo) FindByID(ctx context.Context, id string) (*parcels.Parcel, error) {
	if !validUUID(id) {
		return nil, ErrNotFound
	}
	var parcel parcels.Parcel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&parcel).Error; err != nil {
		return nil, gormErr(err)
	}
	return &parcel, nil
}

func (r *gormParcelRepo) List(ctx context.Context, senderEmail string) ([]parcels.Parcel, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if senderEmail != "" {
		q = q.Where("sender_email = ?", senderEmail)
	}
	result := []parcels.Parcel{}
	err := q.Find(&result).Error
	return result, err
}

func (r *gormParcelRepo) Delete(ctx context.Context, id string) (int64, error) {
	if !validUUID(id) {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&parcels.Parcel{})
	return res.RowsAffected, res.Error
}

func (r *gormParcelRepo) MarkPaid(ctx context.Context, id, trackingID string, amount float64) (UpdateResult, error) {
	if !validUUID(id) {
		return UpdateResult{}, nil
	}
	res := r.db.WithContext(ctx).Model(&parcels.Parcel{}).
		Where("id = ? AND payment_status <> ?", id, parcels.PaymentStatusPaid).
		Updates(map[string]any{
			"payment_status": parcels.PaymentStatusPaid,
			"tracking_id":    trackingID,
			"amount":         amount,
		})
	if res.Error != nil {
		return UpdateResult{}, res.Error
	}
	return UpdateResult{MatchedCount: res.RowsAffected, ModifiedCount: res.RowsAffected}, nil
}

type gormPaymentRepo struct{ db *gorm.DB }

func (r *gormPaymentRepo) Create(ctx context.Context, payment *billing.Payment) error {
	ensureID(&payment.ID)
	return gormErr(r.db.WithContext(ctx).Create(payment).Error)
}

func (r *gormPaymentRepo) FindByTransactionID(ctx context.Context, transactionID string) (*billing.Payment, error) {
	var payment billing.Payment
	err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&payment).Error
	if err != nil {
		return nil, gormErr(err)
	}
	return &payment, nil
}

func (r *gormPaymentRepo) TrackingIDExists(ctx context.Context, trackingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&billing.Payment{}).
		Where("tracking_id = ?", trackingID).
		Count(&count).Error
	return count > 0, err
}

func (r *gormPaymentRepo) List(ctx context.Context, customerEmail string) ([]billing.Payment, error) {
	q := r.db.WithContext(ctx).Order("paid_at DESC")
	if customerEmail != "" {
		q = q.Where("customer_email = ?", customerEmail)
	}
	result := []billing.Payment{}
	err := q.Find(&result).Error
	return result, err
}
