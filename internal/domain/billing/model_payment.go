package billing

import "time"

// Payment is one ledger entry per completed provider transaction.
// TransactionID is the idempotency key and is unique in every store.
type Payment struct {
	ID            string    `gorm:"type:uuid;primaryKey" bson:"_id,omitempty" json:"_id"`
	Amount        float64   `gorm:"not null" bson:"amount" json:"amount"`
	Currency      string    `gorm:"type:varchar(10);not null" bson:"currency" json:"currency"`
	CustomerEmail string    `gorm:"index" bson:"customerEmail" json:"customerEmail"`
	ParcelID      string    `gorm:"index" bson:"parcelId" json:"parcelId"`
	TrackingID    string    `gorm:"uniqueIndex" bson:"trackingId" json:"trackingId"`
	ParcelName    string    `bson:"parcelName" json:"parcelName"`
	TransactionID string    `gorm:"not null;uniqueIndex" bson:"transactionId" json:"transactionId"`
	PaymentStatus string    `gorm:"type:varchar(30)" bson:"paymentStatus" json:"paymentStatus"`
	PaidAt        time.Time `gorm:"index" bson:"paidAt" json:"paidAt"`
}
