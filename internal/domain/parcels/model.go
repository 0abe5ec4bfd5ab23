package parcels

import "time"

const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

type Parcel struct {
	ID           string  `gorm:"type:uuid;primaryKey" bson:"_id,omitempty" json:"_id"`
	ParcelType   string  `gorm:"type:varchar(30)" bson:"parcelType" json:"parcelType"`
	ParcelName   string  `gorm:"not null" bson:"parcelName" json:"parcelName"`
	ParcelWeight float64 `bson:"parcelWeight" json:"parcelWeight"`

	SenderName     string `bson:"senderName" json:"senderName"`
	SenderEmail    string `gorm:"index:idx_parcels_sender_created,priority:1" bson:"senderEmail" json:"senderEmail"`
	SenderPhone    string `bson:"senderPhone" json:"senderPhone"`
	SenderAddress  string `bson:"senderAddress" json:"senderAddress"`
	SenderRegion   string `bson:"senderRegion" json:"senderRegion"`
	SenderDistrict string `bson:"senderDistrict" json:"senderDistrict"`

	ReceiverName     string `bson:"receiverName" json:"receiverName"`
	ReceiverEmail    string `bson:"receiverEmail" json:"receiverEmail"`
	ReceiverPhone    string `bson:"receiverPhone" json:"receiverPhone"`
	ReceiverAddress  string `bson:"receiverAddress" json:"receiverAddress"`
	ReceiverRegion   string `bson:"receiverRegion" json:"receiverRegion"`
	ReceiverDistrict string `bson:"receiverDistrict" json:"receiverDistrict"`

	PickupInstruction   string `bson:"pickupInstruction" json:"pickupInstruction"`
	DeliveryInstruction string `bson:"deliveryInstruction" json:"deliveryInstruction"`

	Cost float64 `bson:"cost" json:"cost"`

	// Set exactly once, by payment finalization.
	PaymentStatus string   `gorm:"type:varchar(20);not null;index" bson:"paymentStatus" json:"paymentStatus"`
	TrackingID    *string  `gorm:"index" bson:"trackingId,omitempty" json:"trackingId,omitempty"`
	Amount        *float64 `bson:"amount,omitempty" json:"amount,omitempty"`

	CreatedAt time.Time `gorm:"index:idx_parcels_sender_created,priority:2,sort:desc" bson:"createdAt" json:"createdAt"`
}

func (p *Parcel) IsPaid() bool {
	return p.PaymentStatus == PaymentStatusPaid
}
