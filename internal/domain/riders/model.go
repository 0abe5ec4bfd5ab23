package riders

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Rider struct {
	ID               string    `gorm:"type:uuid;primaryKey" bson:"_id,omitempty" json:"_id"`
	Name             string    `bson:"name" json:"name"`
	Email            string    `gorm:"index" bson:"email" json:"email"`
	Age              int       `bson:"age" json:"age"`
	Phone            string    `bson:"phone" json:"phone"`
	NID              string    `gorm:"column:nid" bson:"nid" json:"nid"`
	Region           string    `bson:"region" json:"region"`
	District         string    `bson:"district" json:"district"`
	BikeBrand        string    `bson:"bikeBrand" json:"bikeBrand"`
	BikeRegistration string    `bson:"bikeRegistration" json:"bikeRegistration"`
	Status           string    `gorm:"type:varchar(20);not null;index" bson:"status" json:"status"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
}
