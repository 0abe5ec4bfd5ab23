package users

import "time"

const (
	RoleUser  = "user"
	RoleRider = "rider"
	RoleAdmin = "admin"
)

type User struct {
	ID           string  `gorm:"type:uuid;primaryKey" bson:"_id,omitempty" json:"_id"`
	Name         string  `bson:"name" json:"name"`
	Email        string  `gorm:"not null;uniqueIndex:idx_users_email" bson:"email" json:"email"`
	PhotoURL     string  `bson:"photoURL,omitempty" json:"photoURL,omitempty"`
	Password     *string `bson:"password,omitempty" json:"-"`
	AuthProvider string  `gorm:"type:varchar(20);not null" bson:"authProvider" json:"authProvider"`
	GoogleSub    *string `gorm:"index" bson:"googleSub,omitempty" json:"-"`
	Role         string  `gorm:"type:varchar(20);not null" bson:"role" json:"role"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
