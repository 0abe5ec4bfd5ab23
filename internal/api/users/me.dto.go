package users

import "time"

type MeResponse struct {
	User     UserDTO           `json:"user"`
	Parcels  ParcelSummaryDTO  `json:"parcels"`
	Payments PaymentSummaryDTO `json:"payments"`
}

type UserDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	PhotoURL     *string `json:"photoURL,omitempty"`
	Role         string  `json:"role"`
	AuthProvider string  `json:"authProvider"`
}

type ParcelSummaryDTO struct {
	Total  int `json:"total"`
	Paid   int `json:"paid"`
	Unpaid int `json:"unpaid"`
}

type PaymentSummaryDTO struct {
	Count      int        `json:"count"`
	TotalPaid  float64    `json:"totalPaid"`
	LastPaidAt *time.Time `json:"lastPaidAt,omitempty"`
}
