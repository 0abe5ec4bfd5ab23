package billing

import "github.com/shopspring/decimal"

// CheckoutRequest is the body of POST /create-checkout-session.
// Cost accepts a JSON number or a numeric string in major units.
type CheckoutRequest struct {
	ParcelID    string          `json:"parcelId" binding:"required"`
	ParcelName  string          `json:"parcelName" binding:"required,max=200"`
	SenderEmail string          `json:"senderEmail" binding:"required,email"`
	Cost        decimal.Decimal `json:"cost"`
}
