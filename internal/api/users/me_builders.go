package users

import (
	"zapshift-backend/internal/domain/billing"
	"zapshift-backend/internal/domain/parcels"
	"zapshift-backend/internal/domain/users"

	"github.com/shopspring/decimal"
)

func BuildUserDTO(u *users.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PhotoURL:     stringPtrIfNotEmpty(u.PhotoURL),
		Role:         u.Role,
		AuthProvider: u.AuthProvider,
	}
}

func BuildParcelSummary(list []parcels.Parcel) ParcelSummaryDTO {
	s := ParcelSummaryDTO{Total: len(list)}
	for _, p := range list {
		if p.IsPaid() {
			s.Paid++
		} else {
			s.Unpaid++
		}
	}
	return s
}

// BuildPaymentSummary expects list newest first, as the repository returns it.
func BuildPaymentSummary(list []billing.Payment) PaymentSummaryDTO {
	s := PaymentSummaryDTO{Count: len(list)}
	if len(list) == 0 {
		return s
	}

	total := decimal.Zero
	for _, p := range list {
		total = total.Add(decimal.NewFromFloat(p.Amount))
	}
	s.TotalPaid = total.InexactFloat64()

	last := list[0].PaidAt
	s.LastPaidAt = &last
	return s
}

func stringPtrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
