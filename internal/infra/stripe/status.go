package stripe

import "strings"

// Checkout payment statuses after normalization.
const (
	PaymentStatusPaid              = "paid"
	PaymentStatusUnpaid            = "unpaid"
	PaymentStatusNoPaymentRequired = "no_payment_required"
)

// NormalizePaymentStatus folds a checkout session payment_status into the three
// values the payment flow knows. Anything unrecognized counts as unpaid.
func NormalizePaymentStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paid":
		return PaymentStatusPaid
	case "no_payment_required":
		return PaymentStatusNoPaymentRequired
	default:
		return PaymentStatusUnpaid
	}
}
