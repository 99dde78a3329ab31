package models

import "time"

// Payment providers and statuses.
const (
	PaymentProviderStripe = "stripe"
	PaymentProviderWebpay = "webpay"

	PaymentStatusRequiresAction = "requires_action"
	PaymentStatusSucceeded      = "succeeded"
	PaymentStatusFailed         = "failed"
	PaymentStatusRefunded       = "refunded"
)

// Payment is the model for the 'payments' table. At most one payment per
// order (unique order_id).
type Payment struct {
	ID          string     `json:"id" db:"id"`
	OrderID     string     `json:"orderId" db:"order_id"`
	Provider    string     `json:"provider" db:"provider"`
	ProviderRef string     `json:"providerRef" db:"provider_ref"`
	AmountCents int64      `json:"amountCents" db:"amount_cents"`
	Status      string     `json:"status" db:"status"`
	PaidAt      *time.Time `json:"paidAt,omitempty" db:"paid_at"`
}
