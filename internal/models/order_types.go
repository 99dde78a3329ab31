package models

import "time"

// Order statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusPreparing = "preparing"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// orderStatusTransitions is the explicit order state machine.
// pending -> paid happens only through the payment path; delivered and
// cancelled are terminal.
var orderStatusTransitions = map[string][]string{
	OrderStatusPending:   {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:      {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusShipped},
	OrderStatusShipped:   {OrderStatusDelivered},
}

func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusPreparing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderStatusCanTransition reports whether from -> to is an allowed edge.
func OrderStatusCanTransition(from, to string) bool {
	for _, next := range orderStatusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is the model for the 'orders' table.
type Order struct {
	ID                string    `json:"id" db:"id"`
	UserID            string    `json:"userId" db:"user_id"`
	Status            string    `json:"status" db:"status"`
	TotalCents        int64     `json:"totalCents" db:"total_cents"`
	Currency          string    `json:"currency" db:"currency"`
	ShippingAddressID *string   `json:"shippingAddressId,omitempty" db:"shipping_address_id"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}

// OrderItem is the model for the 'order_items' table. UnitPriceCents is
// the price at the time the order was placed, decoupled from the live
// variant price. SellerID allows per-seller fan-out of multi-seller orders.
type OrderItem struct {
	ID             string `json:"id" db:"id"`
	OrderID        string `json:"orderId" db:"order_id"`
	VariantID      string `json:"variantId" db:"variant_id"`
	SellerID       string `json:"sellerId" db:"seller_id"`
	UnitPriceCents int64  `json:"unitPriceCents" db:"unit_price_cents"`
	Quantity       int    `json:"quantity" db:"quantity"`
}
