package models

import "time"

// Cart defines the struct for the 'carts' table. One cart per user,
// created lazily on the first add.
type Cart struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CartItem defines the struct for the 'cart_items' table. The
// (cart_id, variant_id) pair is unique so concurrent adds collapse into
// a single upserted row.
type CartItem struct {
	ID        string `json:"id" db:"id"`
	CartID    string `json:"cartId" db:"cart_id"`
	VariantID string `json:"variantId" db:"variant_id"`
	Quantity  int    `json:"quantity" db:"quantity"`
}
