package models

import "time"

// Seller profile verification statuses.
const (
	SellerStatusPending  = "pending"
	SellerStatusVerified = "verified"
	SellerStatusRejected = "rejected"
)

// SellerProfile is the model for the 'seller_profiles' table.
// Exactly one profile per user (unique user_id).
type SellerProfile struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"userId" db:"user_id"`
	DisplayName string    `json:"displayName" db:"display_name"`
	Description *string   `json:"description,omitempty" db:"description"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
