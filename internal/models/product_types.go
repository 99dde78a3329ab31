package models

import "time"

// Product statuses. Only 'active' products are visible to buyers
// unless a caller filters explicitly.
const (
	ProductStatusDraft  = "draft"
	ProductStatusActive = "active"
	ProductStatusPaused = "paused"
)

func IsValidProductStatus(s string) bool {
	return s == ProductStatusDraft || s == ProductStatusActive || s == ProductStatusPaused
}

// Product is the model for the 'products' table.
// Specs and Images are stored as JSON columns and unpacked on scan.
type Product struct {
	ID          string                 `json:"id" db:"id"`
	SellerID    string                 `json:"sellerId" db:"seller_id"`
	CategoryID  string                 `json:"categoryId" db:"category_id"`
	Title       string                 `json:"title" db:"title"`
	Slug        string                 `json:"slug" db:"slug"`
	Description *string                `json:"description,omitempty" db:"description"`
	Specs       map[string]interface{} `json:"specs,omitempty" db:"specs_json"`
	Images      []string               `json:"images" db:"images"`
	Status      string                 `json:"status" db:"status"`
	CreatedAt   time.Time              `json:"createdAt" db:"created_at"`

	// Populated manually on detail reads, not a DB column.
	Variants []ProductVariant `json:"variants,omitempty" db:"-"`
}

// ProductVariant is the model for the 'product_variants' table.
// Prices are integer minor currency units (cents); a variant's price and
// currency are treated as immutable once an order item references them.
type ProductVariant struct {
	ID         string                 `json:"id" db:"id"`
	ProductID  string                 `json:"productId" db:"product_id"`
	SKU        string                 `json:"sku" db:"sku"`
	PriceCents int64                  `json:"priceCents" db:"price_cents"`
	Currency   string                 `json:"currency" db:"currency"`
	Attributes map[string]interface{} `json:"attributes,omitempty" db:"attributes_json"`
}

// Inventory is the model for the 'inventory' table, one row per variant.
// Available stock is stock - reserved; checkout bumps reserved, payment
// converts the reservation, cancellation releases it.
type Inventory struct {
	ID        string `json:"id" db:"id"`
	VariantID string `json:"variantId" db:"variant_id"`
	Stock     int    `json:"stock" db:"stock"`
	Reserved  int    `json:"reserved" db:"reserved"`
}
