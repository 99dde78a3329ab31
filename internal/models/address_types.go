package models

// Address is the model for the 'addresses' table. At most one default
// address per user, enforced by the create handler.
type Address struct {
	ID        string  `json:"id" db:"id"`
	UserID    string  `json:"userId" db:"user_id"`
	Line1     string  `json:"line1" db:"line1"`
	Line2     *string `json:"line2,omitempty" db:"line2"`
	City      string  `json:"city" db:"city"`
	Region    string  `json:"region" db:"region"`
	ZipCode   string  `json:"zipCode" db:"zip_code"`
	Country   string  `json:"country" db:"country"`
	IsDefault bool    `json:"isDefault" db:"is_default"`
}
