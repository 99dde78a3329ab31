package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/silicontrail/marketplace-golang/internal/models"
)

//
// --- Address Handlers ---
//

// GetMyAddresses is the handler for GET /api/addresses.
func (h *Handlers) GetMyAddresses(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	query := `
		SELECT id, user_id, line1, line2, city, region, zip_code, country, is_default
		FROM addresses
		WHERE user_id = ?
		ORDER BY is_default DESC, line1 ASC`
	rows, err := h.DB.Query(query, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch addresses"})
		return
	}
	defer rows.Close()

	addresses := []models.Address{}
	for rows.Next() {
		var a models.Address
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Line1, &a.Line2, &a.City, &a.Region,
			&a.ZipCode, &a.Country, &a.IsDefault,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan address"})
			return
		}
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating addresses"})
		return
	}

	c.JSON(http.StatusOK, addresses)
}

// CreateAddressInput defines the JSON for POST /api/addresses.
type CreateAddressInput struct {
	Line1     string  `json:"line1" binding:"required"`
	Line2     *string `json:"line2"`
	City      string  `json:"city" binding:"required"`
	Region    string  `json:"region" binding:"required"`
	ZipCode   string  `json:"zipCode" binding:"required"`
	Country   string  `json:"country"`
	IsDefault bool    `json:"isDefault"`
}

// CreateAddress adds a shipping address. Marking the new address default
// clears the flag on the caller's other addresses in the same transaction.
func (h *Handlers) CreateAddress(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var input CreateAddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Country == "" {
		input.Country = "Chile"
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	if input.IsDefault {
		if _, err := tx.Exec("UPDATE addresses SET is_default = FALSE WHERE user_id = ?", user.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update addresses"})
			return
		}
	}

	address := models.Address{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Line1:     input.Line1,
		Line2:     input.Line2,
		City:      input.City,
		Region:    input.Region,
		ZipCode:   input.ZipCode,
		Country:   input.Country,
		IsDefault: input.IsDefault,
	}
	_, err = tx.Exec(`
		INSERT INTO addresses (id, user_id, line1, line2, city, region, zip_code, country, is_default)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		address.ID, address.UserID, address.Line1, address.Line2, address.City,
		address.Region, address.ZipCode, address.Country, address.IsDefault)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create address"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusCreated, address)
}
