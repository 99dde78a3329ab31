package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/silicontrail/marketplace-golang/internal/models"
)

//
// --- Seller Profile Handlers ---
//

// CreateSellerProfileInput defines the JSON for POST /api/seller/profile.
type CreateSellerProfileInput struct {
	DisplayName string  `json:"displayName" binding:"required"`
	Description *string `json:"description"`
}

// CreateSellerProfile lets a buyer apply to become a seller. The profile
// starts pending until an admin verifies it; the role flips to seller in
// the same transaction so the application is all-or-nothing.
func (h *Handlers) CreateSellerProfile(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if user.Role != models.RoleBuyer {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only buyers can become sellers"})
		return
	}

	var input CreateSellerProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	profile := models.SellerProfile{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		DisplayName: input.DisplayName,
		Description: input.Description,
		Status:      models.SellerStatusPending,
		CreatedAt:   time.Now(),
	}
	_, err = tx.Exec(`
		INSERT INTO seller_profiles (id, user_id, display_name, description, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		profile.ID, profile.UserID, profile.DisplayName, profile.Description, profile.Status, profile.CreatedAt)
	if err != nil {
		if isDuplicateKeyErr(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Seller profile already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create seller profile"})
		return
	}

	_, err = tx.Exec("UPDATE users SET role = ? WHERE id = ?", models.RoleSeller, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user role"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// GetSellerProfile is the handler for GET /api/seller/profile.
func (h *Handlers) GetSellerProfile(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var profile models.SellerProfile
	err := h.DB.QueryRow(`
		SELECT id, user_id, display_name, description, status, created_at
		FROM seller_profiles
		WHERE user_id = ?`, user.ID).Scan(
		&profile.ID, &profile.UserID, &profile.DisplayName, &profile.Description, &profile.Status, &profile.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Seller profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch seller profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}
