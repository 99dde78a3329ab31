package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/silicontrail/marketplace-golang/internal/models"
)

//
// --- Admin Handlers ---
//

// GetAdminStats is the handler for GET /api/admin/stats.
func (h *Handlers) GetAdminStats(c *gin.Context) {
	var totalUsers, totalSellers, pendingSellers, totalProducts, totalOrders int
	var grossRevenueCents int64

	queries := []struct {
		query string
		dest  any
	}{
		{"SELECT COUNT(*) FROM users", &totalUsers},
		{"SELECT COUNT(*) FROM seller_profiles WHERE status = 'verified'", &totalSellers},
		{"SELECT COUNT(*) FROM seller_profiles WHERE status = 'pending'", &pendingSellers},
		{"SELECT COUNT(*) FROM products", &totalProducts},
		{"SELECT COUNT(*) FROM orders", &totalOrders},
		{"SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE status = 'succeeded'", &grossRevenueCents},
	}
	for _, q := range queries {
		if err := h.DB.QueryRow(q.query).Scan(q.dest); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"totalUsers":        totalUsers,
		"verifiedSellers":   totalSellers,
		"pendingSellers":    pendingSellers,
		"totalProducts":     totalProducts,
		"totalOrders":       totalOrders,
		"grossRevenueCents": grossRevenueCents,
	})
}

// PendingSeller pairs a pending profile with its applicant's identity.
type PendingSeller struct {
	models.SellerProfile
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`
}

// GetPendingSellers is the handler for GET /api/admin/sellers/pending.
func (h *Handlers) GetPendingSellers(c *gin.Context) {
	query := `
		SELECT sp.id, sp.user_id, sp.display_name, sp.status, sp.created_at, u.email, u.name
		FROM seller_profiles sp
		JOIN users u ON sp.user_id = u.id
		WHERE sp.status = 'pending'
		ORDER BY sp.created_at ASC`
	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pending sellers"})
		return
	}
	defer rows.Close()

	sellers := []PendingSeller{}
	for rows.Next() {
		var s PendingSeller
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.DisplayName, &s.Status, &s.CreatedAt,
			&s.UserEmail, &s.UserName,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan seller"})
			return
		}
		sellers = append(sellers, s)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating sellers"})
		return
	}

	c.JSON(http.StatusOK, sellers)
}

// UpdateSellerStatusInput defines the JSON for PATCH /api/admin/sellers/:id.
type UpdateSellerStatusInput struct {
	Status string `json:"status" binding:"required,oneof=verified rejected"`
}

// UpdateSellerStatus lets an admin verify or reject a seller application.
func (h *Handlers) UpdateSellerStatus(c *gin.Context) {
	profileID := c.Param("id")

	var input UpdateSellerStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.DB.Exec("UPDATE seller_profiles SET status = ? WHERE id = ?", input.Status, profileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update seller status"})
		return
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Seller profile not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Seller status updated", "status": input.Status})
}
