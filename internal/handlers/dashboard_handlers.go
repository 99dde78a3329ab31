package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// --- Dashboard Handlers ---
//

// lowStockThreshold flags variants whose free stock has dropped enough
// that the seller should restock.
const lowStockThreshold = 5

// GetBuyerStats is the handler for GET /api/dashboard/buyer.
func (h *Handlers) GetBuyerStats(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var totalOrders, pendingOrders, inTransit, delivered, cartItems int
	var totalSpentCents int64

	queries := []struct {
		query string
		args  []any
		dest  any
	}{
		{"SELECT COUNT(*) FROM orders WHERE user_id = ?", []any{user.ID}, &totalOrders},
		{"SELECT COUNT(*) FROM orders WHERE user_id = ? AND status = 'pending'", []any{user.ID}, &pendingOrders},
		{"SELECT COUNT(*) FROM orders WHERE user_id = ? AND status IN ('paid', 'preparing', 'shipped')", []any{user.ID}, &inTransit},
		{"SELECT COUNT(*) FROM orders WHERE user_id = ? AND status = 'delivered'", []any{user.ID}, &delivered},
		{"SELECT COALESCE(SUM(total_cents), 0) FROM orders WHERE user_id = ? AND status NOT IN ('pending', 'cancelled')", []any{user.ID}, &totalSpentCents},
		{`SELECT COALESCE(SUM(ci.quantity), 0)
			FROM cart_items ci
			JOIN carts ct ON ci.cart_id = ct.id
			WHERE ct.user_id = ?`, []any{user.ID}, &cartItems},
	}
	for _, q := range queries {
		if err := h.DB.QueryRow(q.query, q.args...).Scan(q.dest); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"totalOrders":     totalOrders,
		"pendingOrders":   pendingOrders,
		"inTransit":       inTransit,
		"delivered":       delivered,
		"totalSpentCents": totalSpentCents,
		"cartItems":       cartItems,
	})
}

// GetSellerStats is the handler for GET /api/dashboard/seller.
func (h *Handlers) GetSellerStats(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	sellerID, err := h.sellerProfileID(user.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Seller profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var liveProducts, draftProducts, unitsSold, lowStock int
	var grossRevenueCents int64

	queries := []struct {
		query string
		args  []any
		dest  any
	}{
		{"SELECT COUNT(*) FROM products WHERE seller_id = ? AND status = 'active'", []any{sellerID}, &liveProducts},
		{"SELECT COUNT(*) FROM products WHERE seller_id = ? AND status = 'draft'", []any{sellerID}, &draftProducts},
		{`SELECT COALESCE(SUM(oi.quantity), 0)
			FROM order_items oi
			JOIN orders o ON oi.order_id = o.id
			WHERE oi.seller_id = ? AND o.status NOT IN ('pending', 'cancelled')`, []any{sellerID}, &unitsSold},
		{`SELECT COALESCE(SUM(oi.unit_price_cents * oi.quantity), 0)
			FROM order_items oi
			JOIN orders o ON oi.order_id = o.id
			WHERE oi.seller_id = ? AND o.status NOT IN ('pending', 'cancelled')`, []any{sellerID}, &grossRevenueCents},
		{`SELECT COUNT(*)
			FROM inventory inv
			JOIN product_variants v ON inv.variant_id = v.id
			JOIN products p ON v.product_id = p.id
			WHERE p.seller_id = ? AND (inv.stock - inv.reserved) < ?`, []any{sellerID, lowStockThreshold}, &lowStock},
	}
	for _, q := range queries {
		if err := h.DB.QueryRow(q.query, q.args...).Scan(q.dest); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"liveProducts":      liveProducts,
		"draftProducts":     draftProducts,
		"unitsSold":         unitsSold,
		"grossRevenueCents": grossRevenueCents,
		"lowStockVariants":  lowStock,
	})
}
