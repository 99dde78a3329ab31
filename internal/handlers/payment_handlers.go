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
// --- Payment Handlers ---
//

// PayOrderInput defines the JSON for POST /api/orders/:id/pay.
type PayOrderInput struct {
	Provider    string `json:"provider" binding:"required,oneof=stripe webpay"`
	ProviderRef string `json:"providerRef" binding:"required"`
	AmountCents int64  `json:"amountCents" binding:"required,gt=0"`
}

// PayOrder records a successful payment against a pending order. The
// transition to paid converts each line's reservation into a real stock
// decrement. One payment per order; a second attempt hits the unique key
// on payments.order_id.
func (h *Handlers) PayOrder(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	orderID := c.Param("id")

	var input PayOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.DB.BeginTx(c, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	var status string
	var totalCents int64
	err = tx.QueryRow(
		"SELECT status, total_cents FROM orders WHERE id = ? AND user_id = ? FOR UPDATE",
		orderID, user.ID).Scan(&status, &totalCents)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	if status != models.OrderStatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Order is not awaiting payment"})
		return
	}
	if input.AmountCents != totalCents {
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Payment amount does not match order total"})
		return
	}

	// Convert reservations into committed stock.
	_, err = tx.Exec(`
		UPDATE inventory inv
		JOIN order_items oi ON inv.variant_id = oi.variant_id
		SET inv.stock = inv.stock - oi.quantity,
			inv.reserved = inv.reserved - oi.quantity
		WHERE oi.order_id = ?`, orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit stock"})
		return
	}

	now := time.Now()
	payment := models.Payment{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		Provider:    input.Provider,
		ProviderRef: input.ProviderRef,
		AmountCents: input.AmountCents,
		Status:      models.PaymentStatusSucceeded,
		PaidAt:      &now,
	}
	_, err = tx.Exec(`
		INSERT INTO payments (id, order_id, provider, provider_ref, amount_cents, status, paid_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.OrderID, payment.Provider, payment.ProviderRef,
		payment.AmountCents, payment.Status, payment.PaidAt)
	if err != nil {
		if isDuplicateKeyErr(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Order has already been paid"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		return
	}

	_, err = tx.Exec("UPDATE orders SET status = ?, updated_at = ? WHERE id = ?",
		models.OrderStatusPaid, time.Now(), orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusCreated, payment)
}
