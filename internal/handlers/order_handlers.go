package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/silicontrail/marketplace-golang/internal/models"
)

//
// --- Order Handlers ---
//

// checkoutItem is one cart line during checkout, with its locked
// inventory counters.
type checkoutItem struct {
	VariantID  string
	Quantity   int
	PriceCents int64
	Currency   string
	SellerID   string
	Stock      int
	Reserved   int
}

// CheckoutInput defines the JSON for POST /api/orders.
type CheckoutInput struct {
	ShippingAddressID *string `json:"shippingAddressId"`
}

// Checkout turns the caller's cart into a pending order in a single
// serializable transaction: inventory rows are locked, availability is
// checked against stock minus reserved, the reservation is taken, unit
// prices and seller references are snapshotted, and the cart is cleared.
func (h *Handlers) Checkout(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.DB.BeginTx(c, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	var cartID string
	err = tx.QueryRow("SELECT id FROM carts WHERE user_id = ?", user.ID).Scan(&cartID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find cart"})
		return
	}

	// Lock the inventory rows for every cart line.
	query := `
		SELECT ci.variant_id, ci.quantity, v.price_cents, v.currency, p.seller_id, inv.stock, inv.reserved
		FROM cart_items ci
		JOIN product_variants v ON ci.variant_id = v.id
		JOIN products p ON v.product_id = p.id
		JOIN inventory inv ON inv.variant_id = v.id
		WHERE ci.cart_id = ? AND p.status = 'active'
		FOR UPDATE`
	rows, err := tx.Query(query, cartID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get cart items"})
		return
	}
	defer rows.Close()

	var items []checkoutItem
	var totalCents int64
	currency := ""

	for rows.Next() {
		var item checkoutItem
		if err := rows.Scan(
			&item.VariantID, &item.Quantity, &item.PriceCents, &item.Currency,
			&item.SellerID, &item.Stock, &item.Reserved,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan cart item"})
			return
		}

		if item.Stock-item.Reserved < item.Quantity {
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Insufficient stock for variant %s", item.VariantID)})
			return
		}

		if currency == "" {
			currency = item.Currency
		} else if currency != item.Currency {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart mixes currencies; split into separate orders"})
			return
		}

		totalCents += item.PriceCents * int64(item.Quantity)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating cart items"})
		return
	}

	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart contains no active products"})
		return
	}

	if input.ShippingAddressID != nil {
		var addrID string
		err = tx.QueryRow("SELECT id FROM addresses WHERE id = ? AND user_id = ?", *input.ShippingAddressID, user.ID).Scan(&addrID)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Shipping address not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check address"})
			return
		}
	}

	now := time.Now()
	order := models.Order{
		ID:                uuid.NewString(),
		UserID:            user.ID,
		Status:            models.OrderStatusPending,
		TotalCents:        totalCents,
		Currency:          currency,
		ShippingAddressID: input.ShippingAddressID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	orderQuery := `
		INSERT INTO orders (id, user_id, status, total_cents, currency, shipping_address_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.Exec(orderQuery,
		order.ID, order.UserID, order.Status, order.TotalCents, order.Currency,
		order.ShippingAddressID, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, variant_id, seller_id, unit_price_cents, quantity)
		VALUES (?, ?, ?, ?, ?, ?)`
	reserveQuery := "UPDATE inventory SET reserved = reserved + ? WHERE variant_id = ?"

	for _, item := range items {
		// Snapshot the current price; the order keeps it even if the
		// variant is repriced later.
		_, err := tx.Exec(itemQuery,
			uuid.NewString(), order.ID, item.VariantID, item.SellerID, item.PriceCents, item.Quantity)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save order item"})
			return
		}

		if _, err := tx.Exec(reserveQuery, item.Quantity, item.VariantID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reserve stock"})
			return
		}
	}

	if _, err := tx.Exec("DELETE FROM cart_items WHERE cart_id = ?", cartID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetMyOrders is the handler for GET /api/orders.
func (h *Handlers) GetMyOrders(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	query := `
		SELECT id, user_id, status, total_cents, currency, shipping_address_id, created_at, updated_at
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC`
	rows, err := h.DB.Query(query, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.Status, &o.TotalCents, &o.Currency,
			&o.ShippingAddressID, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order"})
			return
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// OrderItemDetail extends the base OrderItem with product naming for
// order detail pages.
type OrderItemDetail struct {
	models.OrderItem
	ProductTitle string `json:"productTitle"`
	SKU          string `json:"sku"`
}

// GetOrderDetails is the handler for GET /api/orders/:id (owner only).
func (h *Handlers) GetOrderDetails(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	orderID := c.Param("id")

	var o models.Order
	queryOrder := `
		SELECT id, user_id, status, total_cents, currency, shipping_address_id, created_at, updated_at
		FROM orders
		WHERE id = ? AND user_id = ?`
	err := h.DB.QueryRow(queryOrder, orderID, user.ID).Scan(
		&o.ID, &o.UserID, &o.Status, &o.TotalCents, &o.Currency,
		&o.ShippingAddressID, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	queryItems := `
		SELECT oi.id, oi.order_id, oi.variant_id, oi.seller_id, oi.unit_price_cents, oi.quantity,
			p.title, v.sku
		FROM order_items oi
		JOIN product_variants v ON oi.variant_id = v.id
		JOIN products p ON v.product_id = p.id
		WHERE oi.order_id = ?`
	rows, err := h.DB.Query(queryItems, o.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
		return
	}
	defer rows.Close()

	items := []OrderItemDetail{}
	for rows.Next() {
		var item OrderItemDetail
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.VariantID, &item.SellerID,
			&item.UnitPriceCents, &item.Quantity, &item.ProductTitle, &item.SKU,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order item"})
			return
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating order items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": o,
		"items": items,
	})
}

// UpdateOrderStatusInput defines the JSON for PATCH /api/orders/:id/status.
type UpdateOrderStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus drives the order state machine. Allowed edges are
// defined in models; who may trigger them is enforced here:
//   - buyers cancel their own pending orders and confirm delivery,
//   - sellers with items in the order move paid -> preparing -> shipped,
//   - admins may take any allowed edge.
//
// pending -> paid is reserved for the payment path and rejected here.
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	orderID := c.Param("id")

	var input UpdateOrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.IsValidOrderStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	var ownerID, status string
	err = tx.QueryRow("SELECT user_id, status FROM orders WHERE id = ? FOR UPDATE", orderID).Scan(&ownerID, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	if !models.OrderStatusCanTransition(status, input.Status) {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Cannot transition order from %s to %s", status, input.Status)})
		return
	}
	if input.Status == models.OrderStatusPaid {
		c.JSON(http.StatusConflict, gin.H{"error": "Orders are marked paid through the payment endpoint"})
		return
	}

	allowed := false
	switch user.Role {
	case models.RoleAdmin:
		allowed = true
	case models.RoleBuyer:
		if ownerID == user.ID {
			allowed = (status == models.OrderStatusPending && input.Status == models.OrderStatusCancelled) ||
				(status == models.OrderStatusShipped && input.Status == models.OrderStatusDelivered)
		}
	case models.RoleSeller:
		sellerID, err := h.sellerProfileID(user.ID)
		if err == nil {
			var hasItems int
			err = tx.QueryRow(
				"SELECT COUNT(*) FROM order_items WHERE order_id = ? AND seller_id = ?",
				orderID, sellerID).Scan(&hasItems)
			if err == nil && hasItems > 0 {
				allowed = (status == models.OrderStatusPaid && input.Status == models.OrderStatusPreparing) ||
					(status == models.OrderStatusPreparing && input.Status == models.OrderStatusShipped)
			}
		}
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "You may not perform this transition"})
		return
	}

	// Cancelling returns the units: a pending order holds reservations,
	// a paid order has already converted them into committed stock.
	if input.Status == models.OrderStatusCancelled {
		switch status {
		case models.OrderStatusPending:
			if err := releaseReservations(tx, orderID); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to release stock"})
				return
			}
		case models.OrderStatusPaid:
			if err := restockOrder(tx, orderID); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to restock"})
				return
			}
		}
	}

	_, err = tx.Exec("UPDATE orders SET status = ?, updated_at = ? WHERE id = ?", input.Status, time.Now(), orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "status": input.Status})
}

// releaseReservations returns an order's reserved quantities to the pool.
func releaseReservations(tx *sql.Tx, orderID string) error {
	_, err := tx.Exec(`
		UPDATE inventory inv
		JOIN order_items oi ON inv.variant_id = oi.variant_id
		SET inv.reserved = inv.reserved - oi.quantity
		WHERE oi.order_id = ?`, orderID)
	return err
}

// restockOrder puts a paid order's committed units back into stock.
func restockOrder(tx *sql.Tx, orderID string) error {
	_, err := tx.Exec(`
		UPDATE inventory inv
		JOIN order_items oi ON inv.variant_id = oi.variant_id
		SET inv.stock = inv.stock + oi.quantity
		WHERE oi.order_id = ?`, orderID)
	return err
}

// pendingPaymentWindow is how long a pending order holds its reservation
// before the janitor cancels it.
const pendingPaymentWindow = 24 * time.Hour

// CancelOverduePendingOrders sweeps pending orders older than the payment
// window, cancelling them and releasing their reservations. Runs from the
// background ticker in main.
func (h *Handlers) CancelOverduePendingOrders() {
	cutoff := time.Now().Add(-pendingPaymentWindow)

	rows, err := h.DB.Query("SELECT id FROM orders WHERE status = 'pending' AND created_at < ?", cutoff)
	if err != nil {
		h.Log.Error().Err(err).Msg("overdue sweep: query failed")
		return
	}
	var orderIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			h.Log.Error().Err(err).Msg("overdue sweep: scan failed")
			return
		}
		orderIDs = append(orderIDs, id)
	}
	rows.Close()

	for _, orderID := range orderIDs {
		if err := h.cancelPendingOrder(orderID); err != nil {
			h.Log.Error().Err(err).Str("orderId", orderID).Msg("overdue sweep: cancel failed")
			continue
		}
		h.Log.Info().Str("orderId", orderID).Msg("overdue pending order cancelled")
	}
}

func (h *Handlers) cancelPendingOrder(orderID string) error {
	tx, err := h.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Re-check under lock; the buyer may have paid since the sweep query.
	var status string
	if err := tx.QueryRow("SELECT status FROM orders WHERE id = ? FOR UPDATE", orderID).Scan(&status); err != nil {
		return err
	}
	if status != models.OrderStatusPending {
		return nil
	}

	if err := releaseReservations(tx, orderID); err != nil {
		return err
	}
	if _, err := tx.Exec("UPDATE orders SET status = 'cancelled', updated_at = ? WHERE id = ?", time.Now(), orderID); err != nil {
		return err
	}
	return tx.Commit()
}

// SellerOrderItem is one of the seller's sold line items with its parent
// order's status, for the seller order feed.
type SellerOrderItem struct {
	OrderID        string    `json:"orderId"`
	OrderStatus    string    `json:"orderStatus"`
	OrderedAt      time.Time `json:"orderedAt"`
	VariantID      string    `json:"variantId"`
	ProductTitle   string    `json:"productTitle"`
	SKU            string    `json:"sku"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	Quantity       int       `json:"quantity"`
}

// GetSellerOrders is the handler for GET /api/seller/orders: every order
// item fanned out to the caller's seller profile.
func (h *Handlers) GetSellerOrders(c *gin.Context) {
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

	query := `
		SELECT oi.order_id, o.status, o.created_at, oi.variant_id, p.title, v.sku, oi.unit_price_cents, oi.quantity
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		JOIN product_variants v ON oi.variant_id = v.id
		JOIN products p ON v.product_id = p.id
		WHERE oi.seller_id = ?
		ORDER BY o.created_at DESC`
	rows, err := h.DB.Query(query, sellerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch seller orders"})
		return
	}
	defer rows.Close()

	items := []SellerOrderItem{}
	for rows.Next() {
		var item SellerOrderItem
		if err := rows.Scan(
			&item.OrderID, &item.OrderStatus, &item.OrderedAt, &item.VariantID,
			&item.ProductTitle, &item.SKU, &item.UnitPriceCents, &item.Quantity,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan seller order"})
			return
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating seller orders"})
		return
	}

	c.JSON(http.StatusOK, items)
}
