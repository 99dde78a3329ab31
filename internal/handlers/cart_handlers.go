package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/silicontrail/marketplace-golang/internal/models"
)

//
// --- Cart Handlers ---
//

// getOrCreateCartID finds the user's cart or lazily creates one.
// Used within a transaction so the create cannot orphan an add.
func getOrCreateCartID(tx *sql.Tx, userID string) (string, error) {
	var cartID string
	err := tx.QueryRow("SELECT id FROM carts WHERE user_id = ?", userID).Scan(&cartID)
	if err == nil {
		return cartID, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}

	cart := models.Cart{ID: uuid.NewString(), UserID: userID, CreatedAt: time.Now()}
	_, err = tx.Exec("INSERT INTO carts (id, user_id, created_at) VALUES (?, ?, ?)", cart.ID, cart.UserID, cart.CreatedAt)
	if err != nil {
		return "", err
	}
	return cart.ID, nil
}

// AddToCartInput defines the JSON for POST /api/cart/add.
type AddToCartInput struct {
	VariantID string `json:"variantId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// AddToCart increments the quantity when the (cart, variant) pair already
// exists, otherwise inserts. The upsert is a single statement so two tabs
// adding concurrently cannot lose an update.
func (h *Handlers) AddToCart(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction failed"})
		return
	}
	defer tx.Rollback()

	// Only variants of active products are addable.
	var variantID string
	err = tx.QueryRow(`
		SELECT v.id FROM product_variants v
		JOIN products p ON v.product_id = p.id
		WHERE v.id = ? AND p.status = 'active'`, input.VariantID).Scan(&variantID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Variant not found or product not active"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	cartID, err := getOrCreateCartID(tx, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cart initialization failed"})
		return
	}

	item := models.CartItem{
		ID:        uuid.NewString(),
		CartID:    cartID,
		VariantID: input.VariantID,
		Quantity:  input.Quantity,
	}
	_, err = tx.Exec(`
		INSERT INTO cart_items (id, cart_id, variant_id, quantity)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`,
		item.ID, item.CartID, item.VariantID, item.Quantity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Commit failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Item added to cart"})
}

// CartItemResponse is one line of the cart, joined to the live variant
// price and its product.
type CartItemResponse struct {
	VariantID      string `json:"variantId"`
	ProductID      string `json:"productId"`
	ProductTitle   string `json:"productTitle"`
	ImageURL       string `json:"imageUrl,omitempty"`
	SKU            string `json:"sku"`
	PriceCents     int64  `json:"priceCents"`
	Currency       string `json:"currency"`
	Quantity       int    `json:"quantity"`
	LineTotalCents int64  `json:"lineTotalCents"`
}

// GetCart is the handler for GET /api/cart. Prices are the variants'
// current prices; they are only locked in when an order is placed.
func (h *Handlers) GetCart(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	cartID, err := h.findCartID(user.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusOK, gin.H{
				"items":         []CartItemResponse{},
				"subtotalCents": 0,
				"totalItems":    0,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find cart"})
		return
	}

	query := `
		SELECT ci.variant_id, p.id, p.title, p.images, v.sku, v.price_cents, v.currency, ci.quantity
		FROM cart_items ci
		JOIN product_variants v ON ci.variant_id = v.id
		JOIN products p ON v.product_id = p.id
		WHERE ci.cart_id = ?`
	rows, err := h.DB.Query(query, cartID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query cart items"})
		return
	}
	defer rows.Close()

	items := []CartItemResponse{}
	var subtotalCents int64
	var totalItems int

	for rows.Next() {
		var item CartItemResponse
		var imagesJSON []byte
		if err := rows.Scan(
			&item.VariantID, &item.ProductID, &item.ProductTitle, &imagesJSON,
			&item.SKU, &item.PriceCents, &item.Currency, &item.Quantity,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan cart item"})
			return
		}

		var images []string
		if len(imagesJSON) > 0 {
			_ = json.Unmarshal(imagesJSON, &images)
		}
		if len(images) > 0 {
			item.ImageURL = images[0]
		}

		item.LineTotalCents = item.PriceCents * int64(item.Quantity)
		subtotalCents += item.LineTotalCents
		totalItems += item.Quantity
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating cart items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":         items,
		"subtotalCents": subtotalCents,
		"totalItems":    totalItems,
	})
}

// UpdateCartItemInput defines the JSON for PUT /api/cart/update.
// Quantity 0 removes the item.
type UpdateCartItemInput struct {
	VariantID string `json:"variantId" binding:"required"`
	Quantity  *int   `json:"quantity" binding:"required,gte=0"`
}

// UpdateCartItem sets an item's quantity; zero deletes the row.
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cartID, err := h.findCartID(user.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find cart"})
		return
	}

	if *input.Quantity == 0 {
		h.deleteCartItem(c, cartID, input.VariantID)
		return
	}

	result, err := h.DB.Exec(
		"UPDATE cart_items SET quantity = ? WHERE cart_id = ? AND variant_id = ?",
		*input.Quantity, cartID, input.VariantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart item updated"})
}

// RemoveFromCart is the handler for DELETE /api/cart/remove/:variantId.
func (h *Handlers) RemoveFromCart(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	variantID := c.Param("variantId")

	cartID, err := h.findCartID(user.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find cart"})
		return
	}

	h.deleteCartItem(c, cartID, variantID)
}

// deleteCartItem writes the response itself so update-to-zero and remove
// share one path.
func (h *Handlers) deleteCartItem(c *gin.Context, cartID, variantID string) {
	result, err := h.DB.Exec("DELETE FROM cart_items WHERE cart_id = ? AND variant_id = ?", cartID, variantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart item removed"})
}

// ClearCart is the handler for DELETE /api/cart/clear.
func (h *Handlers) ClearCart(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	cartID, err := h.findCartID(user.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find cart"})
		return
	}

	if _, err := h.DB.Exec("DELETE FROM cart_items WHERE cart_id = ?", cartID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
