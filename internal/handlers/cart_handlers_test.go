package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/silicontrail/marketplace-golang/internal/middleware"
	"github.com/silicontrail/marketplace-golang/internal/models"
)

func asUser(id, role string) func(*gin.Context) {
	return func(c *gin.Context) {
		user := &models.User{
			ID:        id,
			Email:     "test@silicontrail.cl",
			Name:      "Test User",
			Role:      role,
			CreatedAt: time.Now(),
		}
		c.Set(middleware.ContextUserKey, user)
		c.Set(middleware.ContextUserIDKey, user.ID)
		c.Set(middleware.ContextUserRoleKey, user.Role)
	}
}

func TestAddToCartUpserts(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT v.id FROM product_variants v").
		WithArgs("variant-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("variant-1"))
	mock.ExpectQuery("SELECT id FROM carts WHERE user_id").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cart-1"))
	mock.ExpectExec("INSERT INTO cart_items").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	w := performJSON(h.AddToCart, http.MethodPost, "/api/cart/add", gin.H{
		"variantId": "variant-1",
		"quantity":  2,
	}, asUser("user-1", models.RoleBuyer))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddToCartRejectsInactiveProduct(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT v.id FROM product_variants v").
		WithArgs("variant-gone").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	w := performJSON(h.AddToCart, http.MethodPost, "/api/cart/add", gin.H{
		"variantId": "variant-gone",
		"quantity":  1,
	}, asUser("user-1", models.RoleBuyer))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCartEmptyWithoutCartRow(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectQuery("SELECT id FROM carts WHERE user_id").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := performGET(h.GetCart, "/api/cart", asUser("user-1", models.RoleBuyer))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subtotalCents":0`)
	assert.Contains(t, w.Body.String(), `"totalItems":0`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCartComputesTotals(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectQuery("SELECT id FROM carts WHERE user_id").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cart-1"))

	rows := sqlmock.NewRows([]string{"variant_id", "id", "title", "images", "sku", "price_cents", "currency", "quantity"}).
		AddRow("variant-1", "prod-1", "iPhone 15 Pro Max", []byte(`["/images/a.jpg"]`), "IPH15PM-256-TB", int64(1299990), "CLP", 2).
		AddRow("variant-2", "prod-2", "AirPods Pro 2", []byte(`[]`), "APP2-USBC", int64(249990), "CLP", 1)
	mock.ExpectQuery("FROM cart_items ci").
		WithArgs("cart-1").
		WillReturnRows(rows)

	w := performGET(h.GetCart, "/api/cart", asUser("user-1", models.RoleBuyer))

	assert.Equal(t, http.StatusOK, w.Code)
	// 2 * 1299990 + 1 * 249990
	assert.Contains(t, w.Body.String(), `"subtotalCents":2849970`)
	assert.Contains(t, w.Body.String(), `"totalItems":3`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCartItemZeroQuantityDeletes(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectQuery("SELECT id FROM carts WHERE user_id").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cart-1"))
	mock.ExpectExec("DELETE FROM cart_items WHERE cart_id").
		WithArgs("cart-1", "variant-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := performJSON(h.UpdateCartItem, http.MethodPut, "/api/cart/update", gin.H{
		"variantId": "variant-1",
		"quantity":  0,
	}, asUser("user-1", models.RoleBuyer))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "removed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCartItemMissingRow(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectQuery("SELECT id FROM carts WHERE user_id").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cart-1"))
	mock.ExpectExec("UPDATE cart_items SET quantity").
		WithArgs(3, "cart-1", "variant-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := performJSON(h.UpdateCartItem, http.MethodPut, "/api/cart/update", gin.H{
		"variantId": "variant-missing",
		"quantity":  3,
	}, asUser("user-1", models.RoleBuyer))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
