package handlers

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/silicontrail/marketplace-golang/internal/models"
)

func TestCheckoutEmptyCart(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM carts WHERE user_id").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	w := performJSON(h.Checkout, http.MethodPost, "/api/orders", gin.H{},
		asUser("user-1", models.RoleBuyer))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cart is empty")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutInsufficientStock(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM carts WHERE user_id").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cart-1"))

	// stock 3, reserved 2: only one unit free, two requested.
	items := sqlmock.NewRows([]string{"variant_id", "quantity", "price_cents", "currency", "seller_id", "stock", "reserved"}).
		AddRow("variant-1", 2, int64(249990), "CLP", "seller-1", 3, 2)
	mock.ExpectQuery("FROM cart_items ci").
		WithArgs("cart-1").
		WillReturnRows(items)
	mock.ExpectRollback()

	w := performJSON(h.Checkout, http.MethodPost, "/api/orders", gin.H{},
		asUser("user-1", models.RoleBuyer))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Insufficient stock")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutReservesAndClearsCart(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM carts WHERE user_id").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cart-1"))

	items := sqlmock.NewRows([]string{"variant_id", "quantity", "price_cents", "currency", "seller_id", "stock", "reserved"}).
		AddRow("variant-1", 2, int64(249990), "CLP", "seller-1", 10, 0)
	mock.ExpectQuery("FROM cart_items ci").
		WithArgs("cart-1").
		WillReturnRows(items)

	mock.ExpectExec("INSERT INTO orders").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE inventory SET reserved = reserved \\+").
		WithArgs(2, "variant-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM cart_items WHERE cart_id").
		WithArgs("cart-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := performJSON(h.Checkout, http.MethodPost, "/api/orders", gin.H{},
		asUser("user-1", models.RoleBuyer))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)
	assert.Contains(t, w.Body.String(), `"totalCents":499980`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderStatusRejectsIllegalTransition(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, status FROM orders WHERE id").
		WithArgs("order-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "status"}).AddRow("user-1", "shipped"))
	mock.ExpectRollback()

	w := performJSON(h.UpdateOrderStatus, http.MethodPatch, "/api/orders/order-1/status", gin.H{
		"status": "cancelled",
	}, asUser("user-1", models.RoleBuyer), func(c *gin.Context) {
		c.Params = gin.Params{{Key: "id", Value: "order-1"}}
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderStatusPaidIsPaymentOnly(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, status FROM orders WHERE id").
		WithArgs("order-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "status"}).AddRow("user-1", "pending"))
	mock.ExpectRollback()

	w := performJSON(h.UpdateOrderStatus, http.MethodPatch, "/api/orders/order-1/status", gin.H{
		"status": "paid",
	}, asUser("user-1", models.RoleBuyer), func(c *gin.Context) {
		c.Params = gin.Params{{Key: "id", Value: "order-1"}}
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "payment endpoint")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuyerCancelsPendingOrderReleasesStock(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, status FROM orders WHERE id").
		WithArgs("order-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "status"}).AddRow("user-1", "pending"))
	mock.ExpectExec("SET inv.reserved = inv.reserved - oi.quantity").
		WithArgs("order-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE orders SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := performJSON(h.UpdateOrderStatus, http.MethodPatch, "/api/orders/order-1/status", gin.H{
		"status": "cancelled",
	}, asUser("user-1", models.RoleBuyer), func(c *gin.Context) {
		c.Params = gin.Params{{Key: "id", Value: "order-1"}}
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminCancelsPaidOrderRestocks(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, status FROM orders WHERE id").
		WithArgs("order-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "status"}).AddRow("some-buyer", "paid"))
	mock.ExpectExec("SET inv.stock = inv.stock \\+ oi.quantity").
		WithArgs("order-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE orders SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := performJSON(h.UpdateOrderStatus, http.MethodPatch, "/api/orders/order-1/status", gin.H{
		"status": "cancelled",
	}, asUser("admin-1", models.RoleAdmin), func(c *gin.Context) {
		c.Params = gin.Params{{Key: "id", Value: "order-1"}}
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuyerCannotCancelSomeoneElsesOrder(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, status FROM orders WHERE id").
		WithArgs("order-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "status"}).AddRow("other-user", "pending"))
	mock.ExpectRollback()

	w := performJSON(h.UpdateOrderStatus, http.MethodPatch, "/api/orders/order-1/status", gin.H{
		"status": "cancelled",
	}, asUser("user-1", models.RoleBuyer), func(c *gin.Context) {
		c.Params = gin.Params{{Key: "id", Value: "order-1"}}
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
