package handlers

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"

	"github.com/silicontrail/marketplace-golang/internal/models"
)

func payParams(c *gin.Context) {
	c.Params = gin.Params{{Key: "id", Value: "order-1"}}
}

func TestPayOrderAmountMismatch(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status, total_cents FROM orders").
		WithArgs("order-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "total_cents"}).
			AddRow("pending", int64(499980)))
	mock.ExpectRollback()

	w := performJSON(h.PayOrder, http.MethodPost, "/api/orders/order-1/pay", gin.H{
		"provider":    "webpay",
		"providerRef": "tx-123",
		"amountCents": 100,
	}, asUser("user-1", models.RoleBuyer), payParams)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayOrderNotPending(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status, total_cents FROM orders").
		WithArgs("order-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "total_cents"}).
			AddRow("paid", int64(499980)))
	mock.ExpectRollback()

	w := performJSON(h.PayOrder, http.MethodPost, "/api/orders/order-1/pay", gin.H{
		"provider":    "stripe",
		"providerRef": "pi_123",
		"amountCents": 499980,
	}, asUser("user-1", models.RoleBuyer), payParams)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayOrderCommitsStockAndRecordsPayment(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status, total_cents FROM orders").
		WithArgs("order-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "total_cents"}).
			AddRow("pending", int64(499980)))
	mock.ExpectExec("UPDATE inventory inv").
		WithArgs("order-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO payments").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE orders SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := performJSON(h.PayOrder, http.MethodPost, "/api/orders/order-1/pay", gin.H{
		"provider":    "webpay",
		"providerRef": "tx-456",
		"amountCents": 499980,
	}, asUser("user-1", models.RoleBuyer), payParams)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"succeeded"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayOrderTwiceConflicts(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status, total_cents FROM orders").
		WithArgs("order-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "total_cents"}).
			AddRow("pending", int64(499980)))
	mock.ExpectExec("UPDATE inventory inv").
		WithArgs("order-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO payments").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	w := performJSON(h.PayOrder, http.MethodPost, "/api/orders/order-1/pay", gin.H{
		"provider":    "webpay",
		"providerRef": "tx-789",
		"amountCents": 499980,
	}, asUser("user-1", models.RoleBuyer), payParams)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already been paid")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayOrderRejectsUnknownProvider(t *testing.T) {
	h, _ := newTestHandlers(t)

	w := performJSON(h.PayOrder, http.MethodPost, "/api/orders/order-1/pay", gin.H{
		"provider":    "paypal",
		"providerRef": "ref",
		"amountCents": 100,
	}, asUser("user-1", models.RoleBuyer), payParams)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
