package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silicontrail/marketplace-golang/internal/models"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// newTestHandlers returns handlers backed by a sqlmock database.
func newTestHandlers(t *testing.T) (*Handlers, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Handlers{DB: db, Log: zerolog.Nop()}, mock
}

func performJSON(h gin.HandlerFunc, method, path string, body any, setup ...func(*gin.Context)) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	c.Request = httptest.NewRequest(method, path, &buf)
	c.Request.Header.Set("Content-Type", "application/json")

	for _, fn := range setup {
		fn(c)
	}
	h(c)
	return w
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectQuery("SELECT id FROM users WHERE email").
		WithArgs("taken@silicontrail.cl").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("existing-id"))

	w := performJSON(h.Register, http.MethodPost, "/api/auth/register", gin.H{
		"email":    "taken@silicontrail.cl",
		"password": "password123",
		"name":     "Someone",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email already registered")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterValidatesInput(t *testing.T) {
	h, _ := newTestHandlers(t)

	w := performJSON(h.Register, http.MethodPost, "/api/auth/register", gin.H{
		"email":    "not-an-email",
		"password": "short",
		"name":     "",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	h, mock := newTestHandlers(t)

	var p models.Password
	require.NoError(t, p.Set("the-real-password"))

	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "role", "created_at"}).
		AddRow("user-1", "buyer@silicontrail.cl", p.Hash, "Maria", models.RoleBuyer, time.Now())
	mock.ExpectQuery("SELECT id, email, password_hash, name, role, created_at FROM users WHERE email").
		WithArgs("buyer@silicontrail.cl").
		WillReturnRows(rows)

	w := performJSON(h.Login, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "buyer@silicontrail.cl",
		"password": "a-wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUnknownEmail(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectQuery("SELECT id, email, password_hash, name, role, created_at FROM users WHERE email").
		WithArgs("ghost@silicontrail.cl").
		WillReturnError(sql.ErrNoRows)

	w := performJSON(h.Login, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "ghost@silicontrail.cl",
		"password": "whatever123",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
