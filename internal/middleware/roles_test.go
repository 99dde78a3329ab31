package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/silicontrail/marketplace-golang/internal/models"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func runRoleMiddleware(mw gin.HandlerFunc, role string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if role != "" {
		c.Set(ContextUserRoleKey, role)
	}
	mw(c)
	if !c.IsAborted() {
		c.Status(http.StatusOK)
	}
	return w
}

func TestRequireSeller(t *testing.T) {
	assert.Equal(t, http.StatusOK, runRoleMiddleware(RequireSeller(), models.RoleSeller).Code)
	assert.Equal(t, http.StatusOK, runRoleMiddleware(RequireSeller(), models.RoleAdmin).Code)
	assert.Equal(t, http.StatusForbidden, runRoleMiddleware(RequireSeller(), models.RoleBuyer).Code)
	assert.Equal(t, http.StatusUnauthorized, runRoleMiddleware(RequireSeller(), "").Code)
}

func TestRequireAdmin(t *testing.T) {
	assert.Equal(t, http.StatusOK, runRoleMiddleware(RequireAdmin(), models.RoleAdmin).Code)
	assert.Equal(t, http.StatusForbidden, runRoleMiddleware(RequireAdmin(), models.RoleSeller).Code)
	assert.Equal(t, http.StatusForbidden, runRoleMiddleware(RequireAdmin(), models.RoleBuyer).Code)
	assert.Equal(t, http.StatusUnauthorized, runRoleMiddleware(RequireAdmin(), "").Code)
}
