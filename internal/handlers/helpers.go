package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"

	"github.com/silicontrail/marketplace-golang/internal/middleware"
	"github.com/silicontrail/marketplace-golang/internal/models"
)

// currentUser returns the user attached by AuthMiddleware. Routes behind
// the middleware always have one; the nil case only happens on
// misconfigured routes and is handled defensively by callers returning 401.
func currentUser(c *gin.Context) *models.User {
	raw, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	user, _ := raw.(*models.User)
	return user
}

// isDuplicateKeyErr reports whether err is a MySQL unique-constraint
// violation (error 1062).
func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// maxSlugAttempts bounds the disambiguation loop; past this the insert
// falls through to the unique constraint and surfaces as a conflict.
const maxSlugAttempts = 50

// uniqueSlug disambiguates a base slug deterministically: base, base-2,
// base-3, ... up to maxSlugAttempts candidates. The exists func answers
// whether a candidate is taken.
func uniqueSlug(base string, exists func(string) (bool, error)) (string, error) {
	for i := 1; i <= maxSlugAttempts; i++ {
		candidate := base
		if i > 1 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not find a free slug for %q", base)
}

// sellerProfileID resolves the caller's seller profile id.
// Returns sql.ErrNoRows when the user has no profile.
func (h *Handlers) sellerProfileID(userID string) (string, error) {
	var profileID string
	err := h.DB.QueryRow("SELECT id FROM seller_profiles WHERE user_id = ?", userID).Scan(&profileID)
	return profileID, err
}

// findCartID looks up a user's cart. Returns sql.ErrNoRows when the user
// has never added anything.
func (h *Handlers) findCartID(userID string) (string, error) {
	var cartID string
	err := h.DB.QueryRow("SELECT id FROM carts WHERE user_id = ?", userID).Scan(&cartID)
	return cartID, err
}
