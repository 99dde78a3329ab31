package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/silicontrail/marketplace-golang/internal/models"
)

// ReviewDetail adds the reviewer's display name for the product page.
type ReviewDetail struct {
	models.Review
	UserName string `json:"userName"`
}

// GetProductReviews is the handler for GET /api/products/:id/reviews.
func (h *Handlers) GetProductReviews(c *gin.Context) {
	productID := c.Param("id")

	query := `
		SELECT r.id, r.user_id, r.product_id, r.rating, r.comment, r.created_at, u.name
		FROM reviews r
		JOIN users u ON r.user_id = u.id
		WHERE r.product_id = ?
		ORDER BY r.created_at DESC`
	rows, err := h.DB.Query(query, productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}
	defer rows.Close()

	reviews := []ReviewDetail{}
	for rows.Next() {
		var r ReviewDetail
		if err := rows.Scan(&r.ID, &r.UserID, &r.ProductID, &r.Rating, &r.Comment, &r.CreatedAt, &r.UserName); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan review"})
			return
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating reviews"})
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// CreateReviewInput defines the JSON for POST /api/products/:id/reviews.
type CreateReviewInput struct {
	Rating  int     `json:"rating" binding:"required,min=1,max=5"`
	Comment *string `json:"comment"`
}

// CreateReview attaches a review by the authenticated user.
func (h *Handlers) CreateReview(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	productID := c.Param("id")

	var input CreateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var exists string
	err := h.DB.QueryRow("SELECT id FROM products WHERE id = ?", productID).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	review := models.Review{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ProductID: productID,
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: time.Now(),
	}

	query := `
		INSERT INTO reviews (id, user_id, product_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err = h.DB.Exec(query, review.ID, review.UserID, review.ProductID, review.Rating, review.Comment, review.CreatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review"})
		return
	}

	c.JSON(http.StatusCreated, review)
}
