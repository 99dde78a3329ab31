package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/silicontrail/marketplace-golang/internal/models"
)

// GetAllCategories is the handler for GET /api/categories.
func (h *Handlers) GetAllCategories(c *gin.Context) {
	query := "SELECT id, name, description, parent_id, icon FROM categories ORDER BY name ASC"
	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.ParentID, &cat.Icon); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan category"})
			return
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating categories"})
		return
	}

	c.JSON(http.StatusOK, categories)
}

// CreateCategoryInput defines the JSON for POST /api/categories (admin).
type CreateCategoryInput struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	ParentID    *string `json:"parentId"`
	Icon        *string `json:"icon"`
}

// CreateCategory is admin-only; categories are static reference data.
func (h *Handlers) CreateCategory(c *gin.Context) {
	var input CreateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cat := models.Category{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		ParentID:    input.ParentID,
		Icon:        input.Icon,
	}

	query := "INSERT INTO categories (id, name, description, parent_id, icon) VALUES (?, ?, ?, ?, ?)"
	_, err := h.DB.Exec(query, cat.ID, cat.Name, cat.Description, cat.ParentID, cat.Icon)
	if err != nil {
		if isDuplicateKeyErr(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Category name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, cat)
}
