package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/silicontrail/marketplace-golang/internal/models"
)

//
// --- Product Handlers ---
//

// VariantInput defines one purchasable variant in a product create call.
type VariantInput struct {
	SKU        string                 `json:"sku" binding:"required"`
	PriceCents int64                  `json:"priceCents" binding:"required,gt=0"`
	Currency   string                 `json:"currency" binding:"omitempty,len=3"`
	Attributes map[string]interface{} `json:"attributes"`
	Stock      int                    `json:"stock" binding:"gte=0"`
}

// CreateProductInput defines the JSON for POST /api/products.
type CreateProductInput struct {
	Title       string                 `json:"title" binding:"required"`
	CategoryID  string                 `json:"categoryId" binding:"required"`
	Description *string                `json:"description"`
	Specs       map[string]interface{} `json:"specs"`
	Images      []string               `json:"images"`
	Status      string                 `json:"status" binding:"omitempty,oneof=draft active paused"`
	Variants    []VariantInput         `json:"variants" binding:"required,min=1,dive"`

	// Admins may create on behalf of a seller; ignored for sellers.
	SellerID *string `json:"sellerId"`
}

// CreateProduct creates a product with its variants and empty-or-stocked
// inventory rows in a single transaction. Seller or admin only (enforced
// by route middleware); sellers always create under their own profile.
func (h *Handlers) CreateProduct(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Resolve the owning seller profile.
	var sellerID string
	if user.Role == models.RoleAdmin && input.SellerID != nil {
		sellerID = *input.SellerID
	} else {
		var err error
		sellerID, err = h.sellerProfileID(user.ID)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Seller profile not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
	}

	status := input.Status
	if status == "" {
		status = models.ProductStatusDraft
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction failed"})
		return
	}
	defer tx.Rollback()

	// Slug is derived from the title once, at creation, and never
	// regenerated. Collisions get a deterministic -N suffix.
	base := slug.Make(input.Title)
	productSlug, err := uniqueSlug(base, func(candidate string) (bool, error) {
		var id string
		err := tx.QueryRow("SELECT id FROM products WHERE slug = ?", candidate).Scan(&id)
		if err == sql.ErrNoRows {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Could not derive a unique slug for this title"})
		return
	}

	product := &models.Product{
		ID:          uuid.NewString(),
		SellerID:    sellerID,
		CategoryID:  input.CategoryID,
		Title:       input.Title,
		Slug:        productSlug,
		Description: input.Description,
		Specs:       input.Specs,
		Images:      input.Images,
		Status:      status,
		CreatedAt:   time.Now(),
	}
	if product.Images == nil {
		product.Images = []string{}
	}

	specsJSON, _ := json.Marshal(product.Specs)
	imagesJSON, _ := json.Marshal(product.Images)

	productQuery := `
		INSERT INTO products
		(id, seller_id, category_id, title, slug, description, specs_json, images, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.Exec(productQuery,
		product.ID, product.SellerID, product.CategoryID, product.Title, product.Slug,
		product.Description, string(specsJSON), string(imagesJSON), product.Status, product.CreatedAt,
	)
	if err != nil {
		// A racing create can still hit the slug unique key after the
		// disambiguation pass.
		if isDuplicateKeyErr(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Product slug already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	variantQuery := `
		INSERT INTO product_variants (id, product_id, sku, price_cents, currency, attributes_json)
		VALUES (?, ?, ?, ?, ?, ?)`
	inventoryQuery := "INSERT INTO inventory (id, variant_id, stock, reserved) VALUES (?, ?, ?, 0)"

	for _, v := range input.Variants {
		currency := v.Currency
		if currency == "" {
			currency = "CLP"
		}
		attrsJSON, _ := json.Marshal(v.Attributes)

		variant := models.ProductVariant{
			ID:         uuid.NewString(),
			ProductID:  product.ID,
			SKU:        v.SKU,
			PriceCents: v.PriceCents,
			Currency:   currency,
			Attributes: v.Attributes,
		}

		_, err = tx.Exec(variantQuery,
			variant.ID, variant.ProductID, variant.SKU, variant.PriceCents, variant.Currency, string(attrsJSON))
		if err != nil {
			if isDuplicateKeyErr(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "SKU already exists: " + v.SKU})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create variant"})
			return
		}

		inv := models.Inventory{ID: uuid.NewString(), VariantID: variant.ID, Stock: v.Stock}
		if _, err = tx.Exec(inventoryQuery, inv.ID, inv.VariantID, inv.Stock); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create inventory"})
			return
		}

		product.Variants = append(product.Variants, variant)
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Commit failed"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// Listing defaults: only active products, newest first, 20 per page.
const (
	defaultProductLimit = 20
	maxProductLimit     = 100
)

// GetProducts is the handler for GET /api/products with independently
// composable filters (categoryId, search, sellerId, status, limit, offset).
func (h *Handlers) GetProducts(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		status = models.ProductStatusActive
	} else if !models.IsValidProductStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product status"})
		return
	}

	limit := defaultProductLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxProductLimit {
		limit = maxProductLimit
	}

	offset := 0
	if raw := c.Query("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}

	var queryBuilder strings.Builder
	var args []interface{}

	queryBuilder.WriteString(`
		SELECT id, seller_id, category_id, title, slug, description, specs_json, images, status, created_at
		FROM products
		WHERE status = ?`)
	args = append(args, status)

	if categoryID := c.Query("categoryId"); categoryID != "" {
		queryBuilder.WriteString(" AND category_id = ?")
		args = append(args, categoryID)
	}
	if sellerID := c.Query("sellerId"); sellerID != "" {
		queryBuilder.WriteString(" AND seller_id = ?")
		args = append(args, sellerID)
	}
	if search := c.Query("search"); search != "" {
		queryBuilder.WriteString(" AND title LIKE ?")
		args = append(args, "%"+search+"%")
	}

	queryBuilder.WriteString(" ORDER BY created_at DESC LIMIT ? OFFSET ?")
	args = append(args, limit, offset)

	rows, err := h.DB.Query(queryBuilder.String(), args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan product"})
			return
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

// scanProduct reads one product row including its JSON columns.
func scanProduct(rows *sql.Rows) (*models.Product, error) {
	var product models.Product
	var specsJSON, imagesJSON []byte

	err := rows.Scan(
		&product.ID, &product.SellerID, &product.CategoryID, &product.Title, &product.Slug,
		&product.Description, &specsJSON, &imagesJSON, &product.Status, &product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(specsJSON) > 0 && string(specsJSON) != "null" {
		_ = json.Unmarshal(specsJSON, &product.Specs)
	}
	product.Images = []string{}
	if len(imagesJSON) > 0 {
		_ = json.Unmarshal(imagesJSON, &product.Images)
	}
	return &product, nil
}

// GetProduct is the handler for GET /api/products/:id. The response
// includes the product's variants.
func (h *Handlers) GetProduct(c *gin.Context) {
	productID := c.Param("id")

	var product models.Product
	var specsJSON, imagesJSON []byte

	query := `
		SELECT id, seller_id, category_id, title, slug, description, specs_json, images, status, created_at
		FROM products WHERE id = ?`
	err := h.DB.QueryRow(query, productID).Scan(
		&product.ID, &product.SellerID, &product.CategoryID, &product.Title, &product.Slug,
		&product.Description, &specsJSON, &imagesJSON, &product.Status, &product.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	if len(specsJSON) > 0 && string(specsJSON) != "null" {
		_ = json.Unmarshal(specsJSON, &product.Specs)
	}
	product.Images = []string{}
	if len(imagesJSON) > 0 {
		_ = json.Unmarshal(imagesJSON, &product.Images)
	}

	variants, err := h.variantsForProduct(product.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch variants"})
		return
	}
	product.Variants = variants

	c.JSON(http.StatusOK, product)
}

// GetProductVariants is the handler for GET /api/products/:id/variants.
func (h *Handlers) GetProductVariants(c *gin.Context) {
	productID := c.Param("id")

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

	variants, err := h.variantsForProduct(productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch variants"})
		return
	}

	c.JSON(http.StatusOK, variants)
}

func (h *Handlers) variantsForProduct(productID string) ([]models.ProductVariant, error) {
	query := `
		SELECT id, product_id, sku, price_cents, currency, attributes_json
		FROM product_variants WHERE product_id = ?`
	rows, err := h.DB.Query(query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	variants := []models.ProductVariant{}
	for rows.Next() {
		var v models.ProductVariant
		var attrsJSON []byte
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.PriceCents, &v.Currency, &attrsJSON); err != nil {
			return nil, err
		}
		if len(attrsJSON) > 0 && string(attrsJSON) != "null" {
			_ = json.Unmarshal(attrsJSON, &v.Attributes)
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

// UpdateProductInput defines the JSON for PUT /api/products/:id. All
// fields are optional; only the provided ones are patched. The slug is
// never regenerated on title changes.
type UpdateProductInput struct {
	Title       *string                `json:"title"`
	CategoryID  *string                `json:"categoryId"`
	Description *string                `json:"description"`
	Specs       map[string]interface{} `json:"specs"`
	Images      []string               `json:"images"`
	Status      *string                `json:"status"`
}

// UpdateProduct patches a product. The owning seller or an admin only.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	productID := c.Param("id")

	var input UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Status != nil && !models.IsValidProductStatus(*input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product status"})
		return
	}

	// Ownership check.
	var ownerSellerID string
	err := h.DB.QueryRow("SELECT seller_id FROM products WHERE id = ?", productID).Scan(&ownerSellerID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if user.Role != models.RoleAdmin {
		callerSellerID, err := h.sellerProfileID(user.ID)
		if err != nil || callerSellerID != ownerSellerID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not your product"})
			return
		}
	}

	var sets []string
	var args []interface{}

	if input.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *input.Title)
	}
	if input.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *input.CategoryID)
	}
	if input.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *input.Description)
	}
	if input.Specs != nil {
		specsJSON, _ := json.Marshal(input.Specs)
		sets = append(sets, "specs_json = ?")
		args = append(args, string(specsJSON))
	}
	if input.Images != nil {
		imagesJSON, _ := json.Marshal(input.Images)
		sets = append(sets, "images = ?")
		args = append(args, string(imagesJSON))
	}
	if input.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *input.Status)
	}

	if len(sets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	query := "UPDATE products SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, productID)

	if _, err := h.DB.Exec(query, args...); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated"})
}
