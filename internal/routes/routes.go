package routes

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/silicontrail/marketplace-golang/internal/handlers"
	"github.com/silicontrail/marketplace-golang/internal/middleware"
)

// CORSMiddleware allows the browser frontend to call the API. The allowed
// origin comes from CORS_ORIGIN, defaulting to the local Vite dev server.
func CORSMiddleware() gin.HandlerFunc {
	origin := os.Getenv("CORS_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}

	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// SetupRouter wires every endpoint to its handler and middleware chain.
func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(h.Log))
	router.Use(CORSMiddleware())

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// --- Auth Routes (Public) ---
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)

		// --- Public Catalog Routes ---
		api.GET("/categories", h.GetAllCategories)
		api.GET("/products", h.GetProducts)
		api.GET("/products/:id", h.GetProduct)
		api.GET("/products/:id/variants", h.GetProductVariants)
		api.GET("/products/:id/reviews", h.GetProductReviews)

		// --- Protected Routes (Login Required) ---
		auth := api.Group("/")
		auth.Use(middleware.AuthMiddleware(h.DB))
		{
			auth.GET("/auth/me", h.GetMe)

			auth.POST("/products/:id/reviews", h.CreateReview)

			// --- Cart Routes ---
			auth.GET("/cart", h.GetCart)
			auth.POST("/cart/add", h.AddToCart)
			auth.PUT("/cart/update", h.UpdateCartItem)
			auth.DELETE("/cart/remove/:variantId", h.RemoveFromCart)
			auth.DELETE("/cart/clear", h.ClearCart)

			// --- Order Routes ---
			auth.POST("/orders", h.Checkout)
			auth.GET("/orders", h.GetMyOrders)
			auth.GET("/orders/:id", h.GetOrderDetails)
			auth.POST("/orders/:id/pay", h.PayOrder)
			auth.PATCH("/orders/:id/status", h.UpdateOrderStatus)

			// --- Address Routes ---
			auth.GET("/addresses", h.GetMyAddresses)
			auth.POST("/addresses", h.CreateAddress)

			// --- Support Routes ---
			auth.POST("/support/tickets", h.CreateTicket)
			auth.GET("/support/tickets", h.GetMyTickets)

			// --- Seller Application ---
			auth.POST("/seller/profile", h.CreateSellerProfile)
			auth.GET("/seller/profile", h.GetSellerProfile)

			auth.GET("/dashboard/buyer", h.GetBuyerStats)

			// --- Seller-Only Routes ---
			auth.POST("/products", middleware.RequireSeller(), h.CreateProduct)
			auth.PUT("/products/:id", middleware.RequireSeller(), h.UpdateProduct)

			seller := auth.Group("/")
			seller.Use(middleware.RequireSeller())
			{
				seller.GET("/seller/orders", h.GetSellerOrders)
				seller.GET("/dashboard/seller", h.GetSellerStats)
			}
		}

		// --- Admin-Only Routes ---
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(h.DB))
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/stats", h.GetAdminStats)
			admin.GET("/sellers/pending", h.GetPendingSellers)
			admin.PATCH("/sellers/:id", h.UpdateSellerStatus)
			admin.GET("/tickets", h.GetAllTickets)
			admin.PATCH("/tickets/:id", h.UpdateTicketStatus)
		}
		api.POST("/categories", middleware.AuthMiddleware(h.DB), middleware.RequireAdmin(), h.CreateCategory)
	}

	return router
}
