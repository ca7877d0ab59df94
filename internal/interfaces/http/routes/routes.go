// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes wires every route group under the given API group
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config, logger *logrus.Logger) {
	SetupAuthRoutes(rg, db, cfg)
	SetupCatalogRoutes(rg, db, cfg)
	SetupCartRoutes(rg, db, cfg)
	SetupOrderRoutes(rg, db, cfg, logger)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}
}

// SetupCatalogRoutes sets up product and category related routes
func SetupCatalogRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(db, cfg)
	categoryHandler := handlers.NewCategoryHandler(db, cfg)

	products := rg.Group("/products")
	{
		// Public catalog endpoints
		products.GET("", productHandler.GetProducts)
		products.GET("/search", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)

		// Admin catalog management
		admin := products.Group("")
		admin.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
		{
			admin.POST("", productHandler.CreateProduct)
			admin.PUT("/:id", productHandler.UpdateProduct)
			admin.DELETE("/:id", productHandler.DeleteProduct)
			admin.POST("/:id/variants", productHandler.AddVariant)
		}
	}

	categories := rg.Group("/categories")
	{
		categories.GET("", categoryHandler.GetCategories)
		categories.GET("/:name/products", categoryHandler.GetCategoryProducts)

		admin := categories.Group("")
		admin.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
		{
			admin.POST("", categoryHandler.CreateCategory)
			admin.POST("/assign", categoryHandler.AssignProduct)
			admin.PUT("/:id", categoryHandler.UpdateCategory)
			admin.DELETE("/:id", categoryHandler.DeleteCategory)
			admin.DELETE("/:id/products/:productId", categoryHandler.UnassignProduct)
		}
	}
}

// SetupCartRoutes sets up session cart related routes. Carts are keyed by an
// opaque session identifier chosen by the client, so no authentication is
// required.
func SetupCartRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(db)

	cart := rg.Group("/cart/:sessionId")
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("/items", cartHandler.AddItem)
		cart.PUT("/items/:itemId", cartHandler.UpdateItem)
		cart.DELETE("/items/:itemId", cartHandler.RemoveItem)
		cart.DELETE("", cartHandler.ClearCart)
	}

	// Admin view over all live carts.
	carts := rg.Group("/carts")
	carts.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
	{
		carts.GET("", cartHandler.ListCarts)
	}
}

// SetupOrderRoutes sets up order related routes
func SetupOrderRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config, logger *logrus.Logger) {
	orderHandler := handlers.NewOrderHandler(db, cfg, logger)

	orders := rg.Group("/orders")
	{
		// Checkout works for guests and authenticated users alike; when a
		// token is present the order is attached to the user.
		orders.POST("", middleware.OptionalAuthMiddleware(cfg), orderHandler.CreateOrder)

		// Authenticated users can list their own orders.
		orders.GET("/mine", middleware.AuthMiddleware(cfg), orderHandler.GetMyOrders)

		// Admin order management
		admin := orders.Group("")
		admin.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
		{
			admin.GET("", orderHandler.GetOrders)
			admin.GET("/:id", orderHandler.GetOrder)
			admin.GET("/user/:userId", orderHandler.GetUserOrders)
			admin.PUT("/:id/status", orderHandler.UpdateOrderStatus)
			admin.DELETE("/:id", orderHandler.DeleteOrder)
			admin.GET("/:id/invoice", orderHandler.GetInvoice)
		}
	}
}
