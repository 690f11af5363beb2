// Package router wires the HTTP handlers onto a gin engine.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"royalfootwear/internal/handlers"
	"royalfootwear/internal/metrics"
	"royalfootwear/internal/middleware"
	"royalfootwear/internal/models"
)

// Handlers groups the HTTP handlers served under /api/v1.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Product  *handlers.ProductHandler
	Cart     *handlers.CartHandler
	Wishlist *handlers.WishlistHandler
	Order    *handlers.OrderHandler
	Admin    *handlers.AdminHandler
	Internal *handlers.InternalHandler
}

// Options configures the engine.
type Options struct {
	// InternalAPIKey guards /api/v1/internal. Empty disables those routes with 503.
	InternalAPIKey string
	Metrics        *metrics.Metrics
}

// New builds the engine with middleware, the health check and all API routes.
func New(h Handlers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.Metrics(opts.Metrics))
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	products := v1.Group("/products")
	products.GET("", h.Product.ListProducts)
	products.GET("/brands", h.Product.ListBrands)
	products.GET("/:id", h.Product.GetProduct)
	products.GET("/:id/sizes", h.Product.GetAvailableSizes)
	products.GET("/:id/stock", h.Product.CheckStock)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/profile", h.Auth.GetProfile)
	protected.PUT("/profile", h.Auth.UpdateProfile)
	protected.PUT("/profile/password", h.Auth.ChangePassword)

	cart := protected.Group("/cart")
	cart.GET("", h.Cart.GetCart)
	cart.DELETE("", h.Cart.ClearCart)
	cart.GET("/count", h.Cart.GetCount)
	cart.GET("/check", h.Cart.CheckItem)
	cart.POST("/items", h.Cart.AddItem)
	cart.PUT("/items/:itemId", h.Cart.UpdateItem)
	cart.DELETE("/items/:itemId", h.Cart.RemoveItem)

	wishlist := protected.Group("/wishlist")
	wishlist.GET("", h.Wishlist.GetWishlist)
	wishlist.DELETE("", h.Wishlist.ClearWishlist)
	wishlist.GET("/count", h.Wishlist.GetCount)
	wishlist.GET("/check/:productId", h.Wishlist.CheckItem)
	wishlist.POST("/items", h.Wishlist.AddItem)
	wishlist.DELETE("/items/:productId", h.Wishlist.RemoveItem)
	wishlist.POST("/items/:productId/move-to-cart", h.Wishlist.MoveToCart)
	wishlist.POST("/from-cart/:itemId", h.Wishlist.MoveFromCart)

	orders := protected.Group("/orders")
	orders.POST("", h.Order.PlaceOrder)
	orders.GET("", h.Order.ListOrders)
	orders.GET("/:id", h.Order.GetOrder)

	// Admin routes
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleAdmin))

	admin.POST("/products", h.Admin.CreateProduct)
	admin.PUT("/products/:id", h.Admin.UpdateProduct)
	admin.DELETE("/products/:id", h.Admin.DeleteProduct)

	admin.GET("/orders", h.Admin.ListOrders)
	admin.GET("/orders/:id", h.Admin.GetOrder)
	admin.GET("/orders/:id/history", h.Admin.GetOrderHistory)
	admin.PUT("/orders/:id/status", h.Admin.UpdateOrderStatus)
	admin.PUT("/orders/:id/payment", h.Admin.UpdatePaymentStatus)
	admin.PUT("/orders/:id/tracking", h.Admin.SetTrackingNumber)

	admin.GET("/users", h.Admin.ListUsers)
	admin.GET("/users/:id", h.Admin.GetUser)
	admin.PUT("/users/:id/active", h.Admin.SetUserActive)

	// Internal routes, authenticated by API key instead of a user session
	internal := v1.Group("/internal")
	internal.Use(middleware.InternalAPIKey(opts.InternalAPIKey))
	internal.POST("/users/:userId/cart/items", h.Internal.MergeCartItem)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
