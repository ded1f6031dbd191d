package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	cartControllers "github.com/aayushmaan-54/OneStore/controllers/cart"
	checkoutControllers "github.com/aayushmaan-54/OneStore/controllers/checkout"
	paymentControllers "github.com/aayushmaan-54/OneStore/controllers/payment"
	"github.com/aayushmaan-54/OneStore/middleware"
)

// SetupCartRoutes registers the shopping-cart endpoints. Line ids travel in
// the JSON body for PATCH and DELETE.
func SetupCartRoutes(r *gin.Engine, db *gorm.DB) {
	cart := r.Group("/cart")
	cart.Use(middleware.ValidateToken)
	{
		cart.GET("", cartControllers.GetCart(db))
		cart.POST("", cartControllers.AddCartItem(db))
		cart.PATCH("", cartControllers.UpdateCartItemQuantity(db))
		cart.DELETE("", cartControllers.RemoveCartItem(db))
	}
}

func SetupCheckoutRoutes(r *gin.Engine, db *gorm.DB, gw *paymentControllers.Client, rdb *redis.Client) {
	checkout := r.Group("/checkout")
	checkout.Use(middleware.ValidateToken)
	checkout.POST("", checkoutControllers.Checkout(db, gw, rdb))
}
