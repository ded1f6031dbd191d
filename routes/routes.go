package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	paymentControllers "github.com/aayushmaan-54/OneStore/controllers/payment"
)

// SetupRoutes is the single entry-point that wires up every route group.
func SetupRoutes(r *gin.Engine, db *gorm.DB, gw *paymentControllers.Client, rdb *redis.Client) {
	SetupProductRoutes(r, db)
	SetupCartRoutes(r, db)
	SetupCheckoutRoutes(r, db, gw, rdb)
	SetupOrderRoutes(r, db)
	SetupUserRoutes(r, db)
	SetupPaymentRoutes(r, db)
}
