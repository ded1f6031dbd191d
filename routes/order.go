package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	orderControllers "github.com/aayushmaan-54/OneStore/controllers/order"
	"github.com/aayushmaan-54/OneStore/middleware"
)

func SetupOrderRoutes(r *gin.Engine, db *gorm.DB) {
	orders := r.Group("/orders")
	orders.Use(middleware.ValidateToken)
	{
		// Admin views
		orders.GET("", middleware.RequireAdmin(db), orderControllers.GetAllOrders(db))
		orders.GET("/ws", middleware.RequireAdmin(db), orderControllers.OrderWebSocketHandler)

		// Order history and the payment-callback transition
		orders.GET("/my", orderControllers.GetMyOrders(db))
		orders.GET("/:id", orderControllers.GetOrderByID(db))
		orders.PUT("/:id", orderControllers.UpdateOrderStatus(db))
	}
}
