package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	paymentControllers "github.com/aayushmaan-54/OneStore/controllers/payment"
	"github.com/aayushmaan-54/OneStore/middleware"
)

func SetupPaymentRoutes(r *gin.Engine, db *gorm.DB) {
	payment := r.Group("/payment")
	{
		// Webhook endpoint: middleware handles sandbox/prod verification
		payment.POST("/webhook",
			middleware.RazorpayWebhookAuth(),
			paymentControllers.WebhookHandler(db),
		)
	}
}
