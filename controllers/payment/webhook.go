package paymentControllers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	orderControllers "github.com/aayushmaan-54/OneStore/controllers/order"
	"github.com/aayushmaan-54/OneStore/models"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// WebhookRequest is the slice of the gateway event payload the handler needs.
type WebhookRequest struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Amount  int64  `json:"amount"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// WebhookHandler is the server-verified payment confirmation: the gateway
// reports the outcome directly, independent of the client callback. Replays
// after the order has settled are acknowledged without effect.
func WebhookHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req WebhookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "failed to parse webhook payload"})
			return
		}

		gatewayOrderID := req.Payload.Payment.Entity.OrderID
		if gatewayOrderID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "missing order id"})
			return
		}

		var order models.Order
		if err := db.Where("gateway_order_id = ?", gatewayOrderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "order not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to fetch order"})
			}
			return
		}

		var next models.OrderStatus
		switch req.Event {
		case "payment.captured":
			next = models.OrderStatusCompleted
		case "payment.failed":
			next = models.OrderStatusFailed
		default:
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Event ignored"})
			return
		}

		if _, err := orderControllers.Transition(db, order.ID, next); err != nil {
			if errors.Is(err, orderControllers.ErrInvalidTransition) {
				// Replay or a race with the client callback; the order already settled.
				c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order already settled"})
				return
			}
			logger.Error().Err(err).Str("gateway_order_id", gatewayOrderID).Msg("webhook transition failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to update order"})
			return
		}

		logger.Info().Str("event", req.Event).Uint("order_id", order.ID).Msg("webhook processed")
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Webhook processed"})
	}
}
