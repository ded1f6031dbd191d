package checkoutControllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	orderControllers "github.com/aayushmaan-54/OneStore/controllers/order"
	paymentControllers "github.com/aayushmaan-54/OneStore/controllers/payment"
	"github.com/aayushmaan-54/OneStore/models"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

var ErrInsufficientStock = errors.New("insufficient stock")

// Checkout turns the caller's cart into a pending order, reserves stock, and
// opens a payment session with the gateway. The outcome arrives later through
// PUT /orders/:id (client callback) or the gateway webhook.
func Checkout(db *gorm.DB, gw *paymentControllers.Client, rdb *redis.Client) gin.HandlerFunc {
	currency := os.Getenv("CURRENCY")
	if currency == "" {
		currency = "INR"
	}

	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)

		// Optional double-submit guard.
		if rdb != nil {
			if key := c.GetHeader("X-Idempotency-Key"); key != "" {
				ok, err := rdb.SetNX(c.Request.Context(), "checkout:"+key, userID, 24*time.Hour).Result()
				if err != nil {
					logger.Error().Err(err).Msg("idempotency check failed")
					c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to validate idempotency key"})
					return
				}
				if !ok {
					c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Duplicate checkout request"})
					return
				}
			}
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
			return
		}

		// The flow aborts before any write when no shipping address is on
		// file; the caller is expected to complete the profile first.
		var profile models.UserData
		if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil || strings.TrimSpace(profile.Address) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Shipping address required"})
			return
		}

		var lines []models.CartItem
		if err := db.Preload("Product").Where("user_id = ?", userID).Find(&lines).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch cart"})
			return
		}
		if len(lines) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Cart is empty"})
			return
		}

		order, err := CreateOrder(db, user, profile.Address, lines)
		if err != nil {
			if errors.Is(err, ErrInsufficientStock) {
				c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
				return
			}
			logger.Error().Err(err).Str("user_id", userID).Msg("order creation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create order"})
			return
		}

		gwOrder, err := gw.CreateOrder(c.Request.Context(), paymentControllers.OrderRequest{
			Amount:   minorUnits(order.TotalAmount),
			Currency: currency,
			Receipt:  order.OrderRef,
		})
		if err != nil {
			// Compensate: give the reserved stock back and park the order.
			if _, terr := orderControllers.Transition(db, order.ID, models.OrderStatusFailed); terr != nil {
				logger.Error().Err(terr).Uint("order_id", order.ID).Msg("failed to compensate order")
			}
			logger.Error().Err(err).Uint("order_id", order.ID).Msg("gateway session failed")
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Failed to create payment session"})
			return
		}

		if _, err := orderControllers.Transition(db, order.ID, models.OrderStatusAwaitingPayment); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update order"})
			return
		}
		if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("gateway_order_id", gwOrder.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update order"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"key":       gw.KeyID,
				"orderId":   gwOrder.ID,
				"amount":    gwOrder.Amount,
				"currency":  gwOrder.Currency,
				"dbOrderId": order.ID,
			},
		})
	}
}

// CreateOrder materializes cart lines into a pending order in one
// transaction: stock is reserved with a conditional decrement, and name/price
// are snapshotted into the order items at this instant.
func CreateOrder(db *gorm.DB, user models.User, address string, lines []models.CartItem) (*models.Order, error) {
	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		total := decimal.NewFromInt(0)
		items := make([]models.OrderItem, 0, len(lines))

		for _, line := range lines {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
				Update("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w for product: %s", ErrInsufficientStock, line.Product.Name)
			}

			total = total.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			items = append(items, models.OrderItem{
				ProductID:   line.ProductID,
				ProductName: line.Product.Name,
				Quantity:    line.Quantity,
				Price:       line.Product.Price,
			})
		}

		order = models.Order{
			OrderRef:        generateOrderRef(),
			UserID:          user.ID,
			Items:           items,
			TotalAmount:     total,
			Status:          models.OrderStatusPending,
			CustomerName:    user.Name,
			CustomerEmail:   user.Email,
			ShippingAddress: address,
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}

	orderControllers.Broadcast("order.created", order)
	return &order, nil
}

func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}
