package orderControllers

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/aayushmaan-54/OneStore/middleware"
	"github.com/aayushmaan-54/OneStore/models"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

var ErrInvalidTransition = errors.New("invalid order status transition")

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ParseStatus maps a request string onto a known order status.
func ParseStatus(status string) (models.OrderStatus, error) {
	switch strings.ToLower(status) {
	case string(models.OrderStatusPending):
		return models.OrderStatusPending, nil
	case string(models.OrderStatusAwaitingPayment):
		return models.OrderStatusAwaitingPayment, nil
	case string(models.OrderStatusCompleted):
		return models.OrderStatusCompleted, nil
	case string(models.OrderStatusCancelled):
		return models.OrderStatusCancelled, nil
	case string(models.OrderStatusFailed):
		return models.OrderStatusFailed, nil
	default:
		return "", errors.New("invalid order status")
	}
}

func canTransition(from, to models.OrderStatus) bool {
	switch from {
	case models.OrderStatusPending:
		return to == models.OrderStatusAwaitingPayment ||
			to == models.OrderStatusCompleted ||
			to == models.OrderStatusCancelled ||
			to == models.OrderStatusFailed
	case models.OrderStatusAwaitingPayment:
		return to == models.OrderStatusCompleted ||
			to == models.OrderStatusCancelled ||
			to == models.OrderStatusFailed
	default:
		// completed/cancelled/failed are terminal
		return false
	}
}

// Transition moves an order through the checkout state machine and applies the
// side effects of the step in one transaction: completion removes the cart
// lines that went into the order, cancellation and failure give the reserved
// stock back.
func Transition(db *gorm.DB, orderID uint, next models.OrderStatus) (*models.Order, error) {
	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			return err
		}
		if !canTransition(order.Status, next) {
			return ErrInvalidTransition
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", next).Error; err != nil {
			return err
		}

		switch next {
		case models.OrderStatusCompleted:
			productIDs := make([]uint, 0, len(order.Items))
			for _, item := range order.Items {
				productIDs = append(productIDs, item.ProductID)
			}
			if len(productIDs) > 0 {
				if err := tx.Where("user_id = ? AND product_id IN ?", order.UserID, productIDs).
					Delete(&models.CartItem{}).Error; err != nil {
					return err
				}
			}
		case models.OrderStatusCancelled, models.OrderStatusFailed:
			if err := restoreStock(tx, order.Items); err != nil {
				return err
			}
		}

		order.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Uint("order_id", order.ID).Str("status", string(next)).Msg("order status changed")
	Broadcast("order.updated", order)
	return &order, nil
}

func restoreStock(tx *gorm.DB, items []models.OrderItem) error {
	for _, item := range items {
		if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
			Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
			return err
		}
	}
	return nil
}

// GET /orders (admin)
func GetAllOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": orders, "message": "Orders fetched successfully"})
	}
}

// GET /orders/my
func GetMyOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}

		var orders []models.Order
		if err := db.Preload("Items").Where("user_id = ?", userIDVal.(string)).
			Order("created_at DESC").Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": orders})
	}
}

// GET /orders/:id — owner or admin.
func GetOrderByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, ok := loadOwnedOrder(c, db)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"order": order, "items": order.Items},
			"message": "Order details fetched successfully",
		})
	}
}

// PUT /orders/:id — the client-side payment callback. Only the two outcomes
// the hosted payment UI reports are accepted here.
func UpdateOrderStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, ok := loadOwnedOrder(c, db)
		if !ok {
			return
		}

		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
			return
		}

		next, err := ParseStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		if next != models.OrderStatusCompleted && next != models.OrderStatusCancelled {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Status must be completed or cancelled"})
			return
		}

		updated, err := Transition(db, order.ID, next)
		if err != nil {
			if errors.Is(err, ErrInvalidTransition) {
				c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Order status cannot change from " + string(order.Status)})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update order status"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": updated, "message": "Order status updated successfully"})
	}
}

// loadOwnedOrder fetches the :id order and enforces owner-or-admin access.
// Writes the error response itself when it returns ok=false.
func loadOwnedOrder(c *gin.Context, db *gorm.DB) (*models.Order, bool) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return nil, false
	}
	userID := userIDVal.(string)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid order ID"})
		return nil, false
	}

	var order models.Order
	if err := db.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Order not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch order"})
		}
		return nil, false
	}

	if order.UserID != userID && !middleware.IsAdmin(db, userID) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Forbidden"})
		return nil, false
	}
	return &order, true
}
