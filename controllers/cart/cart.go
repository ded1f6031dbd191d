package cartControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/aayushmaan-54/OneStore/models"
)

type AddCartItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

type UpdateCartItemInput struct {
	ID       uint `json:"id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1"`
}

type RemoveCartItemInput struct {
	ID uint `json:"id" binding:"required"`
}

// GET /cart
func GetCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)

		var items []models.CartItem
		if err := db.Preload("Product").Where("user_id = ?", userID).Order("created_at").Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch cart"})
			return
		}

		totalQuantity := 0
		totalAmount := decimal.NewFromInt(0)
		for _, item := range items {
			totalQuantity += item.Quantity
			totalAmount = totalAmount.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"items":         items,
				"totalQuantity": totalQuantity,
				"totalAmount":   totalAmount.StringFixed(2),
			},
		})
	}
}

// POST /cart
// Adding a product already in the cart sums the quantity onto the existing
// line instead of creating a second row.
func AddCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)

		var input AddCartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid input: " + err.Error()})
			return
		}
		if input.Quantity == 0 {
			input.Quantity = 1
		}
		if input.Quantity < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Quantity must be at least 1"})
			return
		}

		var product models.Product
		if err := db.First(&product, input.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Product not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to validate product"})
			}
			return
		}

		if product.Stock < input.Quantity {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Not enough stock available"})
			return
		}

		var item models.CartItem
		err := db.Where("user_id = ? AND product_id = ?", userID, input.ProductID).First(&item).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch cart item"})
				return
			}
			item = models.CartItem{
				UserID:    userID,
				ProductID: input.ProductID,
				Quantity:  input.Quantity,
			}
			if err := db.Create(&item).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to add item to cart"})
				return
			}
			c.JSON(http.StatusCreated, gin.H{"success": true, "data": item, "message": "Product added to cart successfully"})
			return
		}

		item.Quantity += input.Quantity
		if err := db.Save(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update cart item"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": item, "message": "Product added to cart successfully"})
	}
}

// PATCH /cart
func UpdateCartItemQuantity(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)

		var input UpdateCartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid input: " + err.Error()})
			return
		}

		var item models.CartItem
		if err := db.Where("id = ? AND user_id = ?", input.ID, userID).First(&item).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Cart item not found"})
			return
		}

		var product models.Product
		if err := db.First(&product, item.ProductID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Product not found"})
			return
		}

		if input.Quantity > product.Stock {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Not enough stock available"})
			return
		}

		item.Quantity = input.Quantity
		if err := db.Save(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update cart item"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": item, "message": "Cart updated successfully"})
	}
}

// DELETE /cart
func RemoveCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)

		var input RemoveCartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Cart item ID is required"})
			return
		}

		result := db.Where("id = ? AND user_id = ?", input.ID, userID).Delete(&models.CartItem{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete item"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Cart item not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Item removed from cart"})
	}
}
