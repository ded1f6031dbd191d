package productcontroller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aayushmaan-54/OneStore/models"
)

// UpdateProduct replaces the editable fields of an existing product.
func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.Param("id")
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid product ID"})
			return
		}

		var product models.Product
		if err := db.First(&product, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Product not found"})
			return
		}

		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid input: " + err.Error()})
			return
		}

		price, msg := input.validate()
		if msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
			return
		}

		if input.Slug != product.Slug {
			var existing models.Product
			if err := db.Where("slug = ? AND id <> ?", input.Slug, product.ID).First(&existing).Error; err == nil {
				c.JSON(http.StatusConflict, gin.H{"success": false, "error": "A product with this slug already exists"})
				return
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update product"})
				return
			}
		}

		product.Name = input.Name
		product.Slug = input.Slug
		product.Description = input.Description
		product.Price = price
		product.Stock = input.Stock
		product.Image = input.Image
		if input.IsActive != nil {
			product.IsActive = *input.IsActive
		}

		if err := db.Save(&product).Error; err != nil {
			if isUniqueViolation(err) {
				c.JSON(http.StatusConflict, gin.H{"success": false, "error": "A product with this slug already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update product"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": product, "message": "Product updated successfully"})
	}
}
