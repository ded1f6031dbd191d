package productcontroller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/aayushmaan-54/OneStore/models"
)

type ProductInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Stock       int    `json:"stock"`
	Image       string `json:"image"`
	IsActive    *bool  `json:"is_active"`
}

// validate trims the text fields in place and checks the create/update rules.
// Returns a user-facing message on failure.
func (in *ProductInput) validate() (decimal.Decimal, string) {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Description = strings.TrimSpace(in.Description)

	if in.Name == "" {
		return decimal.Decimal{}, "Product name is required"
	}
	price, err := decimal.NewFromString(in.Price)
	if err != nil || price.IsNegative() {
		return decimal.Decimal{}, "Valid price is required"
	}
	if in.Slug == "" {
		return decimal.Decimal{}, "Product slug is required"
	}
	if in.Description == "" {
		return decimal.Decimal{}, "Product description is required"
	}
	if in.Stock < 0 {
		return decimal.Decimal{}, "Stock cannot be negative"
	}
	return price, ""
}

// isUniqueViolation covers both the Postgres duplicate-key error and the
// sqlite constraint error the tests run against.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

// CreateProduct creates a catalog entry. The slug is pre-checked and the
// unique constraint is kept as a fallback; both paths surface the same
// conflict message.
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
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

		var existing models.Product
		if err := db.Where("slug = ?", input.Slug).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "A product with this slug already exists"})
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create product"})
			return
		}

		isActive := true
		if input.IsActive != nil {
			isActive = *input.IsActive
		}

		product := models.Product{
			Name:        input.Name,
			Slug:        input.Slug,
			Description: input.Description,
			Price:       price,
			Stock:       input.Stock,
			Image:       input.Image,
			IsActive:    isActive,
		}
		if err := db.Create(&product).Error; err != nil {
			if isUniqueViolation(err) {
				c.JSON(http.StatusConflict, gin.H{"success": false, "error": "A product with this slug already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create product"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"success": true, "data": product, "message": "Product created successfully"})
	}
}
