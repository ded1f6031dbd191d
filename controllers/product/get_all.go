package productcontroller

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aayushmaan-54/OneStore/models"
)

const defaultPageSize = 50

// GetProducts lists the catalog newest-first with optional search and
// price-range filters. Paginated: ?page=1&limit=50.
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
		if page < 1 {
			page = 1
		}
		if limit < 1 || limit > 200 {
			limit = defaultPageSize
		}
		offset := (page - 1) * limit

		query := db.Model(&models.Product{})

		if search := c.Query("search"); search != "" {
			likePattern := "%" + search + "%"
			query = query.Where("name LIKE ? OR description LIKE ?", likePattern, likePattern)
		}
		if minPriceStr := c.Query("min_price"); minPriceStr != "" {
			mp, err := strconv.ParseFloat(minPriceStr, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid min_price"})
				return
			}
			query = query.Where("price >= ?", mp)
		}
		if maxPriceStr := c.Query("max_price"); maxPriceStr != "" {
			mp, err := strconv.ParseFloat(maxPriceStr, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid max_price"})
				return
			}
			query = query.Where("price <= ?", mp)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch products"})
			return
		}

		var products []models.Product
		if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch products"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    products,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": int(math.Ceil(float64(total) / float64(limit))),
			},
		})
	}
}
