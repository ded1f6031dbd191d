package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aayushmaan-54/OneStore/models"
)

// IsAdmin is the single capability check for the admin surface.
func IsAdmin(db *gorm.DB, userID string) bool {
	var data models.UserData
	if err := db.Where("user_id = ?", userID).First(&data).Error; err != nil {
		return false
	}
	return data.Role == models.RoleAdmin
}

// RequireAdmin guards a route group behind the role stored in UserData.
// Must run after ValidateToken.
func RequireAdmin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			c.Abort()
			return
		}
		if !IsAdmin(db, userIDVal.(string)) {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
