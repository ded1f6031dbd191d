package userControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aayushmaan-54/OneStore/models"
)

type UpdateProfileInput struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

// GET /user-data — the caller's own shipping profile. Returns null data when
// no profile row exists yet, matching what the checkout precondition checks.
func GetUserData(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}

		var data models.UserData
		if err := db.Where("user_id = ?", userIDVal.(string)).First(&data).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusOK, gin.H{"success": true, "data": nil})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch user data"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
	}
}

// PUT /user-data — profile self-service; the role field is never writable
// here.
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)

		var input UpdateProfileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid input: " + err.Error()})
			return
		}

		if input.Name != nil {
			if err := db.Model(&models.User{}).Where("id = ?", userID).
				Update("name", *input.Name).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update profile"})
				return
			}
		}

		if input.Address != nil || input.Phone != nil {
			if err := upsertUserData(db, userID, nil, input.Address, input.Phone); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update profile"})
				return
			}
		}

		var data models.UserData
		if err := db.Where("user_id = ?", userID).First(&data).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch user data"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "message": "Profile updated successfully"})
	}
}
