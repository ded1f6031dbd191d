package userControllers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aayushmaan-54/OneStore/models"
)

type UserDataInput struct {
	Role    *string `json:"role"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

type CreateUserInput struct {
	ID            string         `json:"id"`
	Name          string         `json:"name" binding:"required"`
	Email         string         `json:"email" binding:"required,email"`
	EmailVerified bool           `json:"email_verified"`
	Image         string         `json:"image"`
	UserData      *UserDataInput `json:"user_data"`
}

type UpdateUserInput struct {
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	EmailVerified *bool   `json:"email_verified"`
	Image         *string `json:"image"`
	Role          *string `json:"role"`
	Address       *string `json:"address"`
	Phone         *string `json:"phone"`
}

// GET /users (admin) — paginated, with the UserData row joined in.
func GetAllUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if page < 1 {
			page = 1
		}
		if limit < 1 || limit > 200 {
			limit = 50
		}

		var total int64
		if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch users"})
			return
		}

		var users []models.User
		if err := db.Preload("UserData").Order("created_at DESC").
			Limit(limit).Offset((page - 1) * limit).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch users"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    users,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": int(math.Ceil(float64(total) / float64(limit))),
			},
		})
	}
}

// POST /users (admin)
func CreateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid input: " + err.Error()})
			return
		}
		if input.ID == "" {
			input.ID = uuid.NewString()
		}

		user := models.User{
			ID:            input.ID,
			Name:          input.Name,
			Email:         input.Email,
			EmailVerified: input.EmailVerified,
			Image:         input.Image,
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			if input.UserData != nil {
				data := models.UserData{
					UserID:  user.ID,
					Role:    models.RoleUser,
					Address: strVal(input.UserData.Address),
					Phone:   strVal(input.UserData.Phone),
				}
				if input.UserData.Role != nil {
					data.Role = models.Role(*input.UserData.Role)
				}
				if err := tx.Create(&data).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "UNIQUE constraint") ||
				errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"success": false, "error": "A user with this email already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create user"})
			return
		}

		var created models.User
		if err := db.Preload("UserData").First(&created, "id = ?", user.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch user"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": created, "message": "User created successfully"})
	}
}

// GET /users/:id (admin)
func GetUserByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.Preload("UserData").First(&user, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
	}
}

// PUT /users/:id (admin) — two-part write: identity fields on the User row,
// role/address/phone upserted into UserData.
func UpdateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
			return
		}

		var input UpdateUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid input: " + err.Error()})
			return
		}

		updates := make(map[string]interface{})
		if input.Name != nil {
			updates["name"] = *input.Name
		}
		if input.Email != nil {
			updates["email"] = *input.Email
		}
		if input.EmailVerified != nil {
			updates["email_verified"] = *input.EmailVerified
		}
		if input.Image != nil {
			updates["image"] = *input.Image
		}
		if len(updates) > 0 {
			if err := db.Model(&user).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update user"})
				return
			}
		}

		if input.Role != nil || input.Address != nil || input.Phone != nil {
			if err := upsertUserData(db, user.ID, input.Role, input.Address, input.Phone); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update user data"})
				return
			}
		}

		var updated models.User
		if err := db.Preload("UserData").First(&updated, "id = ?", user.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch user"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": updated, "message": "User updated successfully"})
	}
}

// DELETE /users/:id (admin) — UserData first, then User; admin accounts are
// refused at the data layer, not just in the UI.
func DeleteUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.Preload("UserData").First(&user, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
			return
		}

		if user.UserData != nil && user.UserData.Role == models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Cannot delete an admin account"})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserData{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.User{}, "id = ?", user.ID).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete user"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted successfully"})
	}
}

// upsertUserData writes the out-of-band profile row, creating it when absent.
func upsertUserData(db *gorm.DB, userID string, role, address, phone *string) error {
	var data models.UserData
	err := db.Where("user_id = ?", userID).First(&data).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		data = models.UserData{
			UserID:  userID,
			Role:    models.RoleUser,
			Address: strVal(address),
			Phone:   strVal(phone),
		}
		if role != nil {
			data.Role = models.Role(*role)
		}
		return db.Create(&data).Error
	}
	if err != nil {
		return err
	}

	updates := make(map[string]interface{})
	if role != nil {
		updates["role"] = *role
	}
	if address != nil {
		updates["address"] = *address
	}
	if phone != nil {
		updates["phone"] = *phone
	}
	if len(updates) == 0 {
		return nil
	}
	return db.Model(&data).Updates(updates).Error
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
