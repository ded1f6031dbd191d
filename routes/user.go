package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	userControllers "github.com/aayushmaan-54/OneStore/controllers/user"
	"github.com/aayushmaan-54/OneStore/middleware"
)

// SetupUserRoutes registers the admin user management surface and the
// self-service profile endpoints.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB) {
	users := r.Group("/users")
	users.Use(middleware.ValidateToken, middleware.RequireAdmin(db))
	{
		users.GET("", userControllers.GetAllUsers(db))
		users.POST("", userControllers.CreateUser(db))
		users.GET("/:id", userControllers.GetUserByID(db))
		users.PUT("/:id", userControllers.UpdateUser(db))
		users.DELETE("/:id", userControllers.DeleteUser(db))
	}

	userData := r.Group("/user-data")
	userData.Use(middleware.ValidateToken)
	{
		userData.GET("", userControllers.GetUserData(db))
		userData.PUT("", userControllers.UpdateProfile(db))
	}
}
