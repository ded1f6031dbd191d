package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	productcontroller "github.com/aayushmaan-54/OneStore/controllers/product"
	"github.com/aayushmaan-54/OneStore/middleware"
)

// SetupProductRoutes registers the public catalog reads and the admin-gated
// catalog mutations.
func SetupProductRoutes(r *gin.Engine, db *gorm.DB) {
	products := r.Group("/products")
	{
		products.GET("", productcontroller.GetProducts(db))
		products.GET("/:id", productcontroller.GetProductByID(db))

		admin := products.Group("")
		admin.Use(middleware.ValidateToken, middleware.RequireAdmin(db))
		{
			admin.POST("", productcontroller.CreateProduct(db))
			admin.PUT("/:id", productcontroller.UpdateProduct(db))
			admin.DELETE("/:id", productcontroller.DeleteProduct(db))
			admin.GET("/export", productcontroller.ExportProductsToExcel(db))
		}
	}
}
