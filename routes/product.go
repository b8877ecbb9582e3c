package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	productcontroller "github.com/Adeleye080/DShop/controllers/product"
)

// SetupProductRoutes registers the public catalog endpoints. No auth:
// anonymous visitors can browse and search.
func SetupProductRoutes(r *gin.Engine, db *gorm.DB) {
	productGroup := r.Group("/products")
	{
		productGroup.GET("", productcontroller.ListProducts(db))
		productGroup.GET("/search", productcontroller.SearchProducts(db))
		productGroup.GET("/:id", productcontroller.GetProductByID(db))
	}
}
