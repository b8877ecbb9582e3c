package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Adeleye080/DShop/apperr"
	"github.com/Adeleye080/DShop/models"
	"github.com/Adeleye080/DShop/pagination"
)

// GET /products
func ListProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, size := pagination.Params(c)

		query := db.Model(&models.Product{}).Order("created_at desc")
		resp, err := pagination.Paginate[models.Product](query, page, size)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// GET /products/:id
func GetProductByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		if err := db.First(&product, "id = ?", c.Param("id")).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("product not found"))
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// GET /admin/products/inventory returns the full stock listing for admins.
func ListInventory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.Order("stock asc").Find(&products).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}
