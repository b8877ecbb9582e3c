package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Adeleye080/DShop/apperr"
	"github.com/Adeleye080/DShop/middleware"
	"github.com/Adeleye080/DShop/models"
)

// DELETE /admin/products/:id soft deletes; the row stays for order
// snapshots and analytics.
func DeleteProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin := middleware.CurrentUser(c)

		var product models.Product
		if err := db.First(&product, "id = ?", c.Param("id")).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("product not found"))
			return
		}
		if err := models.SoftDeleteProduct(db, admin.ID, &product); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// GET /admin/products/low-stock?threshold=5
func ListLowStockProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		threshold := c.DefaultQuery("threshold", "5")

		var products []models.Product
		if err := db.Where("stock <= ?", threshold).Order("stock asc").
			Find(&products).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}
