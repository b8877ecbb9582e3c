package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Adeleye080/DShop/apperr"
	"github.com/Adeleye080/DShop/middleware"
	"github.com/Adeleye080/DShop/models"
)

// UpdateProductInput names every writable field explicitly; absent keys are
// left untouched.
type UpdateProductInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	ImageURL    *string          `json:"image_url"`
}

// PUT /admin/products/:id
func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin := middleware.CurrentUser(c)

		var product models.Product
		if err := db.First(&product, "id = ?", c.Param("id")).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("product not found"))
			return
		}

		var input UpdateProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.Validation("invalid input: "+err.Error()))
			return
		}

		updates := make(map[string]interface{})
		if input.Name != nil {
			updates["name"] = *input.Name
		}
		if input.Description != nil {
			updates["description"] = *input.Description
		}
		if input.Price != nil {
			if input.Price.LessThanOrEqual(decimal.Zero) {
				apperr.Respond(c, apperr.Validation("price must be greater than zero"))
				return
			}
			updates["price"] = *input.Price
		}
		if input.Stock != nil {
			if *input.Stock < 0 {
				apperr.Respond(c, apperr.Validation("stock cannot be negative"))
				return
			}
			updates["stock"] = *input.Stock
		}
		if input.ImageURL != nil {
			updates["image_url"] = *input.ImageURL
		}

		if len(updates) > 0 {
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Model(&product).Updates(updates).Error; err != nil {
					return err
				}
				return models.RecordAudit(tx, admin.ID, "update", "product", product.ID, updates)
			})
			if err != nil {
				apperr.Respond(c, err)
				return
			}
		}
		c.JSON(http.StatusOK, product)
	}
}

// PATCH /admin/products/:id/stock
func UpdateProductStock(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin := middleware.CurrentUser(c)

		var req struct {
			Stock *int `json:"stock" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Validation("stock is required"))
			return
		}
		if *req.Stock < 0 {
			apperr.Respond(c, apperr.Validation("stock cannot be negative"))
			return
		}

		var product models.Product
		if err := db.First(&product, "id = ?", c.Param("id")).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("product not found"))
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&product).Update("stock", *req.Stock).Error; err != nil {
				return err
			}
			return models.RecordAudit(tx, admin.ID, "update_stock", "product", product.ID,
				gin.H{"stock": *req.Stock})
		})
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
