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

type CreateProductInput struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"image_url"`
}

// POST /admin/products
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin := middleware.CurrentUser(c)

		var input CreateProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.Validation("invalid input: "+err.Error()))
			return
		}
		if input.Price.LessThanOrEqual(decimal.Zero) {
			apperr.Respond(c, apperr.Validation("price must be greater than zero"))
			return
		}
		if input.Stock < 0 {
			apperr.Respond(c, apperr.Validation("stock cannot be negative"))
			return
		}

		product := models.Product{
			Name:        input.Name,
			Description: input.Description,
			Price:       input.Price,
			Stock:       input.Stock,
			ImageURL:    input.ImageURL,
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
			return models.RecordAudit(tx, admin.ID, "create", "product", product.ID, input)
		})
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}
