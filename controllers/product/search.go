package productcontroller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Adeleye080/DShop/apperr"
	"github.com/Adeleye080/DShop/models"
	"github.com/Adeleye080/DShop/pagination"
)

var sortableColumns = map[string]bool{
	"name":       true,
	"price":      true,
	"stock":      true,
	"created_at": true,
}

// GET /products/search
// Query params: q, min_price, max_price, in_stock, sort_by, order, page, size.
func SearchProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Model(&models.Product{})

		if q := c.Query("q"); q != "" {
			pattern := "%" + q + "%"
			query = query.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
		}

		if raw := c.Query("min_price"); raw != "" {
			min, err := decimal.NewFromString(raw)
			if err != nil {
				apperr.Respond(c, apperr.Validation("invalid min_price"))
				return
			}
			query = query.Where("price >= ?", min)
		}
		if raw := c.Query("max_price"); raw != "" {
			max, err := decimal.NewFromString(raw)
			if err != nil {
				apperr.Respond(c, apperr.Validation("invalid max_price"))
				return
			}
			query = query.Where("price <= ?", max)
		}

		switch c.Query("in_stock") {
		case "true":
			query = query.Where("stock > 0")
		case "false":
			query = query.Where("stock = 0")
		}

		sortBy := c.DefaultQuery("sort_by", "created_at")
		if !sortableColumns[sortBy] {
			apperr.Respond(c, apperr.Validation("invalid sort_by"))
			return
		}
		order := strings.ToLower(c.DefaultQuery("order", "desc"))
		if order != "asc" && order != "desc" {
			order = "desc"
		}
		query = query.Order(sortBy + " " + order)

		page, size := pagination.Params(c)
		resp, err := pagination.Paginate[models.Product](query, page, size)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
