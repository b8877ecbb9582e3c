// Package adminControllers serves the operational endpoints that are not
// analytics: the store summary, payment transaction listings and the
// audit trail.
package adminControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Adeleye080/DShop/apperr"
	"github.com/Adeleye080/DShop/models"
	"github.com/Adeleye080/DShop/pagination"
)

// GET /admin/summary
func StoreSummary(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users, products, orders, payments int64
		if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := db.Model(&models.Product{}).Count(&products).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := db.Model(&models.Order{}).Count(&orders).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := db.Model(&models.PaymentTransaction{}).Count(&payments).Error; err != nil {
			apperr.Respond(c, err)
			return
		}

		var totalSales decimal.Decimal
		row := db.Model(&models.Order{}).
			Where("status IN ?", models.SettledOrderStatuses).
			Select("COALESCE(SUM(total_amount), 0)").Row()
		if err := row.Scan(&totalSales); err != nil {
			apperr.Respond(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"total_users":    users,
			"total_products": products,
			"total_orders":   orders,
			"total_payments": payments,
			"total_sales":    totalSales,
		})
	}
}

// GET /admin/payments
//
// Lists payment transactions, newest first. Optional ?provider= and
// ?order_id= filters.
func ListPayments(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, size := pagination.Params(c)

		query := db.Model(&models.PaymentTransaction{}).Order("created_at DESC")
		if provider := c.Query("provider"); provider != "" {
			query = query.Where("provider = ?", provider)
		}
		if orderID := c.Query("order_id"); orderID != "" {
			query = query.Where("order_id = ?", orderID)
		}

		resp, err := pagination.Paginate[models.PaymentTransaction](query, page, size)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// GET /admin/audit-logs
func ListAuditLogs(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, size := pagination.Params(c)

		query := db.Model(&models.AuditLog{}).Order("created_at DESC")
		if action := c.Query("action"); action != "" {
			query = query.Where("action = ?", action)
		}
		if target := c.Query("target_type"); target != "" {
			query = query.Where("target_type = ?", target)
		}

		resp, err := pagination.Paginate[models.AuditLog](query, page, size)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
