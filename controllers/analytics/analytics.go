// Package analyticsControllers aggregates sales, user, product and order
// metrics for the admin dashboard. Time bucketing happens in Go rather
// than in SQL so the queries stay portable across database dialects.
package analyticsControllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Adeleye080/DShop/apperr"
	"github.com/Adeleye080/DShop/models"
)

// parseWindow reads optional start_date/end_date query params (RFC 3339)
// and defaults to the trailing 30 days.
func parseWindow(c *gin.Context) (time.Time, time.Time, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)

	if raw := c.Query("start_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return start, end, apperr.Validation("invalid start_date, expected RFC 3339")
		}
		start = t
	}
	if raw := c.Query("end_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return start, end, apperr.Validation("invalid end_date, expected RFC 3339")
		}
		end = t
	}
	if end.Before(start) {
		return start, end, apperr.Validation("end_date must be after start_date")
	}
	return start, end, nil
}

// settledOrders scopes a query to revenue-counting orders in a window.
func settledOrders(db *gorm.DB, start, end time.Time) *gorm.DB {
	return db.Model(&models.Order{}).
		Where("status IN ?", models.SettledOrderStatuses).
		Where("created_at >= ? AND created_at <= ?", start, end)
}

type salesSummary struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	OrderCount        int64           `json:"order_count"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	RevenueGrowthPct  decimal.Decimal `json:"revenue_growth_pct"`
}

type monthlyRevenue struct {
	Month   string          `json:"month"` // YYYY-MM
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

type topProduct struct {
	ProductID    uint            `json:"product_id"`
	ProductName  string          `json:"product_name"`
	OrderCount   int             `json:"order_count"`
	UnitsSold    int             `json:"units_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

func revenueInWindow(db *gorm.DB, start, end time.Time) (decimal.Decimal, int64, error) {
	var total decimal.Decimal
	row := settledOrders(db, start, end).
		Select("COALESCE(SUM(total_amount), 0)").Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, 0, err
	}
	var count int64
	if err := settledOrders(db, start, end).Count(&count).Error; err != nil {
		return decimal.Zero, 0, err
	}
	return total, count, nil
}

func computeSalesSummary(db *gorm.DB, start, end time.Time) (*salesSummary, error) {
	total, count, err := revenueInWindow(db, start, end)
	if err != nil {
		return nil, err
	}

	summary := &salesSummary{TotalRevenue: total, OrderCount: count}
	if count > 0 {
		summary.AverageOrderValue = total.DivRound(decimal.NewFromInt(count), 2)
	}

	// Growth compares against the window of equal length immediately
	// before this one. A zero-revenue prior window reports 0 growth
	// rather than a division error.
	priorStart := start.Add(-end.Sub(start))
	priorTotal, _, err := revenueInWindow(db, priorStart, start)
	if err != nil {
		return nil, err
	}
	if priorTotal.IsPositive() {
		summary.RevenueGrowthPct = total.Sub(priorTotal).
			Div(priorTotal).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return summary, nil
}

// computeMonthlyRevenue buckets settled orders of the trailing six months
// by calendar month.
func computeMonthlyRevenue(db *gorm.DB, now time.Time) ([]monthlyRevenue, error) {
	start := now.AddDate(0, 0, -180)

	var orders []models.Order
	if err := settledOrders(db, start, now).
		Select("total_amount", "created_at").
		Find(&orders).Error; err != nil {
		return nil, err
	}

	buckets := map[string]*monthlyRevenue{}
	for _, o := range orders {
		key := o.CreatedAt.Format("2006-01")
		b, ok := buckets[key]
		if !ok {
			b = &monthlyRevenue{Month: key}
			buckets[key] = b
		}
		b.Revenue = b.Revenue.Add(o.TotalAmount)
		b.Orders++
	}

	// Emit every month in the range, oldest first, including empty ones.
	result := []monthlyRevenue{}
	cursor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(last) {
		key := cursor.Format("2006-01")
		if b, ok := buckets[key]; ok {
			result = append(result, *b)
		} else {
			result = append(result, monthlyRevenue{Month: key})
		}
		cursor = cursor.AddDate(0, 1, 0)
	}
	return result, nil
}

func computeTopProducts(db *gorm.DB, start, end time.Time) ([]topProduct, error) {
	var top []topProduct
	// Ranked by number of orders containing the product, with units
	// sold as the tiebreaker.
	err := db.Model(&models.OrderItem{}).
		Select("order_items.product_id, order_items.product_name, "+
			"COUNT(DISTINCT orders.id) AS order_count, "+
			"SUM(order_items.quantity) AS units_sold, "+
			"SUM(order_items.unit_price * order_items.quantity) AS total_revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status IN ?", models.SettledOrderStatuses).
		Where("orders.created_at >= ? AND orders.created_at <= ?", start, end).
		Where("orders.deleted_at IS NULL").
		Group("order_items.product_id, order_items.product_name").
		Order("order_count DESC, units_sold DESC").
		Limit(10).
		Scan(&top).Error
	return top, err
}

// GET /admin/analytics/sales
func SalesAnalytics(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		start, end, err := parseWindow(c)
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		summary, err := computeSalesSummary(db, start, end)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		monthly, err := computeMonthlyRevenue(db, end)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		top, err := computeTopProducts(db, start, end)
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"summary":         summary,
			"monthly_revenue": monthly,
			"top_products":    top,
			"window":          gin.H{"start": start, "end": end},
		})
	}
}

type topCustomer struct {
	UserID     uint            `json:"user_id"`
	Email      string          `json:"email"`
	FullName   string          `json:"full_name"`
	OrderCount int             `json:"order_count"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

// GET /admin/analytics/users
func UserAnalytics(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		start, end, err := parseWindow(c)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		now := end

		var totalUsers int64
		if err := db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
			apperr.Respond(c, err)
			return
		}

		var purchasers int64
		if err := settledOrders(db, start, end).
			Distinct("user_id").Count(&purchasers).Error; err != nil {
			apperr.Respond(c, err)
			return
		}

		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		priorMonthStart := monthStart.AddDate(0, -1, 0)

		var newThisMonth, newPriorMonth int64
		if err := db.Model(&models.User{}).
			Where("created_at >= ?", monthStart).
			Count(&newThisMonth).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := db.Model(&models.User{}).
			Where("created_at >= ? AND created_at < ?", priorMonthStart, monthStart).
			Count(&newPriorMonth).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		growthPct := decimal.Zero
		if newPriorMonth > 0 {
			growthPct = decimal.NewFromInt(newThisMonth - newPriorMonth).
				Div(decimal.NewFromInt(newPriorMonth)).
				Mul(decimal.NewFromInt(100)).Round(2)
		}

		type roleCount struct {
			Role  models.Role `json:"role"`
			Count int         `json:"count"`
		}
		var byRole []roleCount
		if err := db.Model(&models.User{}).
			Select("role, COUNT(*) AS count").
			Group("role").Scan(&byRole).Error; err != nil {
			apperr.Respond(c, err)
			return
		}

		var topCustomers []topCustomer
		if err := db.Model(&models.Order{}).
			Select("orders.user_id, users.email, users.full_name, "+
				"COUNT(orders.id) AS order_count, "+
				"COALESCE(SUM(orders.total_amount), 0) AS total_spent").
			Joins("JOIN users ON users.id = orders.user_id").
			Where("orders.status IN ?", models.SettledOrderStatuses).
			Group("orders.user_id, users.email, users.full_name").
			Order("total_spent DESC").
			Limit(10).
			Scan(&topCustomers).Error; err != nil {
			apperr.Respond(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"total_users":          totalUsers,
			"users_with_purchases": purchasers,
			"new_users_this_month": newThisMonth,
			"new_users_growth_pct": growthPct,
			"users_by_role":        byRole,
			"top_customers":        topCustomers,
		})
	}
}

// GET /admin/analytics/products
func ProductAnalytics(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var total, lowStock, outOfStock int64
		if err := db.Model(&models.Product{}).Count(&total).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := db.Model(&models.Product{}).
			Where("stock > 0 AND stock < ?", 10).
			Count(&lowStock).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := db.Model(&models.Product{}).
			Where("stock = 0").Count(&outOfStock).Error; err != nil {
			apperr.Respond(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"total_products": total,
			"low_stock":      lowStock,
			"out_of_stock":   outOfStock,
		})
	}
}

// GET /admin/analytics/orders
func OrderAnalytics(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		start, end, err := parseWindow(c)
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		var total int64
		if err := db.Model(&models.Order{}).
			Where("created_at >= ? AND created_at <= ?", start, end).
			Count(&total).Error; err != nil {
			apperr.Respond(c, err)
			return
		}

		type statusCount struct {
			Status models.OrderStatus `json:"status"`
			Count  int                `json:"count"`
		}
		var byStatus []statusCount
		if err := db.Model(&models.Order{}).
			Select("status, COUNT(*) AS count").
			Where("created_at >= ? AND created_at <= ?", start, end).
			Group("status").Scan(&byStatus).Error; err != nil {
			apperr.Respond(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"total_orders":     total,
			"orders_by_status": byStatus,
			"window":           gin.H{"start": start, "end": end},
		})
	}
}

// GET /admin/analytics/dashboard
//
// One call for the admin landing page, combining the individual reports
// over the default trailing 30 days.
func DashboardAnalytics(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		end := time.Now()
		start := end.AddDate(0, 0, -30)

		summary, err := computeSalesSummary(db, start, end)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		monthly, err := computeMonthlyRevenue(db, end)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		top, err := computeTopProducts(db, start, end)
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		var totalUsers, totalProducts, totalOrders int64
		if err := db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := db.Model(&models.Product{}).Count(&totalProducts).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := db.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
			apperr.Respond(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"sales":           summary,
			"monthly_revenue": monthly,
			"top_products":    top,
			"totals": gin.H{
				"users":    totalUsers,
				"products": totalProducts,
				"orders":   totalOrders,
			},
		})
	}
}
