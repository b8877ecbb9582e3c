package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	adminControllers "github.com/Adeleye080/DShop/controllers/admin"
	analyticsControllers "github.com/Adeleye080/DShop/controllers/analytics"
	authControllers "github.com/Adeleye080/DShop/controllers/auth"
	orderControllers "github.com/Adeleye080/DShop/controllers/order"
	productcontroller "github.com/Adeleye080/DShop/controllers/product"
	userControllers "github.com/Adeleye080/DShop/controllers/user"
	"github.com/Adeleye080/DShop/middleware"
	"github.com/Adeleye080/DShop/models"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Everything here
// requires a valid token carrying the admin role.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.RequireAuth(db), middleware.RequireRole(models.RoleAdmin))
	{
		adminGroup.GET("/summary", adminControllers.StoreSummary(db))
		adminGroup.GET("/payments", adminControllers.ListPayments(db))
		adminGroup.GET("/audit-logs", adminControllers.ListAuditLogs(db))

		productGroup := adminGroup.Group("/products")
		{
			productGroup.POST("", productcontroller.CreateProduct(db))
			productGroup.PUT("/:id", productcontroller.UpdateProduct(db))
			productGroup.PATCH("/:id/stock", productcontroller.UpdateProductStock(db))
			productGroup.DELETE("/:id", productcontroller.DeleteProduct(db))
			productGroup.POST("/:id/image", productcontroller.UploadProductImage(db))
			productGroup.GET("/inventory", productcontroller.ListInventory(db))
			productGroup.GET("/low-stock", productcontroller.ListLowStockProducts(db))
			productGroup.GET("/export", productcontroller.ExportProductsToExcel(db))
		}

		orderGroup := adminGroup.Group("/orders")
		{
			orderGroup.GET("", orderControllers.GetAllOrdersHandler(db))
			orderGroup.PATCH("/:orderID/status", orderControllers.UpdateOrderStatusHandler(db))
			orderGroup.DELETE("/:orderID", orderControllers.DeleteOrderHandler(db))
		}

		userGroup := adminGroup.Group("/users")
		{
			userGroup.GET("", userControllers.GetAllUsers(db))
			userGroup.DELETE("/:id", authControllers.DeleteUser(db))
		}

		analyticsGroup := adminGroup.Group("/analytics")
		{
			analyticsGroup.GET("/sales", analyticsControllers.SalesAnalytics(db))
			analyticsGroup.GET("/users", analyticsControllers.UserAnalytics(db))
			analyticsGroup.GET("/products", analyticsControllers.ProductAnalytics(db))
			analyticsGroup.GET("/orders", analyticsControllers.OrderAnalytics(db))
			analyticsGroup.GET("/dashboard", analyticsControllers.DashboardAnalytics(db))
		}

		// Live order feed for the admin dashboard.
		adminGroup.GET("/orders/feed", orderControllers.OrderFeedHandler)
	}
}
