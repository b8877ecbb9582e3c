package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/Adeleye080/DShop/controllers/cart"
	orderControllers "github.com/Adeleye080/DShop/controllers/order"
	userControllers "github.com/Adeleye080/DShop/controllers/user"
	"github.com/Adeleye080/DShop/middleware"
)

// SetupUserRoutes registers all JWT-protected endpoints for regular
// customers: profile, addresses, cart and orders.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.RequireAuth(db))
	{
		userGroup.GET("/profile", userControllers.GetProfile(db))
		userGroup.PUT("/profile", userControllers.UpdateProfile(db))

		addressGroup := userGroup.Group("/addresses")
		{
			addressGroup.GET("", userControllers.ListAddresses(db))
			addressGroup.POST("", userControllers.CreateAddress(db))
			addressGroup.PUT("/:id", userControllers.UpdateAddress(db))
			addressGroup.DELETE("/:id", userControllers.DeleteAddress(db))
		}

		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("", cartControllers.GetCart(db))
			cartGroup.POST("/items", cartControllers.AddToCart(db))
			cartGroup.PUT("/items", cartControllers.UpdateCartItem(db))
			cartGroup.DELETE("/items", cartControllers.RemoveFromCart(db))
		}

		orderGroup := userGroup.Group("/orders")
		{
			orderGroup.POST("", orderControllers.PlaceOrderHandler(db))
			orderGroup.GET("", orderControllers.GetOrderHistoryHandler(db))
			orderGroup.GET("/:orderID", orderControllers.GetOrderByIDHandler(db))
		}
	}
}
