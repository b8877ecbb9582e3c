package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	paymentControllers "github.com/Adeleye080/DShop/controllers/payment"
	"github.com/Adeleye080/DShop/middleware"
)

// SetupPaymentRoutes registers the payment endpoints. Intent creation
// requires the order's owner; webhooks are unauthenticated but every
// delivery is signature-verified before any state is touched.
func SetupPaymentRoutes(r *gin.Engine, db *gorm.DB) {
	intentGroup := r.Group("/payments")
	intentGroup.Use(middleware.RequireAuth(db))
	{
		intentGroup.POST("/stripe/:orderID", paymentControllers.CreateStripeIntent(db))
		intentGroup.POST("/paypal/:orderID", paymentControllers.CreatePayPalPayment(db))
	}

	// Browser landing pages for the provider redirect flow; read-only.
	r.GET("/payments/paypal/confirm/:orderID", paymentControllers.PayPalReturnHandler(db))
	r.GET("/payments/paypal/cancel/:orderID", paymentControllers.PayPalCancelHandler(db))

	webhookGroup := r.Group("/webhooks")
	{
		webhookGroup.POST("/stripe", paymentControllers.StripeWebhookHandler(db))
		webhookGroup.POST("/paypal", paymentControllers.PayPalWebhookHandler(db))
	}
}
