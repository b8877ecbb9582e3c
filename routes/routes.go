package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes is the single entry point that wires up every route group.
func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	// Public auth endpoints (rate-limited where credentials are involved)
	SetupAuthRoutes(r, db)

	// Public catalog browsing
	SetupProductRoutes(r, db)

	// JWT-protected user endpoints: profile, addresses, cart, orders
	SetupUserRoutes(r, db)

	// Payment intents (JWT) and provider webhooks (signature-verified)
	SetupPaymentRoutes(r, db)

	// Admin endpoints (JWT + admin role)
	SetupAdminRoutes(r, db)
}
