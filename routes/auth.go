package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	authControllers "github.com/Adeleye080/DShop/controllers/auth"
	"github.com/Adeleye080/DShop/middleware"
)

// SetupAuthRoutes registers all "/auth/*" endpoints. Registration and
// login carry their own per-IP limiters so a burst against one does not
// lock out the other.
func SetupAuthRoutes(r *gin.Engine, db *gorm.DB) {
	registerLimiter := middleware.NewRateLimiter(5, time.Minute)
	loginLimiter := middleware.NewRateLimiter(5, time.Minute)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", registerLimiter.Middleware(), authControllers.Register(db))
		authGroup.GET("/verify-email", authControllers.VerifyEmail(db))
		authGroup.POST("/login", loginLimiter.Middleware(), authControllers.Login(db))
		authGroup.POST("/refresh", authControllers.Refresh(db))
		authGroup.POST("/password-reset/request", authControllers.RequestPasswordReset(db))
		authGroup.POST("/password-reset/confirm", authControllers.ResetPassword(db))
	}

	twoFAGroup := r.Group("/auth/2fa")
	twoFAGroup.Use(middleware.RequireAuth(db))
	{
		twoFAGroup.POST("/enable", authControllers.Enable2FA(db))
		twoFAGroup.POST("/verify", authControllers.Verify2FA())
		twoFAGroup.POST("/disable", authControllers.Disable2FA(db))
	}
}
