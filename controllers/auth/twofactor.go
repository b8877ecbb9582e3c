package authControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Adeleye080/DShop/apperr"
	"github.com/Adeleye080/DShop/middleware"
	"github.com/Adeleye080/DShop/security"
)

type totpRequest struct {
	Token string `json:"token" binding:"required"`
}

// Enable2FA generates a TOTP secret for the authenticated user and returns
// the provisioning URI for authenticator apps.
func Enable2FA(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user.OTPSecret != "" {
			apperr.Respond(c, apperr.Conflict("2FA already enabled"))
			return
		}

		secret, uri, err := security.GenerateTOTPSecret(user.Email)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := db.Model(user).Update("otp_secret", secret).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"otp_secret": secret, "otp_uri": uri})
	}
}

func Disable2FA(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user.OTPSecret == "" {
			apperr.Respond(c, apperr.Conflict("2FA not enabled"))
			return
		}
		if err := db.Model(user).Update("otp_secret", "").Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "2FA disabled"})
	}
}

// Verify2FA lets a client confirm its authenticator is enrolled correctly.
func Verify2FA() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user.OTPSecret == "" {
			apperr.Respond(c, apperr.Conflict("2FA not enabled"))
			return
		}

		var req totpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Validation("token is required"))
			return
		}
		if !security.VerifyTOTP(user.OTPSecret, req.Token) {
			apperr.Respond(c, apperr.Auth("invalid 2FA token"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "2FA verified"})
	}
}
