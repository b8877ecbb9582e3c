package authControllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Adeleye080/DShop/apperr"
	"github.com/Adeleye080/DShop/email"
	"github.com/Adeleye080/DShop/middleware"
	"github.com/Adeleye080/DShop/models"
	"github.com/Adeleye080/DShop/security"
)

// -------- Request / response structs --------

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	OTPToken string `json:"otp_token"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func baseURL() string {
	if url := os.Getenv("APP_BASE_URL"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

// isDuplicateKey reports whether err is a unique-constraint violation.
// GORM only translates these when the dialector supports it, so fall
// back to matching the postgres and sqlite error strings.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

func issueTokens(user *models.User) (*TokenResponse, error) {
	access, err := security.NewAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	refresh, err := security.NewRefreshToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &TokenResponse{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

// -------- Handlers --------

// Register creates an account, sends the verification email, and returns a
// token pair. Rate limiting is applied at the route level.
func Register(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Validation("invalid input: "+err.Error()))
			return
		}
		if !security.StrongPassword(req.Password) {
			apperr.Respond(c, apperr.Validation(
				"password too weak: must be 8+ chars with upper/lowercase, digit and special char"))
			return
		}

		var existing models.User
		if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
			apperr.Respond(c, apperr.Conflict("email already registered"))
			return
		}

		hashed, err := security.HashPassword(req.Password)
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		user := models.User{
			Email:             req.Email,
			HashedPassword:    hashed,
			FullName:          req.FullName,
			Role:              models.RoleUser,
			VerificationToken: security.RandomToken(),
		}
		if err := db.Create(&user).Error; err != nil {
			if isDuplicateKey(err) {
				// Lost the race against a concurrent register for the same email.
				apperr.Respond(c, apperr.Conflict("email already registered"))
				return
			}
			apperr.Respond(c, err)
			return
		}

		verifyURL := fmt.Sprintf("%s/auth/verify-email?token=%s", baseURL(), user.VerificationToken)
		email.Send(user.Email, "Verify your email", "verification_email.html", gin.H{
			"FullName":  user.FullName,
			"VerifyURL": verifyURL,
		})

		tokens, err := issueTokens(&user)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, tokens)
	}
}

// VerifyEmail consumes the single-use verification token from the signup
// email.
func VerifyEmail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			apperr.Respond(c, apperr.Validation("token is required"))
			return
		}
		var user models.User
		if err := db.Where("verification_token = ?", token).First(&user).Error; err != nil {
			apperr.Respond(c, apperr.Validation("invalid verification token"))
			return
		}
		updates := map[string]interface{}{"email_verified": true, "verification_token": ""}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Email verified. You can now log in."})
	}
}

// Login checks credentials, the verification flag, and the TOTP code when
// 2FA is enabled.
func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Validation("invalid input: "+err.Error()))
			return
		}

		var user models.User
		if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
			apperr.Respond(c, apperr.Auth("invalid credentials"))
			return
		}
		if !security.VerifyPassword(req.Password, user.HashedPassword) {
			apperr.Respond(c, apperr.Auth("invalid credentials"))
			return
		}
		if !user.EmailVerified {
			apperr.Respond(c, apperr.Forbidden("email not verified"))
			return
		}
		if user.OTPSecret != "" {
			if req.OTPToken == "" {
				apperr.Respond(c, apperr.Auth("2FA token required"))
				return
			}
			if !security.VerifyTOTP(user.OTPSecret, req.OTPToken) {
				apperr.Respond(c, apperr.Auth("invalid 2FA token"))
				return
			}
		}

		tokens, err := issueTokens(&user)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, tokens)
	}
}

// Refresh rotates the refresh token: the presented one is revoked and a new
// pair is issued.
func Refresh(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Validation("refresh_token is required"))
			return
		}

		claims, err := security.ParseRefreshToken(req.RefreshToken)
		if err != nil || security.IsRefreshTokenRevoked(req.RefreshToken) {
			apperr.Respond(c, apperr.Auth("invalid or revoked refresh token"))
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", claims.UserID).Error; err != nil {
			apperr.Respond(c, apperr.Auth("account no longer exists"))
			return
		}

		tokens, err := issueTokens(&user)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		security.RevokeRefreshToken(req.RefreshToken)
		c.JSON(http.StatusOK, tokens)
	}
}

// RequestPasswordReset is deliberately non-disclosing: the response is the
// same whether or not the email exists.
func RequestPasswordReset(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email string `json:"email" binding:"required,email"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Validation("email is required"))
			return
		}

		message := gin.H{"message": "If the email exists, a reset link will be sent."}

		var user models.User
		if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
			c.JSON(http.StatusOK, message)
			return
		}

		token := security.RandomToken()
		expiry := time.Now().Add(time.Hour)
		updates := map[string]interface{}{
			"password_reset_token":  token,
			"password_reset_expiry": expiry,
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			apperr.Respond(c, err)
			return
		}

		resetURL := fmt.Sprintf("%s/auth/reset-password?token=%s", baseURL(), token)
		email.Send(user.Email, "Password Reset", "password_reset_email.html", gin.H{
			"FullName": user.FullName,
			"ResetURL": resetURL,
		})
		c.JSON(http.StatusOK, message)
	}
}

// ResetPassword consumes a reset token issued within the last hour.
func ResetPassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Token       string `json:"token" binding:"required"`
			NewPassword string `json:"new_password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Validation("token and new_password are required"))
			return
		}

		var user models.User
		err := db.Where("password_reset_token = ?", req.Token).First(&user).Error
		if err != nil || user.PasswordResetExpiry == nil || user.PasswordResetExpiry.Before(time.Now()) {
			apperr.Respond(c, apperr.Validation("invalid or expired token"))
			return
		}
		if !security.StrongPassword(req.NewPassword) {
			apperr.Respond(c, apperr.Validation("password too weak"))
			return
		}

		hashed, err := security.HashPassword(req.NewPassword)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		updates := map[string]interface{}{
			"hashed_password":       hashed,
			"password_reset_token":  "",
			"password_reset_expiry": nil,
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := models.RecordAudit(db, user.ID, "reset_password", "user", user.ID, nil); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password reset successful. You can now log in."})
	}
}

// DeleteUser soft-deletes an account (admin only).
func DeleteUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c)

		var user models.User
		if err := db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("user not found"))
			return
		}
		if err := models.SoftDeleteUser(db, actor.ID, &user); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
