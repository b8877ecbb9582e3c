package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Adeleye080/DShop/apperr"
	"github.com/Adeleye080/DShop/models"
	"github.com/Adeleye080/DShop/security"
)

const (
	ContextUserKey   = "user"
	ContextUserIDKey = "user_id"
)

// RequireAuth resolves the bearer token to a live user row and stores it in
// the request context. Soft-deleted users are treated as unknown.
func RequireAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			apperr.Respond(c, apperr.Auth("authorization header is missing"))
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims, err := security.ParseAccessToken(tokenString)
		if err != nil {
			apperr.Respond(c, apperr.Auth("invalid or expired token"))
			c.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", claims.UserID).Error; err != nil {
			apperr.Respond(c, apperr.Auth("account no longer exists"))
			c.Abort()
			return
		}

		c.Set(ContextUserKey, &user)
		c.Set(ContextUserIDKey, user.ID)
		c.Next()
	}
}

// RequireRole gates a route group on the authenticated user's role. Must
// run after RequireAuth.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || user.Role != role {
			apperr.Respond(c, apperr.Forbidden("insufficient permissions"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user RequireAuth stored, or nil on unguarded
// routes.
func CurrentUser(c *gin.Context) *models.User {
	val, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := val.(*models.User)
	if !ok {
		return nil
	}
	return user
}
