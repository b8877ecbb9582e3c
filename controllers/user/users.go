package userControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Adeleye080/DShop/apperr"
	"github.com/Adeleye080/DShop/middleware"
	"github.com/Adeleye080/DShop/models"
)

// UpdateProfileInput uses pointer fields so absent keys leave the column
// untouched; only named fields can ever be written.
type UpdateProfileInput struct {
	FullName    *string         `json:"full_name"`
	Phone       *string         `json:"phone"`
	Preferences *datatypes.JSON `json:"preferences"`
}

// GET /profile
func GetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var full models.User
		if err := db.Preload("Addresses").First(&full, "id = ?", user.ID).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("user not found"))
			return
		}
		c.JSON(http.StatusOK, full)
	}
}

// PUT /profile
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var input UpdateProfileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.Validation("invalid input: "+err.Error()))
			return
		}

		updates := make(map[string]interface{})
		if input.FullName != nil {
			updates["full_name"] = *input.FullName
		}
		if input.Phone != nil {
			updates["phone"] = *input.Phone
		}
		if input.Preferences != nil {
			updates["preferences"] = *input.Preferences
		}

		if len(updates) > 0 {
			if err := db.Model(user).Updates(updates).Error; err != nil {
				apperr.Respond(c, err)
				return
			}
		}
		c.JSON(http.StatusOK, user)
	}
}

// GET /admin/users lists accounts for admins, public fields only.
func GetAllUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.
			Select("id", "email", "full_name", "phone", "role", "email_verified", "created_at").
			Order("created_at desc").
			Find(&users).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}
