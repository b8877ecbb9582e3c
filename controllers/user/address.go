package userControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Adeleye080/DShop/apperr"
	"github.com/Adeleye080/DShop/middleware"
	"github.com/Adeleye080/DShop/models"
)

type AddressInput struct {
	Street     string `json:"street" binding:"required"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country" binding:"required"`
	Phone      string `json:"phone"`
}

// GET /addresses
func ListAddresses(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var addresses []models.Address
		if err := db.Where("user_id = ?", user.ID).Find(&addresses).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, addresses)
	}
}

// POST /addresses
func CreateAddress(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var input AddressInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.Validation("invalid input: "+err.Error()))
			return
		}

		address := models.Address{
			UserID:     user.ID,
			Street:     input.Street,
			City:       input.City,
			State:      input.State,
			PostalCode: input.PostalCode,
			Country:    input.Country,
			Phone:      input.Phone,
		}
		if err := db.Create(&address).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, address)
	}
}

// PUT /addresses/:id
func UpdateAddress(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var address models.Address
		if err := db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).
			First(&address).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("address not found"))
			return
		}

		var input AddressInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.Validation("invalid input: "+err.Error()))
			return
		}

		address.Street = input.Street
		address.City = input.City
		address.State = input.State
		address.PostalCode = input.PostalCode
		address.Country = input.Country
		address.Phone = input.Phone
		if err := db.Save(&address).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, address)
	}
}

// DELETE /addresses/:id
func DeleteAddress(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		result := db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).
			Delete(&models.Address{})
		if result.Error != nil {
			apperr.Respond(c, result.Error)
			return
		}
		if result.RowsAffected == 0 {
			apperr.Respond(c, apperr.NotFound("address not found"))
			return
		}
		c.Status(http.StatusNoContent)
	}
}
