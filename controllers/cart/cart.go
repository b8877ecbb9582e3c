package cartControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Adeleye080/DShop/apperr"
	"github.com/Adeleye080/DShop/middleware"
	"github.com/Adeleye080/DShop/models"
)

type CartItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// getOrCreateCart returns the user's cart, creating it lazily on first
// access. There is at most one live cart per user (unique index).
func getOrCreateCart(db *gorm.DB, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := db.Preload("Items").Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID}
		if err := db.Create(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GET /cart
func GetCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		cart, err := getOrCreateCart(db, user.ID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// POST /cart/add. Adding a product already in the cart increments its
// quantity instead of creating a second line.
func AddToCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.Validation("invalid input: "+err.Error()))
			return
		}

		var product models.Product
		if err := db.First(&product, "id = ?", input.ProductID).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("product not found"))
			return
		}

		cart, err := getOrCreateCart(db, user.ID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		var item models.CartItem
		err = db.Where("cart_id = ? AND product_id = ?", cart.CartID, input.ProductID).
			First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.CartItem{
				CartID:    cart.CartID,
				ProductID: product.ID,
				Quantity:  input.Quantity,
				AddedAt:   time.Now(),
			}
			if err := db.Create(&item).Error; err != nil {
				apperr.Respond(c, err)
				return
			}
		case err != nil:
			apperr.Respond(c, err)
			return
		default:
			item.Quantity += input.Quantity
			item.AddedAt = time.Now()
			if err := db.Save(&item).Error; err != nil {
				apperr.Respond(c, err)
				return
			}
		}

		c.JSON(http.StatusOK, item)
	}
}

// POST /cart/update sets the quantity of an existing line.
func UpdateCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.Validation("invalid input: "+err.Error()))
			return
		}

		var cart models.Cart
		if err := db.Where("user_id = ?", user.ID).First(&cart).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("cart not found"))
			return
		}

		var item models.CartItem
		if err := db.Where("cart_id = ? AND product_id = ?", cart.CartID, input.ProductID).
			First(&item).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("item not in cart"))
			return
		}

		item.Quantity = input.Quantity
		if err := db.Save(&item).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// POST /cart/remove
func RemoveFromCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var input struct {
			ProductID uint `json:"product_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.Validation("product_id is required"))
			return
		}

		var cart models.Cart
		if err := db.Where("user_id = ?", user.ID).First(&cart).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("cart not found"))
			return
		}

		result := db.Where("cart_id = ? AND product_id = ?", cart.CartID, input.ProductID).
			Delete(&models.CartItem{})
		if result.Error != nil {
			apperr.Respond(c, result.Error)
			return
		}
		if result.RowsAffected == 0 {
			apperr.Respond(c, apperr.NotFound("item not in cart"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "item removed"})
	}
}
