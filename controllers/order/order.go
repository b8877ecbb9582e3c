package orderControllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Adeleye080/DShop/apperr"
	"github.com/Adeleye080/DShop/email"
	"github.com/Adeleye080/DShop/middleware"
	"github.com/Adeleye080/DShop/models"
	"github.com/Adeleye080/DShop/pagination"
)

// lockForUpdate takes a row lock so concurrent placements (or webhook
// deliveries) against the same row serialize instead of both reading stale
// state. SQLite has no FOR UPDATE; its single-writer lock covers the tests.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// generateOrderRef returns a unique, human-sortable order reference.
func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

// PlaceOrder converts the user's cart into a pending order inside one
// transaction: every product row is locked, stock is checked and
// decremented per line, the order snapshot is created with prices read at
// this moment, and the cart lines are deleted. Any failed line aborts the
// whole transaction, so a partial decrement is never observable.
func PlaceOrder(db *gorm.DB, userID uint, addressID *uint) (*models.Order, error) {
	var cart models.Cart
	if err := db.Preload("Items").Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, apperr.Validation("cart is empty")
	}
	if len(cart.Items) == 0 {
		return nil, apperr.Validation("cart is empty")
	}

	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		var orderItems []models.OrderItem

		for _, item := range cart.Items {
			var product models.Product
			err := lockForUpdate(tx).First(&product, "id = ?", item.ProductID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.OutOfStock(fmt.Sprintf("product %d is unavailable", item.ProductID))
			}
			if err != nil {
				return err
			}
			if product.Stock < item.Quantity {
				return apperr.OutOfStock("insufficient stock for product: " + product.Name)
			}

			if err := tx.Model(&product).
				Update("stock", gorm.Expr("stock - ?", item.Quantity)).Error; err != nil {
				return err
			}

			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			orderItems = append(orderItems, models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				UnitPrice:   product.Price,
				Quantity:    item.Quantity,
			})
		}

		order = models.Order{
			OrderRef:    generateOrderRef(),
			UserID:      userID,
			Items:       orderItems,
			TotalAmount: total,
			Status:      models.OrderStatusPending,
			AddressID:   addressID,
			CreatedAt:   time.Now(),
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		return tx.Where("cart_id = ?", cart.CartID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// -------- Handlers --------

// POST /orders/place
func PlaceOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var req struct {
			AddressID *uint `json:"address_id"`
		}
		_ = c.ShouldBindJSON(&req) // body is optional

		order, err := PlaceOrder(db, user.ID, req.AddressID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		email.Send(user.Email, "Order Confirmation", "order_confirmation_email.html", gin.H{
			"FullName": user.FullName,
			"OrderRef": order.OrderRef,
			"Items":    order.Items,
			"Total":    order.TotalAmount.StringFixed(2),
		})
		BroadcastOrderEvent("order.placed", order)

		c.JSON(http.StatusCreated, order)
	}
}

// GET /orders/history returns the caller's own orders, filtered and
// paginated, newest first.
// Filters: status, start_date, end_date (RFC 3339), min_amount, max_amount.
func GetOrderHistoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		query := db.Model(&models.Order{}).
			Preload("Items").
			Where("user_id = ?", user.ID)

		if status := c.Query("status"); status != "" {
			if !models.ValidOrderStatus(models.OrderStatus(status)) {
				apperr.Respond(c, apperr.InvalidStatus("invalid status filter: "+status))
				return
			}
			query = query.Where("status = ?", status)
		}
		if raw := c.Query("start_date"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				apperr.Respond(c, apperr.Validation("invalid start_date"))
				return
			}
			query = query.Where("created_at >= ?", t)
		}
		if raw := c.Query("end_date"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				apperr.Respond(c, apperr.Validation("invalid end_date"))
				return
			}
			query = query.Where("created_at <= ?", t)
		}
		if raw := c.Query("min_amount"); raw != "" {
			min, err := decimal.NewFromString(raw)
			if err != nil {
				apperr.Respond(c, apperr.Validation("invalid min_amount"))
				return
			}
			query = query.Where("total_amount >= ?", min)
		}
		if raw := c.Query("max_amount"); raw != "" {
			max, err := decimal.NewFromString(raw)
			if err != nil {
				apperr.Respond(c, apperr.Validation("invalid max_amount"))
				return
			}
			query = query.Where("total_amount <= ?", max)
		}

		query = query.Order("created_at DESC")

		page, size := pagination.Params(c)
		resp, err := pagination.Paginate[models.Order](query, page, size)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// GET /orders/:orderID. Owners see their own orders; admins see any.
func GetOrderByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		id := c.Param("orderID")

		var order models.Order
		query := db.Preload("Items").Where("id = ? OR order_ref = ?", id, id)
		if user.Role != models.RoleAdmin {
			query = query.Where("user_id = ?", user.ID)
		}
		if err := query.First(&order).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("order not found"))
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// GET /admin/orders
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Model(&models.Order{}).
			Preload("Items").
			Order("created_at DESC")

		page, size := pagination.Params(c)
		resp, err := pagination.Paginate[models.Order](query, page, size)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// UpdateOrderStatus validates the value against the five allowed statuses
// and applies it. Any status may move to any other: there is no transition
// graph here, a documented looseness carried over deliberately rather than
// tightened.
func UpdateOrderStatus(db *gorm.DB, actorID uint, orderID string, newStatus models.OrderStatus) (*models.Order, error) {
	if !models.ValidOrderStatus(newStatus) {
		return nil, apperr.InvalidStatus(fmt.Sprintf("invalid status %q", newStatus))
	}

	var order models.Order
	if err := db.First(&order, "id = ?", orderID).Error; err != nil {
		return nil, apperr.NotFound("order not found")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order).Update("status", newStatus).Error; err != nil {
			return err
		}
		return models.RecordAudit(tx, actorID, "update_status", "order", order.ID,
			gin.H{"status": newStatus})
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// PUT /admin/orders/:orderID/status
func UpdateOrderStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin := middleware.CurrentUser(c)

		var req struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Validation("status is required"))
			return
		}

		order, err := UpdateOrderStatus(db, admin.ID, c.Param("orderID"), models.OrderStatus(req.Status))
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", order.UserID).Error; err == nil {
			email.Send(user.Email, "Order Status Update", "order_status_update_email.html", gin.H{
				"FullName": user.FullName,
				"OrderRef": order.OrderRef,
				"Status":   order.Status,
			})
		}
		BroadcastOrderEvent("order.status", order)

		c.JSON(http.StatusOK, order)
	}
}

// DELETE /admin/orders/:orderID soft deletes an order and audits it.
func DeleteOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin := middleware.CurrentUser(c)

		var order models.Order
		if err := db.First(&order, "id = ?", c.Param("orderID")).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("order not found"))
			return
		}
		if err := models.SoftDeleteOrder(db, admin.ID, &order); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
