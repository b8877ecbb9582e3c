// Package paymentControllers integrates the two external payment
// providers: intent creation on behalf of an authenticated user, and
// webhook verification plus the idempotent pending→paid transition.
package paymentControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Adeleye080/DShop/apperr"
	orderControllers "github.com/Adeleye080/DShop/controllers/order"
	"github.com/Adeleye080/DShop/email"
	"github.com/Adeleye080/DShop/middleware"
	"github.com/Adeleye080/DShop/models"
)

var httpClient = &http.Client{Timeout: 15 * time.Second}

func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// ConfirmPayment applies a verified provider confirmation to an order.
//
// The order row is locked inside the transaction so concurrent deliveries
// of the same event serialize. Only a pending order mutates: it moves to
// paid and exactly one PaymentTransaction row is written. Any other status
// (including paid from an earlier delivery) is a no-op, so providers can
// redeliver freely. A nil order return with nil error means the order does
// not exist; callers still acknowledge the provider in that case.
//
// Errors are only returned for storage failures. The caller must NOT
// acknowledge those, so the provider redelivers.
func ConfirmPayment(db *gorm.DB, orderID uint, provider, transactionID, status string,
	amount decimal.Decimal, rawPayload []byte) (*models.Order, bool, error) {

	var order models.Order
	confirmed := false

	err := db.Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).First(&order, "id = ?", orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err != nil {
			return err
		}

		if order.Status != models.OrderStatusPending {
			return nil // duplicate delivery or out-of-band transition
		}

		if err := tx.Model(&order).Update("status", models.OrderStatusPaid).Error; err != nil {
			return err
		}
		txn := models.PaymentTransaction{
			OrderID:       order.ID,
			Provider:      provider,
			TransactionID: transactionID,
			Status:        status,
			Amount:        amount,
			RawResponse:   datatypes.JSON(rawPayload),
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}
		confirmed = true
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &order, confirmed, nil
}

// notifyPaymentReceived sends the receipt and pushes the feed event after a
// real transition.
func notifyPaymentReceived(db *gorm.DB, order *models.Order, provider, transactionID string, amount decimal.Decimal) {
	var user models.User
	if err := db.First(&user, "id = ?", order.UserID).Error; err == nil {
		email.Send(user.Email, "Payment Receipt", "payment_receipt_email.html", gin.H{
			"FullName":      user.FullName,
			"OrderRef":      order.OrderRef,
			"Amount":        amount.StringFixed(2),
			"Provider":      provider,
			"TransactionID": transactionID,
		})
	}
	orderControllers.BroadcastOrderEvent("order.paid", order)
}

// pendingOrderForUser loads an order owned by the caller and enforces the
// pre-provider guards shared by both intent endpoints.
func pendingOrderForUser(c *gin.Context, db *gorm.DB) (*models.Order, bool) {
	user := middleware.CurrentUser(c)

	var order models.Order
	if err := db.Where("id = ? AND user_id = ?", c.Param("orderID"), user.ID).
		First(&order).Error; err != nil {
		apperr.Respond(c, apperr.NotFound("order not found"))
		return nil, false
	}
	if order.Status != models.OrderStatusPending {
		apperr.Respond(c, apperr.Conflict("order already paid or cancelled"))
		return nil, false
	}
	return &order, true
}
