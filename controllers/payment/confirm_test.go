package paymentControllers

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Adeleye080/DShop/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Order{}, &models.OrderItem{},
		&models.PaymentTransaction{}, &models.AuditLog{},
	))
	return db
}

func seedPendingOrder(t *testing.T, db *gorm.DB) *models.Order {
	t.Helper()
	user := &models.User{Email: "payer@example.com", HashedPassword: "x"}
	require.NoError(t, db.Create(user).Error)
	order := &models.Order{
		OrderRef:    "20260101000000-test",
		UserID:      user.ID,
		TotalAmount: decimal.RequireFromString("42.00"),
		Status:      models.OrderStatusPending,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestConfirmPaymentTransitionsPendingToPaid(t *testing.T) {
	db := newTestDB(t)
	order := seedPendingOrder(t, db)

	got, confirmed, err := ConfirmPayment(db, order.ID, "stripe", "pi_123", "succeeded",
		decimal.RequireFromString("42.00"), []byte(`{"id":"pi_123"}`))
	require.NoError(t, err)
	assert.True(t, confirmed)
	assert.Equal(t, models.OrderStatusPaid, got.Status)

	var txn models.PaymentTransaction
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&txn).Error)
	assert.Equal(t, "stripe", txn.Provider)
	assert.Equal(t, "pi_123", txn.TransactionID)
	assert.True(t, txn.Amount.Equal(decimal.RequireFromString("42.00")))
}

func TestConfirmPaymentDuplicateDeliveryIsNoOp(t *testing.T) {
	db := newTestDB(t)
	order := seedPendingOrder(t, db)

	payload := []byte(`{"id":"pi_dup"}`)
	amount := decimal.RequireFromString("42.00")

	_, confirmed, err := ConfirmPayment(db, order.ID, "stripe", "pi_dup", "succeeded", amount, payload)
	require.NoError(t, err)
	assert.True(t, confirmed)

	// Redelivery of the same event: no second transition, no second row.
	got, confirmed, err := ConfirmPayment(db, order.ID, "stripe", "pi_dup", "succeeded", amount, payload)
	require.NoError(t, err)
	assert.False(t, confirmed)
	assert.Equal(t, models.OrderStatusPaid, got.Status)

	var txns int64
	require.NoError(t, db.Model(&models.PaymentTransaction{}).
		Where("order_id = ?", order.ID).Count(&txns).Error)
	assert.Equal(t, int64(1), txns)
}

func TestConfirmPaymentUnknownOrderAcks(t *testing.T) {
	db := newTestDB(t)

	got, confirmed, err := ConfirmPayment(db, 9999, "paypal", "txn_x", "completed",
		decimal.RequireFromString("1.00"), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, confirmed)

	var txns int64
	require.NoError(t, db.Model(&models.PaymentTransaction{}).Count(&txns).Error)
	assert.Zero(t, txns)
}

func TestConfirmPaymentSkipsNonPendingOrder(t *testing.T) {
	db := newTestDB(t)
	order := seedPendingOrder(t, db)
	require.NoError(t, db.Model(order).
		Update("status", models.OrderStatusCancelled).Error)

	got, confirmed, err := ConfirmPayment(db, order.ID, "stripe", "pi_late", "succeeded",
		decimal.RequireFromString("42.00"), nil)
	require.NoError(t, err)
	assert.False(t, confirmed)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)

	var txns int64
	require.NoError(t, db.Model(&models.PaymentTransaction{}).Count(&txns).Error)
	assert.Zero(t, txns)
}
