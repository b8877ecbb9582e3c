package paymentControllers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Adeleye080/DShop/models"
)

func stripeWebhookRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhooks/stripe", StripeWebhookHandler(db))
	return r
}

func postStripeWebhook(r *gin.Engine, payload []byte, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", header)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStripeWebhookConfirmsOrder(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")
	db := newTestDB(t)
	order := seedPendingOrder(t, db)
	r := stripeWebhookRouter(db)

	payload := []byte(fmt.Sprintf(
		`{"type":"payment_intent.succeeded","data":{"object":{"id":"pi_ok","amount":4200,"metadata":{"order_id":"%d"}}}}`,
		order.ID))
	w := postStripeWebhook(r, payload, signStripe(payload, "whsec_test", time.Now()))

	assert.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, models.OrderStatusPaid, reloaded.Status)

	var txns int64
	require.NoError(t, db.Model(&models.PaymentTransaction{}).Count(&txns).Error)
	assert.Equal(t, int64(1), txns)
}

func TestStripeWebhookForgedSignatureNeverMutates(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")
	db := newTestDB(t)
	order := seedPendingOrder(t, db)
	r := stripeWebhookRouter(db)

	payload := []byte(fmt.Sprintf(
		`{"type":"payment_intent.succeeded","data":{"object":{"id":"pi_forged","amount":4200,"metadata":{"order_id":"%d"}}}}`,
		order.ID))
	w := postStripeWebhook(r, payload, signStripe(payload, "whsec_wrong", time.Now()))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, models.OrderStatusPending, reloaded.Status)

	var txns int64
	require.NoError(t, db.Model(&models.PaymentTransaction{}).Count(&txns).Error)
	assert.Zero(t, txns)
}

func TestStripeWebhookDuplicateDelivery(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")
	db := newTestDB(t)
	order := seedPendingOrder(t, db)
	r := stripeWebhookRouter(db)

	payload := []byte(fmt.Sprintf(
		`{"type":"payment_intent.succeeded","data":{"object":{"id":"pi_dup","amount":4200,"metadata":{"order_id":"%d"}}}}`,
		order.ID))

	for i := 0; i < 2; i++ {
		w := postStripeWebhook(r, payload, signStripe(payload, "whsec_test", time.Now()))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	var txns int64
	require.NoError(t, db.Model(&models.PaymentTransaction{}).Count(&txns).Error)
	assert.Equal(t, int64(1), txns, "redelivery must not write a second transaction")
}

func TestStripeWebhookUnknownOrderStillAcks(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")
	db := newTestDB(t)
	r := stripeWebhookRouter(db)

	payload := []byte(`{"type":"payment_intent.succeeded","data":{"object":{"id":"pi_x","amount":100,"metadata":{"order_id":"424242"}}}}`)
	w := postStripeWebhook(r, payload, signStripe(payload, "whsec_test", time.Now()))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStripeWebhookUnconfiguredSecretNeverMutates(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "")
	db := newTestDB(t)
	order := seedPendingOrder(t, db)
	r := stripeWebhookRouter(db)

	// Signed with the empty string, which would match an empty HMAC key.
	payload := []byte(fmt.Sprintf(
		`{"type":"payment_intent.succeeded","data":{"object":{"id":"pi_noconf","amount":4200,"metadata":{"order_id":"%d"}}}}`,
		order.ID))
	w := postStripeWebhook(r, payload, signStripe(payload, "", time.Now()))

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, models.OrderStatusPending, reloaded.Status)

	var txns int64
	require.NoError(t, db.Model(&models.PaymentTransaction{}).Count(&txns).Error)
	assert.Zero(t, txns)
}

func TestStripeWebhookIgnoresOtherEventTypes(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")
	db := newTestDB(t)
	order := seedPendingOrder(t, db)
	r := stripeWebhookRouter(db)

	payload := []byte(fmt.Sprintf(
		`{"type":"payment_intent.created","data":{"object":{"id":"pi_new","amount":4200,"metadata":{"order_id":"%d"}}}}`,
		order.ID))
	w := postStripeWebhook(r, payload, signStripe(payload, "whsec_test", time.Now()))

	assert.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, models.OrderStatusPending, reloaded.Status)
}
