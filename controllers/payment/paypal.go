package paymentControllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Adeleye080/DShop/apperr"
	"github.com/Adeleye080/DShop/models"
)

func paypalAPIURL() string {
	if u := os.Getenv("PAYPAL_API_URL"); u != "" {
		return u
	}
	return "https://api.sandbox.paypal.com"
}

// paypalAccessToken exchanges the client credentials for a bearer token.
func paypalAccessToken() (string, error) {
	clientID := os.Getenv("PAYPAL_CLIENT_ID")
	clientSecret := os.Getenv("PAYPAL_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		return "", fmt.Errorf("paypal configuration missing")
	}

	req, err := http.NewRequest(http.MethodPost, paypalAPIURL()+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(clientID, clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach paypal: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil || tokenResp.AccessToken == "" {
		return "", fmt.Errorf("failed to parse paypal token response")
	}
	return tokenResp.AccessToken, nil
}

type paypalPaymentResponse struct {
	ID    string `json:"id"`
	Links []struct {
		Rel  string `json:"rel"`
		Href string `json:"href"`
	} `json:"links"`
}

// CreatePayPalPayment creates an approval flow for a pending order. Unlike
// the Stripe flow, a second initiation for the same order is rejected once
// a transaction row exists. The generated PayPal-Request-Id header is the
// provider-side dedup key for network retries.
//
// POST /payments/paypal/:orderID
func CreatePayPalPayment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, ok := pendingOrderForUser(c, db)
		if !ok {
			return
		}

		var existing models.PaymentTransaction
		err := db.Where("order_id = ? AND provider = ?", order.ID, "paypal").
			First(&existing).Error
		if err == nil {
			apperr.Respond(c, apperr.Conflict("payment already initiated for this order"))
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.Respond(c, err)
			return
		}

		token, err := paypalAccessToken()
		if err != nil {
			apperr.Respond(c, apperr.External(err.Error()))
			return
		}

		base := os.Getenv("APP_BASE_URL")
		payload := map[string]interface{}{
			"intent": "sale",
			"payer":  map[string]string{"payment_method": "paypal"},
			"redirect_urls": map[string]string{
				"return_url": fmt.Sprintf("%s/payments/paypal/confirm/%d", base, order.ID),
				"cancel_url": fmt.Sprintf("%s/payments/paypal/cancel/%d", base, order.ID),
			},
			"transactions": []map[string]interface{}{{
				"amount": map[string]string{
					"total":    order.TotalAmount.StringFixed(2),
					"currency": "USD",
				},
				"invoice_number": strconv.FormatUint(uint64(order.ID), 10),
				"description":    "Order " + order.OrderRef,
			}},
		}
		jsonData, _ := json.Marshal(payload)

		req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost,
			paypalAPIURL()+"/v1/payments/payment", bytes.NewBuffer(jsonData))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		if key := c.GetHeader("Idempotency-Key"); key != "" {
			req.Header.Set("PayPal-Request-Id", key)
		} else {
			req.Header.Set("PayPal-Request-Id", uuid.NewString())
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			apperr.Respond(c, apperr.External("failed to reach paypal: "+err.Error()))
			return
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
			apperr.Respond(c, apperr.External(fmt.Sprintf("paypal API error (%d)", resp.StatusCode)))
			return
		}

		var payment paypalPaymentResponse
		if err := json.Unmarshal(body, &payment); err != nil {
			apperr.Respond(c, apperr.External("failed to parse paypal response"))
			return
		}
		for _, link := range payment.Links {
			if link.Rel == "approval_url" {
				c.JSON(http.StatusOK, gin.H{"approval_url": link.Href})
				return
			}
		}
		apperr.Respond(c, apperr.External("paypal returned no approval URL"))
	}
}

// PayPalReturnHandler lands the buyer after provider approval. The order
// is not touched here; payment state only ever changes through the
// verified webhook.
//
// GET /payments/paypal/confirm/:orderID
func PayPalReturnHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var order models.Order
		if err := db.First(&order, "id = ?", c.Param("orderID")).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("order not found"))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"order_ref": order.OrderRef,
			"status":    order.Status,
			"message":   "payment approved, confirmation is processed shortly",
		})
	}
}

// GET /payments/paypal/cancel/:orderID
func PayPalCancelHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var order models.Order
		if err := db.First(&order, "id = ?", c.Param("orderID")).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("order not found"))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"order_ref": order.OrderRef,
			"status":    order.Status,
			"message":   "payment was cancelled before approval",
		})
	}
}

// verifyPayPalWebhook asks the provider to validate the delivery using the
// transmission headers. Anything but SUCCESS is treated as a forged
// payload.
func verifyPayPalWebhook(c *gin.Context, rawEvent []byte) error {
	verifyURL := os.Getenv("PAYPAL_WEBHOOK_VERIFY_URL")
	if verifyURL == "" {
		verifyURL = paypalAPIURL() + "/v1/notifications/verify-webhook-signature"
	}

	token, err := paypalAccessToken()
	if err != nil {
		return apperr.External(err.Error())
	}

	verifyPayload := map[string]interface{}{
		"auth_algo":         c.GetHeader("Paypal-Auth-Algo"),
		"cert_url":          c.GetHeader("Paypal-Cert-Url"),
		"transmission_id":   c.GetHeader("Paypal-Transmission-Id"),
		"transmission_sig":  c.GetHeader("Paypal-Transmission-Sig"),
		"transmission_time": c.GetHeader("Paypal-Transmission-Time"),
		"webhook_id":        os.Getenv("PAYPAL_WEBHOOK_ID"),
		"webhook_event":     json.RawMessage(rawEvent),
	}
	jsonData, _ := json.Marshal(verifyPayload)

	req, err := http.NewRequest(http.MethodPost, verifyURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return apperr.External("failed to reach paypal verification: " + err.Error())
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var verification struct {
		VerificationStatus string `json:"verification_status"`
	}
	if resp.StatusCode != http.StatusOK || json.Unmarshal(body, &verification) != nil ||
		verification.VerificationStatus != "SUCCESS" {
		return apperr.InvalidSignature("invalid paypal webhook signature")
	}
	return nil
}

type paypalEvent struct {
	EventType string `json:"event_type"`
	Resource  struct {
		ID            string `json:"id"`
		InvoiceNumber string `json:"invoice_number"`
		Amount        struct {
			Total string `json:"total"`
		} `json:"amount"`
	} `json:"resource"`
}

// POST /payments/paypal/webhook
func PayPalWebhookHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			apperr.Respond(c, apperr.Validation("failed to read payload"))
			return
		}

		if err := verifyPayPalWebhook(c, payload); err != nil {
			apperr.Respond(c, err)
			return
		}

		var event paypalEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			apperr.Respond(c, apperr.Validation("malformed event payload"))
			return
		}

		if event.EventType != "PAYMENT.SALE.COMPLETED" {
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}

		orderID, err := strconv.ParseUint(event.Resource.InvoiceNumber, 10, 64)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}
		amount, err := decimal.NewFromString(event.Resource.Amount.Total)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}

		order, confirmed, err := ConfirmPayment(db, uint(orderID), "paypal",
			event.Resource.ID, "completed", amount, payload)
		if err != nil {
			apperr.Respond(c, fmt.Errorf("paypal confirmation for order %d: %w", orderID, err))
			return
		}
		if confirmed {
			notifyPaymentReceived(db, order, "paypal", event.Resource.ID, amount)
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
