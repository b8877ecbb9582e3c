package paymentControllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Adeleye080/DShop/apperr"
)

const stripeSignatureTolerance = 5 * time.Minute

func stripeAPIURL() string {
	if u := os.Getenv("STRIPE_API_URL"); u != "" {
		return u
	}
	return "https://api.stripe.com/v1"
}

type stripeIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Error        *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// CreateStripeIntent creates a payment intent for a pending order. A client
// supplied Idempotency-Key header is forwarded verbatim so retried requests
// never create duplicate charges.
//
// POST /payments/stripe/:orderID
func CreateStripeIntent(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, ok := pendingOrderForUser(c, db)
		if !ok {
			return
		}

		secretKey := os.Getenv("STRIPE_SECRET_KEY")
		if secretKey == "" {
			apperr.Respond(c, apperr.External("stripe configuration missing"))
			return
		}

		// Stripe amounts are integer cents.
		cents := order.TotalAmount.Mul(decimal.NewFromInt(100)).IntPart()
		form := url.Values{}
		form.Set("amount", strconv.FormatInt(cents, 10))
		form.Set("currency", "usd")
		form.Set("metadata[order_id]", strconv.FormatUint(uint64(order.ID), 10))
		form.Set("metadata[user_id]", strconv.FormatUint(uint64(order.UserID), 10))

		req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost,
			stripeAPIURL()+"/payment_intents", strings.NewReader(form.Encode()))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer "+secretKey)
		if key := c.GetHeader("Idempotency-Key"); key != "" {
			req.Header.Set("Idempotency-Key", key)
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			apperr.Respond(c, apperr.External("failed to reach stripe: "+err.Error()))
			return
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var intent stripeIntentResponse
		if err := json.Unmarshal(body, &intent); err != nil {
			apperr.Respond(c, apperr.External("failed to parse stripe response"))
			return
		}
		if resp.StatusCode != http.StatusOK || intent.Error != nil {
			msg := "stripe payment intent creation failed"
			if intent.Error != nil {
				msg = "stripe error: " + intent.Error.Message
			}
			apperr.Respond(c, apperr.External(msg))
			return
		}

		c.JSON(http.StatusOK, gin.H{"client_secret": intent.ClientSecret})
	}
}

// VerifyStripeSignature checks the Stripe-Signature header
// ("t=<unix>,v1=<hex hmac>") against HMAC-SHA256(secret, "<t>.<payload>").
// The timestamp must be within tolerance and the comparison is
// constant-time.
func VerifyStripeSignature(payload []byte, header, secret string, now time.Time) error {
	var timestamp string
	var candidates []string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			candidates = append(candidates, value)
		}
	}
	if timestamp == "" || len(candidates) == 0 {
		return apperr.InvalidSignature("malformed signature header")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return apperr.InvalidSignature("malformed signature timestamp")
	}
	age := now.Sub(time.Unix(ts, 0))
	if age > stripeSignatureTolerance || age < -stripeSignatureTolerance {
		return apperr.InvalidSignature("signature timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, candidate := range candidates {
		if hmac.Equal([]byte(expected), []byte(candidate)) {
			return nil
		}
	}
	return apperr.InvalidSignature("signature mismatch")
}

type stripeEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Amount   int64             `json:"amount"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// StripeWebhookHandler verifies the event signature before any state read,
// then applies the idempotent confirmation. Once the signature passes, the
// provider always gets a 2xx unless the mutation failed to commit.
//
// POST /payments/stripe/webhook
func StripeWebhookHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			apperr.Respond(c, apperr.Validation("failed to read payload"))
			return
		}

		secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		if secret == "" {
			// Verifying against an empty key would accept forged events.
			apperr.Respond(c, apperr.External("stripe webhook secret missing"))
			return
		}
		sigHeader := c.GetHeader("Stripe-Signature")
		if err := VerifyStripeSignature(payload, sigHeader, secret, time.Now()); err != nil {
			apperr.Respond(c, err)
			return
		}

		var event stripeEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			apperr.Respond(c, apperr.Validation("malformed event payload"))
			return
		}

		if event.Type != "payment_intent.succeeded" {
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}

		orderID, err := strconv.ParseUint(event.Data.Object.Metadata["order_id"], 10, 64)
		if err != nil {
			// Verified but not ours; ack so the provider stops retrying.
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}
		amount := decimal.NewFromInt(event.Data.Object.Amount).
			Div(decimal.NewFromInt(100))

		order, confirmed, err := ConfirmPayment(db, uint(orderID), "stripe",
			event.Data.Object.ID, "succeeded", amount, payload)
		if err != nil {
			apperr.Respond(c, fmt.Errorf("stripe confirmation for order %d: %w", orderID, err))
			return
		}
		if confirmed {
			notifyPaymentReceived(db, order, "stripe", event.Data.Object.ID, amount)
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
