package paymentControllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adeleye080/DShop/apperr"
)

func signStripe(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts.Unix())
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyStripeSignature(t *testing.T) {
	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	secret := "whsec_test"
	now := time.Now()

	header := signStripe(payload, secret, now)
	require.NoError(t, VerifyStripeSignature(payload, header, secret, now))
}

func TestVerifyStripeSignatureWrongSecret(t *testing.T) {
	payload := []byte(`{}`)
	now := time.Now()

	header := signStripe(payload, "whsec_other", now)
	err := VerifyStripeSignature(payload, header, "whsec_test", now)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidSignature))
}

func TestVerifyStripeSignatureTamperedPayload(t *testing.T) {
	secret := "whsec_test"
	now := time.Now()

	header := signStripe([]byte(`{"amount":100}`), secret, now)
	err := VerifyStripeSignature([]byte(`{"amount":99900}`), header, secret, now)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidSignature))
}

func TestVerifyStripeSignatureStaleTimestamp(t *testing.T) {
	payload := []byte(`{}`)
	secret := "whsec_test"
	now := time.Now()

	header := signStripe(payload, secret, now.Add(-10*time.Minute))
	err := VerifyStripeSignature(payload, header, secret, now)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidSignature))
}

func TestVerifyStripeSignatureMalformedHeader(t *testing.T) {
	for _, header := range []string{"", "t=abc,v1=00", "v1=deadbeef", "t=123"} {
		err := VerifyStripeSignature([]byte(`{}`), header, "whsec_test", time.Now())
		assert.Error(t, err, "header %q", header)
	}
}

// Stripe sends multiple v1 candidates during secret rotation; one valid
// candidate is enough.
func TestVerifyStripeSignatureAcceptsExtraCandidates(t *testing.T) {
	payload := []byte(`{}`)
	secret := "whsec_test"
	now := time.Now()

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", now.Unix())
	mac.Write(payload)
	header := fmt.Sprintf("t=%d,v1=00,v1=%s", now.Unix(), hex.EncodeToString(mac.Sum(nil)))
	require.NoError(t, VerifyStripeSignature(payload, header, secret, now))
}
