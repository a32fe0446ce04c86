package processor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"freelance-backend/internal/services"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *StripeClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewStripeClient(Config{SecretKey: "sk_test_123", APIURL: srv.URL}, zaptest.NewLogger(t))
}

func TestStripeClient_CreateIntent(t *testing.T) {
	var form map[string][]string
	var idempotencyKey string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		idempotencyKey = r.Header.Get("Idempotency-Key")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","client_secret":"pi_123_secret_abc","amount":80050,"currency":"usd"}`))
	})

	result, err := client.CreateIntent(context.Background(), services.IntentRequest{
		AmountMinorUnits: 80050,
		Currency:         "usd",
		Metadata:         map[string]string{"payment_id": "p-1"},
		IdempotencyKey:   "payment-intent-ref",
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", result.IntentID)
	assert.Equal(t, "pi_123_secret_abc", result.ClientSecret)

	assert.Equal(t, []string{"80050"}, form["amount"])
	assert.Equal(t, []string{"usd"}, form["currency"])
	assert.Equal(t, []string{"card"}, form["payment_method_types[0]"])
	assert.Equal(t, []string{"p-1"}, form["metadata[payment_id]"])
	assert.Equal(t, "payment-intent-ref", idempotencyKey)
}

func TestStripeClient_CreateIntent_StripeError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	})

	_, err := client.CreateIntent(context.Background(), services.IntentRequest{AmountMinorUnits: 100, Currency: "usd"})
	require.Error(t, err)

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "Your card was declined.", pe.Message)
	assert.Equal(t, "card_declined", pe.Code)
	assert.Equal(t, "Your card was declined.", err.Error())
}
