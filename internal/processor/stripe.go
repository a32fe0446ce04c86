// Package processor talks to Stripe: it creates payment intents and
// verifies webhook events.
package processor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"

	"freelance-backend/internal/metrics"
	"freelance-backend/internal/services"
)

// Error is a processor failure. Message is the processor's own user-facing text.
type Error struct {
	Message string
	Code    string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Config struct {
	SecretKey string
	// APIURL overrides the Stripe API endpoint. Empty means the live API.
	APIURL     string
	HTTPClient *http.Client
}

type StripeClient struct {
	api    *client.API
	logger *zap.Logger
}

var _ services.PaymentProcessor = (*StripeClient)(nil)

func NewStripeClient(cfg Config, logger *zap.Logger) *StripeClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	var backends *stripe.Backends
	if cfg.APIURL != "" {
		backendCfg := &stripe.BackendConfig{
			HTTPClient:        httpClient,
			URL:               stripe.String(cfg.APIURL),
			MaxNetworkRetries: stripe.Int64(0),
		}
		backends = &stripe.Backends{
			API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
			Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendCfg),
			Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendCfg),
		}
	} else {
		backends = stripe.NewBackends(httpClient)
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, backends)
	return &StripeClient{api: api, logger: logger}
}

// CreateIntent creates a card payment intent.
func (c *StripeClient) CreateIntent(ctx context.Context, req services.IntentRequest) (*services.IntentResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.AmountMinorUnits),
		Currency:           stripe.String(req.Currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	start := time.Now()
	intent, err := c.api.PaymentIntents.New(params)
	if err != nil {
		metrics.RecordProcessorCall("error", time.Since(start))
		return nil, c.translate(err)
	}
	metrics.RecordProcessorCall("ok", time.Since(start))

	c.logger.Debug("stripe payment intent created",
		zap.String("intent_id", intent.ID),
		zap.Int64("amount", req.AmountMinorUnits),
		zap.String("currency", req.Currency),
	)
	return &services.IntentResult{IntentID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

func (c *StripeClient) translate(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		c.logger.Warn("stripe request failed",
			zap.String("type", string(se.Type)),
			zap.String("code", string(se.Code)),
			zap.Int("http_status", se.HTTPStatusCode),
			zap.String("request_id", se.RequestID),
		)
		msg := se.Msg
		if msg == "" {
			msg = "payment processor request failed"
		}
		return &Error{Message: msg, Code: string(se.Code), Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return &Error{Message: "payment processor is unavailable", Err: err}
}
