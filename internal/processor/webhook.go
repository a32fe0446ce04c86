package processor

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"freelance-backend/internal/models"
)

const (
	eventIntentSucceeded = "payment_intent.succeeded"
	eventIntentFailed    = "payment_intent.payment_failed"
)

// Event is a verified processor notification about a payment intent.
// Status is empty for event types that do not settle a payment.
type Event struct {
	ID       string
	Type     string
	IntentID string
	Status   models.PaymentStatus
}

// ParseEvent verifies the Stripe-Signature header and decodes the event.
func ParseEvent(payload []byte, signature, secret string) (*Event, error) {
	raw, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to verify webhook: %w", err)
	}

	event := &Event{ID: raw.ID, Type: string(raw.Type)}
	switch event.Type {
	case eventIntentSucceeded:
		event.Status = models.PaymentStatusCompleted
	case eventIntentFailed:
		event.Status = models.PaymentStatusFailed
	default:
		return event, nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(raw.Data.Raw, &intent); err != nil {
		return nil, fmt.Errorf("failed to decode payment intent: %w", err)
	}
	if intent.ID == "" {
		return nil, fmt.Errorf("payment intent event %s has no intent id", raw.ID)
	}
	event.IntentID = intent.ID
	return event, nil
}
