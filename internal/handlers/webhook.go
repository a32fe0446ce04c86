package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"freelance-backend/internal/models"
	"freelance-backend/internal/processor"
	"freelance-backend/internal/services"
)

// Stripe caps webhook payloads well below this.
const maxWebhookBody = 1 << 16

type WebhookHandler struct {
	secret   string
	payments *services.PaymentService
	logger   *zap.Logger
}

func NewWebhookHandler(secret string, payments *services.PaymentService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{secret: secret, payments: payments, logger: logger}
}

// HandleStripeWebhook godoc
// @Summary     Stripe webhook endpoint
// @Description Receives payment intent events from Stripe. Verified with the Stripe-Signature header. Succeeded and failed intents settle the matching pending payment.
// @Tags        webhooks
// @Accept      json
// @Produce     json
// @Param       Stripe-Signature header string true "Stripe webhook signature"
// @Success     200 {object} map[string]string "status"
// @Failure     400 {object} models.ErrorResponse
// @Router      /webhooks/stripe [post]
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	if h.secret == "" {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "webhook secret not configured"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read request body",
			Message: err.Error(),
		})
		return
	}

	event, err := processor.ParseEvent(body, c.GetHeader("Stripe-Signature"), h.secret)
	if err != nil {
		h.logger.Warn("rejected stripe webhook", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid webhook",
			Message: err.Error(),
		})
		return
	}

	if event.Status == "" {
		h.logger.Debug("ignoring stripe event", zap.String("event_id", event.ID), zap.String("type", event.Type))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	changed, err := h.payments.HandleProcessorEvent(c.Request.Context(), event.IntentID, event.Status)
	if err != nil {
		// non-2xx makes Stripe retry delivery
		writeError(c, err)
		return
	}

	status := "ok"
	if !changed {
		status = "ignored"
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
