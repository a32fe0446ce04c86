package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"freelance-backend/internal/models"
	"freelance-backend/internal/services"
)

type PaymentsHandler struct {
	svc *services.PaymentService
}

func NewPaymentsHandler(svc *services.PaymentService) *PaymentsHandler {
	return &PaymentsHandler{svc: svc}
}

// ListPayments godoc
// @Summary     List my payments
// @Description Returns the caller's payments, newest first
// @Tags        payments
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.PaymentListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /payments [get]
func (h *PaymentsHandler) ListPayments(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	payments, err := h.svc.ListPayments(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := models.PaymentListResponse{Payments: make([]models.PaymentResponse, 0, len(payments))}
	for i := range payments {
		resp.Payments = append(resp.Payments, models.NewPaymentResponse(&payments[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// CreatePayment godoc
// @Summary     Create a payment
// @Description Records a pending payment for a project with an accepted bid. Project client only.
// @Tags        payments
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreatePaymentRequest true "Payment"
// @Success     201 {object} models.PaymentResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /payments [post]
func (h *PaymentsHandler) CreatePayment(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var req models.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		writeError(c, services.NewInvalidReferenceError("project not found"))
		return
	}

	payment, err := h.svc.CreatePayment(c.Request.Context(), caller, projectID, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewPaymentResponse(payment))
}

// GetPayment godoc
// @Summary     Get a payment
// @Tags        payments
// @Produce     json
// @Security    Bearer
// @Param       payment_id path string true "Payment ID (UUID)"
// @Success     200 {object} models.PaymentResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /payments/{payment_id} [get]
func (h *PaymentsHandler) GetPayment(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	paymentID, ok := pathID(c, "payment_id", "payment")
	if !ok {
		return
	}

	payment, err := h.svc.GetPayment(c.Request.Context(), caller, paymentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewPaymentResponse(payment))
}

// CreateIntent godoc
// @Summary     Create a payment intent
// @Description Creates a Stripe payment intent for a pending payment and returns its client secret
// @Tags        payments
// @Produce     json
// @Security    Bearer
// @Param       payment_id path string true "Payment ID (UUID)"
// @Success     200 {object} models.PaymentIntentResponse
// @Failure     400 {object} models.ErrorResponse "Payment processor error"
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /payments/{payment_id}/intent [post]
func (h *PaymentsHandler) CreateIntent(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	paymentID, ok := pathID(c, "payment_id", "payment")
	if !ok {
		return
	}

	secret, err := h.svc.CreateIntent(c.Request.Context(), caller, paymentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.PaymentIntentResponse{ClientSecret: secret})
}
