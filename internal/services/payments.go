package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"freelance-backend/internal/metrics"
	"freelance-backend/internal/models"
)

// IntentRequest is what the payment processor needs to create an intent.
type IntentRequest struct {
	AmountMinorUnits int64
	Currency         string
	Metadata         map[string]string
	IdempotencyKey   string
}

type IntentResult struct {
	IntentID     string
	ClientSecret string
}

// PaymentProcessor creates payment intents with an external processor.
type PaymentProcessor interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*IntentResult, error)
}

// IntentLocker guards against concurrent intent creation for one payment.
// Acquire reports false when another caller already holds the lock.
type IntentLocker interface {
	Acquire(ctx context.Context, paymentID uuid.UUID) (release func(), ok bool)
}

type PaymentConfig struct {
	Currency string
	Timeout  time.Duration
}

type PaymentService struct {
	store     Store
	processor PaymentProcessor
	locker    IntentLocker
	cfg       PaymentConfig
	logger    *zap.Logger
}

// NewPaymentService builds the gateway. locker may be nil.
func NewPaymentService(store Store, processor PaymentProcessor, locker IntentLocker, cfg PaymentConfig, logger *zap.Logger) *PaymentService {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &PaymentService{
		store:     store,
		processor: processor,
		locker:    locker,
		cfg:       cfg,
		logger:    logger,
	}
}

// MinorUnits converts an amount to the currency's minor unit (cents),
// dropping any fraction of a cent.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Truncate(0).IntPart()
}

// CreatePayment records a pending payment from a project's client. The
// project must already have an accepted bid.
func (s *PaymentService) CreatePayment(ctx context.Context, caller Identity, projectID uuid.UUID, amount decimal.Decimal) (*models.Payment, error) {
	if err := validateMoney("Payment amount", amount); err != nil {
		return nil, err
	}

	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, storeError(err, "project")
	}
	if project.ClientID != caller.UserID {
		return nil, NewPermissionDeniedError("Only the project client can pay for this project")
	}
	if !project.Status.Accepted() {
		return nil, NewIllegalTransitionError("Payments can only be made for projects with an accepted bid")
	}

	payment := &models.Payment{
		UserID:               caller.UserID,
		ProjectID:            projectID,
		Amount:               amount,
		Status:               models.PaymentStatusPending,
		TransactionReference: uuid.NewString(),
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		s.logger.Error("failed to create payment", zap.String("project_id", projectID.String()), zap.Error(err))
		return nil, storeError(err, "payment")
	}

	s.logger.Info("payment created",
		zap.String("payment_id", payment.ID.String()),
		zap.String("project_id", projectID.String()),
		zap.String("amount", amount.String()),
	)
	return payment, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, caller Identity, paymentID uuid.UUID) (*models.Payment, error) {
	payment, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, storeError(err, "payment")
	}
	if payment.UserID != caller.UserID {
		// do not reveal other users' payments
		return nil, NewInvalidReferenceError("payment not found")
	}
	return payment, nil
}

func (s *PaymentService) ListPayments(ctx context.Context, caller Identity) ([]models.Payment, error) {
	return s.store.ListPaymentsByUser(ctx, caller.UserID)
}

// CreateIntent asks the processor for a payment intent and stores its id on
// the payment. No store lock or transaction is held during the processor
// call, and a processor failure leaves the payment untouched.
func (s *PaymentService) CreateIntent(ctx context.Context, caller Identity, paymentID uuid.UUID) (clientSecret string, err error) {
	ctx, span := startSpan(ctx, "PaymentService.CreateIntent", attribute.String("payment.id", paymentID.String()))
	defer func() {
		metrics.RecordPaymentIntent(outcome(err))
		endSpan(span, err)
	}()

	payment, err := s.GetPayment(ctx, caller, paymentID)
	if err != nil {
		return "", err
	}
	if payment.Status != models.PaymentStatusPending {
		return "", NewIllegalTransitionError("Only pending payments can be paid")
	}

	if s.locker != nil {
		release, ok := s.locker.Acquire(ctx, paymentID)
		if !ok {
			return "", NewIllegalTransitionError("A payment intent is already being created for this payment")
		}
		defer release()
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	result, err := s.processor.CreateIntent(callCtx, IntentRequest{
		AmountMinorUnits: MinorUnits(payment.Amount),
		Currency:         s.cfg.Currency,
		Metadata:         map[string]string{"payment_id": payment.ID.String()},
		IdempotencyKey:   "payment-intent-" + payment.TransactionReference,
	})
	if err != nil {
		s.logger.Warn("payment processor rejected intent",
			zap.String("payment_id", paymentID.String()),
			zap.Error(err),
		)
		if errors.Is(err, context.DeadlineExceeded) {
			return "", NewExternalServiceError(errors.New("payment processor timed out"))
		}
		return "", NewExternalServiceError(err)
	}

	if err := s.store.SetPaymentIntent(ctx, paymentID, result.IntentID); err != nil {
		s.logger.Error("failed to store payment intent",
			zap.String("payment_id", paymentID.String()),
			zap.String("intent_id", result.IntentID),
			zap.Error(err),
		)
		return "", storeError(err, "payment")
	}

	s.logger.Info("payment intent created",
		zap.String("payment_id", paymentID.String()),
		zap.String("intent_id", result.IntentID),
	)
	return result.ClientSecret, nil
}

// HandleProcessorEvent settles a pending payment once the processor confirms
// or rejects its intent. It reports whether a payment changed state. Unknown
// intents and already settled payments are ignored.
func (s *PaymentService) HandleProcessorEvent(ctx context.Context, intentID string, status models.PaymentStatus) (bool, error) {
	if status != models.PaymentStatusCompleted && status != models.PaymentStatusFailed {
		return false, NewValidationError("unsupported payment status %q", status)
	}

	payment, err := s.store.GetPaymentByIntentID(ctx, intentID)
	if err != nil {
		if isNotFound(err) {
			s.logger.Info("ignoring event for unknown payment intent", zap.String("intent_id", intentID))
			return false, nil
		}
		return false, err
	}

	changed, err := s.store.TransitionPaymentStatus(ctx, payment.ID, models.PaymentStatusPending, status)
	if err != nil {
		s.logger.Error("failed to settle payment", zap.String("payment_id", payment.ID.String()), zap.Error(err))
		return false, err
	}
	if changed {
		s.logger.Info("payment settled",
			zap.String("payment_id", payment.ID.String()),
			zap.String("status", string(status)),
		)
	}
	return changed, nil
}
