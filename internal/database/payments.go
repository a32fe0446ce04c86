package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"freelance-backend/internal/models"
)

const paymentSelect = `
	SELECT id, user_id, project_id, amount, status, transaction_reference,
	       external_intent_id, created_at, updated_at
	FROM payments`

func scanPayment(row rowScanner) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(
		&p.ID, &p.UserID, &p.ProjectID, &p.Amount, &p.Status, &p.TransactionReference,
		&p.ExternalIntentID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (q *Queries) CreatePayment(ctx context.Context, payment *models.Payment) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO payments (user_id, project_id, amount, status, transaction_reference)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, payment.UserID, payment.ProjectID, payment.Amount, payment.Status,
		payment.TransactionReference).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", mapError(err))
	}
	return nil
}

func (q *Queries) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	payment, err := scanPayment(q.db.QueryRowContext(ctx, paymentSelect+`
		WHERE id = $1
	`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", mapError(err))
	}
	return payment, nil
}

func (q *Queries) GetPaymentByIntentID(ctx context.Context, intentID string) (*models.Payment, error) {
	payment, err := scanPayment(q.db.QueryRowContext(ctx, paymentSelect+`
		WHERE external_intent_id = $1
	`, intentID))
	if err != nil {
		return nil, fmt.Errorf("failed to get payment by intent: %w", mapError(err))
	}
	return payment, nil
}

func (q *Queries) ListPaymentsByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	rows, err := q.db.QueryContext(ctx, paymentSelect+`
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", mapError(err))
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (q *Queries) SetPaymentIntent(ctx context.Context, id uuid.UUID, intentID string) error {
	return q.execOne(ctx, "set payment intent", `
		UPDATE payments
		SET external_intent_id = $1, updated_at = NOW()
		WHERE id = $2
	`, intentID, id)
}

// TransitionPaymentStatus moves the payment from one status to another and
// reports false when the payment was not in the expected status.
func (q *Queries) TransitionPaymentStatus(ctx context.Context, id uuid.UUID, from, to models.PaymentStatus) (bool, error) {
	result, err := q.db.ExecContext(ctx, `
		UPDATE payments
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return false, fmt.Errorf("failed to update payment status: %w", mapError(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to update payment status: %w", err)
	}
	return affected > 0, nil
}
