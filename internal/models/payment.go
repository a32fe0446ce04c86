package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type Payment struct {
	ID                   uuid.UUID
	UserID               uuid.UUID
	ProjectID            uuid.UUID
	Amount               decimal.Decimal
	Status               PaymentStatus
	TransactionReference string
	ExternalIntentID     sql.NullString
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
