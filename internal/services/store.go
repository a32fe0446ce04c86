package services

import (
	"context"

	"freelance-backend/internal/database"
)

// Store is the entity store the services run against. Reads made directly on
// the store autocommit; lifecycle operations go through InTx.
type Store interface {
	database.Querier
	InTx(ctx context.Context, fn func(q database.Querier) error) error
}
