package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"

	"freelance-backend/internal/database"
	"freelance-backend/internal/models"
)

// SelectWinningBid returns the bid with the lowest amount. Ties go to the
// earliest bid, then to the lowest id. It returns nil for an empty slice.
func SelectWinningBid(bids []models.Bid) *models.Bid {
	var best *models.Bid
	for i := range bids {
		if best == nil || bidLess(&bids[i], best) {
			best = &bids[i]
		}
	}
	return best
}

func bidLess(a, b *models.Bid) bool {
	if c := a.Amount.Cmp(b.Amount); c != 0 {
		return c < 0
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// RecomputeWinningBid sets the project's winning bid to the current lowest
// bid, or clears it when no bids remain. It does not touch the status.
//
// It must run in the transaction that changed the bids, after the project
// row has been locked with GetProjectForUpdate.
func RecomputeWinningBid(ctx context.Context, q database.Querier, projectID uuid.UUID) (uuid.NullUUID, error) {
	bids, err := q.ListBidsForProject(ctx, projectID)
	if err != nil {
		return uuid.NullUUID{}, fmt.Errorf("failed to load bids for ranking: %w", err)
	}

	var winner uuid.NullUUID
	if best := SelectWinningBid(bids); best != nil {
		winner = uuid.NullUUID{UUID: best.ID, Valid: true}
	}

	if err := q.SetWinningBid(ctx, projectID, winner); err != nil {
		return uuid.NullUUID{}, err
	}
	return winner, nil
}
