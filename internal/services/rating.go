package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"freelance-backend/internal/database"
)

// MeanRating is the arithmetic mean of ratings rounded to 2 decimal places.
func MeanRating(ratings []int) decimal.Decimal {
	if len(ratings) == 0 {
		return decimal.Zero
	}
	var sum int64
	for _, r := range ratings {
		sum += int64(r)
	}
	return decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(int64(len(ratings))), 2)
}

// RecomputeFreelancerRating stores the mean rating and count of the
// freelancer's completed projects. With no completed projects the stored
// rating is left as is and false is returned.
//
// It locks the freelancer's user row first so that two projects completing
// concurrently for the same freelancer cannot both write a stale mean.
func RecomputeFreelancerRating(ctx context.Context, q database.Querier, freelancerID uuid.UUID) (bool, error) {
	if err := q.LockUser(ctx, freelancerID); err != nil {
		return false, err
	}

	ratings, err := q.ListCompletedRatings(ctx, freelancerID)
	if err != nil {
		return false, fmt.Errorf("failed to load ratings: %w", err)
	}
	if len(ratings) == 0 {
		return false, nil
	}

	if err := q.SaveProfileRating(ctx, freelancerID, MeanRating(ratings), len(ratings)); err != nil {
		return false, err
	}
	return true, nil
}
