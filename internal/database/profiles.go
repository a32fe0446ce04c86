package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"freelance-backend/internal/models"
)

func (q *Queries) GetProfile(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error) {
	var profile models.FreelancerProfile
	err := q.db.QueryRowContext(ctx, `
		SELECT fp.user_id, u.username, fp.skills, fp.rating, fp.total_projects
		FROM freelancer_profiles fp
		JOIN users u ON u.id = fp.user_id
		WHERE fp.user_id = $1
	`, userID).Scan(&profile.UserID, &profile.Username, &profile.Skills, &profile.Rating, &profile.TotalProjects)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", mapError(err))
	}
	return &profile, nil
}

func (q *Queries) UpsertProfileSkills(ctx context.Context, userID uuid.UUID, skills string) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO freelancer_profiles (user_id, skills)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET skills = EXCLUDED.skills
	`, userID, skills)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", mapError(err))
	}
	return nil
}

// SaveProfileRating stores the aggregate rating, creating the profile if needed.
func (q *Queries) SaveProfileRating(ctx context.Context, userID uuid.UUID, rating decimal.Decimal, totalProjects int) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO freelancer_profiles (user_id, skills, rating, total_projects)
		VALUES ($1, '', $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET rating = EXCLUDED.rating, total_projects = EXCLUDED.total_projects
	`, userID, rating, totalProjects)
	if err != nil {
		return fmt.Errorf("failed to save profile rating: %w", mapError(err))
	}
	return nil
}

// ListCompletedRatings returns the ratings of completed projects won by the freelancer.
func (q *Queries) ListCompletedRatings(ctx context.Context, freelancerID uuid.UUID) ([]int, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT p.freelancer_rating
		FROM projects p
		JOIN bids b ON b.id = p.winning_bid_id
		WHERE b.freelancer_id = $1
		  AND p.status = 'completed'
		  AND p.freelancer_rating IS NOT NULL
	`, freelancerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", mapError(err))
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	return ratings, nil
}
