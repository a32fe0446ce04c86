package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"freelance-backend/internal/models"
)

const bidSelect = `
	SELECT b.id, b.project_id, b.freelancer_id, u.username, COALESCE(fp.rating, 0),
	       b.amount, b.proposed_deadline, b.proposal_text, b.created_at, p.title, p.status
	FROM bids b
	JOIN users u ON u.id = b.freelancer_id
	JOIN projects p ON p.id = b.project_id
	LEFT JOIN freelancer_profiles fp ON fp.user_id = b.freelancer_id`

func scanBid(row rowScanner) (*models.Bid, error) {
	var b models.Bid
	err := row.Scan(
		&b.ID, &b.ProjectID, &b.FreelancerID, &b.FreelancerUsername, &b.FreelancerRating,
		&b.Amount, &b.ProposedDeadline, &b.ProposalText, &b.CreatedAt, &b.ProjectTitle, &b.ProjectStatus,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (q *Queries) CreateBid(ctx context.Context, bid *models.Bid) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO bids (project_id, freelancer_id, amount, proposed_deadline, proposal_text)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, bid.ProjectID, bid.FreelancerID, bid.Amount, bid.ProposedDeadline, bid.ProposalText).Scan(&bid.ID, &bid.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bid: %w", mapError(err))
	}
	return nil
}

func (q *Queries) GetBid(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	bid, err := scanBid(q.db.QueryRowContext(ctx, bidSelect+`
		WHERE b.id = $1
	`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get bid: %w", mapError(err))
	}
	return bid, nil
}

// ListBidsForProject returns the project's bids cheapest first; ties go to
// the earliest bid, then the lowest id.
func (q *Queries) ListBidsForProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error) {
	return q.listBids(ctx, bidSelect+`
		WHERE b.project_id = $1
		ORDER BY b.amount ASC, b.created_at ASC, b.id ASC
	`, projectID)
}

func (q *Queries) ListBidsByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Bid, error) {
	return q.listBids(ctx, bidSelect+`
		WHERE b.freelancer_id = $1
		ORDER BY b.amount ASC, b.created_at ASC, b.id ASC
	`, freelancerID)
}

func (q *Queries) listBids(ctx context.Context, query string, args ...interface{}) ([]models.Bid, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", mapError(err))
	}
	defer rows.Close()

	var bids []models.Bid
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, *bid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}

	return bids, nil
}

func (q *Queries) HasBid(ctx context.Context, projectID, freelancerID uuid.UUID) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM bids WHERE project_id = $1 AND freelancer_id = $2)
	`, projectID, freelancerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check bid: %w", mapError(err))
	}
	return exists, nil
}

// DeleteBid removes the bid. A project that referenced it as winning bid has
// winning_bid_id cleared by the foreign key.
func (q *Queries) DeleteBid(ctx context.Context, id uuid.UUID) error {
	return q.execOne(ctx, "delete bid", `
		DELETE FROM bids
		WHERE id = $1
	`, id)
}
