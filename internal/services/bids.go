package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"freelance-backend/internal/database"
	"freelance-backend/internal/metrics"
	"freelance-backend/internal/models"
)

type BidInput struct {
	Amount           decimal.Decimal
	ProposedDeadline time.Time
	ProposalText     string
}

// PlaceBid records a freelancer's bid on an open project and re-ranks the
// project's bids in the same transaction.
func (s *MarketplaceService) PlaceBid(ctx context.Context, caller Identity, projectID uuid.UUID, in BidInput) (bid *models.Bid, err error) {
	ctx, span := startSpan(ctx, "MarketplaceService.PlaceBid", projectAttr(projectID))
	defer func() {
		metrics.RecordBidEvent("placed", outcome(err))
		endSpan(span, err)
	}()

	if !caller.IsFreelancer() {
		return nil, NewPermissionDeniedError("Only freelancers can place bids")
	}
	if err := validateMoney("Bid amount", in.Amount); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.ProposalText) == "" {
		return nil, NewValidationError("Proposal text is required")
	}

	err = s.store.InTx(ctx, func(q database.Querier) error {
		project, err := q.GetProjectForUpdate(ctx, projectID)
		if err != nil {
			return storeError(err, "project")
		}
		if project.Status != models.ProjectStatusOpen {
			return NewValidationError("This project is not open for bidding")
		}
		if in.Amount.GreaterThan(project.BudgetMax) {
			return NewValidationError("Bid amount cannot exceed project budget of %s", project.BudgetMax.StringFixed(2))
		}
		if in.ProposedDeadline.After(project.Deadline) {
			return NewValidationError("Proposed deadline cannot be later than project deadline")
		}

		exists, err := q.HasBid(ctx, projectID, caller.UserID)
		if err != nil {
			return err
		}
		if exists {
			return NewValidationError("You have already placed a bid on this project")
		}

		created := &models.Bid{
			ProjectID:        projectID,
			FreelancerID:     caller.UserID,
			Amount:           in.Amount,
			ProposedDeadline: in.ProposedDeadline,
			ProposalText:     in.ProposalText,
		}
		if err := q.CreateBid(ctx, created); err != nil {
			if database.IsConstraint(err, database.ConstraintBidPerFreelancer) {
				return NewValidationError("You have already placed a bid on this project")
			}
			return storeError(err, "bid")
		}

		winner, err := RecomputeWinningBid(ctx, q, projectID)
		if err != nil {
			return err
		}
		span.SetAttributes(attribute.String("project.winning_bid", winner.UUID.String()))

		bid, err = q.GetBid(ctx, created.ID)
		return storeError(err, "bid")
	})
	if err != nil {
		s.logOutcome("place bid", err,
			zap.String("project_id", projectID.String()),
			zap.String("freelancer_id", caller.UserID.String()),
		)
		return nil, err
	}

	s.logger.Info("bid placed",
		zap.String("project_id", projectID.String()),
		zap.String("bid_id", bid.ID.String()),
		zap.String("freelancer_id", caller.UserID.String()),
		zap.String("amount", bid.Amount.String()),
	)
	return bid, nil
}

// WithdrawBid deletes the caller's bid while its project is still open and
// re-ranks the remaining bids.
func (s *MarketplaceService) WithdrawBid(ctx context.Context, caller Identity, bidID uuid.UUID) (err error) {
	ctx, span := startSpan(ctx, "MarketplaceService.WithdrawBid", attribute.String("bid.id", bidID.String()))
	defer func() {
		metrics.RecordBidEvent("withdrawn", outcome(err))
		endSpan(span, err)
	}()

	var projectID uuid.UUID
	err = s.store.InTx(ctx, func(q database.Querier) error {
		bid, err := q.GetBid(ctx, bidID)
		if err != nil {
			return storeError(err, "bid")
		}
		if bid.FreelancerID != caller.UserID {
			return NewPermissionDeniedError("You can only withdraw your own bids")
		}
		projectID = bid.ProjectID

		project, err := q.GetProjectForUpdate(ctx, bid.ProjectID)
		if err != nil {
			return storeError(err, "project")
		}
		if project.Status != models.ProjectStatusOpen {
			return NewIllegalTransitionError("Bids can only be withdrawn while the project is open")
		}

		if err := q.DeleteBid(ctx, bidID); err != nil {
			return storeError(err, "bid")
		}
		_, err = RecomputeWinningBid(ctx, q, bid.ProjectID)
		return err
	})
	if err != nil {
		s.logOutcome("withdraw bid", err, zap.String("bid_id", bidID.String()))
		return err
	}

	s.logger.Info("bid withdrawn",
		zap.String("project_id", projectID.String()),
		zap.String("bid_id", bidID.String()),
		zap.String("freelancer_id", caller.UserID.String()),
	)
	return nil
}

// ListProjectBids returns a project's bids, cheapest first. Only the project
// owner may see them.
func (s *MarketplaceService) ListProjectBids(ctx context.Context, caller Identity, projectID uuid.UUID) ([]models.Bid, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, storeError(err, "project")
	}
	if project.ClientID != caller.UserID {
		return nil, NewPermissionDeniedError("Only the project owner can view bids")
	}
	return s.store.ListBidsForProject(ctx, projectID)
}

// MyBids returns the caller's own bids. Clients never have any.
func (s *MarketplaceService) MyBids(ctx context.Context, caller Identity) ([]models.Bid, error) {
	if !caller.IsFreelancer() {
		return []models.Bid{}, nil
	}
	return s.store.ListBidsByFreelancer(ctx, caller.UserID)
}

func isNotFound(err error) bool {
	return errors.Is(err, database.ErrNotFound)
}
