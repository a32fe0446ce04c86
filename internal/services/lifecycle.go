package services

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"freelance-backend/internal/database"
	"freelance-backend/internal/metrics"
	"freelance-backend/internal/models"
)

const (
	MinRating = 1
	MaxRating = 5
)

// AcceptBid closes bidding on an open project and records the client's
// chosen bid as the winner. The chosen bid need not be the cheapest one.
func (s *MarketplaceService) AcceptBid(ctx context.Context, caller Identity, projectID, bidID uuid.UUID) (detail *ProjectDetail, err error) {
	ctx, span := startSpan(ctx, "MarketplaceService.AcceptBid",
		projectAttr(projectID),
		attribute.String("bid.id", bidID.String()),
	)
	defer func() {
		metrics.RecordTransition("accept_bid", outcome(err))
		endSpan(span, err)
	}()

	err = s.store.InTx(ctx, func(q database.Querier) error {
		project, err := q.GetProjectForUpdate(ctx, projectID)
		if err != nil {
			return storeError(err, "project")
		}
		if project.ClientID != caller.UserID {
			return NewPermissionDeniedError("Only the project owner can accept bids")
		}
		if project.Status != models.ProjectStatusOpen {
			return NewIllegalTransitionError("Only open projects can accept bids")
		}

		bid, err := q.GetBid(ctx, bidID)
		if err != nil {
			if isNotFound(err) {
				return NewInvalidReferenceError("Invalid bid ID")
			}
			return err
		}
		if bid.ProjectID != projectID {
			return NewInvalidReferenceError("Invalid bid ID")
		}

		project.Status = models.ProjectStatusClosed
		project.WinningBidID = uuid.NullUUID{UUID: bid.ID, Valid: true}
		if err := q.UpdateProjectState(ctx, project); err != nil {
			return storeError(err, "project")
		}

		current, err := q.GetProject(ctx, projectID)
		if err != nil {
			return storeError(err, "project")
		}
		detail = &ProjectDetail{Project: current, WinningBid: bid}
		return nil
	})
	if err != nil {
		s.logOutcome("accept bid", err,
			zap.String("project_id", projectID.String()),
			zap.String("bid_id", bidID.String()),
		)
		return nil, err
	}

	s.logger.Info("bid accepted",
		zap.String("project_id", projectID.String()),
		zap.String("bid_id", bidID.String()),
		zap.String("freelancer_id", detail.WinningBid.FreelancerID.String()),
	)
	return detail, nil
}

// CompleteProject marks a closed project completed with the client's rating
// and recomputes the winning freelancer's aggregate rating in the same
// transaction.
func (s *MarketplaceService) CompleteProject(ctx context.Context, caller Identity, projectID uuid.UUID, rating int) (detail *ProjectDetail, err error) {
	ctx, span := startSpan(ctx, "MarketplaceService.CompleteProject",
		projectAttr(projectID),
		attribute.Int("project.rating", rating),
	)
	defer func() {
		metrics.RecordTransition("complete_project", outcome(err))
		endSpan(span, err)
	}()

	err = s.store.InTx(ctx, func(q database.Querier) error {
		project, err := q.GetProjectForUpdate(ctx, projectID)
		if err != nil {
			return storeError(err, "project")
		}
		if project.ClientID != caller.UserID {
			return NewPermissionDeniedError("Only the project owner can complete this project")
		}
		if project.Status != models.ProjectStatusClosed {
			return NewIllegalTransitionError("Only closed projects can be completed")
		}
		if rating < MinRating || rating > MaxRating {
			return NewValidationError("Rating must be between %d and %d.", MinRating, MaxRating)
		}

		project.Status = models.ProjectStatusCompleted
		project.FreelancerRating = sql.NullInt32{Int32: int32(rating), Valid: true}
		if err := q.UpdateProjectState(ctx, project); err != nil {
			return storeError(err, "project")
		}

		current, err := q.GetProject(ctx, projectID)
		if err != nil {
			return storeError(err, "project")
		}
		detail, err = s.detail(ctx, q, current)
		if err != nil {
			return err
		}

		if detail.WinningBid == nil {
			s.logger.Warn("completed project has no winning bid, skipping rating update",
				zap.String("project_id", projectID.String()))
			return nil
		}
		_, err = RecomputeFreelancerRating(ctx, q, detail.WinningBid.FreelancerID)
		return storeError(err, "freelancer")
	})
	if err != nil {
		s.logOutcome("complete project", err, zap.String("project_id", projectID.String()))
		return nil, err
	}

	s.logger.Info("project completed",
		zap.String("project_id", projectID.String()),
		zap.Int("rating", rating),
	)
	return detail, nil
}
