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
	"freelance-backend/internal/models"
)

// MarketplaceService implements the project, bid and profile operations.
// Every mutation that touches ranking or lifecycle state runs in a single
// store transaction holding the project row lock.
type MarketplaceService struct {
	store  Store
	logger *zap.Logger
}

func NewMarketplaceService(store Store, logger *zap.Logger) *MarketplaceService {
	return &MarketplaceService{store: store, logger: logger}
}

type ProjectInput struct {
	Title       string
	Description string
	BudgetMax   decimal.Decimal
	Deadline    time.Time
}

// ProjectPatch holds the editable project fields. Nil fields are unchanged.
type ProjectPatch struct {
	Title       *string
	Description *string
	BudgetMax   *decimal.Decimal
	Deadline    *time.Time
}

// ProjectDetail is a project together with its current winning bid, if any.
type ProjectDetail struct {
	Project    *models.Project
	WinningBid *models.Bid
}

func (in ProjectInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return NewValidationError("Title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return NewValidationError("Description is required")
	}
	if err := validateMoney("Budget", in.BudgetMax); err != nil {
		return err
	}
	if in.Deadline.IsZero() {
		return NewValidationError("Deadline is required")
	}
	return nil
}

func (s *MarketplaceService) CreateProject(ctx context.Context, caller Identity, in ProjectInput) (*models.Project, error) {
	if !caller.IsClient() {
		return nil, NewPermissionDeniedError("Only clients can create projects")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	project := &models.Project{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		ClientID:    caller.UserID,
		BudgetMax:   in.BudgetMax,
		Status:      models.ProjectStatusOpen,
		Deadline:    in.Deadline,
	}
	if err := s.store.CreateProject(ctx, project); err != nil {
		s.logger.Error("failed to create project", zap.String("client_id", caller.UserID.String()), zap.Error(err))
		return nil, storeError(err, "project")
	}

	s.logger.Info("project created",
		zap.String("project_id", project.ID.String()),
		zap.String("client_id", caller.UserID.String()),
	)

	created, err := s.store.GetProject(ctx, project.ID)
	if err != nil {
		return nil, storeError(err, "project")
	}
	return created, nil
}

func (s *MarketplaceService) GetProject(ctx context.Context, projectID uuid.UUID) (*ProjectDetail, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, storeError(err, "project")
	}
	return s.detail(ctx, s.store, project)
}

func (s *MarketplaceService) detail(ctx context.Context, q database.Querier, project *models.Project) (*ProjectDetail, error) {
	d := &ProjectDetail{Project: project}
	if !project.WinningBidID.Valid {
		return d, nil
	}
	bid, err := q.GetBid(ctx, project.WinningBidID.UUID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// withdrawn between the two reads
			return d, nil
		}
		return nil, err
	}
	d.WinningBid = bid
	return d, nil
}

// ListProjects returns all projects, newest first. search filters on title
// or description, case-insensitively.
func (s *MarketplaceService) ListProjects(ctx context.Context, search string) ([]models.Project, error) {
	return s.store.ListProjects(ctx, strings.TrimSpace(search))
}

// MyProjects returns the projects a client owns, or the projects a
// freelancer currently holds the winning bid on.
func (s *MarketplaceService) MyProjects(ctx context.Context, caller Identity) ([]models.Project, error) {
	if caller.IsFreelancer() {
		return s.store.ListProjectsWonBy(ctx, caller.UserID)
	}
	return s.store.ListProjectsByClient(ctx, caller.UserID)
}

func (s *MarketplaceService) UpdateProject(ctx context.Context, caller Identity, projectID uuid.UUID, patch ProjectPatch) (*models.Project, error) {
	var updated *models.Project
	err := s.store.InTx(ctx, func(q database.Querier) error {
		project, err := q.GetProjectForUpdate(ctx, projectID)
		if err != nil {
			return storeError(err, "project")
		}
		if project.ClientID != caller.UserID {
			return NewPermissionDeniedError("Only the project owner can edit this project")
		}

		in := ProjectInput{
			Title:       project.Title,
			Description: project.Description,
			BudgetMax:   project.BudgetMax,
			Deadline:    project.Deadline,
		}
		if patch.Title != nil {
			in.Title = *patch.Title
		}
		if patch.Description != nil {
			in.Description = *patch.Description
		}
		if patch.BudgetMax != nil {
			in.BudgetMax = *patch.BudgetMax
		}
		if patch.Deadline != nil {
			in.Deadline = *patch.Deadline
		}
		if err := in.validate(); err != nil {
			return err
		}

		project.Title = strings.TrimSpace(in.Title)
		project.Description = in.Description
		project.BudgetMax = in.BudgetMax
		project.Deadline = in.Deadline
		if err := q.UpdateProjectDetails(ctx, project); err != nil {
			return storeError(err, "project")
		}

		updated, err = q.GetProject(ctx, projectID)
		return storeError(err, "project")
	})
	if err != nil {
		s.logOutcome("update project", err, zap.String("project_id", projectID.String()))
		return nil, err
	}

	s.logger.Info("project updated", zap.String("project_id", projectID.String()))
	return updated, nil
}

// DeleteProject removes the project together with its bids and payments.
func (s *MarketplaceService) DeleteProject(ctx context.Context, caller Identity, projectID uuid.UUID) error {
	err := s.store.InTx(ctx, func(q database.Querier) error {
		project, err := q.GetProjectForUpdate(ctx, projectID)
		if err != nil {
			return storeError(err, "project")
		}
		if project.ClientID != caller.UserID {
			return NewPermissionDeniedError("Only the project owner can delete this project")
		}
		return storeError(q.DeleteProject(ctx, projectID), "project")
	})
	if err != nil {
		s.logOutcome("delete project", err, zap.String("project_id", projectID.String()))
		return err
	}

	s.logger.Info("project deleted",
		zap.String("project_id", projectID.String()),
		zap.String("client_id", caller.UserID.String()),
	)
	return nil
}

// logOutcome logs expected rejections at debug and everything else at error.
func (s *MarketplaceService) logOutcome(op string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if _, ok := KindOf(err); ok {
		s.logger.Debug(op+" rejected", fields...)
		return
	}
	s.logger.Error(op+" failed", fields...)
}

func projectAttr(id uuid.UUID) attribute.KeyValue {
	return attribute.String("project.id", id.String())
}
