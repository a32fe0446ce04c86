package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"freelance-backend/internal/models"
)

// GetProfile returns a freelancer's profile. A freelancer who has never
// saved one gets an empty profile with a zero rating.
func (s *MarketplaceService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "profile")
	}
	if user.Role != models.RoleFreelancer {
		return nil, NewInvalidReferenceError("profile not found")
	}
	return &models.FreelancerProfile{UserID: user.ID, Username: user.Username, Rating: decimal.Zero}, nil
}

func (s *MarketplaceService) UpdateMyProfile(ctx context.Context, caller Identity, skills string) (*models.FreelancerProfile, error) {
	if !caller.IsFreelancer() {
		return nil, NewPermissionDeniedError("Only freelancers have profiles")
	}
	if err := s.store.UpsertProfileSkills(ctx, caller.UserID, skills); err != nil {
		s.logger.Error("failed to save profile", zap.String("user_id", caller.UserID.String()), zap.Error(err))
		return nil, storeError(err, "profile")
	}
	s.logger.Info("profile updated", zap.String("user_id", caller.UserID.String()))

	profile, err := s.store.GetProfile(ctx, caller.UserID)
	if err != nil {
		return nil, storeError(err, "profile")
	}
	return profile, nil
}
