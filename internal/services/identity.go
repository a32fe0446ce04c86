package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"freelance-backend/internal/database"
	"freelance-backend/internal/models"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID   uuid.UUID
	Username string
	Role     models.Role
}

func (i Identity) IsClient() bool     { return i.Role == models.RoleClient }
func (i Identity) IsFreelancer() bool { return i.Role == models.RoleFreelancer }

// IdentitySource fetches a user from the external identity provider using
// the caller's access token.
type IdentitySource interface {
	FetchUser(ctx context.Context, accessToken string) (*models.User, error)
}

type IdentityService struct {
	store  database.Querier
	source IdentitySource
	logger *zap.Logger
}

// NewIdentityService builds the resolver. source may be nil, in which case
// only users already present in the store are recognised.
func NewIdentityService(store database.Querier, source IdentitySource, logger *zap.Logger) *IdentityService {
	return &IdentityService{store: store, source: source, logger: logger}
}

// Resolve returns the caller's identity, provisioning a local user record
// from the identity source the first time a user is seen.
func (s *IdentityService) Resolve(ctx context.Context, userID uuid.UUID, accessToken string) (*Identity, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err == nil {
		return identityOf(user), nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	if s.source == nil {
		return nil, NewPermissionDeniedError("user is not registered")
	}

	fetched, err := s.source.FetchUser(ctx, accessToken)
	if err != nil {
		s.logger.Warn("identity lookup failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, NewPermissionDeniedError("unable to verify user identity")
	}
	if fetched.ID != userID {
		return nil, NewPermissionDeniedError("token subject does not match identity")
	}

	if err := s.store.CreateUser(ctx, fetched); err != nil {
		return nil, storeError(err, "user")
	}
	s.logger.Info("provisioned user",
		zap.String("user_id", fetched.ID.String()),
		zap.String("role", string(fetched.Role)),
	)

	// re-read: a concurrent request may have inserted the row first
	user, err = s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return identityOf(user), nil
}

func identityOf(user *models.User) *Identity {
	return &Identity{UserID: user.ID, Username: user.Username, Role: user.Role}
}
