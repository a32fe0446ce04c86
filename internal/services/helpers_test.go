package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"freelance-backend/internal/database/memory"
	"freelance-backend/internal/models"
	"freelance-backend/internal/services"
)

type fixture struct {
	store  *memory.Store
	svc    *services.MarketplaceService
	client services.Identity
	f1     services.Identity
	f2     services.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	f := &fixture{
		store: store,
		svc:   services.NewMarketplaceService(store, zaptest.NewLogger(t)),
	}
	f.client = f.addUser(t, "carol", models.RoleClient)
	f.f1 = f.addUser(t, "frank", models.RoleFreelancer)
	f.f2 = f.addUser(t, "fiona", models.RoleFreelancer)
	return f
}

func (f *fixture) addUser(t *testing.T, username string, role models.Role) services.Identity {
	t.Helper()
	user := &models.User{
		ID:       uuid.New(),
		Email:    username + "@example.com",
		Username: username,
		Role:     role,
	}
	require.NoError(t, f.store.CreateUser(context.Background(), user))
	return services.Identity{UserID: user.ID, Username: username, Role: role}
}

func (f *fixture) createProject(t *testing.T, budget, deadline string) *models.Project {
	t.Helper()
	p, err := f.svc.CreateProject(context.Background(), f.client, services.ProjectInput{
		Title:       "Build a landing page",
		Description: "Responsive marketing site",
		BudgetMax:   dec(budget),
		Deadline:    date(deadline),
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) bid(t *testing.T, who services.Identity, projectID uuid.UUID, amount, deadline string) *models.Bid {
	t.Helper()
	b, err := f.svc.PlaceBid(context.Background(), who, projectID, bidInput(amount, deadline))
	require.NoError(t, err)
	return b
}

func (f *fixture) project(t *testing.T, id uuid.UUID) *models.Project {
	t.Helper()
	p, err := f.store.GetProject(context.Background(), id)
	require.NoError(t, err)
	return p
}

func bidInput(amount, deadline string) services.BidInput {
	return services.BidInput{
		Amount:           dec(amount),
		ProposedDeadline: date(deadline),
		ProposalText:     "I can do this",
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func requireKind(t *testing.T, err error, kind services.Kind) {
	t.Helper()
	require.Error(t, err)
	got, ok := services.KindOf(err)
	require.True(t, ok, "expected a services error, got %v", err)
	require.Equal(t, kind, got, "unexpected kind for %v", err)
}
