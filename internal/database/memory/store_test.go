package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freelance-backend/internal/database"
	"freelance-backend/internal/models"
)

func seed(t *testing.T, s *Store) (client, freelancer models.User, project models.Project) {
	t.Helper()
	ctx := context.Background()

	client = models.User{ID: uuid.New(), Email: "carol@example.com", Username: "carol", Role: models.RoleClient}
	freelancer = models.User{ID: uuid.New(), Email: "frank@example.com", Username: "frank", Role: models.RoleFreelancer}
	require.NoError(t, s.CreateUser(ctx, &client))
	require.NoError(t, s.CreateUser(ctx, &freelancer))

	project = models.Project{
		Title:     "Site",
		ClientID:  client.ID,
		BudgetMax: decimal.NewFromInt(1000),
		Status:    models.ProjectStatusOpen,
		Deadline:  time.Now().Add(30 * 24 * time.Hour),
	}
	require.NoError(t, s.CreateProject(ctx, &project))
	return client, freelancer, project
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := New()
	seed(t, s)

	dup := models.User{ID: uuid.New(), Email: "CAROL@example.com", Username: "other"}
	err := s.CreateUser(context.Background(), &dup)
	assert.True(t, database.IsConstraint(err, database.ConstraintUserEmail))
}

func TestCreateBid_OnePerFreelancer(t *testing.T) {
	s := New()
	_, freelancer, project := seed(t, s)
	ctx := context.Background()

	bid := models.Bid{ProjectID: project.ID, FreelancerID: freelancer.ID, Amount: decimal.NewFromInt(500)}
	require.NoError(t, s.CreateBid(ctx, &bid))

	again := models.Bid{ProjectID: project.ID, FreelancerID: freelancer.ID, Amount: decimal.NewFromInt(400)}
	err := s.CreateBid(ctx, &again)
	assert.True(t, database.IsConstraint(err, database.ConstraintBidPerFreelancer))

	got, err := s.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.BidCount)
	assert.Equal(t, "carol", got.ClientUsername)
}

func TestDeleteProject_Cascades(t *testing.T) {
	s := New()
	client, freelancer, project := seed(t, s)
	ctx := context.Background()

	bid := models.Bid{ProjectID: project.ID, FreelancerID: freelancer.ID, Amount: decimal.NewFromInt(500)}
	require.NoError(t, s.CreateBid(ctx, &bid))
	payment := models.Payment{
		UserID:               client.ID,
		ProjectID:            project.ID,
		Amount:               decimal.NewFromInt(500),
		Status:               models.PaymentStatusPending,
		TransactionReference: uuid.NewString(),
	}
	require.NoError(t, s.CreatePayment(ctx, &payment))

	require.NoError(t, s.DeleteProject(ctx, project.ID))

	_, err := s.GetBid(ctx, bid.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
	_, err = s.GetPayment(ctx, payment.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestInTx_RollsBackOnError(t *testing.T) {
	s := New()
	_, freelancer, project := seed(t, s)
	ctx := context.Background()

	err := s.InTx(ctx, func(q database.Querier) error {
		bid := models.Bid{ProjectID: project.ID, FreelancerID: freelancer.ID, Amount: decimal.NewFromInt(500)}
		require.NoError(t, q.CreateBid(ctx, &bid))
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	bids, err := s.ListBidsForProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, bids)
}

func TestClock_StrictlyIncreasing(t *testing.T) {
	s := New()
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return fixed })
	_, freelancer, project := seed(t, s)
	ctx := context.Background()

	other := models.User{ID: uuid.New(), Email: "fiona@example.com", Username: "fiona", Role: models.RoleFreelancer}
	require.NoError(t, s.CreateUser(ctx, &other))

	first := models.Bid{ProjectID: project.ID, FreelancerID: freelancer.ID, Amount: decimal.NewFromInt(500)}
	second := models.Bid{ProjectID: project.ID, FreelancerID: other.ID, Amount: decimal.NewFromInt(500)}
	require.NoError(t, s.CreateBid(ctx, &first))
	require.NoError(t, s.CreateBid(ctx, &second))

	assert.True(t, second.CreatedAt.After(first.CreatedAt))

	bids, err := s.ListBidsForProject(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, bids, 2)
	assert.Equal(t, first.ID, bids[0].ID)
}

func TestDeleteBid_ClearsWinningBid(t *testing.T) {
	s := New()
	_, freelancer, project := seed(t, s)
	ctx := context.Background()

	bid := models.Bid{ProjectID: project.ID, FreelancerID: freelancer.ID, Amount: decimal.NewFromInt(500)}
	require.NoError(t, s.CreateBid(ctx, &bid))
	require.NoError(t, s.SetWinningBid(ctx, project.ID, uuid.NullUUID{UUID: bid.ID, Valid: true}))

	require.NoError(t, s.DeleteBid(ctx, bid.ID))

	got, err := s.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.False(t, got.WinningBidID.Valid)
}

func TestDeleteUser_Cascades(t *testing.T) {
	s := New()
	client, freelancer, project := seed(t, s)
	ctx := context.Background()

	other := models.Project{
		Title:     "Other site",
		ClientID:  uuid.New(),
		BudgetMax: decimal.NewFromInt(500),
		Status:    models.ProjectStatusOpen,
		Deadline:  project.Deadline,
	}
	owner := models.User{ID: other.ClientID, Email: "olga@example.com", Username: "olga", Role: models.RoleClient}
	require.NoError(t, s.CreateUser(ctx, &owner))
	require.NoError(t, s.CreateProject(ctx, &other))

	own := models.Bid{ProjectID: project.ID, FreelancerID: freelancer.ID, Amount: decimal.NewFromInt(500)}
	winning := models.Bid{ProjectID: other.ID, FreelancerID: freelancer.ID, Amount: decimal.NewFromInt(400)}
	require.NoError(t, s.CreateBid(ctx, &own))
	require.NoError(t, s.CreateBid(ctx, &winning))
	require.NoError(t, s.SetWinningBid(ctx, other.ID, uuid.NullUUID{UUID: winning.ID, Valid: true}))
	require.NoError(t, s.UpsertProfileSkills(ctx, freelancer.ID, "go"))

	require.NoError(t, s.DeleteUser(ctx, client.ID))
	_, err := s.GetProject(ctx, project.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
	_, err = s.GetBid(ctx, own.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	require.NoError(t, s.DeleteUser(ctx, freelancer.ID))
	_, err = s.GetBid(ctx, winning.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
	_, err = s.GetProfile(ctx, freelancer.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	got, err := s.GetProject(ctx, other.ID)
	require.NoError(t, err)
	assert.False(t, got.WinningBidID.Valid)
	assert.Equal(t, 0, got.BidCount)

	assert.ErrorIs(t, s.DeleteUser(ctx, freelancer.ID), database.ErrNotFound)
}
