package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freelance-backend/internal/models"
	"freelance-backend/internal/services"
)

func TestBidAwardScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.createProject(t, "1000", "2025-06-01")

	a := f.bid(t, f.f1, p.ID, "800", "2025-05-01")
	b := f.bid(t, f.f2, p.ID, "600", "2025-05-15")
	require.Equal(t, b.ID, f.project(t, p.ID).WinningBidID.UUID)

	// client overrides the auto-ranked winner
	detail, err := f.svc.AcceptBid(ctx, f.client, p.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusClosed, detail.Project.Status)
	assert.Equal(t, a.ID, detail.Project.WinningBidID.UUID)
	assert.Equal(t, a.ID, detail.WinningBid.ID)
	assert.False(t, detail.Project.FreelancerRating.Valid)

	detail, err = f.svc.CompleteProject(ctx, f.client, p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusCompleted, detail.Project.Status)
	assert.True(t, detail.Project.FreelancerRating.Valid)
	assert.EqualValues(t, 4, detail.Project.FreelancerRating.Int32)
	assert.Equal(t, a.ID, detail.Project.WinningBidID.UUID)

	profile, err := f.svc.GetProfile(ctx, f.f1.UserID)
	require.NoError(t, err)
	assert.Equal(t, "4.00", profile.Rating.StringFixed(2))
	assert.Equal(t, 1, profile.TotalProjects)

	// the losing freelancer keeps the default rating
	other, err := f.svc.GetProfile(ctx, f.f2.UserID)
	require.NoError(t, err)
	assert.True(t, other.Rating.IsZero())
	assert.Equal(t, 0, other.TotalProjects)
}

func TestAcceptBid_Guards(t *testing.T) {
	ctx := context.Background()

	t.Run("not the owner", func(t *testing.T) {
		f := newFixture(t)
		p := f.createProject(t, "1000", "2025-06-01")
		b := f.bid(t, f.f1, p.ID, "500", "2025-05-01")
		other := f.addUser(t, "oscar", models.RoleClient)

		_, err := f.svc.AcceptBid(ctx, other, p.ID, b.ID)
		requireKind(t, err, services.KindPermissionDenied)
	})

	t.Run("bid from another project", func(t *testing.T) {
		f := newFixture(t)
		p := f.createProject(t, "1000", "2025-06-01")
		q := f.createProject(t, "1000", "2025-06-01")
		b := f.bid(t, f.f1, q.ID, "500", "2025-05-01")

		_, err := f.svc.AcceptBid(ctx, f.client, p.ID, b.ID)
		requireKind(t, err, services.KindInvalidReference)
		assert.Contains(t, err.Error(), "Invalid bid ID")
		assert.Equal(t, models.ProjectStatusOpen, f.project(t, p.ID).Status)
	})

	t.Run("unknown bid", func(t *testing.T) {
		f := newFixture(t)
		p := f.createProject(t, "1000", "2025-06-01")
		_, err := f.svc.AcceptBid(ctx, f.client, p.ID, f.f1.UserID)
		requireKind(t, err, services.KindInvalidReference)
	})

	t.Run("already closed", func(t *testing.T) {
		f := newFixture(t)
		p := f.createProject(t, "1000", "2025-06-01")
		a := f.bid(t, f.f1, p.ID, "500", "2025-05-01")
		b := f.bid(t, f.f2, p.ID, "400", "2025-05-01")

		_, err := f.svc.AcceptBid(ctx, f.client, p.ID, a.ID)
		require.NoError(t, err)

		_, err = f.svc.AcceptBid(ctx, f.client, p.ID, b.ID)
		requireKind(t, err, services.KindIllegalTransition)
		assert.Equal(t, a.ID, f.project(t, p.ID).WinningBidID.UUID)
	})

	t.Run("unknown project", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.AcceptBid(ctx, f.client, f.client.UserID, f.f1.UserID)
		requireKind(t, err, services.KindInvalidReference)
	})
}

func TestAcceptBid_ConcurrentAcceptsOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.createProject(t, "1000", "2025-06-01")
	a := f.bid(t, f.f1, p.ID, "500", "2025-05-01")
	b := f.bid(t, f.f2, p.ID, "400", "2025-05-01")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, bid := range []*models.Bid{a, b} {
		wg.Add(1)
		go func(i int, bid *models.Bid) {
			defer wg.Done()
			_, errs[i] = f.svc.AcceptBid(ctx, f.client, p.ID, bid.ID)
		}(i, bid)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		requireKind(t, err, services.KindIllegalTransition)
		rejected++
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	got := f.project(t, p.ID)
	assert.Equal(t, models.ProjectStatusClosed, got.Status)
	if errs[0] == nil {
		assert.Equal(t, a.ID, got.WinningBidID.UUID)
	} else {
		assert.Equal(t, b.ID, got.WinningBidID.UUID)
	}
}

func TestCompleteProject_Guards(t *testing.T) {
	ctx := context.Background()

	t.Run("open project", func(t *testing.T) {
		f := newFixture(t)
		p := f.createProject(t, "1000", "2025-06-01")
		f.bid(t, f.f1, p.ID, "500", "2025-05-01")

		_, err := f.svc.CompleteProject(ctx, f.client, p.ID, 5)
		requireKind(t, err, services.KindIllegalTransition)
		assert.Contains(t, err.Error(), "Only closed projects can be completed")
	})

	t.Run("already completed", func(t *testing.T) {
		f := newFixture(t)
		p := f.createProject(t, "1000", "2025-06-01")
		b := f.bid(t, f.f1, p.ID, "500", "2025-05-01")
		_, err := f.svc.AcceptBid(ctx, f.client, p.ID, b.ID)
		require.NoError(t, err)
		_, err = f.svc.CompleteProject(ctx, f.client, p.ID, 5)
		require.NoError(t, err)

		_, err = f.svc.CompleteProject(ctx, f.client, p.ID, 3)
		requireKind(t, err, services.KindIllegalTransition)
		assert.EqualValues(t, 5, f.project(t, p.ID).FreelancerRating.Int32)
	})

	for _, rating := range []int{0, 6, -1} {
		rating := rating
		t.Run("rating out of range", func(t *testing.T) {
			f := newFixture(t)
			p := f.createProject(t, "1000", "2025-06-01")
			b := f.bid(t, f.f1, p.ID, "500", "2025-05-01")
			_, err := f.svc.AcceptBid(ctx, f.client, p.ID, b.ID)
			require.NoError(t, err)

			_, err = f.svc.CompleteProject(ctx, f.client, p.ID, rating)
			requireKind(t, err, services.KindValidation)
			assert.Contains(t, err.Error(), "Rating must be between 1 and 5.")

			got := f.project(t, p.ID)
			assert.Equal(t, models.ProjectStatusClosed, got.Status)
			assert.False(t, got.FreelancerRating.Valid)
		})
	}

	t.Run("not the owner", func(t *testing.T) {
		f := newFixture(t)
		p := f.createProject(t, "1000", "2025-06-01")
		b := f.bid(t, f.f1, p.ID, "500", "2025-05-01")
		_, err := f.svc.AcceptBid(ctx, f.client, p.ID, b.ID)
		require.NoError(t, err)

		_, err = f.svc.CompleteProject(ctx, f.f1, p.ID, 5)
		requireKind(t, err, services.KindPermissionDenied)
	})
}
