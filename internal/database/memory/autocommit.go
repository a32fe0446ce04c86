package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"freelance-backend/internal/models"
)

// Calls made directly on the Store run as single-statement transactions.

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetUser(ctx, id)
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreateUser(ctx, user)
}

func (s *Store) LockUser(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.LockUser(ctx, id)
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.DeleteUser(ctx, id)
}

func (s *Store) CreateProject(ctx context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreateProject(ctx, project)
}

func (s *Store) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetProject(ctx, id)
}

func (s *Store) GetProjectForUpdate(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetProjectForUpdate(ctx, id)
}

func (s *Store) ListProjects(ctx context.Context, search string) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.ListProjects(ctx, search)
}

func (s *Store) ListProjectsByClient(ctx context.Context, clientID uuid.UUID) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.ListProjectsByClient(ctx, clientID)
}

func (s *Store) ListProjectsWonBy(ctx context.Context, freelancerID uuid.UUID) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.ListProjectsWonBy(ctx, freelancerID)
}

func (s *Store) UpdateProjectDetails(ctx context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.UpdateProjectDetails(ctx, project)
}

func (s *Store) UpdateProjectState(ctx context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.UpdateProjectState(ctx, project)
}

func (s *Store) SetWinningBid(ctx context.Context, projectID uuid.UUID, bidID uuid.NullUUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.SetWinningBid(ctx, projectID, bidID)
}

func (s *Store) DeleteProject(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.DeleteProject(ctx, id)
}

func (s *Store) CreateBid(ctx context.Context, bid *models.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreateBid(ctx, bid)
}

func (s *Store) GetBid(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetBid(ctx, id)
}

func (s *Store) ListBidsForProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.ListBidsForProject(ctx, projectID)
}

func (s *Store) ListBidsByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.ListBidsByFreelancer(ctx, freelancerID)
}

func (s *Store) HasBid(ctx context.Context, projectID, freelancerID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.HasBid(ctx, projectID, freelancerID)
}

func (s *Store) DeleteBid(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.DeleteBid(ctx, id)
}

func (s *Store) GetProfile(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetProfile(ctx, userID)
}

func (s *Store) UpsertProfileSkills(ctx context.Context, userID uuid.UUID, skills string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.UpsertProfileSkills(ctx, userID, skills)
}

func (s *Store) SaveProfileRating(ctx context.Context, userID uuid.UUID, rating decimal.Decimal, totalProjects int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.SaveProfileRating(ctx, userID, rating, totalProjects)
}

func (s *Store) ListCompletedRatings(ctx context.Context, freelancerID uuid.UUID) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.ListCompletedRatings(ctx, freelancerID)
}

func (s *Store) CreatePayment(ctx context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreatePayment(ctx, payment)
}

func (s *Store) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetPayment(ctx, id)
}

func (s *Store) GetPaymentByIntentID(ctx context.Context, intentID string) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetPaymentByIntentID(ctx, intentID)
}

func (s *Store) ListPaymentsByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.ListPaymentsByUser(ctx, userID)
}

func (s *Store) SetPaymentIntent(ctx context.Context, id uuid.UUID, intentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.SetPaymentIntent(ctx, id, intentID)
}

func (s *Store) TransitionPaymentStatus(ctx context.Context, id uuid.UUID, from, to models.PaymentStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.TransitionPaymentStatus(ctx, id, from, to)
}
