// Package memory is an in-process implementation of the marketplace store.
// It enforces the same uniqueness, foreign key and cascade rules as the
// Postgres schema and serializes transactions behind a single lock.
package memory

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"freelance-backend/internal/database"
	"freelance-backend/internal/models"
)

type Store struct {
	mu    sync.Mutex
	st    *state
	clock func() time.Time
	last  time.Time
}

type state struct {
	store    *Store
	users    map[uuid.UUID]models.User
	projects map[uuid.UUID]models.Project
	bids     map[uuid.UUID]models.Bid
	profiles map[uuid.UUID]models.FreelancerProfile
	payments map[uuid.UUID]models.Payment
}

var (
	_ database.Querier = (*Store)(nil)
	_ database.Querier = (*state)(nil)
)

func New() *Store {
	s := &Store{clock: time.Now}
	s.st = &state{
		store:    s,
		users:    make(map[uuid.UUID]models.User),
		projects: make(map[uuid.UUID]models.Project),
		bids:     make(map[uuid.UUID]models.Bid),
		profiles: make(map[uuid.UUID]models.FreelancerProfile),
		payments: make(map[uuid.UUID]models.Payment),
	}
	return s
}

// SetClock replaces the time source. Timestamps stay strictly increasing.
func (s *Store) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

func (s *Store) now() time.Time {
	t := s.clock().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

// InTx runs fn with exclusive access to the store. Changes are discarded if fn fails.
func (s *Store) InTx(ctx context.Context, fn func(q database.Querier) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := s.st.clone()
	if err := fn(s.st); err != nil {
		*s.st = *snapshot
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (st *state) clone() *state {
	c := &state{
		store:    st.store,
		users:    make(map[uuid.UUID]models.User, len(st.users)),
		projects: make(map[uuid.UUID]models.Project, len(st.projects)),
		bids:     make(map[uuid.UUID]models.Bid, len(st.bids)),
		profiles: make(map[uuid.UUID]models.FreelancerProfile, len(st.profiles)),
		payments: make(map[uuid.UUID]models.Payment, len(st.payments)),
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.projects {
		c.projects[k] = v
	}
	for k, v := range st.bids {
		c.bids[k] = v
	}
	for k, v := range st.profiles {
		c.profiles[k] = v
	}
	for k, v := range st.payments {
		c.payments[k] = v
	}
	return c
}

func notFound(op string) error {
	return fmt.Errorf("failed to %s: %w", op, database.ErrNotFound)
}

func violation(kind, constraint, detail string) error {
	return &database.ConstraintError{Kind: kind, Constraint: constraint, Detail: detail}
}

// Users

func (st *state) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := st.users[id]
	if !ok {
		return nil, notFound("get user")
	}
	return &user, nil
}

func (st *state) CreateUser(_ context.Context, user *models.User) error {
	if _, ok := st.users[user.ID]; ok {
		return nil
	}
	for _, u := range st.users {
		if strings.EqualFold(u.Email, user.Email) {
			return violation("unique", database.ConstraintUserEmail, "email already registered")
		}
	}
	user.CreatedAt = st.store.now()
	st.users[user.ID] = *user
	return nil
}

// LockUser only checks existence; InTx already holds the store lock.
func (st *state) LockUser(_ context.Context, id uuid.UUID) error {
	if _, ok := st.users[id]; !ok {
		return notFound("lock user")
	}
	return nil
}

// DeleteUser mirrors the schema's cascades: owned projects (with their bids
// and payments), the user's bids, profile and payments go with the user.
func (st *state) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, ok := st.users[id]; !ok {
		return notFound("delete user")
	}
	for pid, p := range st.projects {
		if p.ClientID == id {
			if err := st.DeleteProject(ctx, pid); err != nil {
				return err
			}
		}
	}
	for bid, b := range st.bids {
		if b.FreelancerID == id {
			if err := st.DeleteBid(ctx, bid); err != nil {
				return err
			}
		}
	}
	for pid, p := range st.payments {
		if p.UserID == id {
			delete(st.payments, pid)
		}
	}
	delete(st.profiles, id)
	delete(st.users, id)
	return nil
}

// Projects

func (st *state) view(p models.Project) models.Project {
	p.ClientUsername = st.users[p.ClientID].Username
	p.BidCount = 0
	for _, b := range st.bids {
		if b.ProjectID == p.ID {
			p.BidCount++
		}
	}
	return p
}

func (st *state) CreateProject(_ context.Context, project *models.Project) error {
	if _, ok := st.users[project.ClientID]; !ok {
		return violation("foreign key", "projects_client_id_fkey", "client does not exist")
	}
	project.ID = uuid.New()
	project.CreatedAt = st.store.now()
	stored := *project
	stored.ClientUsername = ""
	stored.BidCount = 0
	st.projects[project.ID] = stored
	return nil
}

func (st *state) GetProject(_ context.Context, id uuid.UUID) (*models.Project, error) {
	p, ok := st.projects[id]
	if !ok {
		return nil, notFound("get project")
	}
	v := st.view(p)
	return &v, nil
}

func (st *state) GetProjectForUpdate(_ context.Context, id uuid.UUID) (*models.Project, error) {
	p, ok := st.projects[id]
	if !ok {
		return nil, notFound("lock project")
	}
	return &p, nil
}

func (st *state) listProjects(match func(p models.Project) bool) []models.Project {
	var out []models.Project
	for _, p := range st.projects {
		if match(p) {
			out = append(out, st.view(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (st *state) ListProjects(_ context.Context, search string) ([]models.Project, error) {
	needle := strings.ToLower(strings.TrimSpace(search))
	return st.listProjects(func(p models.Project) bool {
		return needle == "" ||
			strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle)
	}), nil
}

func (st *state) ListProjectsByClient(_ context.Context, clientID uuid.UUID) ([]models.Project, error) {
	return st.listProjects(func(p models.Project) bool { return p.ClientID == clientID }), nil
}

func (st *state) ListProjectsWonBy(_ context.Context, freelancerID uuid.UUID) ([]models.Project, error) {
	return st.listProjects(func(p models.Project) bool {
		if !p.WinningBidID.Valid {
			return false
		}
		b, ok := st.bids[p.WinningBidID.UUID]
		return ok && b.FreelancerID == freelancerID
	}), nil
}

func (st *state) UpdateProjectDetails(_ context.Context, project *models.Project) error {
	p, ok := st.projects[project.ID]
	if !ok {
		return notFound("update project")
	}
	p.Title = project.Title
	p.Description = project.Description
	p.BudgetMax = project.BudgetMax
	p.Deadline = project.Deadline
	st.projects[p.ID] = p
	return nil
}

func (st *state) UpdateProjectState(_ context.Context, project *models.Project) error {
	p, ok := st.projects[project.ID]
	if !ok {
		return notFound("update project state")
	}
	if err := st.checkWinningBid(p.ID, project.WinningBidID); err != nil {
		return err
	}
	if (project.Status == models.ProjectStatusCompleted) != project.FreelancerRating.Valid {
		return violation("check", "projects_rating_only_when_completed", "rating must be set exactly when completed")
	}
	p.Status = project.Status
	p.WinningBidID = project.WinningBidID
	p.FreelancerRating = project.FreelancerRating
	st.projects[p.ID] = p
	return nil
}

func (st *state) SetWinningBid(_ context.Context, projectID uuid.UUID, bidID uuid.NullUUID) error {
	p, ok := st.projects[projectID]
	if !ok {
		return notFound("set winning bid")
	}
	if err := st.checkWinningBid(projectID, bidID); err != nil {
		return err
	}
	p.WinningBidID = bidID
	st.projects[projectID] = p
	return nil
}

func (st *state) checkWinningBid(projectID uuid.UUID, bidID uuid.NullUUID) error {
	if !bidID.Valid {
		return nil
	}
	b, ok := st.bids[bidID.UUID]
	if !ok || b.ProjectID != projectID {
		return violation("foreign key", "projects_winning_bid_fkey", "winning bid must belong to the project")
	}
	return nil
}

func (st *state) DeleteProject(_ context.Context, id uuid.UUID) error {
	if _, ok := st.projects[id]; !ok {
		return notFound("delete project")
	}
	delete(st.projects, id)
	for bid, b := range st.bids {
		if b.ProjectID == id {
			delete(st.bids, bid)
		}
	}
	for pid, p := range st.payments {
		if p.ProjectID == id {
			delete(st.payments, pid)
		}
	}
	return nil
}

// Bids

func (st *state) bidView(b models.Bid) models.Bid {
	b.FreelancerUsername = st.users[b.FreelancerID].Username
	b.FreelancerRating = decimal.Zero
	if profile, ok := st.profiles[b.FreelancerID]; ok {
		b.FreelancerRating = profile.Rating
	}
	p := st.projects[b.ProjectID]
	b.ProjectTitle = p.Title
	b.ProjectStatus = p.Status
	return b
}

func (st *state) CreateBid(_ context.Context, bid *models.Bid) error {
	if _, ok := st.projects[bid.ProjectID]; !ok {
		return violation("foreign key", "bids_project_id_fkey", "project does not exist")
	}
	if _, ok := st.users[bid.FreelancerID]; !ok {
		return violation("foreign key", "bids_freelancer_id_fkey", "freelancer does not exist")
	}
	for _, b := range st.bids {
		if b.ProjectID == bid.ProjectID && b.FreelancerID == bid.FreelancerID {
			return violation("unique", database.ConstraintBidPerFreelancer, "duplicate bid")
		}
	}
	bid.ID = uuid.New()
	bid.CreatedAt = st.store.now()
	st.bids[bid.ID] = models.Bid{
		ID:               bid.ID,
		ProjectID:        bid.ProjectID,
		FreelancerID:     bid.FreelancerID,
		Amount:           bid.Amount,
		ProposedDeadline: bid.ProposedDeadline,
		ProposalText:     bid.ProposalText,
		CreatedAt:        bid.CreatedAt,
	}
	return nil
}

func (st *state) GetBid(_ context.Context, id uuid.UUID) (*models.Bid, error) {
	b, ok := st.bids[id]
	if !ok {
		return nil, notFound("get bid")
	}
	v := st.bidView(b)
	return &v, nil
}

func (st *state) listBids(match func(b models.Bid) bool) []models.Bid {
	var out []models.Bid
	for _, b := range st.bids {
		if match(b) {
			out = append(out, st.bidView(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if c := a.Amount.Cmp(b.Amount); c != 0 {
			return c < 0
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return bytes.Compare(a.ID[:], b.ID[:]) < 0
	})
	return out
}

func (st *state) ListBidsForProject(_ context.Context, projectID uuid.UUID) ([]models.Bid, error) {
	return st.listBids(func(b models.Bid) bool { return b.ProjectID == projectID }), nil
}

func (st *state) ListBidsByFreelancer(_ context.Context, freelancerID uuid.UUID) ([]models.Bid, error) {
	return st.listBids(func(b models.Bid) bool { return b.FreelancerID == freelancerID }), nil
}

func (st *state) HasBid(_ context.Context, projectID, freelancerID uuid.UUID) (bool, error) {
	for _, b := range st.bids {
		if b.ProjectID == projectID && b.FreelancerID == freelancerID {
			return true, nil
		}
	}
	return false, nil
}

func (st *state) DeleteBid(_ context.Context, id uuid.UUID) error {
	b, ok := st.bids[id]
	if !ok {
		return notFound("delete bid")
	}
	delete(st.bids, id)
	if p, ok := st.projects[b.ProjectID]; ok && p.WinningBidID.Valid && p.WinningBidID.UUID == id {
		p.WinningBidID = uuid.NullUUID{}
		st.projects[p.ID] = p
	}
	return nil
}

// Profiles

func (st *state) GetProfile(_ context.Context, userID uuid.UUID) (*models.FreelancerProfile, error) {
	profile, ok := st.profiles[userID]
	if !ok {
		return nil, notFound("get profile")
	}
	profile.Username = st.users[userID].Username
	return &profile, nil
}

func (st *state) UpsertProfileSkills(_ context.Context, userID uuid.UUID, skills string) error {
	if _, ok := st.users[userID]; !ok {
		return violation("foreign key", "freelancer_profiles_user_id_fkey", "user does not exist")
	}
	profile, ok := st.profiles[userID]
	if !ok {
		profile = models.FreelancerProfile{UserID: userID, Rating: decimal.Zero}
	}
	profile.Skills = skills
	st.profiles[userID] = profile
	return nil
}

func (st *state) SaveProfileRating(_ context.Context, userID uuid.UUID, rating decimal.Decimal, totalProjects int) error {
	if _, ok := st.users[userID]; !ok {
		return violation("foreign key", "freelancer_profiles_user_id_fkey", "user does not exist")
	}
	profile, ok := st.profiles[userID]
	if !ok {
		profile = models.FreelancerProfile{UserID: userID}
	}
	profile.Rating = rating.Round(2)
	profile.TotalProjects = totalProjects
	st.profiles[userID] = profile
	return nil
}

func (st *state) ListCompletedRatings(_ context.Context, freelancerID uuid.UUID) ([]int, error) {
	var ratings []int
	for _, p := range st.projects {
		if p.Status != models.ProjectStatusCompleted || !p.FreelancerRating.Valid || !p.WinningBidID.Valid {
			continue
		}
		if b, ok := st.bids[p.WinningBidID.UUID]; ok && b.FreelancerID == freelancerID {
			ratings = append(ratings, int(p.FreelancerRating.Int32))
		}
	}
	return ratings, nil
}

// Payments

func (st *state) CreatePayment(_ context.Context, payment *models.Payment) error {
	if _, ok := st.users[payment.UserID]; !ok {
		return violation("foreign key", "payments_user_id_fkey", "user does not exist")
	}
	if _, ok := st.projects[payment.ProjectID]; !ok {
		return violation("foreign key", "payments_project_id_fkey", "project does not exist")
	}
	for _, p := range st.payments {
		if p.TransactionReference == payment.TransactionReference {
			return violation("unique", database.ConstraintPaymentReference, "duplicate transaction reference")
		}
	}
	payment.ID = uuid.New()
	payment.CreatedAt = st.store.now()
	payment.UpdatedAt = payment.CreatedAt
	st.payments[payment.ID] = *payment
	return nil
}

func (st *state) GetPayment(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	p, ok := st.payments[id]
	if !ok {
		return nil, notFound("get payment")
	}
	return &p, nil
}

func (st *state) GetPaymentByIntentID(_ context.Context, intentID string) (*models.Payment, error) {
	for _, p := range st.payments {
		if p.ExternalIntentID.Valid && p.ExternalIntentID.String == intentID {
			return &p, nil
		}
	}
	return nil, notFound("get payment by intent")
}

func (st *state) ListPaymentsByUser(_ context.Context, userID uuid.UUID) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range st.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (st *state) SetPaymentIntent(_ context.Context, id uuid.UUID, intentID string) error {
	p, ok := st.payments[id]
	if !ok {
		return notFound("set payment intent")
	}
	p.ExternalIntentID = sql.NullString{String: intentID, Valid: true}
	p.UpdatedAt = st.store.now()
	st.payments[id] = p
	return nil
}

func (st *state) TransitionPaymentStatus(_ context.Context, id uuid.UUID, from, to models.PaymentStatus) (bool, error) {
	p, ok := st.payments[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	p.UpdatedAt = st.store.now()
	st.payments[id] = p
	return true, nil
}
