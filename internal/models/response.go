package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProjectResponse struct {
	ID                string              `json:"id"`
	Title             string              `json:"title"`
	Description       string              `json:"description"`
	ClientUsername    string              `json:"client_username"`
	BudgetMax         decimal.Decimal     `json:"budget_range_max"`
	Status            ProjectStatus       `json:"status"`
	CreatedAt         time.Time           `json:"created_at"`
	Deadline          string              `json:"deadline"`
	BidCount          int                 `json:"bid_count"`
	FreelancerRating  *int                `json:"freelancer_rating"`
	WinningBid        *string             `json:"winning_bid"`
	WinningBidDetails *WinningBidResponse `json:"winning_bid_details"`
}

type WinningBidResponse struct {
	Freelancer       string          `json:"freelancer"`
	Amount           decimal.Decimal `json:"amount"`
	ProposedDeadline string          `json:"proposed_deadline"`
	ProposalText     string          `json:"proposal_text"`
}

type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

// ProjectActionResponse is returned by accept-bid and complete.
type ProjectActionResponse struct {
	Message string          `json:"message"`
	Project ProjectResponse `json:"project"`
}

type BidResponse struct {
	ID                 string          `json:"id"`
	Project            string          `json:"project"`
	ProjectTitle       string          `json:"project_title"`
	ProjectStatus      ProjectStatus   `json:"project_status"`
	FreelancerUsername string          `json:"freelancer_username"`
	FreelancerRating   decimal.Decimal `json:"freelancer_rating"`
	Amount             decimal.Decimal `json:"amount"`
	ProposedDeadline   string          `json:"proposed_deadline"`
	ProposalText       string          `json:"proposal_text"`
	CreatedAt          time.Time       `json:"created_at"`
}

type BidListResponse struct {
	Bids []BidResponse `json:"bids"`
}

type ProfileResponse struct {
	UserID        string          `json:"user_id"`
	Username      string          `json:"username"`
	Skills        string          `json:"skills"`
	Rating        decimal.Decimal `json:"rating"`
	TotalProjects int             `json:"total_projects"`
}

type PaymentResponse struct {
	ID                   string          `json:"id"`
	User                 string          `json:"user"`
	Project              string          `json:"project"`
	Amount               decimal.Decimal `json:"amount"`
	Status               PaymentStatus   `json:"status"`
	TransactionReference string          `json:"transaction_reference"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

type PaymentListResponse struct {
	Payments []PaymentResponse `json:"payments"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
