package models

import "github.com/shopspring/decimal"

// DateLayout is the wire format for calendar dates (deadlines).
const DateLayout = "2006-01-02"

type CreateProjectRequest struct {
	Title       string          `json:"title" binding:"required,max=200"`
	Description string          `json:"description" binding:"required"`
	BudgetMax   decimal.Decimal `json:"budget_range_max"`
	// Deadline in YYYY-MM-DD
	Deadline string `json:"deadline" binding:"required" example:"2025-06-01"`
}

// UpdateProjectRequest carries the editable project fields. Nil fields are left unchanged.
type UpdateProjectRequest struct {
	Title       *string          `json:"title,omitempty" binding:"omitempty,max=200"`
	Description *string          `json:"description,omitempty"`
	BudgetMax   *decimal.Decimal `json:"budget_range_max,omitempty"`
	Deadline    *string          `json:"deadline,omitempty" example:"2025-06-01"`
}

type CreateBidRequest struct {
	Amount decimal.Decimal `json:"amount"`
	// ProposedDeadline in YYYY-MM-DD
	ProposedDeadline string `json:"proposed_deadline" binding:"required" example:"2025-05-01"`
	ProposalText     string `json:"proposal_text" binding:"required"`
}

type AcceptBidRequest struct {
	BidID string `json:"bid_id" binding:"required"`
}

type CompleteProjectRequest struct {
	Rating *int `json:"rating" binding:"required"`
}

type UpdateProfileRequest struct {
	Skills string `json:"skills"`
}

type CreatePaymentRequest struct {
	ProjectID string          `json:"project_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}
