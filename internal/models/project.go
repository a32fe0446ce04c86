package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProjectStatus string

const (
	ProjectStatusOpen       ProjectStatus = "open"
	ProjectStatusClosed     ProjectStatus = "closed"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
)

// Accepted reports whether a bid has been accepted on a project in this status.
func (s ProjectStatus) Accepted() bool {
	return s == ProjectStatusClosed || s == ProjectStatusInProgress || s == ProjectStatusCompleted
}

type Project struct {
	ID               uuid.UUID
	Title            string
	Description      string
	ClientID         uuid.UUID
	ClientUsername   string
	BudgetMax        decimal.Decimal
	Status           ProjectStatus
	CreatedAt        time.Time
	Deadline         time.Time
	WinningBidID     uuid.NullUUID
	FreelancerRating sql.NullInt32
	BidCount         int
}

type Bid struct {
	ID                 uuid.UUID
	ProjectID          uuid.UUID
	FreelancerID       uuid.UUID
	FreelancerUsername string
	FreelancerRating   decimal.Decimal
	Amount             decimal.Decimal
	ProposedDeadline   time.Time
	ProposalText       string
	CreatedAt          time.Time
	ProjectTitle       string
	ProjectStatus      ProjectStatus
}

type FreelancerProfile struct {
	UserID        uuid.UUID
	Username      string
	Skills        string
	Rating        decimal.Decimal
	TotalProjects int
}
