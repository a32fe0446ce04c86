package models

func NewProjectResponse(p *Project, winning *Bid) ProjectResponse {
	resp := ProjectResponse{
		ID:             p.ID.String(),
		Title:          p.Title,
		Description:    p.Description,
		ClientUsername: p.ClientUsername,
		BudgetMax:      p.BudgetMax.Round(2),
		Status:         p.Status,
		CreatedAt:      p.CreatedAt,
		Deadline:       p.Deadline.Format(DateLayout),
		BidCount:       p.BidCount,
	}
	if p.FreelancerRating.Valid {
		rating := int(p.FreelancerRating.Int32)
		resp.FreelancerRating = &rating
	}
	if p.WinningBidID.Valid {
		id := p.WinningBidID.UUID.String()
		resp.WinningBid = &id
	}
	if winning != nil {
		resp.WinningBidDetails = &WinningBidResponse{
			Freelancer:       winning.FreelancerUsername,
			Amount:           winning.Amount.Round(2),
			ProposedDeadline: winning.ProposedDeadline.Format(DateLayout),
			ProposalText:     winning.ProposalText,
		}
	}
	return resp
}

func NewBidResponse(b *Bid) BidResponse {
	return BidResponse{
		ID:                 b.ID.String(),
		Project:            b.ProjectID.String(),
		ProjectTitle:       b.ProjectTitle,
		ProjectStatus:      b.ProjectStatus,
		FreelancerUsername: b.FreelancerUsername,
		FreelancerRating:   b.FreelancerRating.Round(2),
		Amount:             b.Amount.Round(2),
		ProposedDeadline:   b.ProposedDeadline.Format(DateLayout),
		ProposalText:       b.ProposalText,
		CreatedAt:          b.CreatedAt,
	}
}

func NewProfileResponse(p *FreelancerProfile) ProfileResponse {
	return ProfileResponse{
		UserID:        p.UserID.String(),
		Username:      p.Username,
		Skills:        p.Skills,
		Rating:        p.Rating.Round(2),
		TotalProjects: p.TotalProjects,
	}
}

func NewPaymentResponse(p *Payment) PaymentResponse {
	return PaymentResponse{
		ID:                   p.ID.String(),
		User:                 p.UserID.String(),
		Project:              p.ProjectID.String(),
		Amount:               p.Amount.Round(2),
		Status:               p.Status,
		TransactionReference: p.TransactionReference,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}
