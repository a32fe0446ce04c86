package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"freelance-backend/internal/models"
	"freelance-backend/internal/services"
)

type BidsHandler struct {
	svc *services.MarketplaceService
}

func NewBidsHandler(svc *services.MarketplaceService) *BidsHandler {
	return &BidsHandler{svc: svc}
}

func bidList(bids []models.Bid) models.BidListResponse {
	resp := models.BidListResponse{Bids: make([]models.BidResponse, 0, len(bids))}
	for i := range bids {
		resp.Bids = append(resp.Bids, models.NewBidResponse(&bids[i]))
	}
	return resp
}

// PlaceBid godoc
// @Summary     Place a bid
// @Description Places the caller's bid on an open project. Freelancers only, one bid per project.
// @Tags        bids
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Param       request body models.CreateBidRequest true "Bid"
// @Success     201 {object} models.BidResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id}/bids [post]
func (h *BidsHandler) PlaceBid(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "project_id", "project")
	if !ok {
		return
	}

	var req models.CreateBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	deadline, err := parseDate("proposed_deadline", req.ProposedDeadline)
	if err != nil {
		writeError(c, err)
		return
	}

	bid, err := h.svc.PlaceBid(c.Request.Context(), caller, projectID, services.BidInput{
		Amount:           req.Amount,
		ProposedDeadline: deadline,
		ProposalText:     req.ProposalText,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewBidResponse(bid))
}

// ListProjectBids godoc
// @Summary     List bids on a project
// @Description Returns the project's bids, lowest amount first. Project owner only.
// @Tags        bids
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {object} models.BidListResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id}/bids [get]
func (h *BidsHandler) ListProjectBids(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "project_id", "project")
	if !ok {
		return
	}

	bids, err := h.svc.ListProjectBids(c.Request.Context(), caller, projectID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bidList(bids))
}

// WithdrawBid godoc
// @Summary     Withdraw a bid
// @Description Deletes the caller's bid while the project is still open
// @Tags        bids
// @Security    Bearer
// @Param       bid_id path string true "Bid ID (UUID)"
// @Success     204
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /bids/{bid_id} [delete]
func (h *BidsHandler) WithdrawBid(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	bidID, ok := pathID(c, "bid_id", "bid")
	if !ok {
		return
	}

	if err := h.svc.WithdrawBid(c.Request.Context(), caller, bidID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MyBids godoc
// @Summary     List my bids
// @Tags        bids
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.BidListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /my-bids [get]
func (h *BidsHandler) MyBids(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	bids, err := h.svc.MyBids(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bidList(bids))
}
