package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"freelance-backend/internal/models"
	"freelance-backend/internal/services"
)

type ProfilesHandler struct {
	svc *services.MarketplaceService
}

func NewProfilesHandler(svc *services.MarketplaceService) *ProfilesHandler {
	return &ProfilesHandler{svc: svc}
}

// GetMyProfile godoc
// @Summary     Get my freelancer profile
// @Tags        profiles
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ProfileResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /profile [get]
func (h *ProfilesHandler) GetMyProfile(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	profile, err := h.svc.GetProfile(c.Request.Context(), caller.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewProfileResponse(profile))
}

// UpdateMyProfile godoc
// @Summary     Update my freelancer profile
// @Description Saves the caller's skills. Freelancers only.
// @Tags        profiles
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.UpdateProfileRequest true "Profile"
// @Success     200 {object} models.ProfileResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /profile [put]
func (h *ProfilesHandler) UpdateMyProfile(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := h.svc.UpdateMyProfile(c.Request.Context(), caller, req.Skills)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewProfileResponse(profile))
}

// GetFreelancerProfile godoc
// @Summary     Get a freelancer's profile
// @Tags        profiles
// @Produce     json
// @Security    Bearer
// @Param       user_id path string true "Freelancer user ID (UUID)"
// @Success     200 {object} models.ProfileResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /freelancers/{user_id}/profile [get]
func (h *ProfilesHandler) GetFreelancerProfile(c *gin.Context) {
	userID, ok := pathID(c, "user_id", "profile")
	if !ok {
		return
	}

	profile, err := h.svc.GetProfile(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewProfileResponse(profile))
}
