package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"freelance-backend/internal/models"
	"freelance-backend/internal/services"
)

type ProjectsHandler struct {
	svc *services.MarketplaceService
}

func NewProjectsHandler(svc *services.MarketplaceService) *ProjectsHandler {
	return &ProjectsHandler{svc: svc}
}

func projectList(projects []models.Project) models.ProjectListResponse {
	resp := models.ProjectListResponse{Projects: make([]models.ProjectResponse, 0, len(projects))}
	for i := range projects {
		resp.Projects = append(resp.Projects, models.NewProjectResponse(&projects[i], nil))
	}
	return resp
}

// ListProjects godoc
// @Summary     List projects
// @Description Returns all projects, newest first. The optional q parameter filters on title or description.
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       q query string false "Free-text search"
// @Success     200 {object} models.ProjectListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /projects [get]
func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	projects, err := h.svc.ListProjects(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, projectList(projects))
}

// CreateProject godoc
// @Summary     Create a project
// @Description Creates an open project. Only clients can create projects.
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateProjectRequest true "Project"
// @Success     201 {object} models.ProjectResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /projects [post]
func (h *ProjectsHandler) CreateProject(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	deadline, err := parseDate("deadline", req.Deadline)
	if err != nil {
		writeError(c, err)
		return
	}

	project, err := h.svc.CreateProject(c.Request.Context(), caller, services.ProjectInput{
		Title:       req.Title,
		Description: req.Description,
		BudgetMax:   req.BudgetMax,
		Deadline:    deadline,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewProjectResponse(project, nil))
}

// GetProject godoc
// @Summary     Get project details
// @Description Returns a project with its bid count and winning bid
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {object} models.ProjectResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id} [get]
func (h *ProjectsHandler) GetProject(c *gin.Context) {
	projectID, ok := pathID(c, "project_id", "project")
	if !ok {
		return
	}

	detail, err := h.svc.GetProject(c.Request.Context(), projectID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewProjectResponse(detail.Project, detail.WinningBid))
}

// UpdateProject godoc
// @Summary     Update a project
// @Description Edits title, description, budget or deadline. Owner only.
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Param       request body models.UpdateProjectRequest true "Fields to change"
// @Success     200 {object} models.ProjectResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id} [patch]
func (h *ProjectsHandler) UpdateProject(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "project_id", "project")
	if !ok {
		return
	}

	var req models.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	patch := services.ProjectPatch{
		Title:       req.Title,
		Description: req.Description,
		BudgetMax:   req.BudgetMax,
	}
	if req.Deadline != nil {
		deadline, err := parseDate("deadline", *req.Deadline)
		if err != nil {
			writeError(c, err)
			return
		}
		patch.Deadline = &deadline
	}

	project, err := h.svc.UpdateProject(c.Request.Context(), caller, projectID, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewProjectResponse(project, nil))
}

// DeleteProject godoc
// @Summary     Delete a project
// @Description Deletes a project with its bids and payments. Owner only.
// @Tags        projects
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     204
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id} [delete]
func (h *ProjectsHandler) DeleteProject(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "project_id", "project")
	if !ok {
		return
	}

	if err := h.svc.DeleteProject(c.Request.Context(), caller, projectID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AcceptBid godoc
// @Summary     Accept a bid
// @Description Closes bidding on an open project and records the chosen bid as the winner. Owner only.
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Param       request body models.AcceptBidRequest true "Bid to accept"
// @Success     200 {object} models.ProjectActionResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /projects/{project_id}/accept-bid [post]
func (h *ProjectsHandler) AcceptBid(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "project_id", "project")
	if !ok {
		return
	}

	var req models.AcceptBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	bidID, err := uuid.Parse(req.BidID)
	if err != nil {
		writeError(c, services.NewInvalidReferenceError("Invalid bid ID"))
		return
	}

	detail, err := h.svc.AcceptBid(c.Request.Context(), caller, projectID, bidID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ProjectActionResponse{
		Message: "Bid accepted successfully",
		Project: models.NewProjectResponse(detail.Project, detail.WinningBid),
	})
}

// CompleteProject godoc
// @Summary     Complete a project
// @Description Marks a closed project completed and rates the winning freelancer (1-5). Owner only.
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Param       request body models.CompleteProjectRequest true "Rating"
// @Success     200 {object} models.ProjectActionResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /projects/{project_id}/complete [post]
func (h *ProjectsHandler) CompleteProject(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "project_id", "project")
	if !ok {
		return
	}

	var req models.CompleteProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			writeError(c, services.NewValidationError("Rating must be an integer between %d and %d.", services.MinRating, services.MaxRating))
			return
		}
		writeError(c, services.NewValidationError("Rating is required"))
		return
	}

	detail, err := h.svc.CompleteProject(c.Request.Context(), caller, projectID, *req.Rating)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ProjectActionResponse{
		Message: "Project marked as completed",
		Project: models.NewProjectResponse(detail.Project, detail.WinningBid),
	})
}

// MyProjects godoc
// @Summary     List my projects
// @Description Clients get the projects they own. Freelancers get the projects they hold the winning bid on.
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ProjectListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /my-projects [get]
func (h *ProjectsHandler) MyProjects(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	projects, err := h.svc.MyProjects(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, projectList(projects))
}
