package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"freelance-backend/internal/models"
)

const projectSelect = `
	SELECT p.id, p.title, p.description, p.client_id, u.username, p.budget_max, p.status,
	       p.created_at, p.deadline, p.winning_bid_id, p.freelancer_rating,
	       (SELECT COUNT(*) FROM bids b WHERE b.project_id = p.id) AS bid_count
	FROM projects p
	JOIN users u ON u.id = p.client_id`

func scanProject(row rowScanner) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.ClientID, &p.ClientUsername, &p.BudgetMax, &p.Status,
		&p.CreatedAt, &p.Deadline, &p.WinningBidID, &p.FreelancerRating, &p.BidCount,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (q *Queries) CreateProject(ctx context.Context, project *models.Project) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO projects (title, description, client_id, budget_max, status, deadline)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, project.Title, project.Description, project.ClientID, project.BudgetMax,
		project.Status, project.Deadline).Scan(&project.ID, &project.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", mapError(err))
	}
	return nil
}

func (q *Queries) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := scanProject(q.db.QueryRowContext(ctx, projectSelect+`
		WHERE p.id = $1
	`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", mapError(err))
	}
	return project, nil
}

// GetProjectForUpdate reads the project row and holds a row lock on it until
// the surrounding transaction ends. Joined fields (client username, bid count)
// are not populated.
func (q *Queries) GetProjectForUpdate(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	err := q.db.QueryRowContext(ctx, `
		SELECT id, title, description, client_id, budget_max, status, created_at, deadline,
		       winning_bid_id, freelancer_rating
		FROM projects
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(
		&p.ID, &p.Title, &p.Description, &p.ClientID, &p.BudgetMax, &p.Status, &p.CreatedAt,
		&p.Deadline, &p.WinningBidID, &p.FreelancerRating,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to lock project: %w", mapError(err))
	}
	return &p, nil
}

// ListProjects returns projects newest first. A non-empty search matches
// title or description case-insensitively.
func (q *Queries) ListProjects(ctx context.Context, search string) ([]models.Project, error) {
	return q.listProjects(ctx, projectSelect+`
		WHERE $1 = '' OR p.title ILIKE '%' || $1 || '%' ESCAPE '\' OR p.description ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY p.created_at DESC
	`, escapeLike(search))
}

func (q *Queries) ListProjectsByClient(ctx context.Context, clientID uuid.UUID) ([]models.Project, error) {
	return q.listProjects(ctx, projectSelect+`
		WHERE p.client_id = $1
		ORDER BY p.created_at DESC
	`, clientID)
}

// ListProjectsWonBy returns projects whose current winning bid belongs to the freelancer.
func (q *Queries) ListProjectsWonBy(ctx context.Context, freelancerID uuid.UUID) ([]models.Project, error) {
	return q.listProjects(ctx, projectSelect+`
		JOIN bids wb ON wb.id = p.winning_bid_id
		WHERE wb.freelancer_id = $1
		ORDER BY p.created_at DESC
	`, freelancerID)
}

func (q *Queries) listProjects(ctx context.Context, query string, args ...interface{}) ([]models.Project, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", mapError(err))
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}

func (q *Queries) UpdateProjectDetails(ctx context.Context, project *models.Project) error {
	return q.execOne(ctx, "update project", `
		UPDATE projects
		SET title = $1, description = $2, budget_max = $3, deadline = $4
		WHERE id = $5
	`, project.Title, project.Description, project.BudgetMax, project.Deadline, project.ID)
}

// UpdateProjectState writes the lifecycle columns: status, winning bid and rating.
func (q *Queries) UpdateProjectState(ctx context.Context, project *models.Project) error {
	return q.execOne(ctx, "update project state", `
		UPDATE projects
		SET status = $1, winning_bid_id = $2, freelancer_rating = $3
		WHERE id = $4
	`, project.Status, project.WinningBidID, project.FreelancerRating, project.ID)
}

func (q *Queries) SetWinningBid(ctx context.Context, projectID uuid.UUID, bidID uuid.NullUUID) error {
	return q.execOne(ctx, "set winning bid", `
		UPDATE projects
		SET winning_bid_id = $1
		WHERE id = $2
	`, bidID, projectID)
}

// DeleteProject removes the project; bids and payments cascade.
func (q *Queries) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return q.execOne(ctx, "delete project", `
		DELETE FROM projects
		WHERE id = $1
	`, id)
}

// execOne executes a statement expected to touch exactly one row.
func (q *Queries) execOne(ctx context.Context, op, query string, args ...interface{}) error {
	result, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, mapError(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to %s: %w", op, ErrNotFound)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(strings.TrimSpace(s))
}
