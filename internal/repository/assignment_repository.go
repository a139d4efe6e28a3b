package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/hackathon-mentor-api/internal/models"
)

const assignmentColumns = "id, mentor_id, team_id, hackathon_id, domain, status, created_at, reviewed_at"

// AssignmentRepository persists mentor assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create inserts a new assignment within exec.
func (r *AssignmentRepository) Create(ctx context.Context, exec sqlx.ExtContext, assignment *models.Assignment) error {
	if exec == nil {
		exec = r.db
	}
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	if assignment.Status == "" {
		assignment.Status = models.AssignmentStatusPending
	}
	const query = `INSERT INTO assignments (id, mentor_id, team_id, hackathon_id, domain, status, created_at, reviewed_at)
		VALUES (:id, :mentor_id, :team_id, :hackathon_id, :domain, :status, :created_at, :reviewed_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// FindByID fetches an assignment by ID.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := "SELECT " + assignmentColumns + " FROM assignments WHERE id = $1"
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListByMentor returns a mentor's assignments, optionally filtered by status.
func (r *AssignmentRepository) ListByMentor(ctx context.Context, mentorID string, status *models.AssignmentStatus) ([]models.AssignmentDetail, error) {
	query := `
SELECT a.id, a.mentor_id, a.team_id, a.hackathon_id, a.domain, a.status, a.created_at, a.reviewed_at,
       t.team_name, t.idea_title, m.name AS mentor_name
FROM assignments a
JOIN teams t ON t.id = a.team_id
JOIN mentors m ON m.id = a.mentor_id
WHERE a.mentor_id = $1`
	args := []interface{}{mentorID}
	if status != nil {
		query += " AND a.status = $2"
		args = append(args, string(*status))
	}
	query += " ORDER BY a.created_at ASC, a.id ASC"

	var assignments []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list mentor assignments: %w", err)
	}
	return assignments, nil
}

// ListByHackathon returns every assignment created for a hackathon.
func (r *AssignmentRepository) ListByHackathon(ctx context.Context, hackathonID string) ([]models.Assignment, error) {
	query := "SELECT " + assignmentColumns + " FROM assignments WHERE hackathon_id = $1 ORDER BY created_at ASC, id ASC"
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, hackathonID); err != nil {
		return nil, fmt.Errorf("list hackathon assignments: %w", err)
	}
	return assignments, nil
}

// UpdateStatus sets the review status of an assignment.
func (r *AssignmentRepository) UpdateStatus(ctx context.Context, id string, status models.AssignmentStatus, reviewedAt *time.Time) error {
	const query = `UPDATE assignments SET status = $1, reviewed_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, string(status), reviewedAt, id)
	if err != nil {
		return fmt.Errorf("update assignment status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check assignment status rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
