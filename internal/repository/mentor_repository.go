package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/hackathon-mentor-api/internal/models"
)

const mentorColumns = "id, name, email, domains, max_load, assigned_count, created_at, updated_at"

// MentorRepository persists the mentor registry.
type MentorRepository struct {
	db *sqlx.DB
}

// NewMentorRepository constructs a MentorRepository.
func NewMentorRepository(db *sqlx.DB) *MentorRepository {
	return &MentorRepository{db: db}
}

// Create inserts a new mentor with a zero assigned count.
func (r *MentorRepository) Create(ctx context.Context, mentor *models.Mentor) error {
	if mentor.ID == "" {
		mentor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if mentor.CreatedAt.IsZero() {
		mentor.CreatedAt = now
	}
	mentor.UpdatedAt = now
	mentor.AssignedCount = 0
	const query = `INSERT INTO mentors (id, name, email, domains, max_load, assigned_count, created_at, updated_at)
		VALUES (:id, :name, :email, :domains, :max_load, :assigned_count, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, mentor); err != nil {
		return fmt.Errorf("create mentor: %w", err)
	}
	return nil
}

// FindByID fetches a mentor by ID.
func (r *MentorRepository) FindByID(ctx context.Context, id string) (*models.Mentor, error) {
	query := "SELECT " + mentorColumns + " FROM mentors WHERE id = $1"
	var mentor models.Mentor
	if err := r.db.GetContext(ctx, &mentor, query, id); err != nil {
		return nil, err
	}
	return &mentor, nil
}

// ExistsByEmail checks if another mentor uses the same email.
func (r *MentorRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	query := "SELECT 1 FROM mentors WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check mentor email: %w", err)
	}
	return true, nil
}

// List returns mentors matching the filter along with the total count.
func (r *MentorRepository) List(ctx context.Context, filter models.MentorFilter) ([]models.Mentor, int, error) {
	base := "FROM mentors WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Domain != nil {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(domains)", len(args)+1))
		args = append(args, string(*filter.Domain))
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY name ASC, id ASC LIMIT %d OFFSET %d", mentorColumns, base, size, offset)
	var mentors []models.Mentor
	if err := r.db.SelectContext(ctx, &mentors, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list mentors: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count mentors: %w", err)
	}
	return mentors, total, nil
}

// ListByDomain returns mentors covering domain, least loaded first with id as tie-break.
func (r *MentorRepository) ListByDomain(ctx context.Context, domain models.DomainTag) ([]models.Mentor, error) {
	query := "SELECT " + mentorColumns + " FROM mentors WHERE $1 = ANY(domains) ORDER BY assigned_count ASC, id ASC"
	var mentors []models.Mentor
	if err := r.db.SelectContext(ctx, &mentors, query, string(domain)); err != nil {
		return nil, fmt.Errorf("list mentors by domain %s: %w", domain, err)
	}
	return mentors, nil
}

// Update writes the organizer-editable fields. The assigned count is left untouched.
func (r *MentorRepository) Update(ctx context.Context, mentor *models.Mentor) error {
	mentor.UpdatedAt = time.Now().UTC()
	const query = `UPDATE mentors SET name = :name, email = :email, domains = :domains, max_load = :max_load, updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, mentor)
	if err != nil {
		return fmt.Errorf("update mentor: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated mentor rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetAssignedCount stores the final tracked load for a mentor within exec.
func (r *MentorRepository) SetAssignedCount(ctx context.Context, exec sqlx.ExtContext, id string, count int) error {
	if exec == nil {
		exec = r.db
	}
	const query = `UPDATE mentors SET assigned_count = $1, updated_at = $2 WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, count, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set mentor assigned count: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check mentor count rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
