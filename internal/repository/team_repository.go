package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/hackathon-mentor-api/internal/models"
)

const teamColumns = "id, hackathon_id, team_name, idea_title, idea_description, extracted_domains, assigned_mentors, created_at, updated_at"

// TeamRepository reads team submissions and stores distribution outcomes on them.
type TeamRepository struct {
	db *sqlx.DB
}

// NewTeamRepository constructs a TeamRepository.
func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// ListByHackathon returns teams in submission order.
func (r *TeamRepository) ListByHackathon(ctx context.Context, hackathonID string) ([]models.Team, error) {
	query := "SELECT " + teamColumns + " FROM teams WHERE hackathon_id = $1 ORDER BY created_at ASC, id ASC"
	var teams []models.Team
	if err := r.db.SelectContext(ctx, &teams, query, hackathonID); err != nil {
		return nil, fmt.Errorf("list teams by hackathon: %w", err)
	}
	return teams, nil
}

// UpdateAssignmentOutcome writes extracted domains and assigned mentors back onto the team.
func (r *TeamRepository) UpdateAssignmentOutcome(ctx context.Context, exec sqlx.ExtContext, teamID string, domains models.DomainList, mentorIDs []string) error {
	if exec == nil {
		exec = r.db
	}
	if mentorIDs == nil {
		mentorIDs = []string{}
	}
	const query = `UPDATE teams SET extracted_domains = $1, assigned_mentors = $2, updated_at = $3 WHERE id = $4`
	result, err := exec.ExecContext(ctx, query, domains, pq.Array(mentorIDs), time.Now().UTC(), teamID)
	if err != nil {
		return fmt.Errorf("update team assignment outcome: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check team outcome rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
