package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/hackathon-mentor-api/internal/models"
)

// EvaluationRepository stores judging results, one row per team.
type EvaluationRepository struct {
	db *sqlx.DB
}

// NewEvaluationRepository constructs the repository.
func NewEvaluationRepository(db *sqlx.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// Upsert inserts or replaces the evaluation for a team.
func (r *EvaluationRepository) Upsert(ctx context.Context, evaluation *models.Evaluation) error {
	if evaluation.ID == "" {
		evaluation.ID = uuid.NewString()
	}
	if evaluation.CreatedAt.IsZero() {
		evaluation.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO evaluations (id, team_id, hackathon_id, innovation, technical, impact, presentation, total, feedback, source, created_at)
		VALUES (:id, :team_id, :hackathon_id, :innovation, :technical, :impact, :presentation, :total, :feedback, :source, :created_at)
		ON CONFLICT (team_id) DO UPDATE SET innovation = EXCLUDED.innovation, technical = EXCLUDED.technical,
			impact = EXCLUDED.impact, presentation = EXCLUDED.presentation, total = EXCLUDED.total,
			feedback = EXCLUDED.feedback, source = EXCLUDED.source, created_at = EXCLUDED.created_at`
	if _, err := r.db.NamedExecContext(ctx, query, evaluation); err != nil {
		return fmt.Errorf("upsert evaluation: %w", err)
	}
	return nil
}

// ListByHackathon returns evaluations ordered by total score descending.
func (r *EvaluationRepository) ListByHackathon(ctx context.Context, hackathonID string) ([]models.Evaluation, error) {
	const query = `SELECT id, team_id, hackathon_id, innovation, technical, impact, presentation, total, feedback, source, created_at
FROM evaluations WHERE hackathon_id = $1 ORDER BY total DESC, team_id ASC`
	var evaluations []models.Evaluation
	if err := r.db.SelectContext(ctx, &evaluations, query, hackathonID); err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return evaluations, nil
}
