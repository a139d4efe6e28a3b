package models

import "time"

// EvaluationSource records whether scores came from the AI judge or the fallback.
type EvaluationSource string

const (
	EvaluationSourceAI       EvaluationSource = "ai"
	EvaluationSourceFallback EvaluationSource = "fallback"
)

// Evaluation stores the judging outcome for a team.
type Evaluation struct {
	ID           string           `db:"id" json:"id"`
	TeamID       string           `db:"team_id" json:"team_id"`
	HackathonID  string           `db:"hackathon_id" json:"hackathon_id"`
	Innovation   float64          `db:"innovation" json:"innovation"`
	Technical    float64          `db:"technical" json:"technical"`
	Impact       float64          `db:"impact" json:"impact"`
	Presentation float64          `db:"presentation" json:"presentation"`
	Total        float64          `db:"total" json:"total"`
	Feedback     string           `db:"feedback" json:"feedback"`
	Source       EvaluationSource `db:"source" json:"source"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}
