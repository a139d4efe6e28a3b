package dto

import (
	"time"

	"github.com/noah-isme/hackathon-mentor-api/internal/models"
	"github.com/noah-isme/hackathon-mentor-api/pkg/config"
)

// EvaluateHackathonRequest starts a judging batch. Nil weights use configured defaults.
type EvaluateHackathonRequest struct {
	Weights *config.ScoringWeights `json:"weights"`
}

// EvaluationFailure records a team whose evaluation could not be stored.
type EvaluationFailure struct {
	TeamID string `json:"teamId"`
	Reason string `json:"reason"`
}

// EvaluationBatchResult aggregates one judging batch.
type EvaluationBatchResult struct {
	HackathonID string              `json:"hackathonId"`
	Evaluated   int                 `json:"evaluated"`
	Fallbacks   int                 `json:"fallbacks"`
	Results     []models.Evaluation `json:"results"`
	Failures    []EvaluationFailure `json:"failures"`
}

// EvaluationJobState is the lifecycle of an asynchronous judging batch.
type EvaluationJobState string

const (
	EvaluationJobQueued    EvaluationJobState = "queued"
	EvaluationJobRunning   EvaluationJobState = "running"
	EvaluationJobCompleted EvaluationJobState = "completed"
	EvaluationJobFailed    EvaluationJobState = "failed"
)

// EvaluationJobStatus is returned when polling a judging batch.
type EvaluationJobStatus struct {
	JobID       string                 `json:"jobId"`
	HackathonID string                 `json:"hackathonId"`
	State       EvaluationJobState     `json:"state"`
	Result      *EvaluationBatchResult `json:"result,omitempty"`
	Error       string                 `json:"error,omitempty"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}
