package dto

import "github.com/noah-isme/hackathon-mentor-api/internal/models"

// Reasons recorded in run summaries.
const (
	ReasonMissingIdea     = "missing idea description"
	ReasonNoMentors       = "no mentors available"
	ReasonMentorsAtCap    = "all mentors at capacity"
	ReasonAlreadyAssigned = "already assigned"
	ReasonRunCancelled    = "run cancelled before team was processed"
)

// SkippedTeam records a team excluded from a run.
type SkippedTeam struct {
	TeamID string `json:"teamId"`
	Reason string `json:"reason"`
}

// DomainError records a team domain that produced no assignment.
type DomainError struct {
	TeamID string           `json:"teamId"`
	Domain models.DomainTag `json:"domain"`
	Reason string           `json:"reason"`
}

// RunSummary is the audit report returned by one distribution run.
type RunSummary struct {
	HackathonID      string         `json:"hackathonId"`
	TotalTeams       int            `json:"totalTeams"`
	TotalAssignments int            `json:"totalAssignments"`
	SkippedTeams     []SkippedTeam  `json:"skippedTeams"`
	Errors           []DomainError  `json:"errors"`
	MentorLoads      map[string]int `json:"mentorLoads"`
	Cancelled        bool           `json:"cancelled,omitempty"`
}

// AssignmentRunResult pairs the summary with the assignments created by the run.
type AssignmentRunResult struct {
	Summary     RunSummary          `json:"summary"`
	Assignments []models.Assignment `json:"assignments"`
}

// ClassifyRequest previews domain classification for a description.
type ClassifyRequest struct {
	Text string `json:"text"`
}

// ClassifyResponse returns the classified domains.
type ClassifyResponse struct {
	Domains models.DomainList `json:"domains"`
}
