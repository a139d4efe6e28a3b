package models

import "time"

// AssignmentStatus tracks the review lifecycle of an assignment.
type AssignmentStatus string

const (
	AssignmentStatusPending  AssignmentStatus = "pending"
	AssignmentStatusReviewed AssignmentStatus = "reviewed"
)

// Valid reports whether the status is known.
func (s AssignmentStatus) Valid() bool {
	return s == AssignmentStatusPending || s == AssignmentStatusReviewed
}

// CanTransitionTo enforces the one-way pending -> reviewed lifecycle.
func (s AssignmentStatus) CanTransitionTo(next AssignmentStatus) bool {
	if s == next {
		return true
	}
	return s == AssignmentStatusPending && next == AssignmentStatusReviewed
}

// Assignment routes one of a team's domains to a mentor.
type Assignment struct {
	ID          string           `db:"id" json:"id"`
	MentorID    string           `db:"mentor_id" json:"mentor_id"`
	TeamID      string           `db:"team_id" json:"team_id"`
	HackathonID string           `db:"hackathon_id" json:"hackathon_id"`
	Domain      DomainTag        `db:"domain" json:"domain"`
	Status      AssignmentStatus `db:"status" json:"status"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	ReviewedAt  *time.Time       `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

// AssignmentDetail enriches an assignment with display names.
type AssignmentDetail struct {
	Assignment
	TeamName   string `db:"team_name" json:"team_name"`
	IdeaTitle  string `db:"idea_title" json:"idea_title"`
	MentorName string `db:"mentor_name" json:"mentor_name"`
}
