package models

import (
	"time"

	"github.com/lib/pq"
)

// Team is a hackathon team and its project submission. The scheduler writes
// ExtractedDomains and AssignedMentors back onto it after classification.
type Team struct {
	ID               string         `db:"id" json:"id"`
	HackathonID      string         `db:"hackathon_id" json:"hackathon_id"`
	TeamName         string         `db:"team_name" json:"team_name"`
	IdeaTitle        string         `db:"idea_title" json:"idea_title"`
	IdeaDescription  string         `db:"idea_description" json:"idea_description"`
	ExtractedDomains DomainList     `db:"extracted_domains" json:"extracted_domains"`
	AssignedMentors  pq.StringArray `db:"assigned_mentors" json:"assigned_mentors"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}
