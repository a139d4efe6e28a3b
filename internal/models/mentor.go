package models

import "time"

// Mentor is a domain expert who reviews team submissions up to MaxLoad at a time.
// AssignedCount is written only by the assignment scheduler's commit step.
type Mentor struct {
	ID            string     `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Email         string     `db:"email" json:"email"`
	Domains       DomainList `db:"domains" json:"domains"`
	MaxLoad       int        `db:"max_load" json:"max_load"`
	AssignedCount int        `db:"assigned_count" json:"assigned_count"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// HasCapacity reports whether load is below MaxLoad.
func (m Mentor) HasCapacity(load int) bool {
	return load < m.MaxLoad
}

// MentorFilter narrows mentor listings.
type MentorFilter struct {
	Domain   *DomainTag
	Page     int
	PageSize int
}
