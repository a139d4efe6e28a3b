package models

// UserRole is the role claim issued by the identity provider.
type UserRole string

const (
	RoleAdmin       UserRole = "ADMIN"
	RoleOrganizer   UserRole = "ORGANIZER"
	RoleMentor      UserRole = "MENTOR"
	RoleJudge       UserRole = "JUDGE"
	RoleParticipant UserRole = "PARTICIPANT"
)

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
