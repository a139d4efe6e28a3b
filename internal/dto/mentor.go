package dto

// CreateMentorRequest registers a mentor.
type CreateMentorRequest struct {
	Name    string   `json:"name" validate:"required,max=255"`
	Email   string   `json:"email" validate:"required,email"`
	Domains []string `json:"domains" validate:"required,min=1,dive,required"`
	MaxLoad int      `json:"maxLoad" validate:"required,min=1"`
}

// UpdateMentorRequest patches mutable mentor fields. The assigned count is not patchable.
type UpdateMentorRequest struct {
	Name    *string  `json:"name" validate:"omitempty,max=255"`
	Email   *string  `json:"email" validate:"omitempty,email"`
	Domains []string `json:"domains" validate:"omitempty,min=1,dive,required"`
	MaxLoad *int     `json:"maxLoad" validate:"omitempty,min=1"`
}

// UpdateAssignmentStatusRequest moves an assignment through its lifecycle.
type UpdateAssignmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending reviewed"`
}
