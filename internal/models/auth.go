package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the verified identity attached to each authenticated request.
// MentorID is set when the subject is a mentor so self-service routes can match it.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	MentorID string   `json:"mentor_id,omitempty"`
	jwt.RegisteredClaims
}
