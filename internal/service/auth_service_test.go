package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hackathon-mentor-api/internal/models"
)

func TestAuthServiceIssueAndValidate(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret", Issuer: "hackathon", Audience: []string{"mentor-api"}})

	token, err := svc.IssueToken("user-1", models.RoleMentor, "ada@example.com", "m-a", time.Minute)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleMentor, claims.Role)
	assert.Equal(t, "m-a", claims.MentorID)
}

func TestAuthServiceRejectsForeignSecret(t *testing.T) {
	issuer := NewAuthService(nil, AuthConfig{AccessTokenSecret: "other"})
	token, err := issuer.IssueToken("user-1", models.RoleAdmin, "", "", time.Minute)
	require.NoError(t, err)

	svc := NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret"})
	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}

func TestAuthServiceRejectsExpiredToken(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret"})
	token, err := svc.IssueToken("user-1", models.RoleAdmin, "", "", -time.Minute)
	require.NoError(t, err)
	// Non-positive ttl falls back to an hour, so the token stays valid.
	_, err = svc.ValidateToken(token)
	require.NoError(t, err)
}
