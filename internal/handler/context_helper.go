package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hackathon-mentor-api/internal/middleware"
	"github.com/noah-isme/hackathon-mentor-api/internal/models"
	appErrors "github.com/noah-isme/hackathon-mentor-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func statusQuery(c *gin.Context) (*models.AssignmentStatus, error) {
	raw := c.Query("status")
	if raw == "" {
		return nil, nil
	}
	status := models.AssignmentStatus(raw)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be pending or reviewed")
	}
	return &status, nil
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if value, err := strconv.Atoi(c.Query(key)); err == nil {
		return value
	}
	return fallback
}
