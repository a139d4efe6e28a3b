package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hackathon-mentor-api/internal/dto"
	"github.com/noah-isme/hackathon-mentor-api/internal/models"
	appErrors "github.com/noah-isme/hackathon-mentor-api/pkg/errors"
	"github.com/noah-isme/hackathon-mentor-api/pkg/response"
)

type distributionService interface {
	Distribute(ctx context.Context, hackathonID string) (*dto.AssignmentRunResult, error)
	LatestSummary(ctx context.Context, hackathonID string) (*dto.RunSummary, error)
}

type domainClassifier interface {
	Classify(ctx context.Context, text string) models.DomainList
}

// DistributionHandler triggers mentor distribution runs.
type DistributionHandler struct {
	scheduler  distributionService
	classifier domainClassifier
}

// NewDistributionHandler constructs a DistributionHandler.
func NewDistributionHandler(scheduler distributionService, classifier domainClassifier) *DistributionHandler {
	return &DistributionHandler{scheduler: scheduler, classifier: classifier}
}

// Distribute godoc
// @Summary Distribute mentors across a hackathon's teams
// @Description Classifies every team, assigns the least loaded eligible mentor per domain and returns the run summary.
// @Tags Distribution
// @Produce json
// @Param id path string true "Hackathon ID"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /hackathons/{id}/distribute [post]
func (h *DistributionHandler) Distribute(c *gin.Context) {
	result, err := h.scheduler.Distribute(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, map[string]interface{}{
		"cancelled": result.Summary.Cancelled,
	})
}

// LatestRun godoc
// @Summary Latest distribution summary
// @Tags Distribution
// @Produce json
// @Param id path string true "Hackathon ID"
// @Success 200 {object} response.Envelope
// @Router /hackathons/{id}/assignment-runs/latest [get]
func (h *DistributionHandler) LatestRun(c *gin.Context) {
	summary, err := h.scheduler.LatestSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Classify godoc
// @Summary Preview domain classification
// @Tags Distribution
// @Accept json
// @Produce json
// @Param payload body dto.ClassifyRequest true "Idea description"
// @Success 200 {object} response.Envelope
// @Router /domains/classify [post]
func (h *DistributionHandler) Classify(c *gin.Context) {
	var req dto.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid classify payload"))
		return
	}
	domains := h.classifier.Classify(c.Request.Context(), req.Text)
	response.JSON(c, http.StatusOK, dto.ClassifyResponse{Domains: domains}, nil)
}
