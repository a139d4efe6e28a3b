package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hackathon-mentor-api/internal/dto"
	"github.com/noah-isme/hackathon-mentor-api/internal/models"
	"github.com/noah-isme/hackathon-mentor-api/pkg/config"
	appErrors "github.com/noah-isme/hackathon-mentor-api/pkg/errors"
	"github.com/noah-isme/hackathon-mentor-api/pkg/response"
)

type evaluationService interface {
	Enqueue(ctx context.Context, hackathonID string, weights *config.ScoringWeights) (*dto.EvaluationJobStatus, error)
	JobStatus(id string) (*dto.EvaluationJobStatus, error)
	List(ctx context.Context, hackathonID string) ([]models.Evaluation, error)
}

// EvaluationHandler exposes AI judging.
type EvaluationHandler struct {
	evaluations evaluationService
}

// NewEvaluationHandler constructs an EvaluationHandler.
func NewEvaluationHandler(evaluations evaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations}
}

// Start godoc
// @Summary Queue AI evaluation of every team
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param id path string true "Hackathon ID"
// @Param payload body dto.EvaluateHackathonRequest false "Optional scoring weights"
// @Success 202 {object} response.Envelope
// @Router /hackathons/{id}/evaluations [post]
func (h *EvaluationHandler) Start(c *gin.Context) {
	var req dto.EvaluateHackathonRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid evaluation payload"))
			return
		}
	}
	status, err := h.evaluations.Enqueue(c.Request.Context(), c.Param("id"), req.Weights)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, status)
}

// List godoc
// @Summary List stored evaluations
// @Tags Evaluations
// @Produce json
// @Param id path string true "Hackathon ID"
// @Success 200 {object} response.Envelope
// @Router /hackathons/{id}/evaluations [get]
func (h *EvaluationHandler) List(c *gin.Context) {
	items, err := h.evaluations.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Job godoc
// @Summary Evaluation job status
// @Tags Evaluations
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /evaluation-jobs/{id} [get]
func (h *EvaluationHandler) Job(c *gin.Context) {
	status, err := h.evaluations.JobStatus(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}
