package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hackathon-mentor-api/internal/dto"
	"github.com/noah-isme/hackathon-mentor-api/internal/models"
	"github.com/noah-isme/hackathon-mentor-api/internal/service"
	appErrors "github.com/noah-isme/hackathon-mentor-api/pkg/errors"
	"github.com/noah-isme/hackathon-mentor-api/pkg/export"
	"github.com/noah-isme/hackathon-mentor-api/pkg/response"
)

type assignmentService interface {
	ListByMentor(ctx context.Context, mentorID string, status *models.AssignmentStatus) ([]models.AssignmentDetail, error)
	ListByHackathon(ctx context.Context, hackathonID string) ([]models.Assignment, error)
	UpdateStatus(ctx context.Context, id string, status models.AssignmentStatus, actor *models.JWTClaims) (*models.Assignment, error)
	ExportByMentor(ctx context.Context, mentorID string, status *models.AssignmentStatus, format export.Format) (*service.ExportFile, error)
}

// AssignmentHandler serves the assignment store.
type AssignmentHandler struct {
	assignments assignmentService
}

// NewAssignmentHandler constructs an AssignmentHandler.
func NewAssignmentHandler(assignments assignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// ListByMentor godoc
// @Summary List a mentor's assignments
// @Tags Assignments
// @Produce json
// @Param id path string true "Mentor ID"
// @Param status query string false "pending or reviewed"
// @Success 200 {object} response.Envelope
// @Router /mentors/{id}/assignments [get]
func (h *AssignmentHandler) ListByMentor(c *gin.Context) {
	status, err := statusQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.assignments.ListByMentor(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// ExportByMentor godoc
// @Summary Export a mentor's assignments
// @Tags Assignments
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Mentor ID"
// @Param status query string false "pending or reviewed"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /mentors/{id}/assignments/export [get]
func (h *AssignmentHandler) ExportByMentor(c *gin.Context) {
	status, err := statusQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, err.Error()))
		return
	}
	file, err := h.assignments.ExportByMentor(c.Request.Context(), c.Param("id"), status, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

// ListByHackathon godoc
// @Summary List a hackathon's assignments
// @Tags Assignments
// @Produce json
// @Param id path string true "Hackathon ID"
// @Success 200 {object} response.Envelope
// @Router /hackathons/{id}/assignments [get]
func (h *AssignmentHandler) ListByHackathon(c *gin.Context) {
	items, err := h.assignments.ListByHackathon(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// UpdateStatus godoc
// @Summary Mark an assignment reviewed
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body dto.UpdateAssignmentStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments/{id}/status [patch]
func (h *AssignmentHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateAssignmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	status := models.AssignmentStatus(req.Status)
	if !status.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "status must be pending or reviewed"))
		return
	}
	assignment, err := h.assignments.UpdateStatus(c.Request.Context(), c.Param("id"), status, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}
