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

type mentorService interface {
	Create(ctx context.Context, req dto.CreateMentorRequest) (*models.Mentor, error)
	Get(ctx context.Context, id string) (*models.Mentor, error)
	List(ctx context.Context, filter models.MentorFilter) ([]models.Mentor, *models.Pagination, error)
	ListByDomain(ctx context.Context, domain models.DomainTag) ([]models.Mentor, error)
	Update(ctx context.Context, id string, req dto.UpdateMentorRequest) (*models.Mentor, error)
}

// MentorHandler exposes the mentor registry.
type MentorHandler struct {
	mentors mentorService
}

// NewMentorHandler constructs a MentorHandler.
func NewMentorHandler(mentors mentorService) *MentorHandler {
	return &MentorHandler{mentors: mentors}
}

// List godoc
// @Summary List mentors
// @Tags Mentors
// @Produce json
// @Param domain query string false "Only mentors covering this domain, least loaded first"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /mentors [get]
func (h *MentorHandler) List(c *gin.Context) {
	if raw := c.Query("domain"); raw != "" {
		domain, ok := models.ParseDomainTag(raw)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrInvalidDomain, "unknown domain "+raw))
			return
		}
		mentors, err := h.mentors.ListByDomain(c.Request.Context(), domain)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, mentors, nil)
		return
	}

	filter := models.MentorFilter{
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "limit", 20),
	}
	mentors, pagination, err := h.mentors.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentors, pagination)
}

// Get godoc
// @Summary Get mentor detail
// @Tags Mentors
// @Produce json
// @Param id path string true "Mentor ID"
// @Success 200 {object} response.Envelope
// @Router /mentors/{id} [get]
func (h *MentorHandler) Get(c *gin.Context) {
	mentor, err := h.mentors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentor, nil)
}

// Create godoc
// @Summary Register mentor
// @Tags Mentors
// @Accept json
// @Produce json
// @Param payload body dto.CreateMentorRequest true "Mentor payload"
// @Success 201 {object} response.Envelope
// @Router /mentors [post]
func (h *MentorHandler) Create(c *gin.Context) {
	var req dto.CreateMentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid mentor payload"))
		return
	}
	mentor, err := h.mentors.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, mentor)
}

// Update godoc
// @Summary Update mentor
// @Tags Mentors
// @Accept json
// @Produce json
// @Param id path string true "Mentor ID"
// @Param payload body dto.UpdateMentorRequest true "Mentor fields to change"
// @Success 200 {object} response.Envelope
// @Router /mentors/{id} [patch]
func (h *MentorHandler) Update(c *gin.Context) {
	var req dto.UpdateMentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid mentor payload"))
		return
	}
	mentor, err := h.mentors.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentor, nil)
}
