package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/hackathon-mentor-api/internal/models"
	appErrors "github.com/noah-isme/hackathon-mentor-api/pkg/errors"
	"github.com/noah-isme/hackathon-mentor-api/pkg/export"
)

type assignmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	ListByMentor(ctx context.Context, mentorID string, status *models.AssignmentStatus) ([]models.AssignmentDetail, error)
	ListByHackathon(ctx context.Context, hackathonID string) ([]models.Assignment, error)
	UpdateStatus(ctx context.Context, id string, status models.AssignmentStatus, reviewedAt *time.Time) error
}

type assignmentMentorReader interface {
	FindByID(ctx context.Context, id string) (*models.Mentor, error)
}

// AssignmentService exposes the assignment store and its review lifecycle.
type AssignmentService struct {
	repo    assignmentRepository
	mentors assignmentMentorReader
	logger  *zap.Logger
	now     func() time.Time
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(repo assignmentRepository, mentors assignmentMentorReader, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, mentors: mentors, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// ListByMentor returns a mentor's assignments, optionally restricted to one status.
func (s *AssignmentService) ListByMentor(ctx context.Context, mentorID string, status *models.AssignmentStatus) ([]models.AssignmentDetail, error) {
	if status != nil && !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown assignment status")
	}
	if _, err := s.mentor(ctx, mentorID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByMentor(ctx, mentorID, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return items, nil
}

// ListByHackathon returns every assignment of a hackathon.
func (s *AssignmentService) ListByHackathon(ctx context.Context, hackathonID string) ([]models.Assignment, error) {
	items, err := s.repo.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return items, nil
}

// UpdateStatus applies the one-way pending to reviewed transition. Mentors may only touch their own assignments.
func (s *AssignmentService) UpdateStatus(ctx context.Context, id string, status models.AssignmentStatus, actor *models.JWTClaims) (*models.Assignment, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown assignment status")
	}
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if actor != nil && actor.Role == models.RoleMentor && actor.MentorID != assignment.MentorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "assignment belongs to another mentor")
	}
	if !assignment.Status.CanTransitionTo(status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot move assignment from %s to %s", assignment.Status, status))
	}
	if assignment.Status == status {
		return assignment, nil
	}

	reviewedAt := s.now()
	if err := s.repo.UpdateStatus(ctx, id, status, &reviewedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment status")
	}
	assignment.Status = status
	assignment.ReviewedAt = &reviewedAt
	s.logger.Info("assignment reviewed", zap.String("assignment_id", id), zap.String("mentor_id", assignment.MentorID))
	return assignment, nil
}

// ExportFile is a rendered assignment sheet.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportByMentor renders a mentor's assignments as CSV or PDF.
func (s *AssignmentService) ExportByMentor(ctx context.Context, mentorID string, status *models.AssignmentStatus, format export.Format) (*ExportFile, error) {
	if status != nil && !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown assignment status")
	}
	mentor, err := s.mentor(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListByMentor(ctx, mentorID, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}

	dataset := export.Dataset{
		Title:   fmt.Sprintf("Assignments for %s", mentor.Name),
		Headers: []string{"Assignment", "Team", "Idea", "Domain", "Status", "Assigned At", "Reviewed At"},
		Rows:    make([][]string, 0, len(items)),
	}
	for _, item := range items {
		reviewed := ""
		if item.ReviewedAt != nil {
			reviewed = item.ReviewedAt.Format(time.RFC3339)
		}
		dataset.Rows = append(dataset.Rows, []string{
			item.ID,
			item.TeamName,
			item.IdeaTitle,
			string(item.Domain),
			string(item.Status),
			item.CreatedAt.Format(time.RFC3339),
			reviewed,
		})
	}

	payload, err := export.RendererFor(format).Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Filename:    exportFilename(mentor.Name, format),
		ContentType: format.ContentType(),
		Payload:     payload,
	}, nil
}

func (s *AssignmentService) mentor(ctx context.Context, id string) (*models.Mentor, error) {
	mentor, err := s.mentors.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentor")
	}
	return mentor, nil
}

func exportFilename(name string, format export.Format) string {
	parts := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	slug := strings.Join(parts, "-")
	if slug == "" {
		slug = "mentor"
	}
	return fmt.Sprintf("assignments-%s.%s", slug, format)
}
