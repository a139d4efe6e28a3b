package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/hackathon-mentor-api/internal/dto"
	"github.com/noah-isme/hackathon-mentor-api/internal/models"
	appErrors "github.com/noah-isme/hackathon-mentor-api/pkg/errors"
)

type mentorRepository interface {
	Create(ctx context.Context, mentor *models.Mentor) error
	FindByID(ctx context.Context, id string) (*models.Mentor, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	List(ctx context.Context, filter models.MentorFilter) ([]models.Mentor, int, error)
	ListByDomain(ctx context.Context, domain models.DomainTag) ([]models.Mentor, error)
	Update(ctx context.Context, mentor *models.Mentor) error
}

// MentorService manages the mentor registry.
type MentorService struct {
	repo      mentorRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMentorService constructs a MentorService.
func NewMentorService(repo mentorRepository, validate *validator.Validate, logger *zap.Logger) *MentorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MentorService{repo: repo, validator: validate, logger: logger}
}

// Create registers a mentor. Domains must be known tags and max load at least one.
func (s *MentorService) Create(ctx context.Context, req dto.CreateMentorRequest) (*models.Mentor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mentor payload")
	}
	domains, err := parseMentorDomains(req.Domains)
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(req.Email)
	if err := s.ensureUniqueEmail(ctx, email, ""); err != nil {
		return nil, err
	}

	mentor := &models.Mentor{
		Name:    strings.TrimSpace(req.Name),
		Email:   email,
		Domains: domains,
		MaxLoad: req.MaxLoad,
	}
	if err := s.repo.Create(ctx, mentor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create mentor")
	}
	s.logger.Info("mentor registered", zap.String("mentor_id", mentor.ID), zap.Strings("domains", domains.Strings()))
	return mentor, nil
}

// Get returns a mentor by id.
func (s *MentorService) Get(ctx context.Context, id string) (*models.Mentor, error) {
	mentor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentor")
	}
	return mentor, nil
}

// List returns mentors plus pagination data.
func (s *MentorService) List(ctx context.Context, filter models.MentorFilter) ([]models.Mentor, *models.Pagination, error) {
	mentors, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list mentors")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return mentors, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ListByDomain returns mentors covering domain, least loaded first.
func (s *MentorService) ListByDomain(ctx context.Context, domain models.DomainTag) ([]models.Mentor, error) {
	if !domain.Valid() {
		return nil, appErrors.Clone(appErrors.ErrInvalidDomain, "unknown domain "+string(domain))
	}
	mentors, err := s.repo.ListByDomain(ctx, domain)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list mentors by domain")
	}
	return mentors, nil
}

// Update patches organizer-editable fields.
func (s *MentorService) Update(ctx context.Context, id string, req dto.UpdateMentorRequest) (*models.Mentor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mentor payload")
	}
	mentor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "name cannot be blank")
		}
		mentor.Name = name
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if !strings.EqualFold(email, mentor.Email) {
			if err := s.ensureUniqueEmail(ctx, email, id); err != nil {
				return nil, err
			}
		}
		mentor.Email = email
	}
	if req.Domains != nil {
		domains, err := parseMentorDomains(req.Domains)
		if err != nil {
			return nil, err
		}
		mentor.Domains = domains
	}
	if req.MaxLoad != nil {
		mentor.MaxLoad = *req.MaxLoad
	}

	if err := s.repo.Update(ctx, mentor); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update mentor")
	}
	return mentor, nil
}

func (s *MentorService) ensureUniqueEmail(ctx context.Context, email, excludeID string) error {
	exists, err := s.repo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}
	return nil
}

func parseMentorDomains(raw []string) (models.DomainList, error) {
	domains, err := models.ParseDomainList(raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidDomain.Code, appErrors.ErrInvalidDomain.Status, err.Error())
	}
	if len(domains) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one domain is required")
	}
	return domains, nil
}
