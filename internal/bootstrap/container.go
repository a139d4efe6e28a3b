package bootstrap

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/hackathon-mentor-api/internal/repository"
	"github.com/noah-isme/hackathon-mentor-api/internal/service"
	"github.com/noah-isme/hackathon-mentor-api/pkg/cache"
	"github.com/noah-isme/hackathon-mentor-api/pkg/config"
	"github.com/noah-isme/hackathon-mentor-api/pkg/database"
	"github.com/noah-isme/hackathon-mentor-api/pkg/llm"
)

// Container holds the process-wide dependencies shared by the API server and the CLI.
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sqlx.DB
	Redis  *redis.Client

	CacheRepo   *repository.CacheRepository
	Metrics     *service.MetricsService
	Cache       *service.CacheService
	Auth        *service.AuthService
	Classifier  service.DomainClassifier
	Mentors     *service.MentorService
	Assignments *service.AssignmentService
	Scheduler   *service.AssignmentScheduler
	Evaluations *service.EvaluationService
}

// New connects to postgres and redis and wires every service.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		// The cache is optional; run without it.
		logger.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	c := &Container{Config: cfg, Logger: logger, DB: db, Redis: redisClient}
	c.wire()
	return c, nil
}

func (c *Container) wire() {
	cfg := c.Config
	log := c.Logger

	mentorRepo := repository.NewMentorRepository(c.DB)
	teamRepo := repository.NewTeamRepository(c.DB)
	assignmentRepo := repository.NewAssignmentRepository(c.DB)
	evaluationRepo := repository.NewEvaluationRepository(c.DB)
	tx := repository.NewTransactor(c.DB)

	c.Metrics = service.NewMetricsService()
	c.CacheRepo = repository.NewCacheRepository(c.Redis, log)
	c.Cache = service.NewCacheService(c.CacheRepo, c.Metrics, cfg.Scheduler.SummaryTTL, log, c.Redis != nil)
	c.Auth = service.NewAuthService(log, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
		Audience:          cfg.JWT.Audience,
	})

	llmClient := llm.NewClient(cfg.LLM)
	if llmClient.Configured() {
		c.Classifier = service.NewDomainClassifier(cfg.Classifier, cfg.LLM, llmClient, c.Cache, c.Metrics, log)
	} else {
		if cfg.Classifier.Strategy == config.ClassifierLLM {
			log.Warn("llm classifier requested without an api key, using keyword matcher")
		}
		c.Classifier = service.NewDomainClassifier(cfg.Classifier, cfg.LLM, nil, c.Cache, c.Metrics, log)
	}

	validate := validator.New()
	c.Mentors = service.NewMentorService(mentorRepo, validate, log)
	c.Assignments = service.NewAssignmentService(assignmentRepo, mentorRepo, log)
	c.Scheduler = service.NewAssignmentScheduler(teamRepo, mentorRepo, assignmentRepo, tx, c.Classifier, c.Cache, c.Metrics, log, service.AssignmentSchedulerConfig{
		Enabled:             cfg.Scheduler.Enabled,
		SkipAssignedDomains: cfg.Scheduler.SkipAssignedDomains,
		SummaryTTL:          cfg.Scheduler.SummaryTTL,
	})

	evalCfg := service.EvaluationServiceConfig{
		Enabled:        cfg.Evaluation.Enabled,
		RetryBackoff:   cfg.Evaluation.RetryBackoff,
		DefaultWeights: cfg.Evaluation.DefaultWeights,
		JobTTL:         cfg.Evaluation.JobTTL,
		Workers:        cfg.Evaluation.Workers,
		Timeout:        cfg.LLM.Timeout,
	}
	if llmClient.Configured() {
		c.Evaluations = service.NewEvaluationService(teamRepo, evaluationRepo, llmClient, c.Metrics, log, evalCfg)
	} else {
		c.Evaluations = service.NewEvaluationService(teamRepo, evaluationRepo, nil, c.Metrics, log, evalCfg)
	}
}

// Close releases database and cache connections.
func (c *Container) Close() {
	if c.CacheRepo != nil {
		if err := c.CacheRepo.Close(); err != nil {
			c.Logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("failed to close postgres", zap.Error(err))
		}
	}
}
