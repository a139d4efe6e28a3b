package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/noah-isme/hackathon-mentor-api/internal/dto"
	"github.com/noah-isme/hackathon-mentor-api/internal/models"
	"github.com/noah-isme/hackathon-mentor-api/pkg/config"
	appErrors "github.com/noah-isme/hackathon-mentor-api/pkg/errors"
	"github.com/noah-isme/hackathon-mentor-api/pkg/jobs"
	"github.com/noah-isme/hackathon-mentor-api/pkg/llm"
	"github.com/noah-isme/hackathon-mentor-api/pkg/logger"
	"github.com/noah-isme/hackathon-mentor-api/pkg/middleware/requestid"
)

type evaluationTeamReader interface {
	ListByHackathon(ctx context.Context, hackathonID string) ([]models.Team, error)
}

type evaluationRepository interface {
	Upsert(ctx context.Context, evaluation *models.Evaluation) error
	ListByHackathon(ctx context.Context, hackathonID string) ([]models.Evaluation, error)
}

// EvaluationServiceConfig tunes the judging orchestrator.
type EvaluationServiceConfig struct {
	Enabled        bool
	RetryBackoff   []time.Duration
	DefaultWeights config.ScoringWeights
	JobTTL         time.Duration
	Workers        int
	Timeout        time.Duration
}

// EvaluationService scores every team of a hackathon with the external judge.
type EvaluationService struct {
	teams   evaluationTeamReader
	repo    evaluationRepository
	judge   textCompleter
	metrics *MetricsService
	logger  *zap.Logger
	cfg     EvaluationServiceConfig
	sleep   func(ctx context.Context, d time.Duration) error

	jobs  *evaluationJobStore
	queue *jobs.Queue[evaluationJobPayload]
}

type evaluationJobPayload struct {
	HackathonID string
	Weights     config.ScoringWeights
	RequestID   string
}

// NewEvaluationService constructs the orchestrator. A nil judge scores every team with the fallback.
func NewEvaluationService(teams evaluationTeamReader, repo evaluationRepository, judge textCompleter, metrics *MetricsService, logger *zap.Logger, cfg EvaluationServiceConfig) *EvaluationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RetryBackoff == nil {
		cfg.RetryBackoff = []time.Duration{3 * time.Second, 8 * time.Second, 15 * time.Second}
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	s := &EvaluationService{
		teams:   teams,
		repo:    repo,
		judge:   judge,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		sleep:   sleepContext,
		jobs:    newEvaluationJobStore(cfg.JobTTL),
	}
	// Batches are never requeued: handleJob reports failures through the job status.
	s.queue = jobs.NewQueue[evaluationJobPayload]("evaluations", s.handleJob, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: 0,
		Logger:     logger,
	})
	return s
}

// Start launches the background job workers.
func (s *EvaluationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop waits for the job workers to exit and fails batches that never started.
func (s *EvaluationService) Stop() {
	for _, job := range s.queue.Stop() {
		s.jobs.update(job.ID, func(st *dto.EvaluationJobStatus) {
			st.State = dto.EvaluationJobFailed
			st.Error = "evaluation service stopped before the batch started"
		})
	}
}

// Enqueue schedules an asynchronous judging batch and returns its job status.
func (s *EvaluationService) Enqueue(ctx context.Context, hackathonID string, weights *config.ScoringWeights) (*dto.EvaluationJobStatus, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "evaluation is disabled")
	}
	resolved, err := s.resolveWeights(weights)
	if err != nil {
		return nil, err
	}
	status := dto.EvaluationJobStatus{
		JobID:       uuid.NewString(),
		HackathonID: hackathonID,
		State:       dto.EvaluationJobQueued,
		UpdatedAt:   time.Now().UTC(),
	}
	s.jobs.Save(status)
	job := jobs.Job[evaluationJobPayload]{
		ID:      status.JobID,
		Payload: evaluationJobPayload{HackathonID: hackathonID, Weights: resolved, RequestID: requestid.FromContext(ctx)},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.jobs.Delete(status.JobID)
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to queue evaluation")
	}
	return &status, nil
}

// JobStatus returns the state of a queued batch.
func (s *EvaluationService) JobStatus(id string) (*dto.EvaluationJobStatus, error) {
	status, ok := s.jobs.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation job not found")
	}
	return &status, nil
}

// List returns stored evaluations for a hackathon, best first.
func (s *EvaluationService) List(ctx context.Context, hackathonID string) ([]models.Evaluation, error) {
	items, err := s.repo.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evaluations")
	}
	return items, nil
}

func (s *EvaluationService) handleJob(ctx context.Context, job jobs.Job[evaluationJobPayload]) error {
	if job.Payload.RequestID != "" {
		ctx = requestid.WithContext(ctx, job.Payload.RequestID)
	}
	s.jobs.update(job.ID, func(st *dto.EvaluationJobStatus) { st.State = dto.EvaluationJobRunning })

	result, err := s.EvaluateHackathon(ctx, job.Payload.HackathonID, &job.Payload.Weights)
	s.jobs.update(job.ID, func(st *dto.EvaluationJobStatus) {
		if err != nil {
			st.State = dto.EvaluationJobFailed
			st.Error = appErrors.FromError(err).Message
			return
		}
		st.State = dto.EvaluationJobCompleted
		st.Result = result
	})
	return nil
}

// EvaluateHackathon scores all teams synchronously. One team's failure never aborts the batch.
func (s *EvaluationService) EvaluateHackathon(ctx context.Context, hackathonID string, weights *config.ScoringWeights) (*dto.EvaluationBatchResult, error) {
	resolved, err := s.resolveWeights(weights)
	if err != nil {
		return nil, err
	}
	teams, err := s.teams.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teams")
	}

	log := logger.FromContext(ctx, s.logger).With(zap.String("hackathon_id", hackathonID))
	result := &dto.EvaluationBatchResult{
		HackathonID: hackathonID,
		Results:     []models.Evaluation{},
		Failures:    []dto.EvaluationFailure{},
	}
	for _, team := range teams {
		if ctx.Err() != nil {
			result.Failures = append(result.Failures, dto.EvaluationFailure{TeamID: team.ID, Reason: "evaluation cancelled"})
			continue
		}
		evaluation := s.evaluateTeam(ctx, team, resolved)
		if err := s.repo.Upsert(ctx, &evaluation); err != nil {
			log.Error("failed to store evaluation", zap.String("team_id", team.ID), zap.Error(err))
			s.metrics.RecordEvaluationFailure()
			result.Failures = append(result.Failures, dto.EvaluationFailure{TeamID: team.ID, Reason: "failed to store evaluation"})
			continue
		}
		s.metrics.RecordEvaluation(string(evaluation.Source))
		if evaluation.Source == models.EvaluationSourceFallback {
			result.Fallbacks++
		}
		result.Evaluated++
		result.Results = append(result.Results, evaluation)
	}

	log.Info("evaluation batch completed",
		zap.Int("teams", len(teams)),
		zap.Int("evaluated", result.Evaluated),
		zap.Int("fallbacks", result.Fallbacks),
		zap.Int("failures", len(result.Failures)),
	)
	return result, nil
}

func (s *EvaluationService) resolveWeights(weights *config.ScoringWeights) (config.ScoringWeights, error) {
	resolved := s.cfg.DefaultWeights
	if weights != nil {
		resolved = *weights
	}
	if err := resolved.Validate(); err != nil {
		return resolved, appErrors.Wrap(err, appErrors.ErrInvalidWeights.Code, appErrors.ErrInvalidWeights.Status, err.Error())
	}
	return resolved, nil
}

func (s *EvaluationService) evaluateTeam(ctx context.Context, team models.Team, weights config.ScoringWeights) models.Evaluation {
	scores, err := s.judgeTeam(ctx, team)
	source := models.EvaluationSourceAI
	if err != nil {
		logger.FromContext(ctx, s.logger).Warn("judge unavailable, using fallback score", zap.String("team_id", team.ID), zap.Error(err))
		scores = FallbackScores(team)
		source = models.EvaluationSourceFallback
	}
	return models.Evaluation{
		TeamID:       team.ID,
		HackathonID:  team.HackathonID,
		Innovation:   scores.Innovation,
		Technical:    scores.Technical,
		Impact:       scores.Impact,
		Presentation: scores.Presentation,
		Total:        WeightedTotal(scores, weights),
		Feedback:     scores.Feedback,
		Source:       source,
	}
}

// judgeTeam calls the judge, retrying only rate-limited calls on the fixed backoff schedule.
func (s *EvaluationService) judgeTeam(ctx context.Context, team models.Team) (TeamScores, error) {
	if s.judge == nil {
		return TeamScores{}, llm.ErrNotConfigured
	}
	prompt := buildJudgingPrompt(team)
	for attempt := 0; ; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		raw, err := s.judge.Complete(callCtx, prompt)
		cancel()
		if err == nil {
			return parseTeamScores(raw)
		}
		if !llm.IsRateLimited(err) || attempt >= len(s.cfg.RetryBackoff) {
			return TeamScores{}, err
		}
		s.metrics.RecordEvaluationRetry()
		if sleepErr := s.sleep(ctx, s.cfg.RetryBackoff[attempt]); sleepErr != nil {
			return TeamScores{}, sleepErr
		}
	}
}

// TeamScores are the four judging sub-scores, each in [0,100].
type TeamScores struct {
	Innovation   float64 `json:"innovation"`
	Technical    float64 `json:"technical"`
	Impact       float64 `json:"impact"`
	Presentation float64 `json:"presentation"`
	Feedback     string  `json:"feedback"`
}

// WeightedTotal is the sum of each score times its percentage weight.
func WeightedTotal(scores TeamScores, weights config.ScoringWeights) float64 {
	total := scores.Innovation*weights.Innovation/100 +
		scores.Technical*weights.Technical/100 +
		scores.Impact*weights.Impact/100 +
		scores.Presentation*weights.Presentation/100
	return math.Round(total*100) / 100
}

// FallbackScores derives stable scores from the team's identity.
func FallbackScores(team models.Team) TeamScores {
	sum := blake2b.Sum256([]byte(team.ID + "|" + team.TeamName + "|" + team.IdeaTitle))
	score := func(b byte) float64 { return float64(60 + int(b)%31) }
	return TeamScores{
		Innovation:   score(sum[0]),
		Technical:    score(sum[1]),
		Impact:       score(sum[2]),
		Presentation: score(sum[3]),
		Feedback:     "Automated score: the AI judge was unavailable for this submission.",
	}
}

var errNoScoreObject = errors.New("no JSON object in judge response")

// parseTeamScores extracts the first-to-last brace span and clamps each score.
func parseTeamScores(raw string) (TeamScores, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return TeamScores{}, errNoScoreObject
	}
	var parsed struct {
		Innovation   *float64 `json:"innovation"`
		Technical    *float64 `json:"technical"`
		Impact       *float64 `json:"impact"`
		Presentation *float64 `json:"presentation"`
		Feedback     string   `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return TeamScores{}, fmt.Errorf("decode judge response: %w", err)
	}
	if parsed.Innovation == nil || parsed.Technical == nil || parsed.Impact == nil || parsed.Presentation == nil {
		return TeamScores{}, errors.New("judge response is missing a score")
	}
	return TeamScores{
		Innovation:   clampScore(*parsed.Innovation),
		Technical:    clampScore(*parsed.Technical),
		Impact:       clampScore(*parsed.Impact),
		Presentation: clampScore(*parsed.Presentation),
		Feedback:     strings.TrimSpace(parsed.Feedback),
	}, nil
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

func buildJudgingPrompt(team models.Team) string {
	return fmt.Sprintf(`You are judging a hackathon submission.
Team: %s
Idea: %s
Description: %s

Score innovation, technical, impact and presentation from 0 to 100 and give one paragraph of feedback.
Reply with JSON only: {"innovation":0,"technical":0,"impact":0,"presentation":0,"feedback":""}`,
		team.TeamName, team.IdeaTitle, team.IdeaDescription)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// evaluationJobStore keeps job states in memory for JobTTL after their last update.
type evaluationJobStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]dto.EvaluationJobStatus
}

func newEvaluationJobStore(ttl time.Duration) *evaluationJobStore {
	return &evaluationJobStore{ttl: ttl, items: make(map[string]dto.EvaluationJobStatus)}
}

func (s *evaluationJobStore) Save(status dto.EvaluationJobStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[status.JobID] = status
}

func (s *evaluationJobStore) Get(id string) (dto.EvaluationJobStatus, bool) {
	s.mu.RLock()
	status, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return dto.EvaluationJobStatus{}, false
	}
	if time.Since(status.UpdatedAt) > s.ttl {
		s.Delete(id)
		return dto.EvaluationJobStatus{}, false
	}
	return status, true
}

func (s *evaluationJobStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

func (s *evaluationJobStore) update(id string, fn func(*dto.EvaluationJobStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.items[id]
	if !ok {
		return
	}
	fn(&status)
	status.UpdatedAt = time.Now().UTC()
	s.items[id] = status
}
