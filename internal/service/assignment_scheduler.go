package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/hackathon-mentor-api/internal/dto"
	"github.com/noah-isme/hackathon-mentor-api/internal/models"
	appErrors "github.com/noah-isme/hackathon-mentor-api/pkg/errors"
	"github.com/noah-isme/hackathon-mentor-api/pkg/logger"
)

type schedulerTeamRepository interface {
	ListByHackathon(ctx context.Context, hackathonID string) ([]models.Team, error)
	UpdateAssignmentOutcome(ctx context.Context, exec sqlx.ExtContext, teamID string, domains models.DomainList, mentorIDs []string) error
}

type schedulerMentorRepository interface {
	ListByDomain(ctx context.Context, domain models.DomainTag) ([]models.Mentor, error)
	SetAssignedCount(ctx context.Context, exec sqlx.ExtContext, id string, count int) error
}

type schedulerAssignmentRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, assignment *models.Assignment) error
	ListByHackathon(ctx context.Context, hackathonID string) ([]models.Assignment, error)
}

type transactor interface {
	WithinTx(ctx context.Context, fn func(exec sqlx.ExtContext) error) error
}

// AssignmentSchedulerConfig governs distribution runs.
type AssignmentSchedulerConfig struct {
	Enabled             bool
	SkipAssignedDomains bool
	SummaryTTL          time.Duration
	// NewID and Now are overridable so runs can be replayed byte for byte.
	NewID func() string
	Now   func() time.Time
}

// AssignmentScheduler distributes team submissions to mentors under capacity limits.
type AssignmentScheduler struct {
	teams       schedulerTeamRepository
	mentors     schedulerMentorRepository
	assignments schedulerAssignmentRepository
	tx          transactor
	classifier  DomainClassifier
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
	cfg         AssignmentSchedulerConfig

	// runMu serializes runs so the load tracker never races on shared capacity.
	runMu    sync.Mutex
	latestMu sync.RWMutex
	latest   map[string]dto.RunSummary
}

// NewAssignmentScheduler wires scheduler dependencies.
func NewAssignmentScheduler(
	teams schedulerTeamRepository,
	mentors schedulerMentorRepository,
	assignments schedulerAssignmentRepository,
	tx transactor,
	classifier DomainClassifier,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg AssignmentSchedulerConfig,
) *AssignmentScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.SummaryTTL <= 0 {
		cfg.SummaryTTL = 24 * time.Hour
	}
	return &AssignmentScheduler{
		teams:       teams,
		mentors:     mentors,
		assignments: assignments,
		tx:          tx,
		classifier:  classifier,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
		cfg:         cfg,
		latest:      make(map[string]dto.RunSummary),
	}
}

// Distribute loads the hackathon's teams in submission order and runs an assignment pass over them.
func (s *AssignmentScheduler) Distribute(ctx context.Context, hackathonID string) (*dto.AssignmentRunResult, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "mentor distribution is disabled")
	}
	hackathonID = strings.TrimSpace(hackathonID)
	if hackathonID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "hackathon id is required")
	}
	teams, err := s.teams.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teams")
	}
	return s.RunAssignment(ctx, teams, hackathonID)
}

// RunAssignment assigns mentors to teams in the order given. Per-domain and per-team problems are
// reported in the summary; only persistence failures return an error. Cancelling ctx stops the run
// after the current team and commits the teams completed so far.
func (s *AssignmentScheduler) RunAssignment(ctx context.Context, teams []models.Team, hackathonID string) (*dto.AssignmentRunResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := time.Now()
	log := logger.FromContext(ctx, s.logger).With(zap.String("hackathon_id", hackathonID))
	// Reads inside a team must finish even if the caller gives up, so a team is never half planned.
	workCtx := context.WithoutCancel(ctx)

	run := newAssignmentRun(hackathonID, len(teams))
	if s.cfg.SkipAssignedDomains {
		existing, err := s.assignments.ListByHackathon(workCtx, hackathonID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing assignments")
		}
		run.seedExisting(existing)
	}

	for i := range teams {
		if ctx.Err() != nil {
			run.summary.Cancelled = true
			for _, rest := range teams[i:] {
				run.skip(rest.ID, dto.ReasonRunCancelled)
			}
			log.Warn("assignment run cancelled", zap.Int("teams_processed", i), zap.Error(ctx.Err()))
			break
		}
		if err := s.planTeam(workCtx, run, teams[i]); err != nil {
			return nil, err
		}
	}

	if err := s.commit(workCtx, run); err != nil {
		return nil, err
	}

	summary := run.finalSummary()
	s.remember(workCtx, summary)
	s.metrics.ObserveAssignmentRun(time.Since(start), summary.TotalAssignments, errorReasons(summary.Errors), skipReasons(summary.SkippedTeams))
	log.Info("assignment run completed",
		zap.Int("teams", summary.TotalTeams),
		zap.Int("assignments", summary.TotalAssignments),
		zap.Int("skipped", len(summary.SkippedTeams)),
		zap.Int("errors", len(summary.Errors)),
		zap.Bool("cancelled", summary.Cancelled),
	)

	return &dto.AssignmentRunResult{Summary: summary, Assignments: run.assignments()}, nil
}

// LatestSummary returns the summary of the most recent run for a hackathon.
func (s *AssignmentScheduler) LatestSummary(ctx context.Context, hackathonID string) (*dto.RunSummary, error) {
	var summary dto.RunSummary
	if hit, _ := s.cache.Get(ctx, runSummaryCacheKey(hackathonID), &summary); hit {
		return &summary, nil
	}
	s.latestMu.RLock()
	summary, ok := s.latest[hackathonID]
	s.latestMu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no assignment run recorded for hackathon")
	}
	return &summary, nil
}

func (s *AssignmentScheduler) planTeam(ctx context.Context, run *assignmentRun, team models.Team) error {
	if strings.TrimSpace(team.IdeaDescription) == "" {
		run.skip(team.ID, dto.ReasonMissingIdea)
		return nil
	}

	domains := s.classifier.Classify(ctx, team.IdeaDescription)
	plan := run.newTeamPlan(team, domains)

	for _, domain := range domains {
		if run.alreadyAssigned(team.ID, domain) {
			run.domainError(team.ID, domain, dto.ReasonAlreadyAssigned)
			continue
		}
		eligible, err := s.eligible(ctx, run, domain)
		if err != nil {
			return err
		}
		if len(eligible) == 0 {
			run.domainError(team.ID, domain, dto.ReasonNoMentors)
			continue
		}
		mentor, ok := run.loads.pick(eligible)
		if !ok {
			run.domainError(team.ID, domain, dto.ReasonMentorsAtCap)
			continue
		}
		run.loads.increment(mentor.ID)
		plan.assign(&models.Assignment{
			ID:          s.cfg.NewID(),
			MentorID:    mentor.ID,
			TeamID:      team.ID,
			HackathonID: run.summary.HackathonID,
			Domain:      domain,
			Status:      models.AssignmentStatusPending,
			CreatedAt:   s.cfg.Now(),
		})
	}

	run.plans = append(run.plans, plan)
	return nil
}

// eligible returns mentors for a domain, fetched once per run in registry order.
func (s *AssignmentScheduler) eligible(ctx context.Context, run *assignmentRun, domain models.DomainTag) ([]models.Mentor, error) {
	if mentors, ok := run.eligible[domain]; ok {
		return mentors, nil
	}
	mentors, err := s.mentors.ListByDomain(ctx, domain)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list mentors for domain "+string(domain))
	}
	run.eligible[domain] = mentors
	run.loads.seed(mentors)
	return mentors, nil
}

// commit persists every planned team and the touched mentor loads in one transaction.
func (s *AssignmentScheduler) commit(ctx context.Context, run *assignmentRun) error {
	if len(run.plans) == 0 {
		return nil
	}
	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		for _, plan := range run.plans {
			for _, assignment := range plan.created {
				if err := s.assignments.Create(ctx, exec, assignment); err != nil {
					return err
				}
			}
			if err := s.teams.UpdateAssignmentOutcome(ctx, exec, plan.teamID, plan.domains, plan.mentorIDs); err != nil {
				return err
			}
		}
		for _, mentorID := range run.loads.touchedIDs() {
			if err := s.mentors.SetAssignedCount(ctx, exec, mentorID, run.loads.load(mentorID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist assignment run")
	}
	return nil
}

func (s *AssignmentScheduler) remember(ctx context.Context, summary dto.RunSummary) {
	s.latestMu.Lock()
	s.latest[summary.HackathonID] = summary
	s.latestMu.Unlock()
	_ = s.cache.Set(ctx, runSummaryCacheKey(summary.HackathonID), summary, s.cfg.SummaryTTL)
}

// --- Run state ---

// loadTracker holds provisional assigned counts for one run.
type loadTracker struct {
	loads   map[string]int
	touched map[string]struct{}
}

func newLoadTracker() *loadTracker {
	return &loadTracker{loads: make(map[string]int), touched: make(map[string]struct{})}
}

// seed records persisted counts for mentors not yet seen in this run.
func (t *loadTracker) seed(mentors []models.Mentor) {
	for _, m := range mentors {
		if _, ok := t.loads[m.ID]; !ok {
			t.loads[m.ID] = m.AssignedCount
		}
	}
}

// pick returns the first mentor, in the given order, whose tracked load is below capacity.
func (t *loadTracker) pick(eligible []models.Mentor) (models.Mentor, bool) {
	for _, m := range eligible {
		if m.HasCapacity(t.loads[m.ID]) {
			return m, true
		}
	}
	return models.Mentor{}, false
}

func (t *loadTracker) increment(mentorID string) {
	t.loads[mentorID]++
	t.touched[mentorID] = struct{}{}
}

func (t *loadTracker) load(mentorID string) int {
	return t.loads[mentorID]
}

func (t *loadTracker) touchedIDs() []string {
	ids := make([]string, 0, len(t.touched))
	for id := range t.touched {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type teamPlan struct {
	teamID    string
	domains   models.DomainList
	mentorIDs []string
	seen      map[string]struct{}
	created   []*models.Assignment
}

func (p *teamPlan) assign(a *models.Assignment) {
	p.created = append(p.created, a)
	p.addMentor(a.MentorID)
}

func (p *teamPlan) addMentor(id string) {
	if _, ok := p.seen[id]; ok {
		return
	}
	p.seen[id] = struct{}{}
	p.mentorIDs = append(p.mentorIDs, id)
}

type assignmentRun struct {
	summary  dto.RunSummary
	loads    *loadTracker
	eligible map[models.DomainTag][]models.Mentor
	plans    []*teamPlan
	existing map[string]map[models.DomainTag]struct{}
	prior    map[string][]string
}

func newAssignmentRun(hackathonID string, totalTeams int) *assignmentRun {
	return &assignmentRun{
		summary: dto.RunSummary{
			HackathonID:  hackathonID,
			TotalTeams:   totalTeams,
			SkippedTeams: []dto.SkippedTeam{},
			Errors:       []dto.DomainError{},
			MentorLoads:  map[string]int{},
		},
		loads:    newLoadTracker(),
		eligible: make(map[models.DomainTag][]models.Mentor),
	}
}

// seedExisting enables the already-assigned guard from earlier runs' assignments.
func (r *assignmentRun) seedExisting(assignments []models.Assignment) {
	r.existing = make(map[string]map[models.DomainTag]struct{})
	r.prior = make(map[string][]string)
	for _, a := range assignments {
		domains, ok := r.existing[a.TeamID]
		if !ok {
			domains = make(map[models.DomainTag]struct{})
			r.existing[a.TeamID] = domains
		}
		domains[a.Domain] = struct{}{}
		r.prior[a.TeamID] = append(r.prior[a.TeamID], a.MentorID)
	}
}

func (r *assignmentRun) alreadyAssigned(teamID string, domain models.DomainTag) bool {
	if r.existing == nil {
		return false
	}
	_, ok := r.existing[teamID][domain]
	return ok
}

func (r *assignmentRun) newTeamPlan(team models.Team, domains models.DomainList) *teamPlan {
	plan := &teamPlan{teamID: team.ID, domains: domains, mentorIDs: []string{}, seen: make(map[string]struct{})}
	for _, id := range r.prior[team.ID] {
		plan.addMentor(id)
	}
	return plan
}

func (r *assignmentRun) skip(teamID, reason string) {
	r.summary.SkippedTeams = append(r.summary.SkippedTeams, dto.SkippedTeam{TeamID: teamID, Reason: reason})
}

func (r *assignmentRun) domainError(teamID string, domain models.DomainTag, reason string) {
	r.summary.Errors = append(r.summary.Errors, dto.DomainError{TeamID: teamID, Domain: domain, Reason: reason})
}

func (r *assignmentRun) assignments() []models.Assignment {
	out := []models.Assignment{}
	for _, plan := range r.plans {
		for _, a := range plan.created {
			out = append(out, *a)
		}
	}
	return out
}

func (r *assignmentRun) finalSummary() dto.RunSummary {
	summary := r.summary
	for _, plan := range r.plans {
		summary.TotalAssignments += len(plan.created)
	}
	for _, id := range r.loads.touchedIDs() {
		summary.MentorLoads[id] = r.loads.load(id)
	}
	return summary
}

func errorReasons(errs []dto.DomainError) []string {
	reasons := make([]string, len(errs))
	for i, e := range errs {
		reasons[i] = e.Reason
	}
	return reasons
}

func skipReasons(skipped []dto.SkippedTeam) []string {
	reasons := make([]string, len(skipped))
	for i, s := range skipped {
		reasons[i] = s.Reason
	}
	return reasons
}
