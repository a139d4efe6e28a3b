package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/hackathon-mentor-api/internal/models"
)

type fakeMentorRepo struct {
	mu          sync.Mutex
	mentors     map[string]*models.Mentor
	listErr     error
	listCalls   map[models.DomainTag]int
	countWrites map[string]int
}

func newFakeMentorRepo(mentors ...models.Mentor) *fakeMentorRepo {
	repo := &fakeMentorRepo{
		mentors:     make(map[string]*models.Mentor),
		listCalls:   make(map[models.DomainTag]int),
		countWrites: make(map[string]int),
	}
	for i := range mentors {
		m := mentors[i]
		repo.mentors[m.ID] = &m
	}
	return repo
}

func (r *fakeMentorRepo) Create(ctx context.Context, mentor *models.Mentor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mentor.ID == "" {
		mentor.ID = fmt.Sprintf("mentor-%d", len(r.mentors)+1)
	}
	clone := *mentor
	r.mentors[mentor.ID] = &clone
	return nil
}

func (r *fakeMentorRepo) FindByID(ctx context.Context, id string) (*models.Mentor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mentors[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *m
	return &clone, nil
}

func (r *fakeMentorRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.mentors {
		if id != excludeID && m.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMentorRepo) List(ctx context.Context, filter models.MentorFilter) ([]models.Mentor, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Mentor
	for _, m := range r.mentors {
		if filter.Domain != nil && !m.Domains.Contains(*filter.Domain) {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *fakeMentorRepo) ListByDomain(ctx context.Context, domain models.DomainTag) ([]models.Mentor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls[domain]++
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.Mentor
	for _, m := range r.mentors {
		if m.Domains.Contains(domain) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AssignedCount != out[j].AssignedCount {
			return out[i].AssignedCount < out[j].AssignedCount
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeMentorRepo) Update(ctx context.Context, mentor *models.Mentor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.mentors[mentor.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *mentor
	r.mentors[mentor.ID] = &clone
	return nil
}

func (r *fakeMentorRepo) SetAssignedCount(ctx context.Context, exec sqlx.ExtContext, id string, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mentors[id]
	if !ok {
		return sql.ErrNoRows
	}
	m.AssignedCount = count
	r.countWrites[id]++
	return nil
}

func (r *fakeMentorRepo) load(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mentors[id].AssignedCount
}

type teamOutcome struct {
	Domains models.DomainList
	Mentors []string
}

type fakeTeamRepo struct {
	teams     []models.Team
	outcomes  map[string]teamOutcome
	updateErr error
}

func newFakeTeamRepo(teams ...models.Team) *fakeTeamRepo {
	return &fakeTeamRepo{teams: teams, outcomes: make(map[string]teamOutcome)}
}

func (r *fakeTeamRepo) ListByHackathon(ctx context.Context, hackathonID string) ([]models.Team, error) {
	var out []models.Team
	for _, t := range r.teams {
		if t.HackathonID == hackathonID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) UpdateAssignmentOutcome(ctx context.Context, exec sqlx.ExtContext, teamID string, domains models.DomainList, mentorIDs []string) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	mentors := make([]string, len(mentorIDs))
	copy(mentors, mentorIDs)
	r.outcomes[teamID] = teamOutcome{Domains: domains, Mentors: mentors}
	return nil
}

type fakeAssignmentRepo struct {
	mu      sync.Mutex
	created []models.Assignment
	byID    map[string]*models.Assignment
	details map[string][]models.AssignmentDetail
}

func newFakeAssignmentRepo(existing ...models.Assignment) *fakeAssignmentRepo {
	repo := &fakeAssignmentRepo{byID: make(map[string]*models.Assignment), details: make(map[string][]models.AssignmentDetail)}
	for i := range existing {
		a := existing[i]
		repo.created = append(repo.created, a)
		repo.byID[a.ID] = &a
	}
	return repo
}

func (r *fakeAssignmentRepo) Create(ctx context.Context, exec sqlx.ExtContext, assignment *models.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, *assignment)
	clone := *assignment
	r.byID[assignment.ID] = &clone
	return nil
}

func (r *fakeAssignmentRepo) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *a
	return &clone, nil
}

func (r *fakeAssignmentRepo) ListByMentor(ctx context.Context, mentorID string, status *models.AssignmentStatus) ([]models.AssignmentDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AssignmentDetail
	for _, d := range r.details[mentorID] {
		if status != nil && d.Status != *status {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeAssignmentRepo) ListByHackathon(ctx context.Context, hackathonID string) ([]models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Assignment
	for _, a := range r.created {
		if a.HackathonID == hackathonID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) UpdateStatus(ctx context.Context, id string, status models.AssignmentStatus, reviewedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	a.Status = status
	a.ReviewedAt = reviewedAt
	return nil
}

// fakeTransactor runs fn directly and counts commits.
type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) WithinTx(ctx context.Context, fn func(exec sqlx.ExtContext) error) error {
	f.calls++
	return fn(nil)
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%03d", prefix, n)
	}
}

func fixedClock() func() time.Time {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}
