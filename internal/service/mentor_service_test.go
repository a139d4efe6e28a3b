package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hackathon-mentor-api/internal/dto"
	"github.com/noah-isme/hackathon-mentor-api/internal/models"
	appErrors "github.com/noah-isme/hackathon-mentor-api/pkg/errors"
)

func TestMentorServiceCreateNormalisesDomains(t *testing.T) {
	repo := newFakeMentorRepo()
	svc := NewMentorService(repo, nil, nil)

	created, err := svc.Create(context.Background(), dto.CreateMentorRequest{
		Name:    "  Ada  ",
		Email:   "ada@example.com",
		Domains: []string{"web", "AI", "Web"},
		MaxLoad: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", created.Name)
	assert.Equal(t, models.DomainList{models.DomainAI, models.DomainWeb}, created.Domains)
	assert.Zero(t, created.AssignedCount)
	assert.NotEmpty(t, created.ID)
}

func TestMentorServiceCreateValidation(t *testing.T) {
	svc := NewMentorService(newFakeMentorRepo(mentor("m-1", 1, 0, models.DomainAI)), nil, nil)

	cases := []struct {
		name string
		req  dto.CreateMentorRequest
		code string
	}{
		{"missing max load", dto.CreateMentorRequest{Name: "A", Email: "a@example.com", Domains: []string{"AI"}}, appErrors.ErrValidation.Code},
		{"no domains", dto.CreateMentorRequest{Name: "A", Email: "a@example.com", Domains: []string{}, MaxLoad: 1}, appErrors.ErrValidation.Code},
		{"unknown domain", dto.CreateMentorRequest{Name: "A", Email: "a@example.com", Domains: []string{"Quantum"}, MaxLoad: 1}, appErrors.ErrInvalidDomain.Code},
		{"duplicate email", dto.CreateMentorRequest{Name: "A", Email: "m-1@example.com", Domains: []string{"AI"}, MaxLoad: 1}, appErrors.ErrConflict.Code},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.req)
			require.Error(t, err)
			assert.Equal(t, tc.code, appErrors.FromError(err).Code)
		})
	}
}

func TestMentorServiceListByDomain(t *testing.T) {
	repo := newFakeMentorRepo(
		mentor("m-1", 2, 1, models.DomainAI),
		mentor("m-2", 2, 0, models.DomainAI, models.DomainWeb),
		mentor("m-3", 2, 0, models.DomainWeb),
	)
	svc := NewMentorService(repo, nil, nil)

	got, err := svc.ListByDomain(context.Background(), models.DomainAI)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "m-2", got[0].ID)
	assert.Equal(t, "m-1", got[1].ID)

	_, err = svc.ListByDomain(context.Background(), models.DomainTag("ai"))
	assert.Equal(t, appErrors.ErrInvalidDomain.Code, appErrors.FromError(err).Code)
}

func TestMentorServiceListPagination(t *testing.T) {
	svc := NewMentorService(newFakeMentorRepo(mentor("m-1", 1, 0, models.DomainIoT)), nil, nil)

	items, page, err := svc.List(context.Background(), models.MentorFilter{PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, page)
}

func TestMentorServiceUpdate(t *testing.T) {
	repo := newFakeMentorRepo(
		mentor("m-1", 1, 1, models.DomainAI),
		mentor("m-2", 1, 0, models.DomainWeb),
	)
	svc := NewMentorService(repo, nil, nil)

	load := 4
	updated, err := svc.Update(context.Background(), "m-1", dto.UpdateMentorRequest{Domains: []string{"data"}, MaxLoad: &load})
	require.NoError(t, err)
	assert.Equal(t, models.DomainList{models.DomainData}, updated.Domains)
	assert.Equal(t, 4, updated.MaxLoad)
	assert.Equal(t, 1, updated.AssignedCount)

	taken := "m-2@example.com"
	_, err = svc.Update(context.Background(), "m-1", dto.UpdateMentorRequest{Email: &taken})
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	blank := "   "
	_, err = svc.Update(context.Background(), "m-1", dto.UpdateMentorRequest{Name: &blank})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Update(context.Background(), "missing", dto.UpdateMentorRequest{MaxLoad: &load})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
