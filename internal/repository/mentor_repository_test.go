package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hackathon-mentor-api/internal/models"
)

var mentorRowColumns = []string{"id", "name", "email", "domains", "max_load", "assigned_count", "created_at", "updated_at"}

func TestMentorRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMentorRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO mentors")).
		WithArgs(sqlmock.AnyArg(), "Ada", "ada@example.com", `{"AI","Web"}`, 3, 0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mentor := &models.Mentor{
		Name:          "Ada",
		Email:         "ada@example.com",
		Domains:       models.NewDomainList(models.DomainWeb, models.DomainAI),
		MaxLoad:       3,
		AssignedCount: 7,
	}
	require.NoError(t, repo.Create(context.Background(), mentor))
	assert.NotEmpty(t, mentor.ID)
	assert.Equal(t, 0, mentor.AssignedCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMentorRepositoryListByDomainOrdersByLoad(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMentorRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows(mentorRowColumns).
		AddRow("m-a", "A", "a@example.com", "{AI}", 2, 0, now, now).
		AddRow("m-b", "B", "b@example.com", "{AI,Web}", 2, 1, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE $1 = ANY(domains) ORDER BY assigned_count ASC, id ASC")).
		WithArgs("AI").
		WillReturnRows(rows)

	mentors, err := repo.ListByDomain(context.Background(), models.DomainAI)
	require.NoError(t, err)
	require.Len(t, mentors, 2)
	assert.Equal(t, "m-a", mentors[0].ID)
	assert.Equal(t, models.DomainList{models.DomainAI, models.DomainWeb}, mentors[1].Domains)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMentorRepositoryListWithDomainFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMentorRepository(db)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email")).
		WithArgs("Cloud").
		WillReturnRows(sqlmock.NewRows(mentorRowColumns).AddRow("m-c", "C", "c@example.com", "{Cloud}", 1, 0, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("Cloud").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	domain := models.DomainCloud
	mentors, total, err := repo.List(context.Background(), models.MentorFilter{Domain: &domain})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, mentors, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMentorRepositoryExistsByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMentorRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM mentors")).
		WithArgs("ada@example.com", "m-1").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsByEmail(context.Background(), "ada@example.com", "m-1")
	require.NoError(t, err)
	assert.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMentorRepositorySetAssignedCountMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMentorRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE mentors SET assigned_count")).
		WithArgs(2, sqlmock.AnyArg(), "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetAssignedCount(context.Background(), nil, "ghost", 2)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
