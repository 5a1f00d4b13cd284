package archived

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/eventsync/internal/common"
	"github.com/dmitrijs2005/eventsync/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestPostgresPut(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`(?s)^\s*INSERT\s+INTO\s+archived_events\s*\(id,\s*doc,\s*archived_at\)`).
		WithArgs("e1", sqlmock.AnyArg(), at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Put(context.Background(), &models.ArchivedEvent{Event: &models.Event{ID: "e1"}, ArchivedAt: at})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGet(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"doc", "archived_at"}).AddRow([]byte(`{"제목":"Old","부서ID":"d1"}`), at)
	mock.ExpectQuery(`(?s)^SELECT\s+doc,\s*archived_at\s+FROM\s+archived_events\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("e1").
		WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "Old", got.Event.Title)
	assert.True(t, got.Event.IsArchived)
	assert.Equal(t, at, got.ArchivedAt)
}

func TestPostgresGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+doc`).WithArgs("x").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "x")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestPostgresDelete_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+archived_events`).WithArgs("x").WillReturnError(errors.New("boom"))

	err := repo.Delete(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}
