package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamup-campus/teamup/internal/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestInteractionRepo_ListByActor(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "from_user_id", "to_user_id", "action", "created_at", "meta"}).
		AddRow("i1", "me", "a", "view", now, nil).
		AddRow("i2", "me", "a", "chat", now.Add(time.Minute), []byte(`{"chat_id":"c1"}`))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "interactions" WHERE from_user_id = $1 ORDER BY created_at ASC`)).
		WithArgs("me").
		WillReturnRows(rows)

	got, err := NewInteractionRepo(db).ListByActor(context.Background(), "me")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "chat", got[1].Action)
	assert.JSONEq(t, `{"chat_id":"c1"}`, string(got[1].Meta))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_GetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "profiles" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewProfileRepo(db).GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, utils.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepo_DeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "posts" WHERE id = $1`)).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewPostRepo(db).Delete(context.Background(), "p1")
	assert.ErrorIs(t, err, utils.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_HasPost(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "posts" WHERE user_id = $1`)).
		WithArgs("me").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	ok, err := NewUserRepo(db).HasPost(context.Background(), "me")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepo_LatestPerUser(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM (SELECT DISTINCT ON (user_id) * FROM posts ORDER BY user_id, created_at DESC) latest ORDER BY created_at DESC, id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "skills", "created_at"}).
			AddRow("p2", "b", []byte(`"React, TS"`), now).
			AddRow("p1", "a", []byte(`["Go"]`), now.Add(-time.Hour)))

	got, err := NewPostRepo(db).LatestPerUser(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"b", "a"}, []string{got[0].UserID, got[1].UserID}, "newest post first, not user_id order")
	assert.True(t, got[0].CreatedAt.After(got[1].CreatedAt))
	assert.JSONEq(t, `"React, TS"`, string(got[0].Skills))
	assert.NoError(t, mock.ExpectationsWereMet())
}
