package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"boardclient/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestPostRepository_SetUpvotes_Postgres(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "upvotes"=$1 WHERE id = $2`)).
		WithArgs(6, "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.SetUpvotes(context.Background(), "p1", 6))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_SetUpvotes_StoreError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "upvotes"=$1 WHERE id = $2`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.SetUpvotes(context.Background(), "p1", 6)
	assert.True(t, models.HasCode(err, models.CodeStore))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ListSearch_Postgres(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE title ILIKE $1 ESCAPE '\' ORDER BY upvotes DESC, created_at DESC`)).
		WithArgs(`%50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "upvotes"}).AddRow("p1", "50% off", 2))

	posts, err := repo.List(context.Background(), PostQuery{SortBy: SortByUpvotes, TitleContains: "50%"})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, 2, posts[0].Upvotes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Delete_Postgres(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "comments" WHERE post_id = $1`)).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "posts" WHERE id = $1`)).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Delete(context.Background(), "p1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_ListByPost_Postgres(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comments" WHERE post_id = $1 ORDER BY created_at ASC`)).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "user_id", "content"}).
			AddRow("c1", "p1", nil, "first").
			AddRow("c2", "p1", "u1", "second"))

	comments, err := repo.ListByPost(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Nil(t, comments[0].UserID)
	assert.Equal(t, "u1", *comments[1].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
