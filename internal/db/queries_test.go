package db

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"blog/internal/models"
)

func newPgMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mdb, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mdb.Close() })
	return sqlx.NewDb(mdb, DriverPostgres), mock
}

func TestInsertUser_RebindsForPostgres(t *testing.T) {
	d, mock := newPgMock(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	q := `(?s)INSERT INTO users \(name, email, psw, about_me, last_seen\)\s+VALUES \(\$1, \$2, \$3, \$4, \$5\)\s+RETURNING id`
	mock.ExpectQuery(q).
		WithArgs("alice", "a@x.com", "hash", sqlmock.AnyArg(), now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	u := &models.User{Name: "alice", Email: "a@x.com", PasswordHash: "hash", LastSeen: now}
	require.NoError(t, InsertUser(context.Background(), d, u))
	require.Equal(t, int64(7), u.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserByEmail_NotFound(t *testing.T) {
	d, mock := newPgMock(t)
	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("ghost@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := UserByEmail(context.Background(), d, "ghost@x.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUserByEmail_DBError(t *testing.T) {
	d, mock := newPgMock(t)
	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnError(errors.New("db down"))

	_, err := UserByEmail(context.Background(), d, "a@x.com")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
	require.Regexp(t, regexp.MustCompile(`get user: db down`), err.Error())
}

func TestListArticles_GenreFilterShape(t *testing.T) {
	d, mock := newPgMock(t)
	mock.ExpectQuery(`(?s)JOIN genres g.*JOIN users u.*WHERE g\.name_genre = \$1\s+ORDER BY a\.tm_posted DESC, a\.article_id DESC`).
		WithArgs("Оптика").
		WillReturnRows(sqlmock.NewRows([]string{
			"article_id", "author_id", "genre_id", "title", "content", "content_hash", "tm_posted",
			"name_genre", "urls", "author",
		}).AddRow(int64(1), int64(2), int64(3), "T1", "B1", ContentHash("B1"), time.Now(), "Оптика", "/optics", "alice"))

	got, err := ListArticles(context.Background(), d, "Оптика")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "alice", got[0].Author)
	require.Equal(t, "/optics", got[0].GenreURL)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfile_MissingRow(t *testing.T) {
	d, mock := newPgMock(t)
	mock.ExpectExec(`UPDATE users SET name = \$1, about_me = \$2 WHERE id = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := UpdateProfile(context.Background(), d, &models.User{ID: 99, Name: "x"})
	require.ErrorIs(t, err, ErrNotFound)
}
