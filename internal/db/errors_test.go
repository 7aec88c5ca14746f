package db

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_NoRows(t *testing.T) {
	require.ErrorIs(t, Classify(sql.ErrNoRows), ErrNotFound)
	require.ErrorIs(t, Classify(fmt.Errorf("wrapped: %w", sql.ErrNoRows)), ErrNotFound)
	require.NoError(t, Classify(nil))
}

func TestClassify_PostgresUnique(t *testing.T) {
	err := Classify(&pgconn.PgError{Code: "23505", TableName: "users", ConstraintName: "users_email_key"})

	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "users", dup.Table)
	assert.Equal(t, "email", dup.Column)

	err = Classify(&pgconn.PgError{Code: "23505", TableName: "articles", ConstraintName: "articles_content_hash_key"})
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "content_hash", dup.Column)
}

func TestClassify_PostgresForeignKey(t *testing.T) {
	err := Classify(&pgconn.PgError{Code: "23503", TableName: "articles"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestClassify_PassesOtherErrorsThrough(t *testing.T) {
	boom := errors.New("connection reset")
	require.Same(t, boom, Classify(boom))

	pe := &pgconn.PgError{Code: "40001"}
	require.Same(t, error(pe), Classify(pe))
}

func TestSqliteColumn(t *testing.T) {
	tests := []struct {
		msg, table, column string
	}{
		{"UNIQUE constraint failed: users.email", "users", "email"},
		{"UNIQUE constraint failed: articles.title", "articles", "title"},
		{"UNIQUE constraint failed: t.a, t.b", "t", "a"},
		{"something else", "", ""},
	}
	for _, tc := range tests {
		table, col := sqliteColumn(tc.msg)
		assert.Equal(t, tc.table, table, tc.msg)
		assert.Equal(t, tc.column, col, tc.msg)
	}
}

func TestDriverFor(t *testing.T) {
	assert.Equal(t, DriverPostgres, DriverFor("postgres://u:p@localhost/blog"))
	assert.Equal(t, DriverPostgres, DriverFor("postgresql://localhost/blog"))
	assert.Equal(t, DriverSQLite, DriverFor("./blog.db"))
	assert.Equal(t, DriverSQLite, DriverFor("file:blog.db?cache=shared"))
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "blog.db?_foreign_keys=on&_busy_timeout=3000&_journal_mode=WAL", sqliteDSN("blog.db"))
	assert.Equal(t, "file:blog.db?mode=rwc&_foreign_keys=on&_busy_timeout=3000&_journal_mode=WAL", sqliteDSN("file:blog.db?mode=rwc"))
}
