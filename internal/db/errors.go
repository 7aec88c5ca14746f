package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

var ErrNotFound = errors.New("not found")

// DuplicateError reports a unique constraint violation on Table.Column.
type DuplicateError struct {
	Table  string
	Column string
	Err    error
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s.%s", e.Table, e.Column)
}

func (e *DuplicateError) Unwrap() error { return e.Err }

// Classify turns driver errors into ErrNotFound or *DuplicateError when it
// recognises them and returns anything else unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			table, col := sqliteColumn(se.Error())
			return &DuplicateError{Table: table, Column: col, Err: err}
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return err
	}

	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		switch pe.Code {
		case "23505": // unique_violation
			return &DuplicateError{Table: pe.TableName, Column: pgColumn(pe), Err: err}
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		}
	}
	return err
}

// "UNIQUE constraint failed: users.email"
func sqliteColumn(msg string) (table, column string) {
	_, target, ok := strings.Cut(msg, "failed: ")
	if !ok {
		return "", ""
	}
	target, _, _ = strings.Cut(target, ",")
	table, column, _ = strings.Cut(strings.TrimSpace(target), ".")
	return table, column
}

// Constraints are named <table>_<column>_key in the postgres migrations.
func pgColumn(pe *pgconn.PgError) string {
	if pe.ColumnName != "" {
		return pe.ColumnName
	}
	name := strings.TrimPrefix(pe.ConstraintName, pe.TableName+"_")
	return strings.TrimSuffix(name, "_key")
}
