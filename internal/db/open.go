package db

import (
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// DriverFor picks the database/sql driver for a DSN: postgres URLs go to
// pgx, anything else is treated as a SQLite file path.
func DriverFor(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// Open opens the store and checks the connection.
func Open(dsn string) (*sqlx.DB, error) {
	driver := DriverFor(dsn)
	if driver == DriverSQLite {
		dsn = sqliteDSN(dsn)
	}

	d, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return d, nil
}

// sqliteDSN adds the pragmas every connection needs. They go through the
// DSN because a plain PRAGMA exec only reaches one pooled connection.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=3000&_journal_mode=WAL"
}
