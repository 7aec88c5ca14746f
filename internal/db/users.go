package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"blog/internal/models"
)

const userColumns = `id, name, email, psw, about_me, last_seen`

// InsertUser stores u and fills in its id. A taken name or email comes back
// as *DuplicateError.
func InsertUser(ctx context.Context, q DBTX, u *models.User) error {
	query := q.Rebind(`
		INSERT INTO users (name, email, psw, about_me, last_seen)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`)
	if err := q.QueryRowxContext(ctx, query, u.Name, u.Email, u.PasswordHash, u.AboutMe, u.LastSeen).Scan(&u.ID); err != nil {
		return fmt.Errorf("insert user: %w", Classify(err))
	}
	return nil
}

func UserByID(ctx context.Context, q DBTX, id int64) (*models.User, error) {
	return getUser(ctx, q, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func UserByEmail(ctx context.Context, q DBTX, email string) (*models.User, error) {
	return getUser(ctx, q, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func UserByName(ctx context.Context, q DBTX, name string) (*models.User, error) {
	return getUser(ctx, q, `SELECT `+userColumns+` FROM users WHERE name = ?`, name)
}

func getUser(ctx context.Context, q DBTX, query string, arg any) (*models.User, error) {
	var u models.User
	if err := sqlx.GetContext(ctx, q, &u, q.Rebind(query), arg); err != nil {
		return nil, fmt.Errorf("get user: %w", Classify(err))
	}
	return &u, nil
}

// UpdateProfile writes the mutable profile fields (name, about_me).
func UpdateProfile(ctx context.Context, q DBTX, u *models.User) error {
	res, err := q.ExecContext(ctx, q.Rebind(`UPDATE users SET name = ?, about_me = ? WHERE id = ?`),
		u.Name, u.AboutMe, u.ID)
	if err != nil {
		return fmt.Errorf("update user %d: %w", u.ID, Classify(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update user %d: %w", u.ID, ErrNotFound)
	}
	return nil
}

func TouchLastSeen(ctx context.Context, q DBTX, id int64, at time.Time) error {
	if _, err := q.ExecContext(ctx, q.Rebind(`UPDATE users SET last_seen = ? WHERE id = ?`), at.UTC(), id); err != nil {
		return fmt.Errorf("touch last_seen %d: %w", id, err)
	}
	return nil
}

func CountUsers(ctx context.Context, q DBTX) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, q, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
