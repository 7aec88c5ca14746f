package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"blog/internal/models"
)

func InsertSession(ctx context.Context, q DBTX, s *models.Session) error {
	_, err := q.ExecContext(ctx, q.Rebind(`
		INSERT INTO sessions (id, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)`),
		s.ID, s.UserID, s.ExpiresAt.UTC(), s.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert session: %w", Classify(err))
	}
	return nil
}

// SessionUser is a session row joined with its owner.
type SessionUser struct {
	models.User
	ExpiresAt time.Time `db:"expires_at"`
}

// UserBySession loads the session sid together with its user. Expiry is
// left to the caller.
func UserBySession(ctx context.Context, q DBTX, sid string) (*SessionUser, error) {
	var su SessionUser
	err := sqlx.GetContext(ctx, q, &su, q.Rebind(`
		SELECT u.id, u.name, u.email, u.psw, u.about_me, u.last_seen, s.expires_at
		  FROM sessions s
		  JOIN users u ON u.id = s.user_id
		 WHERE s.id = ?`), sid)
	if err != nil {
		return nil, fmt.Errorf("session: %w", Classify(err))
	}
	return &su, nil
}

func DeleteSession(ctx context.Context, q DBTX, sid string) error {
	if _, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM sessions WHERE id = ?`), sid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions drops the sessions of uid that ended before now.
func DeleteExpiredSessions(ctx context.Context, q DBTX, uid int64, now time.Time) error {
	_, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM sessions WHERE user_id = ? AND expires_at <= ?`), uid, now.UTC())
	if err != nil {
		return fmt.Errorf("delete expired sessions: %w", err)
	}
	return nil
}
