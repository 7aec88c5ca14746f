// Package auth implements registration, password login and cookie sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"blog/internal/db"
	"blog/internal/models"
)

var (
	ErrInvalidLogin     = errors.New("invalid email or password")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrNoSession        = errors.New("session not found")
)

// ----------------------------
// Request-scoped identity
// ----------------------------

type ctxKeyUser struct{}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser{}, u)
}

// UserFrom returns the authenticated user of the request, if any.
func UserFrom(ctx context.Context) (*models.User, bool) {
	u, _ := ctx.Value(ctxKeyUser{}).(*models.User)
	return u, u != nil
}

// ----------------------------
// Register
// ----------------------------

type RegisterInput struct {
	Name           string
	Email          string
	Password       string
	RepeatPassword string
}

// Register creates a user with a hashed password. It does not log the user
// in. A taken name or email is returned as *db.DuplicateError and nothing
// is written.
func Register(ctx context.Context, d *sqlx.DB, in RegisterInput, now time.Time) (*models.User, error) {
	if in.Password != in.RepeatPassword {
		return nil, ErrPasswordMismatch
	}

	hash, err := Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		LastSeen:     now.UTC(),
	}

	err = db.WithTx(ctx, d, func(ctx context.Context, tx db.DBTX) error {
		return db.InsertUser(ctx, tx, u)
	})
	if err != nil {
		return nil, fmt.Errorf("register %q: %w", u.Name, err)
	}
	return u, nil
}

// ----------------------------
// Login / Logout
// ----------------------------

// Lifetimes of the two kinds of session: a plain one that lives as long
// as the browser session (bounded by Session) and a "remember me" one.
type Lifetimes struct {
	Session  time.Duration
	Remember time.Duration
}

// Session is an established login.
type Session struct {
	ID         string
	User       *models.User
	ExpiresAt  time.Time
	Persistent bool
}

// Login checks the credentials and opens a session. Unknown emails and wrong
// passwords both give ErrInvalidLogin.
func Login(ctx context.Context, d *sqlx.DB, email, password string, remember bool, lt Lifetimes, now time.Time) (*Session, error) {
	email = normalizeEmail(email)

	u, err := db.UserByEmail(ctx, d, email)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrInvalidLogin
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !Verify(u.PasswordHash, password) {
		return nil, ErrInvalidLogin
	}

	lifetime := lt.Session
	if remember {
		lifetime = lt.Remember
	}
	s := &models.Session{
		ID:        uuid.New().String(),
		UserID:    u.ID,
		ExpiresAt: now.Add(lifetime).UTC(),
		CreatedAt: now.UTC(),
	}

	err = db.WithTx(ctx, d, func(ctx context.Context, tx db.DBTX) error {
		if err := db.DeleteExpiredSessions(ctx, tx, u.ID, now); err != nil {
			return err
		}
		return db.InsertSession(ctx, tx, s)
	})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	return &Session{ID: s.ID, User: u, ExpiresAt: s.ExpiresAt, Persistent: remember}, nil
}

func Logout(ctx context.Context, q db.DBTX, sid string) error {
	return db.DeleteSession(ctx, q, sid)
}

// ----------------------------
// Session lookup
// ----------------------------

// UserFromSession resolves a session cookie value to its user. Unknown and
// expired sessions give ErrNoSession.
func UserFromSession(ctx context.Context, q db.DBTX, sid string, now time.Time) (*models.User, error) {
	if sid == "" {
		return nil, ErrNoSession
	}
	su, err := db.UserBySession(ctx, q, sid)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	if !su.ExpiresAt.After(now) {
		return nil, ErrNoSession
	}
	return &su.User, nil
}

// TouchLastSeen records activity of an authenticated user.
func TouchLastSeen(ctx context.Context, q db.DBTX, u *models.User, now time.Time) error {
	if err := db.TouchLastSeen(ctx, q, u.ID, now); err != nil {
		return err
	}
	u.LastSeen = now.UTC()
	return nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
