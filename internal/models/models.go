package models

import (
	"database/sql"
	"time"
)

type User struct {
	ID           int64          `db:"id"`
	Name         string         `db:"name"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"psw"`
	AboutMe      sql.NullString `db:"about_me"`
	LastSeen     time.Time      `db:"last_seen"`
}

// Initial is the first letter of the display name, used by the navbar avatar.
func (u *User) Initial() string {
	for _, r := range u.Name {
		return string(r)
	}
	return "?"
}

type Session struct {
	ID        string    `db:"id"`
	UserID    int64     `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

type Genre struct {
	ID   int64  `db:"genre_id"`
	Name string `db:"name_genre"`
	URL  string `db:"urls"`
}

type Article struct {
	ID          int64     `db:"article_id"`
	AuthorID    int64     `db:"author_id"`
	GenreID     int64     `db:"genre_id"`
	Title       string    `db:"title"`
	Content     string    `db:"content"`
	ContentHash string    `db:"content_hash"`
	PostedAt    time.Time `db:"tm_posted"`
}

// ArticleView is an article joined with its genre and author, as listed
// on the home, genre and profile pages.
type ArticleView struct {
	Article
	GenreName string `db:"name_genre"`
	GenreURL  string `db:"urls"`
	Author    string `db:"author"`
}
