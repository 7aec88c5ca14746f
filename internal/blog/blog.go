// Package blog holds the article and profile operations behind the pages.
package blog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"blog/internal/db"
	"blog/internal/models"
)

var ErrUnknownGenre = errors.New("unknown genre")

// ListArticles returns all articles newest first, optionally only those of
// the genre with the given name.
func ListArticles(ctx context.Context, q db.DBTX, genre string) ([]models.ArticleView, error) {
	return db.ListArticles(ctx, q, genre)
}

// ListAuthorArticles returns the articles written by username.
func ListAuthorArticles(ctx context.Context, q db.DBTX, username string) ([]models.ArticleView, error) {
	return db.ListArticlesByAuthor(ctx, q, username)
}

func ListGenres(ctx context.Context, q db.DBTX) ([]models.Genre, error) {
	return db.ListGenres(ctx, q)
}

// GenreByURL maps a listing path such as "/optics" to its genre.
func GenreByURL(ctx context.Context, q db.DBTX, url string) (*models.Genre, error) {
	return db.GenreByURL(ctx, q, url)
}

// ProfileByName returns the user shown on /profile/{name}.
func ProfileByName(ctx context.Context, q db.DBTX, name string) (*models.User, error) {
	return db.UserByName(ctx, q, name)
}

type ArticleInput struct {
	Genre string
	Title string
	Body  string
}

// CreateArticle publishes an article by authorID under the named genre,
// stamped with now. An unknown genre gives ErrUnknownGenre, a repeated
// title or body *db.DuplicateError; in both cases nothing is written.
func CreateArticle(ctx context.Context, d *sqlx.DB, authorID int64, in ArticleInput, now time.Time) (*models.Article, error) {
	a := &models.Article{
		AuthorID: authorID,
		Title:    strings.TrimSpace(in.Title),
		Content:  in.Body,
		PostedAt: now.UTC(),
	}

	err := db.WithTx(ctx, d, func(ctx context.Context, tx db.DBTX) error {
		g, err := db.GenreByName(ctx, tx, in.Genre)
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w %q", ErrUnknownGenre, in.Genre)
		}
		if err != nil {
			return err
		}
		a.GenreID = g.ID
		return db.InsertArticle(ctx, tx, a)
	})
	if err != nil {
		return nil, fmt.Errorf("create article %q: %w", a.Title, err)
	}
	return a, nil
}

// UpdateProfile changes the user's name and bio. Blank values leave the
// field as it is. A name already taken gives *db.DuplicateError.
func UpdateProfile(ctx context.Context, d *sqlx.DB, userID int64, name, bio string) (*models.User, error) {
	name = strings.TrimSpace(name)
	bio = strings.TrimSpace(bio)

	var u *models.User
	err := db.WithTx(ctx, d, func(ctx context.Context, tx db.DBTX) error {
		var err error
		if u, err = db.UserByID(ctx, tx, userID); err != nil {
			return err
		}
		if name == "" && bio == "" {
			return nil
		}
		if name != "" {
			u.Name = name
		}
		if bio != "" {
			u.AboutMe = sql.NullString{String: bio, Valid: true}
		}
		return db.UpdateProfile(ctx, tx, u)
	})
	if err != nil {
		return nil, fmt.Errorf("update profile %d: %w", userID, err)
	}
	return u, nil
}
