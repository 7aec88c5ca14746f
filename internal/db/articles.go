package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/jmoiron/sqlx"

	"blog/internal/models"
)

// ContentHash is the value of articles.content_hash for a body. The unique
// index sits on the hash because postgres cannot btree-index long text.
func ContentHash(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

// InsertArticle stores a and fills in its id and content hash. A repeated
// title or body comes back as *DuplicateError, an unknown author or genre
// as ErrNotFound.
func InsertArticle(ctx context.Context, q DBTX, a *models.Article) error {
	a.ContentHash = ContentHash(a.Content)
	query := q.Rebind(`
		INSERT INTO articles (author_id, genre_id, title, content, content_hash, tm_posted)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING article_id`)
	err := q.QueryRowxContext(ctx, query,
		a.AuthorID, a.GenreID, a.Title, a.Content, a.ContentHash, a.PostedAt.UTC(),
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("insert article: %w", Classify(err))
	}
	return nil
}

const articleViewSelect = `
SELECT
  a.article_id, a.author_id, a.genre_id, a.title, a.content, a.content_hash, a.tm_posted,
  g.name_genre, g.urls,
  u.name AS author
FROM articles a
JOIN genres g ON g.genre_id = a.genre_id
JOIN users u  ON u.id = a.author_id
`

// ListArticles returns every article, newest first. A non-empty genre
// restricts the result to that genre name.
func ListArticles(ctx context.Context, q DBTX, genre string) ([]models.ArticleView, error) {
	query := articleViewSelect
	var args []any
	if genre != "" {
		query += "WHERE g.name_genre = ?\n"
		args = append(args, genre)
	}
	query += "ORDER BY a.tm_posted DESC, a.article_id DESC"

	var out []models.ArticleView
	if err := sqlx.SelectContext(ctx, q, &out, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return out, nil
}

// ListArticlesByAuthor returns one user's articles in the order they were written.
func ListArticlesByAuthor(ctx context.Context, q DBTX, username string) ([]models.ArticleView, error) {
	query := articleViewSelect + "WHERE u.name = ?\nORDER BY a.article_id"

	var out []models.ArticleView
	if err := sqlx.SelectContext(ctx, q, &out, q.Rebind(query), username); err != nil {
		return nil, fmt.Errorf("list articles of %q: %w", username, err)
	}
	return out, nil
}
