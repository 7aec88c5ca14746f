package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"blog/internal/models"
)

func ListGenres(ctx context.Context, q DBTX) ([]models.Genre, error) {
	var gs []models.Genre
	if err := sqlx.SelectContext(ctx, q, &gs, `SELECT genre_id, name_genre, urls FROM genres ORDER BY genre_id`); err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	return gs, nil
}

func GenreByName(ctx context.Context, q DBTX, name string) (*models.Genre, error) {
	return getGenre(ctx, q, `SELECT genre_id, name_genre, urls FROM genres WHERE name_genre = ?`, name)
}

// GenreByURL finds the genre whose listing lives at url, e.g. "/optics".
func GenreByURL(ctx context.Context, q DBTX, url string) (*models.Genre, error) {
	return getGenre(ctx, q, `SELECT genre_id, name_genre, urls FROM genres WHERE urls = ?`, url)
}

func getGenre(ctx context.Context, q DBTX, query, arg string) (*models.Genre, error) {
	var g models.Genre
	if err := sqlx.GetContext(ctx, q, &g, q.Rebind(query), arg); err != nil {
		return nil, fmt.Errorf("get genre %q: %w", arg, Classify(err))
	}
	return &g, nil
}
