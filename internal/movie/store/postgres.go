package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"microflix/internal/movie/models"
	"microflix/pkg/domain"
	"microflix/pkg/platform/sentinel"
)

//go:embed schema.sql
var Schema string

const uniqueViolation = "23505"

const movieColumns = `id, title, overview, release_year, runtime, tmdb_id, poster_url, backdrop_url, genres, created_at, updated_at`

// PostgresMovieStore persists movies in PostgreSQL through a pgx pool.
type PostgresMovieStore struct {
	pool *pgxpool.Pool
}

func NewPostgresMovieStore(pool *pgxpool.Pool) *PostgresMovieStore {
	return &PostgresMovieStore{pool: pool}
}

// Migrate applies the embedded schema. It is idempotent.
func (s *PostgresMovieStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply movie schema: %w", err)
	}
	return nil
}

func (s *PostgresMovieStore) Create(ctx context.Context, movie *models.Movie) error {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO movies (title, overview, release_year, runtime, tmdb_id, poster_url, backdrop_url, genres, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		movie.Title, movie.Overview, movie.ReleaseYear, movie.Runtime, movie.TmdbID,
		movie.PosterURL, movie.BackdropURL, movie.Genres, movie.CreatedAt, movie.UpdatedAt,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert movie: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert movie: %w", err)
	}
	movie.ID = domain.MovieID(id)
	return nil
}

func (s *PostgresMovieStore) FindByID(ctx context.Context, id domain.MovieID) (*models.Movie, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = $1`, int64(id))
	movie, err := scanMovie(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("movie %s: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find movie: %w", err)
	}
	return movie, nil
}

// Search returns matching movies, newest first.
func (s *PostgresMovieStore) Search(ctx context.Context, filter models.Filter) ([]*models.Movie, error) {
	var (
		where []string
		args  []any
	)
	if filter.Query != "" {
		args = append(args, "%"+strings.ToLower(filter.Query)+"%")
		where = append(where, fmt.Sprintf("LOWER(title) LIKE $%d", len(args)))
	}
	if filter.Genre != "" {
		args = append(args, strings.ToLower(filter.Genre))
		where = append(where, fmt.Sprintf("EXISTS (SELECT 1 FROM unnest(genres) g WHERE LOWER(g) = $%d)", len(args)))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		where = append(where, fmt.Sprintf("release_year = $%d", len(args)))
	}

	query := `SELECT ` + movieColumns + ` FROM movies`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search movies: %w", err)
	}
	defer rows.Close()

	var out []*models.Movie
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		out = append(out, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return out, nil
}

func scanMovie(row pgx.Row) (*models.Movie, error) {
	var (
		m  models.Movie
		id int64
	)
	if err := row.Scan(&id, &m.Title, &m.Overview, &m.ReleaseYear, &m.Runtime, &m.TmdbID,
		&m.PosterURL, &m.BackdropURL, &m.Genres, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.ID = domain.MovieID(id)
	if m.Genres == nil {
		m.Genres = []string{}
	}
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
	return &m, nil
}
