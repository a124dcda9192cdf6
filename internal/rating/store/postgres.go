package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"microflix/internal/rating/models"
	"microflix/pkg/domain"
	"microflix/pkg/platform/sentinel"
)

//go:embed schema.sql
var Schema string

const ratingColumns = `id, user_id::text, movie_id, rating_times_ten, created_at, updated_at`

// PostgresRatingStore persists ratings in PostgreSQL through a pgx pool.
type PostgresRatingStore struct {
	pool *pgxpool.Pool
}

func NewPostgresRatingStore(pool *pgxpool.Pool) *PostgresRatingStore {
	return &PostgresRatingStore{pool: pool}
}

// Migrate applies the embedded schema. It is idempotent.
func (s *PostgresRatingStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply rating schema: %w", err)
	}
	return nil
}

// Save upserts on (user_id, movie_id); created_at of an existing row is kept.
func (s *PostgresRatingStore) Save(ctx context.Context, rating *models.Rating) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO ratings (user_id, movie_id, rating_times_ten, created_at, updated_at)
		VALUES ($1::uuid, $2, $3, $4, $5)
		ON CONFLICT (user_id, movie_id) DO UPDATE
		SET rating_times_ten = EXCLUDED.rating_times_ten,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`,
		rating.UserID.String(), int64(rating.MovieID), rating.RatingTimesTen, rating.CreatedAt, rating.UpdatedAt,
	).Scan(&rating.ID, &rating.CreatedAt)
	if err != nil {
		return fmt.Errorf("save rating: %w", err)
	}
	rating.CreatedAt = rating.CreatedAt.UTC()
	return nil
}

func (s *PostgresRatingStore) FindByUserAndMovie(ctx context.Context, userID domain.UserID, movieID domain.MovieID) (*models.Rating, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+ratingColumns+` FROM ratings WHERE user_id = $1::uuid AND movie_id = $2`,
		userID.String(), int64(movieID))
	r, err := scanRating(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("rating for movie %s: %w", movieID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find rating: %w", err)
	}
	return r, nil
}

func (s *PostgresRatingStore) Delete(ctx context.Context, userID domain.UserID, movieID domain.MovieID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM ratings WHERE user_id = $1::uuid AND movie_id = $2`,
		userID.String(), int64(movieID))
	if err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rating for movie %s: %w", movieID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresRatingStore) ListByMovie(ctx context.Context, movieID domain.MovieID) ([]*models.Rating, error) {
	return s.list(ctx, `SELECT `+ratingColumns+` FROM ratings WHERE movie_id = $1 ORDER BY id`, int64(movieID))
}

func (s *PostgresRatingStore) ListByUser(ctx context.Context, userID domain.UserID) ([]*models.Rating, error) {
	return s.list(ctx, `SELECT `+ratingColumns+` FROM ratings WHERE user_id = $1::uuid ORDER BY id`, userID.String())
}

// Summary returns the mean of rating_times_ten and the number of ratings.
func (s *PostgresRatingStore) Summary(ctx context.Context, movieID domain.MovieID) (float64, int64, error) {
	var (
		avg   *float64
		count int64
	)
	err := s.pool.QueryRow(ctx,
		`SELECT AVG(rating_times_ten)::float8, COUNT(*) FROM ratings WHERE movie_id = $1`,
		int64(movieID)).Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("rating summary: %w", err)
	}
	if avg == nil || count == 0 {
		return 0, 0, nil
	}
	return *avg, count, nil
}

func (s *PostgresRatingStore) list(ctx context.Context, query string, arg any) ([]*models.Rating, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Rating, 0)
	for rows.Next() {
		r, err := scanRating(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return out, nil
}

func scanRating(row pgx.Row) (*models.Rating, error) {
	var (
		r       models.Rating
		userID  string
		movieID int64
	)
	if err := row.Scan(&r.ID, &userID, &movieID, &r.RatingTimesTen, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	uid, err := domain.ParseUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("stored user id: %w", err)
	}
	r.UserID = uid
	r.MovieID = domain.MovieID(movieID)
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return &r, nil
}
