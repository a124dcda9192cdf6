package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "microflix/pkg/domain-errors"
)

func intPtr(v int) *int { return &v }

func TestNewMovie(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("normalizes genres and trims title", func(t *testing.T) {
		m, err := NewMovie("  Heat ", "", intPtr(1995), intPtr(170), nil, "", "", []string{"thriller", "Crime", " Thriller "}, now)
		require.NoError(t, err)
		assert.Equal(t, "Heat", m.Title)
		assert.Equal(t, []string{"Crime", "thriller"}, m.Genres)
		assert.Equal(t, now, m.CreatedAt)
	})

	t.Run("empty genres encode as empty list", func(t *testing.T) {
		m, err := NewMovie("Heat", "", nil, nil, nil, "", "", nil, now)
		require.NoError(t, err)
		assert.NotNil(t, m.Genres)
		assert.Empty(t, m.Genres)
	})

	t.Run("title required", func(t *testing.T) {
		_, err := NewMovie("   ", "", nil, nil, nil, "", "", nil, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("runtime must be positive", func(t *testing.T) {
		_, err := NewMovie("Heat", "", nil, intPtr(0), nil, "", "", nil, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestFilterMatches(t *testing.T) {
	m := &Movie{Title: "The Matrix", ReleaseYear: intPtr(1999), Genres: []string{"Action", "Sci-Fi"}}

	assert.True(t, Filter{}.Matches(m))
	assert.True(t, Filter{Query: "matrix"}.Matches(m))
	assert.True(t, Filter{Genre: "sci-fi", Year: intPtr(1999)}.Matches(m))
	assert.False(t, Filter{Genre: "Drama"}.Matches(m))
	assert.False(t, Filter{Year: intPtr(2003)}.Matches(m))
	assert.False(t, Filter{Year: intPtr(1999)}.Matches(&Movie{Title: "Unknown"}))
}
