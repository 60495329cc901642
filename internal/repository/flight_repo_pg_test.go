package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewFlightRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewFlightRepository(pool)
	assert.NotNil(t, repo)
}

func TestSortColumnsWhitelist(t *testing.T) {
	assert.Equal(t, "price_cents", sortColumns["price"])
	assert.Equal(t, "duration_minutes", sortColumns["duration"])
	_, ok := sortColumns["airline; DROP TABLE flights"]
	assert.False(t, ok)
}
