package games

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQueryDefaultsToFutureGames(t *testing.T) {
	now := time.Date(2030, 3, 10, 8, 15, 0, 0, testLoc)

	query, err := BuildQuery(FilterParams{}, now, testLoc)
	require.NoError(t, err)

	assert.True(t, query.StartFrom.Equal(now))
	assert.Nil(t, query.StartBefore)
	assert.Empty(t, query.Sport)
	assert.Empty(t, query.Gym)
}

func TestBuildQuerySportAndGym(t *testing.T) {
	now := time.Date(2030, 3, 10, 8, 15, 0, 0, testLoc)

	query, err := BuildQuery(FilterParams{Sport: " VolleyBall ", Gym: "Palladium"}, now, testLoc)
	require.NoError(t, err)

	assert.Equal(t, "volleyball", query.Sport)
	assert.Equal(t, "Palladium", query.Gym)
}

func TestBuildQuerySingleDayRange(t *testing.T) {
	now := time.Date(2030, 3, 10, 8, 15, 0, 0, testLoc)

	query, err := BuildQuery(FilterParams{DateFrom: "2025-01-10", DateTo: "2025-01-10"}, now, testLoc)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, testLoc), query.StartFrom)
	require.NotNil(t, query.StartBefore)
	assert.Equal(t, time.Date(2025, 1, 11, 0, 0, 0, 0, testLoc), *query.StartBefore)
}

func TestBuildQueryDateFromOverridesNow(t *testing.T) {
	now := time.Date(2030, 3, 10, 8, 15, 0, 0, testLoc)

	query, err := BuildQuery(FilterParams{DateFrom: "2030-03-01"}, now, testLoc)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2030, 3, 1, 0, 0, 0, 0, testLoc), query.StartFrom)
}

func TestBuildQueryDateToKeepsNowLowerBound(t *testing.T) {
	now := time.Date(2030, 3, 10, 8, 15, 0, 0, testLoc)

	query, err := BuildQuery(FilterParams{DateTo: "2030-03-12"}, now, testLoc)
	require.NoError(t, err)

	assert.True(t, query.StartFrom.Equal(now))
	require.NotNil(t, query.StartBefore)
	assert.Equal(t, time.Date(2030, 3, 13, 0, 0, 0, 0, testLoc), *query.StartBefore)
}

func TestBuildQueryRejectsMalformedDates(t *testing.T) {
	now := time.Now()

	_, err := BuildQuery(FilterParams{DateFrom: "03/10/2030"}, now, testLoc)
	assert.ErrorIs(t, err, ErrInvalidDateFilter)

	_, err = BuildQuery(FilterParams{DateTo: "2030-13-01"}, now, testLoc)
	assert.ErrorIs(t, err, ErrInvalidDateFilter)
}

func TestFilterParamsIsEmpty(t *testing.T) {
	assert.True(t, FilterParams{}.IsEmpty())
	assert.False(t, FilterParams{Gym: "Coles"}.IsEmpty())
}
