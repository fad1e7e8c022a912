package games

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

var testLoc = time.FixedZone("UTC-5", -5*60*60)

func newTestValidator() *Validator {
	return NewValidator(fixedClock{now: time.Date(2030, 3, 10, 8, 0, 0, 0, testLoc)}, testLoc)
}

func validFields() map[string]string {
	return map[string]string{
		"sport":          "  Basketball ",
		"gym":            "Palladium",
		"start_time":     "2030-03-11T10:00",
		"end_time":       "2030-03-11T11:00",
		"needed_players": "6",
		"notes":          "  bring a ball  ",
	}
}

func withField(key, value string) map[string]string {
	fields := validFields()
	fields[key] = value
	return fields
}

func TestParseLocalTime(t *testing.T) {
	parsed, ok := ParseLocalTime("2030-03-11T09:05", testLoc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2030, 3, 11, 9, 5, 0, 0, testLoc), parsed)

	for _, raw := range []string{"", "2030-03-11", "2030-03-11 09:05", "2030-02-30T10:00", "2030-03-11T25:00", "2030-03-11T09:05:00", "tomorrow"} {
		_, ok := ParseLocalTime(raw, testLoc)
		assert.False(t, ok, "expected %q to be rejected", raw)
	}
}

func TestValidateNormalizesGame(t *testing.T) {
	game, err := newTestValidator().Validate(validFields())
	require.NoError(t, err)

	assert.Equal(t, "basketball", game.Sport)
	assert.Equal(t, "Palladium", game.Gym)
	assert.Equal(t, time.Date(2030, 3, 11, 10, 0, 0, 0, testLoc), game.StartTime)
	assert.Equal(t, time.Date(2030, 3, 11, 11, 0, 0, 0, testLoc), game.EndTime)
	assert.Equal(t, 6, game.NeededPlayers)
	assert.Equal(t, game.NeededPlayers, game.MaxPlayers)
	assert.Equal(t, "bring a ball", game.Notes)
}

func TestValidateGymPassesThroughUnchanged(t *testing.T) {
	game, err := newTestValidator().Validate(withField("gym", " 404 Fitness "))
	require.NoError(t, err)
	assert.Equal(t, " 404 Fitness ", game.Gym)
}

func TestValidateMissingNotesIsEmpty(t *testing.T) {
	fields := validFields()
	delete(fields, "notes")

	game, err := newTestValidator().Validate(fields)
	require.NoError(t, err)
	assert.Equal(t, "", game.Notes)
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]string
		want   ValidationError
	}{
		{"missing start", withField("start_time", ""), ErrTimesRequired},
		{"malformed end", withField("end_time", "2030-03-11 11:00"), ErrTimesRequired},
		{"non numeric players", withField("needed_players", "six"), ErrPlayersNotNumber},
		{"empty players", withField("needed_players", ""), ErrPlayersNotNumber},
		{"start in past", withField("start_time", "2030-03-09T10:00"), ErrNotInFuture},
		{"end in past", withField("end_time", "2030-03-10T07:00"), ErrNotInFuture},
		{"start equals end", withField("end_time", "2030-03-11T10:00"), ErrStartAfterEnd},
		{"start after end", withField("start_time", "2030-03-11T11:30"), ErrStartAfterEnd},
		{"start before nine", map[string]string{"start_time": "2030-03-11T08:30", "end_time": "2030-03-11T09:15", "needed_players": "4"}, ErrOutsideHours},
		{"start at seven pm", map[string]string{"start_time": "2030-03-11T19:00", "end_time": "2030-03-11T19:30", "needed_players": "4"}, ErrOutsideHours},
		{"end at nine", map[string]string{"start_time": "2030-03-11T08:00", "end_time": "2030-03-11T09:00", "needed_players": "4"}, ErrOutsideHours},
		{"end after seven pm hour", map[string]string{"start_time": "2030-03-11T18:30", "end_time": "2030-03-11T20:00", "needed_players": "4"}, ErrOutsideHours},
		{"sixty one minutes", map[string]string{"start_time": "2030-03-11T10:00", "end_time": "2030-03-11T11:01", "needed_players": "4"}, ErrInvalidDuration},
		{"two hours", map[string]string{"start_time": "2030-03-11T10:00", "end_time": "2030-03-11T12:00", "needed_players": "4"}, ErrInvalidDuration},
		{"zero players", withField("needed_players", "0"), ErrPlayersOutOfRange},
		{"eleven players", withField("needed_players", "11"), ErrPlayersOutOfRange},
		{"negative players", withField("needed_players", "-3"), ErrPlayersOutOfRange},
	}

	v := newTestValidator()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			game, err := v.Validate(tc.fields)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, tc.want.Message, err.Error())
			assert.Zero(t, game)
		})
	}
}

func TestValidateMissingPlayersTreatedAsZero(t *testing.T) {
	fields := validFields()
	delete(fields, "needed_players")

	_, err := newTestValidator().Validate(fields)
	assert.ErrorIs(t, err, ErrPlayersOutOfRange)
}

func TestValidateBoundaries(t *testing.T) {
	cases := []struct {
		name    string
		start   string
		end     string
		players string
	}{
		{"start exactly nine", "2030-03-11T09:00", "2030-03-11T10:00", "4"},
		{"end exactly seven pm", "2030-03-11T18:00", "2030-03-11T19:00", "4"},
		{"exactly one hour", "2030-03-11T12:15", "2030-03-11T13:15", "4"},
		{"one minute", "2030-03-11T12:15", "2030-03-11T12:16", "4"},
		{"one player", "2030-03-11T12:00", "2030-03-11T12:30", "1"},
		{"ten players", "2030-03-11T12:00", "2030-03-11T12:30", "10"},
		{"padded players", "2030-03-11T12:00", "2030-03-11T12:30", " 7 "},
	}

	v := newTestValidator()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			game, err := v.Validate(map[string]string{
				"sport":          "soccer",
				"gym":            "Coles",
				"start_time":     tc.start,
				"end_time":       tc.end,
				"needed_players": tc.players,
			})
			require.NoError(t, err)
			assert.Equal(t, game.NeededPlayers, game.MaxPlayers)
		})
	}
}

func TestValidateStartingExactlyNowIsAllowed(t *testing.T) {
	v := NewValidator(fixedClock{now: time.Date(2030, 3, 11, 10, 0, 0, 0, testLoc)}, testLoc)
	_, err := v.Validate(validFields())
	assert.NoError(t, err)
}

func TestValidateComparesNowInSiteLocation(t *testing.T) {
	// 14:30 UTC is 09:30 in the site zone, after a 09:00 local start.
	v := NewValidator(fixedClock{now: time.Date(2030, 3, 11, 14, 30, 0, 0, time.UTC)}, testLoc)
	_, err := v.Validate(map[string]string{
		"start_time":     "2030-03-11T09:00",
		"end_time":       "2030-03-11T10:00",
		"needed_players": "4",
	})
	assert.ErrorIs(t, err, ErrNotInFuture)
}
