// Package games holds the scheduling policy for pickup games: parsing
// submitted times, validating new games and building listing queries.
package games

import (
	"strconv"
	"strings"
	"time"

	"github.com/codr1/pickup/internal/models"
)

const (
	// LocalTimeLayout is the datetime-local form value format.
	LocalTimeLayout = "2006-01-02T15:04"
	// DateLayout is the date filter format.
	DateLayout = "2006-01-02"

	earliestStartHour = 9
	latestEndHour     = 19
	maxGameDuration   = time.Hour
	minNeededPlayers  = 1
	maxNeededPlayers  = 10
)

// ValidationError is a rejection reason safe to show to the user.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

var (
	ErrTimesRequired     = ValidationError{Message: "Start and end times are required"}
	ErrPlayersNotNumber  = ValidationError{Message: "Needed players must be a number"}
	ErrNotInFuture       = ValidationError{Message: "Games must be scheduled in the future"}
	ErrStartAfterEnd     = ValidationError{Message: "Start time must be before end time"}
	ErrOutsideHours      = ValidationError{Message: "Games must be between 9 AM and 7 PM"}
	ErrInvalidDuration   = ValidationError{Message: "Game duration must be > 0 and ≤ 60 minutes"}
	ErrPlayersOutOfRange = ValidationError{Message: "Needed players must be between 1 and 10"}
	ErrInvalidDateFilter = ValidationError{Message: "Dates must be in YYYY-MM-DD format"}
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock {
	return realClock{}
}

// Validator applies the scheduling policy to submitted game fields.
type Validator struct {
	Clock    Clock
	Location *time.Location
}

func NewValidator(clock Clock, loc *time.Location) *Validator {
	if clock == nil {
		clock = realClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Validator{Clock: clock, Location: loc}
}

// ParseLocalTime parses raw in the exact YYYY-MM-DDTHH:MM form, interpreted
// in loc. The boolean is false for any malformed or impossible value.
func ParseLocalTime(raw string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	parsed, err := time.ParseInLocation(LocalTimeLayout, raw, loc)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// Validate checks fields against the scheduling policy, stopping at the
// first violation. On success the returned game is normalized.
func (v *Validator) Validate(fields map[string]string) (models.NewGame, error) {
	loc := v.Location
	if loc == nil {
		loc = time.Local
	}
	clock := v.Clock
	if clock == nil {
		clock = realClock{}
	}

	sport := strings.ToLower(strings.TrimSpace(fields["sport"]))
	gym := fields["gym"]

	start, startOK := ParseLocalTime(fields["start_time"], loc)
	end, endOK := ParseLocalTime(fields["end_time"], loc)
	if !startOK || !endOK {
		return models.NewGame{}, ErrTimesRequired
	}

	neededPlayers := 0
	if raw, ok := fields["needed_players"]; ok {
		parsed, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return models.NewGame{}, ErrPlayersNotNumber
		}
		neededPlayers = parsed
	}

	now := clock.Now().In(loc)
	if start.Before(now) || end.Before(now) {
		return models.NewGame{}, ErrNotInFuture
	}

	if !start.Before(end) {
		return models.NewGame{}, ErrStartAfterEnd
	}

	// Start may be 9:00 but not 19:xx; end may be 19:xx but not 9:xx.
	if start.Hour() < earliestStartHour || start.Hour() >= latestEndHour ||
		end.Hour() <= earliestStartHour || end.Hour() > latestEndHour {
		return models.NewGame{}, ErrOutsideHours
	}

	duration := end.Sub(start)
	if duration <= 0 || duration > maxGameDuration {
		return models.NewGame{}, ErrInvalidDuration
	}

	if neededPlayers < minNeededPlayers || neededPlayers > maxNeededPlayers {
		return models.NewGame{}, ErrPlayersOutOfRange
	}

	return models.NewGame{
		Sport:         sport,
		Gym:           gym,
		StartTime:     start,
		EndTime:       end,
		NeededPlayers: neededPlayers,
		MaxPlayers:    neededPlayers,
		Notes:         strings.TrimSpace(fields["notes"]),
	}, nil
}
