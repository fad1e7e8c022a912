// internal/models/game.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Game is a scheduled pickup session as stored in the games table.
type Game struct {
	ID            string     `db:"id" json:"id"`
	Sport         string     `db:"sport" json:"sport"`
	Gym           string     `db:"gym" json:"gym"`
	StartTime     time.Time  `db:"start_time" json:"start_time"`
	EndTime       time.Time  `db:"end_time" json:"end_time"`
	NeededPlayers int        `db:"needed_players" json:"needed_players"`
	MaxPlayers    int        `db:"max_players" json:"max_players"`
	Notes         string     `db:"notes" json:"notes"`
	PlayerIDs     StringList `db:"player_ids" json:"player_ids"`
	CreatedBy     string     `db:"created_by" json:"created_by"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// NewGame holds the normalized fields of an accepted game submission.
type NewGame struct {
	Sport         string
	Gym           string
	StartTime     time.Time
	EndTime       time.Time
	NeededPlayers int
	MaxPlayers    int
	Notes         string
}

// GameQuery selects games by start time, sport and gym.
// Zero-valued Sport/Gym and a nil StartBefore mean "no constraint".
type GameQuery struct {
	StartFrom   time.Time
	StartBefore *time.Time
	Sport       string
	Gym         string
}

// StringList is an ordered list of identifiers persisted as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("marshal string list: %w", err)
	}
	return string(data), nil
}

func (l *StringList) Scan(src any) error {
	var data []byte
	switch typed := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		data = []byte(typed)
	case []byte:
		data = typed
	default:
		return fmt.Errorf("unsupported string list source %T", src)
	}

	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("unmarshal string list: %w", err)
	}
	if values == nil {
		values = []string{}
	}
	*l = values
	return nil
}
