package games

import (
	"strings"
	"time"

	"github.com/codr1/pickup/internal/models"
)

// FilterParams are the optional listing filters as submitted.
type FilterParams struct {
	Sport    string
	Gym      string
	DateFrom string
	DateTo   string
}

func (p FilterParams) IsEmpty() bool {
	return p.Sport == "" && p.Gym == "" && p.DateFrom == "" && p.DateTo == ""
}

// BuildQuery turns listing filters into a store query. Results always start
// at now unless DateFrom replaces that lower bound; DateTo is inclusive of
// the whole day.
func BuildQuery(params FilterParams, now time.Time, loc *time.Location) (models.GameQuery, error) {
	if loc == nil {
		loc = time.Local
	}

	query := models.GameQuery{StartFrom: now.In(loc)}

	if sport := strings.TrimSpace(params.Sport); sport != "" {
		query.Sport = strings.ToLower(sport)
	}
	if params.Gym != "" {
		query.Gym = params.Gym
	}

	if raw := strings.TrimSpace(params.DateFrom); raw != "" {
		from, err := time.ParseInLocation(DateLayout, raw, loc)
		if err != nil {
			return models.GameQuery{}, ErrInvalidDateFilter
		}
		query.StartFrom = from
	}

	if raw := strings.TrimSpace(params.DateTo); raw != "" {
		to, err := time.ParseInLocation(DateLayout, raw, loc)
		if err != nil {
			return models.GameQuery{}, ErrInvalidDateFilter
		}
		before := to.AddDate(0, 0, 1)
		query.StartBefore = &before
	}

	return query, nil
}
