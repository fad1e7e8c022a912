// Package games renders the game listing, detail and creation pages.
package games

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"

	gamepolicy "github.com/codr1/pickup/internal/games"
	"github.com/codr1/pickup/internal/models"
)

const displayLayout = "Mon Jan 2, 3:04 PM"

// ListView is the data behind the home page and the filtered listing.
type ListView struct {
	Heading     string
	Games       []models.Game
	Filters     gamepolicy.FilterParams
	ShowFilters bool
	Location    *time.Location
}

func List(view ListView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<section class="games"><h1>%s</h1>`, html.EscapeString(view.Heading)); err != nil {
			return err
		}
		if view.ShowFilters {
			if _, err := io.WriteString(w, filterFormHTML(view.Filters)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `<div id="games-list">`+gameListHTML(view.Games, view.Location)+`</div></section>`); err != nil {
			return err
		}
		return nil
	})
}

func filterFormHTML(filters gamepolicy.FilterParams) string {
	var b strings.Builder
	b.WriteString(`<form class="filters" method="get" action="/games" hx-get="/games" hx-target="#games-list" hx-select="#games-list" hx-push-url="true">`)
	b.WriteString(fmt.Sprintf(`<label>Sport <input type="text" name="sport" value="%s"></label>`, html.EscapeString(filters.Sport)))
	b.WriteString(fmt.Sprintf(`<label>Gym <input type="text" name="gym" value="%s"></label>`, html.EscapeString(filters.Gym)))
	b.WriteString(fmt.Sprintf(`<label>From <input type="date" name="date_from" value="%s"></label>`, html.EscapeString(filters.DateFrom)))
	b.WriteString(fmt.Sprintf(`<label>To <input type="date" name="date_to" value="%s"></label>`, html.EscapeString(filters.DateTo)))
	b.WriteString(`<button type="submit">Filter</button><a href="/games">Clear</a></form>`)
	return b.String()
}

func gameListHTML(games []models.Game, loc *time.Location) string {
	if len(games) == 0 {
		return `<p class="empty">No games found.</p>`
	}

	var b strings.Builder
	b.WriteString(`<ul class="game-list">`)
	for _, game := range games {
		b.WriteString(`<li class="game-card">`)
		b.WriteString(fmt.Sprintf(`<a href="/games/%s"><strong>%s</strong> at %s</a>`,
			url.PathEscape(game.ID), html.EscapeString(displaySport(game.Sport)), html.EscapeString(game.Gym)))
		b.WriteString(fmt.Sprintf(`<div class="when">%s</div>`, html.EscapeString(timeRange(game, loc))))
		b.WriteString(fmt.Sprintf(`<div class="players">%d of %d players</div>`, len(game.PlayerIDs), game.MaxPlayers))
		b.WriteString(`</li>`)
	}
	b.WriteString(`</ul>`)
	return b.String()
}

// DetailView is the data behind a single game page.
type DetailView struct {
	Game         models.Game
	Participants []models.Account
	Location     *time.Location
}

func Detail(view DetailView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		game := view.Game
		var b strings.Builder
		b.WriteString(`<article class="game-detail">`)
		b.WriteString(fmt.Sprintf(`<h1>%s at %s</h1>`, html.EscapeString(displaySport(game.Sport)), html.EscapeString(game.Gym)))
		b.WriteString(fmt.Sprintf(`<p class="when">%s</p>`, html.EscapeString(timeRange(game, view.Location))))
		b.WriteString(fmt.Sprintf(`<p class="players">Looking for %d players (%d joined)</p>`, game.NeededPlayers, len(game.PlayerIDs)))
		if game.Notes != "" {
			b.WriteString(fmt.Sprintf(`<p class="notes">%s</p>`, html.EscapeString(game.Notes)))
		}
		b.WriteString(`<h2>Players</h2><ul class="participants">`)
		for _, participant := range view.Participants {
			b.WriteString(fmt.Sprintf(`<li>%s</li>`, html.EscapeString(participant.Email)))
		}
		b.WriteString(`</ul><a href="/games">Back to games</a></article>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// CreateForm renders the new game form. minValue bounds the datetime inputs.
func CreateForm(minValue string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		minAttr := html.EscapeString(minValue)
		var b strings.Builder
		b.WriteString(`<section class="create-game"><h1>Host a game</h1>`)
		b.WriteString(`<form method="post" action="/games/create">`)
		b.WriteString(`<label>Sport <input type="text" name="sport" required></label>`)
		b.WriteString(`<label>Gym <input type="text" name="gym" required></label>`)
		b.WriteString(fmt.Sprintf(`<label>Start <input type="datetime-local" name="start_time" min="%s" required></label>`, minAttr))
		b.WriteString(fmt.Sprintf(`<label>End <input type="datetime-local" name="end_time" min="%s" required></label>`, minAttr))
		b.WriteString(`<label>Players needed <input type="number" name="needed_players" min="1" max="10" required></label>`)
		b.WriteString(`<label>Notes <textarea name="notes"></textarea></label>`)
		b.WriteString(`<button type="submit">Create game</button></form>`)
		b.WriteString(`<p class="hint">Games run between 9 AM and 7 PM and last at most an hour.</p></section>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func timeRange(game models.Game, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	start := game.StartTime.In(loc)
	end := game.EndTime.In(loc)
	return start.Format(displayLayout) + " - " + end.Format("3:04 PM")
}

func displaySport(sport string) string {
	if sport == "" {
		return "Game"
	}
	return strings.ToUpper(sport[:1]) + sport[1:]
}
