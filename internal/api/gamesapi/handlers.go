// Package gamesapi serves the game listing, detail and creation pages.
package gamesapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"

	"github.com/codr1/pickup/internal/api/apiutil"
	"github.com/codr1/pickup/internal/api/authz"
	"github.com/codr1/pickup/internal/api/flash"
	"github.com/codr1/pickup/internal/db"
	"github.com/codr1/pickup/internal/events"
	"github.com/codr1/pickup/internal/games"
	"github.com/codr1/pickup/internal/models"
	"github.com/codr1/pickup/internal/request"
	gamestempl "github.com/codr1/pickup/internal/templates/components/games"
	"github.com/codr1/pickup/internal/templates/layouts"
)

const (
	gameQueryTimeout = 5 * time.Second
	gameIDParam      = "id"

	MsgGameNotFound = "Game not found."
)

// GameStore is the persistence the game handlers need.
type GameStore interface {
	CreateGame(ctx context.Context, game models.NewGame, creatorID string, now time.Time) (models.Game, error)
	GetGameByID(ctx context.Context, id string) (models.Game, error)
	ListGames(ctx context.Context, query models.GameQuery) ([]models.Game, error)
	ListUsersByIDs(ctx context.Context, ids []string) ([]models.Account, error)
}

type Deps struct {
	Games     GameStore
	Validator *games.Validator
	Flash     *flash.Flasher
	Events    events.Publisher
}

type Handlers struct {
	Deps
}

func NewHandlers(deps Deps) *Handlers {
	if deps.Validator == nil {
		deps.Validator = games.NewValidator(nil, nil)
	}
	if deps.Events == nil {
		deps.Events = events.NoopPublisher{}
	}
	return &Handlers{Deps: deps}
}

type listResponse struct {
	Games []models.Game `json:"games"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handlers) location() *time.Location {
	if h.Validator.Location != nil {
		return h.Validator.Location
	}
	return time.Local
}

func (h *Handlers) now() time.Time {
	if h.Validator.Clock != nil {
		return h.Validator.Clock.Now()
	}
	return time.Now()
}

// GET /
func (h *Handlers) HandleHome(w http.ResponseWriter, r *http.Request) {
	query, err := games.BuildQuery(games.FilterParams{}, h.now(), h.location())
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), gameQueryTimeout)
	defer cancel()

	upcoming, err := h.Games.ListGames(ctx, query)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to load games", Err: err})
		return
	}

	h.renderPage(w, r, "Upcoming games", gamestempl.List(gamestempl.ListView{
		Heading:  "Upcoming games",
		Games:    upcoming,
		Location: h.location(),
	}))
}

// GET /games
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	params := request.GameFilters(r)

	query, err := games.BuildQuery(params, h.now(), h.location())
	if err != nil {
		var verr games.ValidationError
		if !errors.As(err, &verr) {
			apiutil.WriteError(w, r, err)
			return
		}
		if apiutil.WantsJSON(r) {
			_ = apiutil.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message})
			return
		}
		h.Flash.Error(w, r, verr.Message)
		apiutil.Redirect(w, r, "/games")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), gameQueryTimeout)
	defer cancel()

	found, err := h.Games.ListGames(ctx, query)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to load games", Err: err})
		return
	}

	if apiutil.WantsJSON(r) {
		if err := apiutil.WriteJSON(w, http.StatusOK, listResponse{Games: found}); err != nil {
			logger.Error().Err(err).Msg("Failed to write games response")
		}
		return
	}

	h.renderPage(w, r, "Find games", gamestempl.List(gamestempl.ListView{
		Heading:     "Find games",
		Games:       found,
		Filters:     params,
		ShowFilters: true,
		Location:    h.location(),
	}))
}

// GET /games/create
func (h *Handlers) HandleCreateForm(w http.ResponseWriter, r *http.Request) {
	minValue := h.now().In(h.location()).Format(games.LocalTimeLayout)
	h.renderPage(w, r, "Host a game", gamestempl.CreateForm(minValue))
}

// POST /games/create
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	user, err := authz.RequireUser(r.Context())
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusUnauthorized, Message: "Unauthorized", Err: err})
		return
	}
	if err := r.ParseForm(); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid form", Err: err})
		return
	}

	newGame, err := h.Validator.Validate(request.FormFields(r))
	if err != nil {
		var verr games.ValidationError
		if errors.As(err, &verr) {
			logger.Debug().Str("user_id", user.ID).Str("reason", verr.Message).Msg("Game rejected")
			h.Flash.Error(w, r, verr.Message)
			apiutil.Redirect(w, r, "/games/create")
			return
		}
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), gameQueryTimeout)
	defer cancel()

	created, err := h.Games.CreateGame(ctx, newGame, user.ID, h.now())
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to create game", Err: err})
		return
	}

	logger.Info().Str("game_id", created.ID).Str("user_id", user.ID).Msg("Game created")
	events.Emit(r.Context(), h.Events, events.GameCreated, events.GameCreatedData{
		GameID:        created.ID,
		Sport:         created.Sport,
		Gym:           created.Gym,
		StartTime:     created.StartTime,
		EndTime:       created.EndTime,
		NeededPlayers: created.NeededPlayers,
		CreatedBy:     created.CreatedBy,
	})

	apiutil.Redirect(w, r, "/games/"+url.PathEscape(created.ID))
}

// GET /games/{id}
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	gameID := strings.TrimSpace(r.PathValue(gameIDParam))

	ctx, cancel := context.WithTimeout(r.Context(), gameQueryTimeout)
	defer cancel()

	game, err := h.Games.GetGameByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.Flash.Error(w, r, MsgGameNotFound)
			apiutil.Redirect(w, r, "/")
			return
		}
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to load game", Err: err})
		return
	}

	participants, err := h.Games.ListUsersByIDs(ctx, game.PlayerIDs)
	if err != nil {
		logger.Warn().Err(err).Str("game_id", gameID).Msg("Failed to load participants")
		participants = nil
	}

	h.renderPage(w, r, "Game details", gamestempl.Detail(gamestempl.DetailView{
		Game:         game,
		Participants: participants,
		Location:     h.location(),
	}))
}

func (h *Handlers) renderPage(w http.ResponseWriter, r *http.Request, title string, content templ.Component) {
	page := layouts.Base(layouts.Page{
		Title:   title,
		User:    authz.UserFromContext(r.Context()),
		Flashes: h.Flash.Pop(w, r),
	}, content)
	apiutil.RenderHTMLComponent(r.Context(), w, page, nil, "Failed to render "+strings.ToLower(title)+" page", "Failed to render page")
}
