package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/codr1/pickup/internal/models"
)

// Queries runs the application's SQL against a connection or transaction.
type Queries struct {
	db sqlx.ExtContext
}

func NewQueries(db sqlx.ExtContext) *Queries {
	return &Queries{db: db}
}

// storedTime normalizes t to the form kept in DATETIME columns so that
// lexical comparisons in SQLite match chronological order.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

const createUser = `
INSERT INTO users (id, email, password_hash, created_at)
VALUES (?, ?, ?, ?)
`

// CreateUser inserts an account. It does not check for an existing email.
func (q *Queries) CreateUser(ctx context.Context, email, passwordHash string, now time.Time) (models.Account, error) {
	account := models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    storedTime(now),
	}
	if _, err := q.db.ExecContext(ctx, createUser, account.ID, account.Email, account.PasswordHash, account.CreatedAt); err != nil {
		return models.Account{}, fmt.Errorf("insert user: %w", err)
	}
	return account, nil
}

const getUserByEmail = `
SELECT id, email, password_hash, created_at
FROM users
WHERE email = ?
ORDER BY created_at ASC
LIMIT 1
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (models.Account, error) {
	var account models.Account
	if err := sqlx.GetContext(ctx, q.db, &account, getUserByEmail, email); err != nil {
		return models.Account{}, notFound(err)
	}
	return account, nil
}

const getUserByID = `
SELECT id, email, password_hash, created_at
FROM users
WHERE id = ?
`

func (q *Queries) GetUserByID(ctx context.Context, id string) (models.Account, error) {
	var account models.Account
	if err := sqlx.GetContext(ctx, q.db, &account, getUserByID, id); err != nil {
		return models.Account{}, notFound(err)
	}
	return account, nil
}

// ListUsersByIDs returns the accounts for ids in the order given, skipping
// ids that no longer resolve.
func (q *Queries) ListUsersByIDs(ctx context.Context, ids []string) ([]models.Account, error) {
	if len(ids) == 0 {
		return []models.Account{}, nil
	}

	query, args, err := sqlx.In(`SELECT id, email, password_hash, created_at FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build user lookup: %w", err)
	}

	var found []models.Account
	if err := sqlx.SelectContext(ctx, q.db, &found, q.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	byID := make(map[string]models.Account, len(found))
	for _, account := range found {
		byID[account.ID] = account
	}
	accounts := make([]models.Account, 0, len(ids))
	for _, id := range ids {
		if account, ok := byID[id]; ok {
			accounts = append(accounts, account)
		}
	}
	return accounts, nil
}

const createGame = `
INSERT INTO games (
    id, sport, gym, start_time, end_time, needed_players, max_players,
    notes, player_ids, created_by, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// CreateGame persists an accepted game with the creator as its only player.
func (q *Queries) CreateGame(ctx context.Context, game models.NewGame, creatorID string, now time.Time) (models.Game, error) {
	created := models.Game{
		ID:            uuid.NewString(),
		Sport:         game.Sport,
		Gym:           game.Gym,
		StartTime:     storedTime(game.StartTime),
		EndTime:       storedTime(game.EndTime),
		NeededPlayers: game.NeededPlayers,
		MaxPlayers:    game.MaxPlayers,
		Notes:         game.Notes,
		PlayerIDs:     models.StringList{creatorID},
		CreatedBy:     creatorID,
		CreatedAt:     storedTime(now),
		UpdatedAt:     storedTime(now),
	}

	_, err := q.db.ExecContext(ctx, createGame,
		created.ID,
		created.Sport,
		created.Gym,
		created.StartTime,
		created.EndTime,
		created.NeededPlayers,
		created.MaxPlayers,
		created.Notes,
		created.PlayerIDs,
		created.CreatedBy,
		created.CreatedAt,
		created.UpdatedAt,
	)
	if err != nil {
		return models.Game{}, fmt.Errorf("insert game: %w", err)
	}
	return created, nil
}

const gameColumns = `id, sport, gym, start_time, end_time, needed_players, max_players,
    notes, player_ids, created_by, created_at, updated_at`

func (q *Queries) GetGameByID(ctx context.Context, id string) (models.Game, error) {
	var game models.Game
	if err := sqlx.GetContext(ctx, q.db, &game, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id); err != nil {
		return models.Game{}, notFound(err)
	}
	return game, nil
}

// ListGames returns games matching query ordered by start time ascending.
func (q *Queries) ListGames(ctx context.Context, query models.GameQuery) ([]models.Game, error) {
	clauses := []string{"start_time >= ?"}
	args := []any{storedTime(query.StartFrom)}

	if query.StartBefore != nil {
		clauses = append(clauses, "start_time < ?")
		args = append(args, storedTime(*query.StartBefore))
	}
	if query.Sport != "" {
		clauses = append(clauses, "sport = ?")
		args = append(args, query.Sport)
	}
	if query.Gym != "" {
		clauses = append(clauses, "gym = ?")
		args = append(args, query.Gym)
	}

	stmt := `SELECT ` + gameColumns + ` FROM games WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY start_time ASC, created_at ASC`

	games := []models.Game{}
	if err := sqlx.SelectContext(ctx, q.db, &games, stmt, args...); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

// ListGamesStartingBetween returns games with from <= start_time < to.
func (q *Queries) ListGamesStartingBetween(ctx context.Context, from, to time.Time) ([]models.Game, error) {
	games := []models.Game{}
	err := sqlx.SelectContext(ctx, q.db, &games,
		`SELECT `+gameColumns+` FROM games WHERE start_time >= ? AND start_time < ? ORDER BY start_time ASC`,
		storedTime(from), storedTime(to),
	)
	if err != nil {
		return nil, fmt.Errorf("list games starting between: %w", err)
	}
	return games, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
