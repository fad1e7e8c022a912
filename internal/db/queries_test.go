package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codr1/pickup/internal/db"
	"github.com/codr1/pickup/internal/games"
	"github.com/codr1/pickup/internal/models"
	"github.com/codr1/pickup/internal/testutil"
)

var siteLoc = time.FixedZone("UTC-5", -5*60*60)

func gameAt(sport, gym string, start time.Time) models.NewGame {
	return models.NewGame{
		Sport:         sport,
		Gym:           gym,
		StartTime:     start,
		EndTime:       start.Add(time.Hour),
		NeededPlayers: 4,
		MaxPlayers:    4,
	}
}

func TestCreateAndGetUser(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	created := testutil.SeedAccount(t, database, "alex@nyu.edu")

	byEmail, err := database.Queries.GetUserByEmail(ctx, "alex@nyu.edu")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("id = %q, want %q", byEmail.ID, created.ID)
	}

	byID, err := database.Queries.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Email != "alex@nyu.edu" {
		t.Fatalf("email = %q", byID.Email)
	}

	if _, err := database.Queries.GetUserByEmail(ctx, "ALEX@nyu.edu"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("email lookup must be exact, got %v", err)
	}
	if _, err := database.Queries.GetUserByID(ctx, "missing"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("missing id err = %v, want ErrNotFound", err)
	}
}

func TestListUsersByIDsKeepsOrder(t *testing.T) {
	database := testutil.NewTestDB(t)

	first := testutil.SeedAccount(t, database, "first@nyu.edu")
	second := testutil.SeedAccount(t, database, "second@nyu.edu")

	accounts, err := database.Queries.ListUsersByIDs(context.Background(), []string{second.ID, "gone", first.ID})
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(accounts) != 2 || accounts[0].ID != second.ID || accounts[1].ID != first.ID {
		t.Fatalf("accounts = %+v, want second then first", accounts)
	}

	empty, err := database.Queries.ListUsersByIDs(context.Background(), nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty lookup = %v, %v", empty, err)
	}
}

func TestCreateGameStoresCreatorAsPlayer(t *testing.T) {
	database := testutil.NewTestDB(t)
	creator := testutil.SeedAccount(t, database, "host@nyu.edu")

	start := time.Date(2030, 3, 11, 10, 0, 0, 0, siteLoc)
	created := testutil.SeedGame(t, database, creator.ID, gameAt("basketball", "Palladium", start))

	fetched, err := database.Queries.GetGameByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if !fetched.StartTime.Equal(start) || !fetched.EndTime.Equal(start.Add(time.Hour)) {
		t.Fatalf("times = %v - %v", fetched.StartTime, fetched.EndTime)
	}
	if len(fetched.PlayerIDs) != 1 || fetched.PlayerIDs[0] != creator.ID {
		t.Fatalf("player ids = %v, want [%s]", fetched.PlayerIDs, creator.ID)
	}
	if fetched.CreatedBy != creator.ID || fetched.MaxPlayers != fetched.NeededPlayers {
		t.Fatalf("unexpected game %+v", fetched)
	}

	if _, err := database.Queries.GetGameByID(context.Background(), "nope"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("missing game err = %v, want ErrNotFound", err)
	}
}

func TestListGamesSingleDayRange(t *testing.T) {
	database := testutil.NewTestDB(t)
	creator := testutil.SeedAccount(t, database, "host@nyu.edu")

	testutil.SeedGame(t, database, creator.ID, gameAt("soccer", "Coles", time.Date(2025, 1, 9, 18, 0, 0, 0, siteLoc)))
	inRange := testutil.SeedGame(t, database, creator.ID, gameAt("soccer", "Coles", time.Date(2025, 1, 10, 12, 0, 0, 0, siteLoc)))
	early := testutil.SeedGame(t, database, creator.ID, gameAt("soccer", "Coles", time.Date(2025, 1, 10, 9, 0, 0, 0, siteLoc)))
	testutil.SeedGame(t, database, creator.ID, gameAt("soccer", "Coles", time.Date(2025, 1, 11, 9, 0, 0, 0, siteLoc)))

	query, err := games.BuildQuery(games.FilterParams{DateFrom: "2025-01-10", DateTo: "2025-01-10"}, time.Date(2030, 1, 1, 0, 0, 0, 0, siteLoc), siteLoc)
	if err != nil {
		t.Fatalf("build query: %v", err)
	}

	listed, err := database.Queries.ListGames(context.Background(), query)
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != early.ID || listed[1].ID != inRange.ID {
		t.Fatalf("listed = %+v, want only Jan 10 games in start order", listed)
	}
}

func TestListGamesDefaultsToUpcoming(t *testing.T) {
	database := testutil.NewTestDB(t)
	creator := testutil.SeedAccount(t, database, "host@nyu.edu")

	now := time.Date(2030, 3, 10, 12, 0, 0, 0, siteLoc)
	testutil.SeedGame(t, database, creator.ID, gameAt("soccer", "Coles", now.Add(-time.Hour)))
	later := testutil.SeedGame(t, database, creator.ID, gameAt("soccer", "Coles", now.Add(48*time.Hour)))
	sooner := testutil.SeedGame(t, database, creator.ID, gameAt("basketball", "Palladium", now.Add(2*time.Hour)))

	query, err := games.BuildQuery(games.FilterParams{}, now, siteLoc)
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	listed, err := database.Queries.ListGames(context.Background(), query)
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != sooner.ID || listed[1].ID != later.ID {
		t.Fatalf("listed = %+v, want upcoming games ascending", listed)
	}
}

func TestListGamesSportAndGymFilters(t *testing.T) {
	database := testutil.NewTestDB(t)
	creator := testutil.SeedAccount(t, database, "host@nyu.edu")

	now := time.Date(2030, 3, 10, 12, 0, 0, 0, siteLoc)
	testutil.SeedGame(t, database, creator.ID, gameAt("soccer", "Coles", now.Add(time.Hour)))
	hoops := testutil.SeedGame(t, database, creator.ID, gameAt("basketball", "Palladium", now.Add(2*time.Hour)))
	testutil.SeedGame(t, database, creator.ID, gameAt("basketball", "Coles", now.Add(3*time.Hour)))

	query, err := games.BuildQuery(games.FilterParams{Sport: "Basketball", Gym: "Palladium"}, now, siteLoc)
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	listed, err := database.Queries.ListGames(context.Background(), query)
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != hoops.ID {
		t.Fatalf("listed = %+v, want only the Palladium basketball game", listed)
	}
}

func TestListGamesStartingBetween(t *testing.T) {
	database := testutil.NewTestDB(t)
	creator := testutil.SeedAccount(t, database, "host@nyu.edu")

	from := time.Date(2030, 3, 10, 12, 0, 0, 0, siteLoc)
	testutil.SeedGame(t, database, creator.ID, gameAt("soccer", "Coles", from.Add(-time.Minute)))
	atStart := testutil.SeedGame(t, database, creator.ID, gameAt("soccer", "Coles", from))
	testutil.SeedGame(t, database, creator.ID, gameAt("soccer", "Coles", from.Add(15*time.Minute)))

	listed, err := database.Queries.ListGamesStartingBetween(context.Background(), from, from.Add(15*time.Minute))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != atStart.ID {
		t.Fatalf("listed = %+v, want only the game at the window start", listed)
	}
}

func TestRunInTxRollsBack(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	sentinel := errors.New("abort")

	err := database.RunInTx(ctx, func(tx *db.DB) error {
		if _, err := tx.Queries.CreateUser(ctx, "temp@nyu.edu", "hash", time.Now()); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want sentinel", err)
	}
	if _, err := database.Queries.GetUserByEmail(ctx, "temp@nyu.edu"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("user survived rollback: %v", err)
	}
}
