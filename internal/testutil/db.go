package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/codr1/pickup/internal/db"
	"github.com/codr1/pickup/internal/models"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// SeedAccount inserts an account with a placeholder password hash.
func SeedAccount(t *testing.T, database *db.DB, email string) models.Account {
	t.Helper()

	account, err := database.Queries.CreateUser(context.Background(), email, "not-a-real-hash", time.Now())
	if err != nil {
		t.Fatalf("seed account %s: %v", email, err)
	}
	return account
}

// SeedGame inserts a game created by creatorID.
func SeedGame(t *testing.T, database *db.DB, creatorID string, game models.NewGame) models.Game {
	t.Helper()

	created, err := database.Queries.CreateGame(context.Background(), game, creatorID, time.Now())
	if err != nil {
		t.Fatalf("seed game: %v", err)
	}
	return created
}
